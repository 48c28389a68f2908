package component

type CollectibleKind int

const (
	CollectibleCoin CollectibleKind = iota
	CollectibleMagnet
	CollectibleInvincibility
)

func (k CollectibleKind) String() string {
	switch k {
	case CollectibleMagnet:
		return "magnet"
	case CollectibleInvincibility:
		return "invincibility"
	default:
		return "coin"
	}
}

// PowerUp maps power-up collectibles to the timer they start on the player.
func (k CollectibleKind) PowerUp() PowerUpKind {
	switch k {
	case CollectibleMagnet:
		return PowerUpMagnet
	case CollectibleInvincibility:
		return PowerUpInvincibility
	default:
		return PowerUpNone
	}
}

type Collectible struct {
	Kind CollectibleKind
	// PowerUpDuration is how long the player's power-up timer runs, in seconds.
	PowerUpDuration float64
}

var CollectibleComponent = NewComponent[Collectible]()
