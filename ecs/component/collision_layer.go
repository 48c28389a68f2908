package component

const (
	LayerPlayer      uint32 = 1 << 0
	LayerCollectible uint32 = 1 << 1
	LayerObstacle    uint32 = 1 << 2
	LayerGround      uint32 = 1 << 3
)

// CollisionLayer allows entities to declare a collision category and mask
// so the physics system can selectively enable/disable collisions between
// groups of objects.
type CollisionLayer struct {
	// Category is a bitmask of this entity's collision category. If zero,
	// the physics system will treat it as category 1.
	Category uint32 `yaml:"category,omitempty"`
	// Mask is a bitmask of categories this entity should collide with. If
	// zero, the physics system will treat it as all-bits set (collide with all).
	Mask uint32 `yaml:"mask,omitempty"`
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
