package component

// Score is the game-wide singleton counter. It only grows.
type Score struct {
	Value int
}

var ScoreComponent = NewComponent[Score]()
