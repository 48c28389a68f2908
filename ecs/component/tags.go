package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

type CollectibleTag struct{}

var CollectibleTagComponent = NewComponent[CollectibleTag]()

// RawInputTag marks ephemeral device records that live for a single tick.
type RawInputTag struct{}

var RawInputTagComponent = NewComponent[RawInputTag]()
