package component

// TriggerVolume is a vertical cylinder used for overlap detection: a circle on
// the track plane (X, Z) extruded from Bottom to Top relative to the owner's Y.
type TriggerVolume struct {
	Radius float64
	Bottom float64
	Top    float64
	// Sensor volumes report overlaps without a collision response.
	Sensor bool
}

var TriggerVolumeComponent = NewComponent[TriggerVolume]()
