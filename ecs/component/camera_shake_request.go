package component

// CameraShakeRequest asks the camera system to start a shake. Duration is in
// seconds, Intensity in world units.
type CameraShakeRequest struct {
	Duration  float64
	Intensity float64
}

var CameraShakeRequestComponent = NewComponent[CameraShakeRequest]()
