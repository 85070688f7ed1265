package model

import "github.com/aarondl/opt/null"

type RegistrationResult struct {
	ConnectionID      int32  `json:"connectionId"`
	ConnectionSuccess bool   `json:"connectionSuccess"`
	IsReadOnly        bool   `json:"isReadOnly"`
	ErrorMessage      string `json:"errorMessage"`
}

// RealTimeUpdate is the session wide snapshot.
// Clouds, RainLevel and Wetness are fractions in the range 0.0-1.0
type RealTimeUpdate struct {
	EventIndex          uint16            `json:"eventIndex"`
	SessionIndex        uint16            `json:"sessionIndex"`
	SessionType         RaceSessionType   `json:"sessionType"`
	Phase               SessionPhase      `json:"phase"`
	SessionTime         float32           `json:"sessionTime"`
	SessionEndTime      float32           `json:"sessionEndTime"`
	FocusedCarIndex     int32             `json:"focusedCarIndex"`
	ActiveCameraSet     string            `json:"activeCameraSet"`
	ActiveCamera        string            `json:"activeCamera"`
	CurrentHUDPage      string            `json:"currentHudPage"`
	IsReplayPlaying     bool              `json:"isReplayPlaying"`
	ReplaySessionTime   null.Val[float32] `json:"replaySessionTime"`
	ReplayRemainingTime null.Val[float32] `json:"replayRemainingTime"`
	TimeOfDay           float32           `json:"timeOfDay"`
	AmbientTemp         uint8             `json:"ambientTemp"`
	TrackTemp           uint8             `json:"trackTemp"`
	Clouds              float64           `json:"clouds"`
	RainLevel           float64           `json:"rainLevel"`
	Wetness             float64           `json:"wetness"`
	BestSessionLap      Lap               `json:"bestSessionLap"`
}

// RealTimeCarUpdate is the telemetry snapshot of a single car.
// Gear is already shifted: -1 is reverse, 0 neutral.
type RealTimeCarUpdate struct {
	CarIndex       uint16      `json:"carIndex"`
	DriverIndex    uint16      `json:"driverIndex"`
	DriverCount    uint8       `json:"driverCount"`
	Gear           int         `json:"gear"`
	WorldPosX      float32     `json:"worldPosX"`
	WorldPosY      float32     `json:"worldPosY"`
	Yaw            float32     `json:"yaw"`
	CarLocation    CarLocation `json:"carLocation"`
	SpeedKMH       uint16      `json:"speedKMH"`
	Position       uint16      `json:"position"`
	CupPosition    uint16      `json:"cupPosition"`
	TrackPosition  uint16      `json:"trackPosition"`
	SplinePosition float32     `json:"splinePosition"`
	Laps           uint16      `json:"laps"`
	Delta          int32       `json:"delta"`
	BestSessionLap Lap         `json:"bestSessionLap"`
	LastLap        Lap         `json:"lastLap"`
	CurrentLap     Lap         `json:"currentLap"`
}

type CameraSet struct {
	Name    string   `json:"name"`
	Cameras []string `json:"cameras"`
}

type TrackData struct {
	ConnectionID int32       `json:"connectionId"`
	TrackName    string      `json:"trackName"`
	TrackID      int32       `json:"trackId"`
	TrackLengthM int32       `json:"trackLengthM"`
	CameraSets   []CameraSet `json:"cameraSets"`
	HUDPages     []string    `json:"hudPages"`
}

// Cameras returns the cameras of the named camera set
func (t *TrackData) Cameras(setName string) ([]string, bool) {
	for i := range t.CameraSets {
		if t.CameraSets[i].Name == setName {
			return t.CameraSets[i].Cameras, true
		}
	}
	return nil, false
}

// BroadcastingEvent carries the resolved car, nil if the car id is unknown
// or only announced so far.
type BroadcastingEvent struct {
	Type    BroadcastingEventType `json:"type"`
	Message string                `json:"message"`
	TimeMS  int32                 `json:"timeMS"`
	CarID   int32                 `json:"carId"`
	Car     *Car                  `json:"car"`
}
