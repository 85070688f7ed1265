package protocol

import (
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/wire"
)

// ConnectionParams are sent with RegisterConnection
type ConnectionParams struct {
	DisplayName      string
	Password         string
	CommandPassword  string
	UpdateIntervalMS uint32
}

// FocusTarget selects the car and/or camera for ChangeFocus.
// A nil CarIndex keeps the current car, an empty CameraSet keeps the camera.
type FocusTarget struct {
	CarIndex  *uint16
	CameraSet string
	Camera    string
}

// InstantReplay describes a replay request
type InstantReplay struct {
	StartSessionTime       float32
	DurationMS             float32
	InitialFocusedCarIndex int32
	InitialCameraSet       string
	InitialCamera          string
}

func command(ct model.CommandType) *wire.Writer {
	return wire.NewWriter().Uint8(uint8(ct))
}

func RegisterConnection(p ConnectionParams) ([]byte, error) {
	w := command(model.CTRegisterConnection).Uint8(model.ProtocolVersion)
	if err := w.String(p.DisplayName); err != nil {
		return nil, err
	}
	if err := w.String(p.Password); err != nil {
		return nil, err
	}
	w.Uint32(p.UpdateIntervalMS)
	if err := w.String(p.CommandPassword); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func DeregisterConnection() []byte {
	return command(model.CTDeregisterConnection).Bytes()
}

func RequestEntryList(connectionID int32) []byte {
	return command(model.CTRequestEntryList).Int32(connectionID).Bytes()
}

func RequestTrackData(connectionID int32) []byte {
	return command(model.CTRequestTrackData).Int32(connectionID).Bytes()
}

func ChangeHUDPage(connectionID int32, page string) ([]byte, error) {
	w := command(model.CTChangeHUDPage).Int32(connectionID)
	if err := w.String(page); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func ChangeFocus(connectionID int32, target FocusTarget) ([]byte, error) {
	w := command(model.CTChangeFocus).Int32(connectionID)
	if target.CarIndex != nil {
		w.Uint8(1).Uint16(*target.CarIndex)
	} else {
		w.Uint8(0)
	}
	if target.CameraSet == "" || target.Camera == "" {
		w.Uint8(0)
		return w.Bytes(), nil
	}
	w.Uint8(1)
	if err := w.String(target.CameraSet); err != nil {
		return nil, err
	}
	if err := w.String(target.Camera); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func RequestInstantReplay(connectionID int32, req InstantReplay) ([]byte, error) {
	w := command(model.CTInstantReplayRequest).
		Int32(connectionID).
		Float32(req.StartSessionTime).
		Float32(req.DurationMS).
		Int32(req.InitialFocusedCarIndex)
	if err := w.String(req.InitialCameraSet); err != nil {
		return nil, err
	}
	if err := w.String(req.InitialCamera); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
