// Package protocol decodes inbound datagrams and encodes outbound commands.
package protocol

import (
	"fmt"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/registry"
	"github.com/mpapenbr/accbroadcast-go/pkg/wire"
)

// NoValue marks lap times and splits without a value
const NoValue int32 = 0x7fffffff

// Decode reads the message type byte and decodes the remaining datagram.
// EntryListCar updates cars, BroadcastingEvent resolves its car from cars.
// Bytes after a complete message are ignored, see DecodeWithTrailing.
func Decode(data []byte, cars *registry.Registry) (model.Message, error) {
	msg, _, err := DecodeWithTrailing(data, cars)
	return msg, err
}

// DecodeWithTrailing works like Decode and also returns the number of bytes
// left over after the message.
//
//nolint:cyclop // one case per message type
func DecodeWithTrailing(data []byte, cars *registry.Registry) (
	msg model.Message, trailing int, err error,
) {
	r := wire.NewReader(data)
	b, err := r.Uint8()
	if err != nil {
		return nil, 0, &DecodeError{Type: "MessageType", Err: err}
	}
	mt := model.MessageType(b)
	switch mt {
	case model.MTRegistrationResult:
		msg, err = ReadRegistrationResult(r)
	case model.MTRealTimeUpdate:
		msg, err = ReadRealTimeUpdate(r)
	case model.MTRealTimeCarUpdate:
		msg, err = ReadRealTimeCarUpdate(r)
	case model.MTEntryList:
		msg, err = ReadEntryList(r)
	case model.MTTrackData:
		msg, err = ReadTrackData(r)
	case model.MTEntryListCar:
		msg, err = ReadEntryListCar(r, cars)
	case model.MTBroadcastingEvent:
		msg, err = ReadBroadcastingEvent(r, cars)
	default:
		return nil, 0, &UnknownMessageTypeError{Type: b}
	}
	if err != nil {
		return nil, 0, &DecodeError{Type: mt.String(), Offset: r.Offset(), Err: err}
	}
	return msg, r.Remaining(), nil
}

func nullable(v int32) null.Val[int32] {
	if v == NoValue {
		return null.Val[int32]{}
	}
	return null.From(v)
}

// percentage converts the 0-10 wire value into a 0.0-1.0 fraction
func percentage(r *wire.Reader) (float64, error) {
	b, err := r.Uint8()
	return float64(b) / 10.0, err
}

// fieldReader collects the first error of a sequence of reads.
// Once an error occurred all further reads are no-ops.
type fieldReader struct {
	r   *wire.Reader
	err error
}

func (f *fieldReader) u8() uint8 {
	if f.err != nil {
		return 0
	}
	var v uint8
	v, f.err = f.r.Uint8()
	return v
}

func (f *fieldReader) boolean() bool {
	return f.u8() != 0
}

func (f *fieldReader) u16() uint16 {
	if f.err != nil {
		return 0
	}
	var v uint16
	v, f.err = f.r.Uint16()
	return v
}

func (f *fieldReader) u32() uint32 {
	if f.err != nil {
		return 0
	}
	var v uint32
	v, f.err = f.r.Uint32()
	return v
}

func (f *fieldReader) i32() int32 {
	if f.err != nil {
		return 0
	}
	var v int32
	v, f.err = f.r.Int32()
	return v
}

func (f *fieldReader) f32() float32 {
	if f.err != nil {
		return 0
	}
	var v float32
	v, f.err = f.r.Float32()
	return v
}

func (f *fieldReader) str() string {
	if f.err != nil {
		return ""
	}
	var v string
	v, f.err = f.r.ReadString()
	return v
}

func (f *fieldReader) pct() float64 {
	if f.err != nil {
		return 0
	}
	var v float64
	v, f.err = percentage(f.r)
	return v
}

func (f *fieldReader) lap() model.Lap {
	if f.err != nil {
		return model.Lap{}
	}
	var v *model.Lap
	if v, f.err = ReadLap(f.r); f.err != nil {
		return model.Lap{}
	}
	return *v
}

func ReadLap(r *wire.Reader) (*model.Lap, error) {
	f := fieldReader{r: r}
	lap := &model.Lap{}
	lap.LapTimeMS = nullable(f.i32())
	lap.CarIndex = f.u16()
	lap.DriverIndex = f.u16()
	splitCount := f.u8()
	lap.Splits = make([]null.Val[int32], 0, splitCount)
	for i := 0; i < int(splitCount) && f.err == nil; i++ {
		lap.Splits = append(lap.Splits, nullable(f.i32()))
	}
	lap.IsInvalid = f.boolean()
	lap.IsValidForBest = f.boolean()
	lap.IsOutLap = f.boolean()
	lap.IsInLap = f.boolean()
	if f.err != nil {
		return nil, f.err
	}
	return lap, nil
}

func ReadDriver(r *wire.Reader) (*model.Driver, error) {
	f := fieldReader{r: r}
	d := &model.Driver{
		FirstName:   f.str(),
		LastName:    f.str(),
		ShortName:   f.str(),
		Category:    model.DriverCategory(f.u8()),
		Nationality: model.Nationality(f.u16()),
	}
	if f.err != nil {
		return nil, f.err
	}
	return d, nil
}

func ReadRegistrationResult(r *wire.Reader) (*model.RegistrationResult, error) {
	f := fieldReader{r: r}
	res := &model.RegistrationResult{
		ConnectionID:      f.i32(),
		ConnectionSuccess: f.boolean(),
		IsReadOnly:        f.boolean(),
		ErrorMessage:      f.str(),
	}
	if f.err != nil {
		return nil, f.err
	}
	return res, nil
}

func ReadRealTimeUpdate(r *wire.Reader) (*model.RealTimeUpdate, error) {
	f := fieldReader{r: r}
	u := &model.RealTimeUpdate{}
	u.EventIndex = f.u16()
	u.SessionIndex = f.u16()
	u.SessionType = model.RaceSessionType(f.u8())
	u.Phase = model.SessionPhase(f.u8())
	u.SessionTime = f.f32()
	u.SessionEndTime = f.f32()
	u.FocusedCarIndex = f.i32()
	u.ActiveCameraSet = f.str()
	u.ActiveCamera = f.str()
	u.CurrentHUDPage = f.str()
	u.IsReplayPlaying = f.boolean()
	if u.IsReplayPlaying {
		u.ReplaySessionTime = null.From(f.f32())
		u.ReplayRemainingTime = null.From(f.f32())
	}
	u.TimeOfDay = f.f32()
	u.AmbientTemp = f.u8()
	u.TrackTemp = f.u8()
	u.Clouds = f.pct()
	u.RainLevel = f.pct()
	u.Wetness = f.pct()
	u.BestSessionLap = f.lap()
	if f.err != nil {
		return nil, f.err
	}
	return u, nil
}

func ReadRealTimeCarUpdate(r *wire.Reader) (*model.RealTimeCarUpdate, error) {
	f := fieldReader{r: r}
	u := &model.RealTimeCarUpdate{}
	u.CarIndex = f.u16()
	u.DriverIndex = f.u16()
	u.DriverCount = f.u8()
	u.Gear = int(f.u8()) - 1
	u.WorldPosX = f.f32()
	u.WorldPosY = f.f32()
	u.Yaw = f.f32()
	u.CarLocation = model.CarLocation(f.u8())
	u.SpeedKMH = f.u16()
	u.Position = f.u16()
	u.CupPosition = f.u16()
	u.TrackPosition = f.u16()
	u.SplinePosition = f.f32()
	u.Laps = f.u16()
	u.Delta = f.i32()
	u.BestSessionLap = f.lap()
	u.LastLap = f.lap()
	u.CurrentLap = f.lap()
	if f.err != nil {
		return nil, f.err
	}
	return u, nil
}

// ReadEntryList reads the announced car ids
func ReadEntryList(r *wire.Reader) (*model.EntryList, error) {
	f := fieldReader{r: r}
	el := &model.EntryList{}
	el.ConnectionID = f.i32()
	count := f.u16()
	el.CarIDs = make([]uint16, 0, count)
	for i := 0; i < int(count) && f.err == nil; i++ {
		el.CarIDs = append(el.CarIDs, f.u16())
	}
	if f.err != nil {
		return nil, f.err
	}
	return el, nil
}

// ReadEntryListCar decodes the car and, if cars is not nil, replaces the
// registry entry of that car id. Nothing is stored on error.
func ReadEntryListCar(r *wire.Reader, cars *registry.Registry) (*model.EntryListCar, error) {
	f := fieldReader{r: r}
	elc := &model.EntryListCar{}
	elc.CarID = f.u16()
	elc.CarModelType = f.u8()
	elc.TeamName = f.str()
	elc.RaceNumber = f.i32()
	elc.CupCategory = model.CupCategory(f.u8())
	elc.CurrentDriverIndex = f.u8()
	elc.Nationality = model.Nationality(f.u16())
	driverCount := f.u8()
	if f.err != nil {
		return nil, f.err
	}
	elc.Drivers = make([]model.Driver, 0, driverCount)
	for range driverCount {
		d, err := ReadDriver(r)
		if err != nil {
			return nil, err
		}
		elc.Drivers = append(elc.Drivers, *d)
	}
	if int(elc.CurrentDriverIndex) >= len(elc.Drivers) {
		return nil, fmt.Errorf("car %d: index %d, %d drivers: %w",
			elc.CarID, elc.CurrentDriverIndex, len(elc.Drivers), ErrDriverIndexOutOfRange)
	}
	elc.CurrentDriver = &elc.Drivers[elc.CurrentDriverIndex]
	if cars != nil {
		car := elc.Car
		cars.Replace(elc.CarID, &car)
	}
	return elc, nil
}

// ReadTrackData reads the track and its camera sets.
// The camera set section is read at least once, even if the count is 0.
func ReadTrackData(r *wire.Reader) (*model.TrackData, error) {
	f := fieldReader{r: r}
	td := &model.TrackData{}
	td.ConnectionID = f.i32()
	td.TrackName = f.str()
	td.TrackID = f.i32()
	td.TrackLengthM = f.i32()
	setCount := max(int(f.u8()), 1)
	td.CameraSets = make([]model.CameraSet, 0, setCount)
	for i := 0; i < setCount && f.err == nil; i++ {
		set := model.CameraSet{Name: f.str()}
		camCount := int(f.u8())
		set.Cameras = make([]string, 0, camCount)
		for j := 0; j < camCount && f.err == nil; j++ {
			set.Cameras = append(set.Cameras, f.str())
		}
		td.CameraSets = append(td.CameraSets, set)
	}
	hudCount := int(f.u8())
	td.HUDPages = make([]string, 0, hudCount)
	for i := 0; i < hudCount && f.err == nil; i++ {
		td.HUDPages = append(td.HUDPages, f.str())
	}
	if f.err != nil {
		return nil, f.err
	}
	return td, nil
}

// ReadBroadcastingEvent decodes the event and resolves its car from cars.
// Car stays nil if the id is unknown or only a placeholder.
func ReadBroadcastingEvent(r *wire.Reader, cars *registry.Registry) (*model.BroadcastingEvent, error) {
	f := fieldReader{r: r}
	ev := &model.BroadcastingEvent{
		Type:    model.BroadcastingEventType(f.u8()),
		Message: f.str(),
		TimeMS:  f.i32(),
		CarID:   f.i32(),
	}
	if f.err != nil {
		return nil, f.err
	}
	if cars != nil {
		ev.Car, _ = cars.Lookup(ev.CarID)
	}
	return ev, nil
}

// ReadRegisterConnection decodes the payload of a RegisterConnection command,
// the reader must be positioned after the command byte.
func ReadRegisterConnection(r *wire.Reader) (*ConnectionParams, uint8, error) {
	f := fieldReader{r: r}
	version := f.u8()
	p := &ConnectionParams{
		DisplayName:      f.str(),
		Password:         f.str(),
		UpdateIntervalMS: f.u32(),
		CommandPassword:  f.str(),
	}
	if f.err != nil {
		return nil, 0, f.err
	}
	return p, version, nil
}
