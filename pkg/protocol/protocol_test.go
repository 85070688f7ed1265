package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/registry"
	"github.com/mpapenbr/accbroadcast-go/pkg/wire"
	"github.com/mpapenbr/accbroadcast-go/testsupport/basedata"
)

func TestDecodeRegistrationResult(t *testing.T) {
	in := &model.RegistrationResult{
		ConnectionID:      42,
		ConnectionSuccess: true,
		IsReadOnly:        false,
		ErrorMessage:      "",
	}
	msg, err := Decode(basedata.RegistrationResult(in), nil)
	require.NoError(t, err)
	assert.Equal(t, in, msg)
}

func TestDecodeRealTimeUpdate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(u *model.RealTimeUpdate)
	}{
		{"live", func(u *model.RealTimeUpdate) {}},
		{"replay", func(u *model.RealTimeUpdate) {
			u.IsReplayPlaying = true
			u.ReplaySessionTime = null.From(float32(1500.25))
			u.ReplayRemainingTime = null.From(float32(3000))
		}},
		{"wet", func(u *model.RealTimeUpdate) {
			u.Clouds = 1.0
			u.RainLevel = 0.7
			u.Wetness = 0.5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := basedata.SampleRealTimeUpdate()
			tt.modify(in)
			msg, err := Decode(basedata.RealTimeUpdate(in), nil)
			require.NoError(t, err)
			assert.Equal(t, in, msg)
		})
	}
}

func TestWeatherPercentage(t *testing.T) {
	tests := []struct {
		raw  uint8
		want float64
	}{
		{0, 0.0},
		{3, 0.3},
		{10, 1.0},
	}
	for _, tt := range tests {
		got, err := percentage(wire.NewReader([]byte{tt.raw}))
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestDecodeRealTimeCarUpdateGear(t *testing.T) {
	tests := []struct {
		name string
		gear int
	}{
		{"reverse", -1},
		{"neutral", 0},
		{"first", 1},
		{"sixth", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := basedata.SampleRealTimeCarUpdate(7, 3)
			in.Gear = tt.gear
			data := basedata.RealTimeCarUpdate(in)
			// type(1) + carIndex(2) + driverIndex(2) + driverCount(1)
			assert.Equal(t, uint8(tt.gear+1), data[6])
			msg, err := Decode(data, nil)
			require.NoError(t, err)
			assert.Equal(t, in, msg)
		})
	}
}

func TestReadLapNoValue(t *testing.T) {
	data := wire.NewWriter().
		Int32(NoValue).Uint16(7).Uint16(1).
		Uint8(3).Int32(31000).Int32(NoValue).Int32(-1).
		Bool(true).Bool(false).Bool(true).Bool(false).
		Bytes()
	lap, err := ReadLap(wire.NewReader(data))
	require.NoError(t, err)
	assert.False(t, lap.HasTime())
	assert.True(t, lap.LapTimeMS.IsNull())
	assert.Equal(t, []null.Val[int32]{null.From(int32(31000)), {}, null.From(int32(-1))}, lap.Splits)
	assert.True(t, lap.IsInvalid)
	assert.False(t, lap.IsValidForBest)
	assert.True(t, lap.IsOutLap)
	assert.False(t, lap.IsInLap)
}

func TestDecodeEntryListCar(t *testing.T) {
	cars := registry.New()
	cars.Reset([]uint16{5, 7})

	in := basedata.SampleEntryListCar(7)
	msg, err := Decode(basedata.EntryListCar(in), cars)
	require.NoError(t, err)
	elc, ok := msg.(*model.EntryListCar)
	require.True(t, ok)
	assert.Equal(t, in, elc)
	assert.Equal(t, "Anna Racer", elc.CurrentDriver.FullName())

	car, known := cars.Lookup(7)
	assert.True(t, known)
	require.NotNil(t, car)
	assert.Equal(t, "Team Sample", car.TeamName)
	assert.Same(t, &car.Drivers[1], car.CurrentDriver)
	assert.True(t, cars.IsPlaceholder(5))
}

func TestDecodeEntryListCarUnannounced(t *testing.T) {
	cars := registry.New()
	cars.Reset([]uint16{5})

	msg, err := Decode(basedata.EntryListCar(basedata.SampleEntryListCar(9)), cars)
	require.NoError(t, err)
	assert.Equal(t, uint16(9), msg.(*model.EntryListCar).CarID)
	assert.False(t, cars.Contains(9))
	assert.Equal(t, 1, cars.Len())
}

func TestDecodeEntryListCarDriverIndexOutOfRange(t *testing.T) {
	cars := registry.New()
	cars.Reset([]uint16{7})

	in := basedata.SampleEntryListCar(7)
	in.CurrentDriverIndex = 2
	_, err := Decode(basedata.EntryListCar(in), cars)
	require.ErrorIs(t, err, ErrDriverIndexOutOfRange)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "EntryListCar", decErr.Type)
	assert.True(t, cars.IsPlaceholder(7))
}

func TestDecodeEntryList(t *testing.T) {
	msg, err := Decode(basedata.EntryList(42, 5, 7, 9), nil)
	require.NoError(t, err)
	assert.Equal(t, &model.EntryList{ConnectionID: 42, CarIDs: []uint16{5, 7, 9}}, msg)

	msg, err = Decode(basedata.EntryList(42), nil)
	require.NoError(t, err)
	assert.Empty(t, msg.(*model.EntryList).CarIDs)
}

func TestDecodeTrackData(t *testing.T) {
	in := basedata.SampleTrackData()
	msg, err := Decode(basedata.TrackData(in), nil)
	require.NoError(t, err)
	assert.Equal(t, in, msg)

	td := msg.(*model.TrackData)
	cams, ok := td.Cameras("Helicam")
	assert.True(t, ok)
	assert.Empty(t, cams)
	_, ok = td.Cameras("unknown")
	assert.False(t, ok)
}

func TestDecodeTrackDataZeroSetCount(t *testing.T) {
	in := basedata.SampleTrackData()
	in.CameraSets = []model.CameraSet{{Name: "Driveable", Cameras: []string{"Chase"}}}
	msg, err := Decode(basedata.TrackDataWithSetCount(in, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, in, msg)
}

func TestDecodeBroadcastingEvent(t *testing.T) {
	cars := registry.New()
	cars.Reset([]uint16{5, 7})
	elc := basedata.SampleEntryListCar(7)
	cars.Replace(7, &elc.Car)

	tests := []struct {
		name    string
		carID   int32
		wantCar bool
	}{
		{"resolved", 7, true},
		{"placeholder", 5, false},
		{"unknown", 11, false},
		{"negative", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &model.BroadcastingEvent{
				Type:    model.EventTypeAccident,
				Message: "contact",
				TimeMS:  1234,
				CarID:   tt.carID,
			}
			msg, err := Decode(basedata.BroadcastingEvent(in), cars)
			require.NoError(t, err)
			ev := msg.(*model.BroadcastingEvent)
			assert.Equal(t, "contact", ev.Message)
			assert.Equal(t, tt.carID, ev.CarID)
			if tt.wantCar {
				assert.Same(t, &elc.Car, ev.Car)
			} else {
				assert.Nil(t, ev.Car)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	full := basedata.RegistrationResult(&model.RegistrationResult{
		ConnectionID: 1, ErrorMessage: "wrong password",
	})
	t.Run("empty", func(t *testing.T) {
		_, err := Decode([]byte{}, nil)
		assert.ErrorIs(t, err, wire.ErrUnderrun)
	})
	t.Run("unknown type", func(t *testing.T) {
		_, err := Decode([]byte{0x63, 1, 2, 3}, nil)
		var typeErr *UnknownMessageTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, uint8(0x63), typeErr.Type)
	})
	t.Run("truncated inside string", func(t *testing.T) {
		_, err := Decode(full[:len(full)-3], nil)
		assert.ErrorIs(t, err, wire.ErrUnderrun)
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr)
		assert.Equal(t, "RegistrationResult", decErr.Type)
	})
	t.Run("truncated lap", func(t *testing.T) {
		data := basedata.RealTimeCarUpdate(basedata.SampleRealTimeCarUpdate(1, 1))
		_, err := Decode(data[:len(data)-1], nil)
		assert.ErrorIs(t, err, wire.ErrUnderrun)
	})
	t.Run("invalid utf8", func(t *testing.T) {
		data := wire.NewWriter().
			Uint8(uint8(model.MTRegistrationResult)).
			Int32(1).Bool(false).Bool(false).
			Uint16(2).Raw([]byte{0xc3, 0x28}).
			Bytes()
		_, err := Decode(data, nil)
		assert.ErrorIs(t, err, wire.ErrEncoding)
	})
}

func TestEncodeCommands(t *testing.T) {
	car := uint16(7)
	tests := []struct {
		name string
		got  func() ([]byte, error)
		want []byte
	}{
		{
			"register",
			func() ([]byte, error) {
				return RegisterConnection(ConnectionParams{
					DisplayName: "ab", Password: "pw", CommandPassword: "cp", UpdateIntervalMS: 250,
				})
			},
			[]byte{
				0x01, 0x04,
				0x02, 0x00, 'a', 'b',
				0x02, 0x00, 'p', 'w',
				0xfa, 0x00, 0x00, 0x00,
				0x02, 0x00, 'c', 'p',
			},
		},
		{
			"deregister",
			func() ([]byte, error) { return DeregisterConnection(), nil },
			[]byte{0x09},
		},
		{
			"entry list",
			func() ([]byte, error) { return RequestEntryList(42), nil },
			[]byte{0x0a, 0x2a, 0x00, 0x00, 0x00},
		},
		{
			"track data",
			func() ([]byte, error) { return RequestTrackData(258), nil },
			[]byte{0x0b, 0x02, 0x01, 0x00, 0x00},
		},
		{
			"hud page",
			func() ([]byte, error) { return ChangeHUDPage(1, "Blank") },
			[]byte{0x31, 0x01, 0x00, 0x00, 0x00, 0x05, 0x00, 'B', 'l', 'a', 'n', 'k'},
		},
		{
			"focus car only",
			func() ([]byte, error) { return ChangeFocus(1, FocusTarget{CarIndex: &car}) },
			[]byte{0x32, 0x01, 0x00, 0x00, 0x00, 0x01, 0x07, 0x00, 0x00},
		},
		{
			"focus camera only",
			func() ([]byte, error) {
				return ChangeFocus(1, FocusTarget{CameraSet: "set1", Camera: "tv"})
			},
			[]byte{
				0x32, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01,
				0x04, 0x00, 's', 'e', 't', '1', 0x02, 0x00, 't', 'v',
			},
		},
		{
			"instant replay",
			func() ([]byte, error) {
				return RequestInstantReplay(1, InstantReplay{
					StartSessionTime: 1, DurationMS: 2, InitialFocusedCarIndex: -1,
				})
			},
			[]byte{
				0x33, 0x01, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x80, 0x3f,
				0x00, 0x00, 0x00, 0x40,
				0xff, 0xff, 0xff, 0xff,
				0x00, 0x00, 0x00, 0x00,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterConnectionRoundTrip(t *testing.T) {
	in := ConnectionParams{
		DisplayName:      "Rennleitung ü",
		Password:         "asd",
		CommandPassword:  "",
		UpdateIntervalMS: 1000,
	}
	data, err := RegisterConnection(in)
	require.NoError(t, err)

	r := wire.NewReader(data)
	ct, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(model.CTRegisterConnection), ct)
	got, version, err := ReadRegisterConnection(r)
	require.NoError(t, err)
	assert.Equal(t, model.ProtocolVersion, version)
	assert.Equal(t, &in, got)
	assert.Zero(t, r.Remaining())
}

func TestRegisterConnectionTooLong(t *testing.T) {
	_, err := RegisterConnection(ConnectionParams{DisplayName: strings.Repeat("x", 70000)})
	assert.True(t, errors.Is(err, wire.ErrStringTooLong))
}

func TestDecodersConsumeExactLayout(t *testing.T) {
	replay := basedata.SampleRealTimeUpdate()
	replay.IsReplayPlaying = true
	replay.ReplaySessionTime = null.From(float32(1500.25))
	replay.ReplayRemainingTime = null.From(float32(3000))

	zeroSets := basedata.SampleTrackData()
	zeroSets.CameraSets = []model.CameraSet{{Name: "Driveable", Cameras: []string{"Chase"}}}

	tests := []struct {
		name string
		data []byte
		read func(r *wire.Reader) error
	}{
		{
			"registration result",
			basedata.RegistrationResult(&model.RegistrationResult{
				ConnectionID: 1, ErrorMessage: "wrong password",
			}),
			func(r *wire.Reader) error { _, err := ReadRegistrationResult(r); return err },
		},
		{
			"realtime update live",
			basedata.RealTimeUpdate(basedata.SampleRealTimeUpdate()),
			func(r *wire.Reader) error { _, err := ReadRealTimeUpdate(r); return err },
		},
		{
			"realtime update replay",
			basedata.RealTimeUpdate(replay),
			func(r *wire.Reader) error { _, err := ReadRealTimeUpdate(r); return err },
		},
		{
			"realtime car update",
			basedata.RealTimeCarUpdate(basedata.SampleRealTimeCarUpdate(7, 3)),
			func(r *wire.Reader) error { _, err := ReadRealTimeCarUpdate(r); return err },
		},
		{
			"entry list",
			basedata.EntryList(42, 5, 7, 9),
			func(r *wire.Reader) error { _, err := ReadEntryList(r); return err },
		},
		{
			"entry list empty",
			basedata.EntryList(42),
			func(r *wire.Reader) error { _, err := ReadEntryList(r); return err },
		},
		{
			"entry list car",
			basedata.EntryListCar(basedata.SampleEntryListCar(7)),
			func(r *wire.Reader) error { _, err := ReadEntryListCar(r, nil); return err },
		},
		{
			"track data",
			basedata.TrackData(basedata.SampleTrackData()),
			func(r *wire.Reader) error { _, err := ReadTrackData(r); return err },
		},
		{
			"track data zero set count",
			basedata.TrackDataWithSetCount(zeroSets, 0),
			func(r *wire.Reader) error { _, err := ReadTrackData(r); return err },
		},
		{
			"broadcasting event",
			basedata.BroadcastingEvent(&model.BroadcastingEvent{
				Type: model.EventTypeAccident, Message: "contact", TimeMS: 1234, CarID: 7,
			}),
			func(r *wire.Reader) error { _, err := ReadBroadcastingEvent(r, nil); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := wire.NewReader(tt.data)
			_, err := r.Uint8()
			require.NoError(t, err)
			require.NoError(t, tt.read(r))
			assert.Equal(t, 0, r.Remaining())

			_, trailing, err := DecodeWithTrailing(tt.data, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, trailing)
		})
	}
}

func TestDecodeWithTrailingBytes(t *testing.T) {
	in := basedata.SampleRealTimeUpdate()
	data := append(basedata.RealTimeUpdate(in), 0xde, 0xad)

	msg, trailing, err := DecodeWithTrailing(data, nil)
	require.NoError(t, err)
	assert.Equal(t, in, msg)
	assert.Equal(t, 2, trailing)

	msg, err = Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, in, msg)
}

func seededRegistry() *registry.Registry {
	cars := registry.New()
	cars.Reset([]uint16{5, 7})
	cars.Replace(7, &basedata.SampleEntryListCar(7).Car)
	return cars
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add(basedata.RegistrationResult(&model.RegistrationResult{ConnectionID: 1}))
	f.Add(basedata.RealTimeUpdate(basedata.SampleRealTimeUpdate()))
	f.Add(basedata.RealTimeCarUpdate(basedata.SampleRealTimeCarUpdate(7, 3)))
	f.Add(basedata.EntryList(42, 5, 7))
	f.Add(basedata.EntryListCar(basedata.SampleEntryListCar(5)))
	f.Add(basedata.TrackData(basedata.SampleTrackData()))
	f.Add(basedata.BroadcastingEvent(&model.BroadcastingEvent{
		Type: model.EventTypeAccident, Message: "contact", CarID: 7,
	}))

	f.Fuzz(func(t *testing.T, data []byte) {
		cars := seededRegistry()
		before := cars.Snapshot()
		_, err := Decode(data, cars)
		if err != nil {
			assert.Equal(t, before, cars.Snapshot())
		}
	})
}
