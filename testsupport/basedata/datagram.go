package basedata

import (
	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/wire"
)

// The functions below produce datagrams the way the race server sends them.

// noValue is the wire marker of a lap time or split without value
const noValue int32 = 0x7fffffff

func message(mt model.MessageType) *wire.Writer {
	return wire.NewWriter().Uint8(uint8(mt))
}

func nullable(w *wire.Writer, v null.Val[int32]) {
	if val, ok := v.Get(); ok {
		w.Int32(val)
	} else {
		w.Int32(noValue)
	}
}

func WriteLap(w *wire.Writer, lap *model.Lap) {
	nullable(w, lap.LapTimeMS)
	w.Uint16(lap.CarIndex).Uint16(lap.DriverIndex).Uint8(uint8(len(lap.Splits)))
	for _, s := range lap.Splits {
		nullable(w, s)
	}
	w.Bool(lap.IsInvalid).Bool(lap.IsValidForBest).Bool(lap.IsOutLap).Bool(lap.IsInLap)
}

func RegistrationResult(res *model.RegistrationResult) []byte {
	return message(model.MTRegistrationResult).
		Int32(res.ConnectionID).
		Bool(res.ConnectionSuccess).
		Bool(res.IsReadOnly).
		MustString(res.ErrorMessage).
		Bytes()
}

func RealTimeUpdate(u *model.RealTimeUpdate) []byte {
	w := message(model.MTRealTimeUpdate).
		Uint16(u.EventIndex).Uint16(u.SessionIndex).
		Uint8(uint8(u.SessionType)).Uint8(uint8(u.Phase)).
		Float32(u.SessionTime).Float32(u.SessionEndTime).
		Int32(u.FocusedCarIndex).
		MustString(u.ActiveCameraSet).MustString(u.ActiveCamera).MustString(u.CurrentHUDPage).
		Bool(u.IsReplayPlaying)
	if u.IsReplayPlaying {
		w.Float32(u.ReplaySessionTime.GetOrZero()).Float32(u.ReplayRemainingTime.GetOrZero())
	}
	w.Float32(u.TimeOfDay).Uint8(u.AmbientTemp).Uint8(u.TrackTemp).
		Uint8(tenths(u.Clouds)).Uint8(tenths(u.RainLevel)).Uint8(tenths(u.Wetness))
	WriteLap(w, &u.BestSessionLap)
	return w.Bytes()
}

func RealTimeCarUpdate(u *model.RealTimeCarUpdate) []byte {
	w := message(model.MTRealTimeCarUpdate).
		Uint16(u.CarIndex).Uint16(u.DriverIndex).Uint8(u.DriverCount).
		Uint8(uint8(u.Gear + 1)).
		Float32(u.WorldPosX).Float32(u.WorldPosY).Float32(u.Yaw).
		Uint8(uint8(u.CarLocation)).
		Uint16(u.SpeedKMH).Uint16(u.Position).Uint16(u.CupPosition).Uint16(u.TrackPosition).
		Float32(u.SplinePosition).Uint16(u.Laps).Int32(u.Delta)
	WriteLap(w, &u.BestSessionLap)
	WriteLap(w, &u.LastLap)
	WriteLap(w, &u.CurrentLap)
	return w.Bytes()
}

func EntryList(connectionID int32, ids ...uint16) []byte {
	w := message(model.MTEntryList).Int32(connectionID).Uint16(uint16(len(ids)))
	for _, id := range ids {
		w.Uint16(id)
	}
	return w.Bytes()
}

func EntryListCar(c *model.EntryListCar) []byte {
	w := message(model.MTEntryListCar).
		Uint16(c.CarID).Uint8(c.CarModelType).MustString(c.TeamName).
		Int32(c.RaceNumber).Uint8(uint8(c.CupCategory)).Uint8(c.CurrentDriverIndex).
		Uint16(uint16(c.Nationality)).Uint8(uint8(len(c.Drivers)))
	for i := range c.Drivers {
		d := &c.Drivers[i]
		w.MustString(d.FirstName).MustString(d.LastName).MustString(d.ShortName).
			Uint8(uint8(d.Category)).Uint16(uint16(d.Nationality))
	}
	return w.Bytes()
}

func TrackData(td *model.TrackData) []byte {
	return TrackDataWithSetCount(td, uint8(len(td.CameraSets)))
}

// TrackDataWithSetCount writes setCount as camera set count followed by
// all camera sets of td.
func TrackDataWithSetCount(td *model.TrackData, setCount uint8) []byte {
	w := message(model.MTTrackData).
		Int32(td.ConnectionID).MustString(td.TrackName).
		Int32(td.TrackID).Int32(td.TrackLengthM).
		Uint8(setCount)
	for _, set := range td.CameraSets {
		w.MustString(set.Name).Uint8(uint8(len(set.Cameras)))
		for _, c := range set.Cameras {
			w.MustString(c)
		}
	}
	w.Uint8(uint8(len(td.HUDPages)))
	for _, p := range td.HUDPages {
		w.MustString(p)
	}
	return w.Bytes()
}

func BroadcastingEvent(ev *model.BroadcastingEvent) []byte {
	return message(model.MTBroadcastingEvent).
		Uint8(uint8(ev.Type)).MustString(ev.Message).
		Int32(ev.TimeMS).Int32(ev.CarID).
		Bytes()
}

func tenths(v float64) uint8 {
	return uint8(v*10 + 0.5)
}
