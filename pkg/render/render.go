// Package render prints session events for the listen and replay commands.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/session"
)

const (
	OutputLog  = "log"
	OutputJSON = "json"
	OutputNone = "none"
)

// New returns the listener for the output format
func New(output string, w io.Writer, l *log.Logger) (session.Listener, error) {
	switch output {
	case OutputLog:
		return NewLogRenderer(l), nil
	case OutputJSON:
		return NewJSONRenderer(w), nil
	case OutputNone, "":
		return session.EmptyListener{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", output)
	}
}

// LogRenderer writes a summary of each event to the logger.
// Realtime updates are logged on debug level.
type LogRenderer struct {
	l *log.Logger
}

var _ session.Listener = (*LogRenderer)(nil)

func NewLogRenderer(l *log.Logger) *LogRenderer {
	return &LogRenderer{l: l}
}

func (r *LogRenderer) OnRegistrationResult(res *model.RegistrationResult) {
	if !res.ConnectionSuccess {
		r.l.Warn("registration rejected", log.String("reason", res.ErrorMessage))
		return
	}
	r.l.Info("registered",
		log.Int32("connectionId", res.ConnectionID),
		log.Bool("readOnly", res.IsReadOnly))
}

func (r *LogRenderer) OnRealTimeUpdate(u *model.RealTimeUpdate) {
	r.l.Debug("session update",
		log.String("session", u.SessionType.String()),
		log.String("phase", u.Phase.String()),
		log.Float32("sessionTime", u.SessionTime),
		log.Int32("focusedCar", u.FocusedCarIndex),
		log.Uint8("trackTemp", u.TrackTemp))
}

func (r *LogRenderer) OnRealTimeCarUpdate(u *model.RealTimeCarUpdate) {
	r.l.Debug("car update",
		log.Uint16("car", u.CarIndex),
		log.Uint16("position", u.Position),
		log.Uint16("laps", u.Laps),
		log.Uint16("speed", u.SpeedKMH),
		log.String("location", u.CarLocation.String()))
}

func (r *LogRenderer) OnEntryList(cars model.CarMap) {
	r.l.Info("entry list", log.Int("cars", len(cars)))
}

func (r *LogRenderer) OnTrackData(td *model.TrackData) {
	r.l.Info("track",
		log.String("name", td.TrackName),
		log.Int32("id", td.TrackID),
		log.Int32("lengthM", td.TrackLengthM),
		log.Int("cameraSets", len(td.CameraSets)),
		log.Strings("hudPages", td.HUDPages))
}

func (r *LogRenderer) OnEntryListCar(car *model.EntryListCar) {
	fields := []log.Field{
		log.Uint16("car", car.CarID),
		log.Int32("raceNumber", car.RaceNumber),
		log.String("team", car.TeamName),
	}
	if car.CurrentDriver != nil {
		fields = append(fields, log.String("driver",
			car.CurrentDriver.FirstName+" "+car.CurrentDriver.LastName))
	}
	r.l.Info("car", fields...)
}

func (r *LogRenderer) OnBroadcastingEvent(ev *model.BroadcastingEvent) {
	fields := []log.Field{
		log.String("type", ev.Type.String()),
		log.String("message", ev.Message),
		log.Int32("timeMS", ev.TimeMS),
		log.Int32("carId", ev.CarID),
	}
	if ev.Car != nil {
		fields = append(fields, log.Int32("raceNumber", ev.Car.RaceNumber))
	}
	r.l.Info("broadcasting event", fields...)
}

func (r *LogRenderer) OnDisconnect() {
	r.l.Info("disconnected")
}

type jsonLine struct {
	Event string      `json:"event"`
	Data  model.Event `json:"data"`
}

// JSONRenderer writes one JSON object per event
type JSONRenderer struct {
	session.EventFunc
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	r := &JSONRenderer{enc: json.NewEncoder(w)}
	r.EventFunc = r.write
	return r
}

func (r *JSONRenderer) write(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(jsonLine{Event: ev.EventName(), Data: ev}); err != nil {
		log.Default().Named("render").Warn("could not encode event",
			log.String("event", ev.EventName()),
			log.ErrorField(err))
	}
}
