package session

import (
	"context"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
)

type (
	// Listener receives the events of a controller.
	// Methods are called on the goroutine that handed the datagram to the
	// controller (or called Disconnect) and should return quickly.
	Listener interface {
		OnRegistrationResult(res *model.RegistrationResult)
		OnRealTimeUpdate(u *model.RealTimeUpdate)
		OnRealTimeCarUpdate(u *model.RealTimeCarUpdate)
		// OnEntryList receives a snapshot of the registry after an entry list
		// replaced it. All cars are placeholders at this point.
		OnEntryList(cars model.CarMap)
		OnTrackData(td *model.TrackData)
		OnEntryListCar(car *model.EntryListCar)
		OnBroadcastingEvent(ev *model.BroadcastingEvent)
		OnDisconnect()
	}

	// EmptyListener may be embedded by listeners interested in some events only
	EmptyListener struct{}

	// MultiListener forwards every event to all members in order
	MultiListener []Listener

	// ChannelListener publishes every event on a channel.
	// Sends block until the event is received.
	ChannelListener struct {
		ch chan<- model.Event
	}

	// EventFunc adapts a function to the Listener interface
	EventFunc func(ev model.Event)
)

var (
	_ Listener = EmptyListener{}
	_ Listener = MultiListener{}
	_ Listener = (*ChannelListener)(nil)
	_ Listener = EventFunc(nil)
)

// Dispatch calls the listener method matching ev
func Dispatch(ev model.Event, l Listener) {
	switch e := ev.(type) {
	case *model.RegistrationResult:
		l.OnRegistrationResult(e)
	case *model.RealTimeUpdate:
		l.OnRealTimeUpdate(e)
	case *model.RealTimeCarUpdate:
		l.OnRealTimeCarUpdate(e)
	case model.CarMap:
		l.OnEntryList(e)
	case *model.TrackData:
		l.OnTrackData(e)
	case *model.EntryListCar:
		l.OnEntryListCar(e)
	case *model.BroadcastingEvent:
		l.OnBroadcastingEvent(e)
	case *model.Disconnect:
		l.OnDisconnect()
	}
}

// Consume dispatches the events received on events to l until the channel
// is closed or ctx is done.
func Consume(ctx context.Context, events <-chan model.Event, l Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			Dispatch(ev, l)
		}
	}
}

func (EmptyListener) OnRegistrationResult(*model.RegistrationResult) {}
func (EmptyListener) OnRealTimeUpdate(*model.RealTimeUpdate)         {}
func (EmptyListener) OnRealTimeCarUpdate(*model.RealTimeCarUpdate)   {}
func (EmptyListener) OnEntryList(model.CarMap)                       {}
func (EmptyListener) OnTrackData(*model.TrackData)                   {}
func (EmptyListener) OnEntryListCar(*model.EntryListCar)             {}
func (EmptyListener) OnBroadcastingEvent(*model.BroadcastingEvent)   {}
func (EmptyListener) OnDisconnect()                                  {}

func (m MultiListener) OnRegistrationResult(res *model.RegistrationResult) {
	m.each(res)
}

func (m MultiListener) OnRealTimeUpdate(u *model.RealTimeUpdate) {
	m.each(u)
}

func (m MultiListener) OnRealTimeCarUpdate(u *model.RealTimeCarUpdate) {
	m.each(u)
}

func (m MultiListener) OnEntryList(cars model.CarMap) {
	m.each(cars)
}

func (m MultiListener) OnTrackData(td *model.TrackData) {
	m.each(td)
}

func (m MultiListener) OnEntryListCar(car *model.EntryListCar) {
	m.each(car)
}

func (m MultiListener) OnBroadcastingEvent(ev *model.BroadcastingEvent) {
	m.each(ev)
}

func (m MultiListener) OnDisconnect() {
	m.each(&model.Disconnect{})
}

func (m MultiListener) each(ev model.Event) {
	for _, l := range m {
		Dispatch(ev, l)
	}
}

func NewChannelListener(ch chan<- model.Event) *ChannelListener {
	return &ChannelListener{ch: ch}
}

func (c *ChannelListener) OnRegistrationResult(res *model.RegistrationResult) {
	c.ch <- res
}

func (c *ChannelListener) OnRealTimeUpdate(u *model.RealTimeUpdate) {
	c.ch <- u
}

func (c *ChannelListener) OnRealTimeCarUpdate(u *model.RealTimeCarUpdate) {
	c.ch <- u
}

func (c *ChannelListener) OnEntryList(cars model.CarMap) {
	c.ch <- cars
}

func (c *ChannelListener) OnTrackData(td *model.TrackData) {
	c.ch <- td
}

func (c *ChannelListener) OnEntryListCar(car *model.EntryListCar) {
	c.ch <- car
}

func (c *ChannelListener) OnBroadcastingEvent(ev *model.BroadcastingEvent) {
	c.ch <- ev
}

func (c *ChannelListener) OnDisconnect() {
	c.ch <- &model.Disconnect{}
}

func (f EventFunc) OnRegistrationResult(res *model.RegistrationResult) { f(res) }
func (f EventFunc) OnRealTimeUpdate(u *model.RealTimeUpdate)           { f(u) }
func (f EventFunc) OnRealTimeCarUpdate(u *model.RealTimeCarUpdate)     { f(u) }
func (f EventFunc) OnEntryList(cars model.CarMap)                      { f(cars) }
func (f EventFunc) OnTrackData(td *model.TrackData)                    { f(td) }
func (f EventFunc) OnEntryListCar(car *model.EntryListCar)             { f(car) }
func (f EventFunc) OnBroadcastingEvent(ev *model.BroadcastingEvent)    { f(ev) }
func (f EventFunc) OnDisconnect()                                      { f(&model.Disconnect{}) }
