// Package session implements the client side of a broadcasting connection.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/protocol"
	"github.com/mpapenbr/accbroadcast-go/pkg/registry"
)

type (
	// Sender delivers a datagram to the server. Delivery is not guaranteed.
	Sender interface {
		Send(data []byte) error
	}
	SenderFunc func(data []byte) error

	State int

	Option func(*Controller)

	// Controller runs the registration state machine and keeps the car
	// registry of the connection up to date.
	// It is safe to call from multiple goroutines. Listeners are called
	// without holding the internal lock.
	Controller struct {
		mu           sync.Mutex
		sender       Sender
		params       protocol.ConnectionParams
		listener     Listener
		logger       *log.Logger
		state        State
		connectionID int32
		cars         *registry.Registry
		refresh      time.Duration
		lastRefresh  time.Time
		now          func() time.Time
		metrics      *metrics
	}
)

const (
	Disconnected State = iota
	AwaitingRegistration
	ConnectedReadWrite
	ConnectedReadOnly
)

// DiscardSender drops all datagrams
var DiscardSender Sender = SenderFunc(func([]byte) error { return nil })

func (f SenderFunc) Send(data []byte) error {
	return f(data)
}

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case AwaitingRegistration:
		return "AwaitingRegistration"
	case ConnectedReadWrite:
		return "ConnectedReadWrite"
	case ConnectedReadOnly:
		return "ConnectedReadOnly"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsConnected reports whether a registration was accepted
func (s State) IsConnected() bool {
	return s == ConnectedReadWrite || s == ConnectedReadOnly
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithListener adds a listener. Listeners are called in the order they were added.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		switch cur := c.listener.(type) {
		case nil:
			c.listener = l
		case MultiListener:
			c.listener = append(cur, l)
		default:
			c.listener = MultiListener{cur, l}
		}
	}
}

// WithEntryListRefresh requests the entry list again if a car update refers
// to an unknown car. Requests are sent at most once per d, 0 disables it.
func WithEntryListRefresh(d time.Duration) Option {
	return func(c *Controller) {
		c.refresh = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func New(sender Sender, params protocol.ConnectionParams, opts ...Option) *Controller {
	c := &Controller{
		sender: sender,
		params: params,
		logger: log.Default().Named("session"),
		state:  Disconnected,
		cars:   registry.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.listener == nil {
		c.listener = EmptyListener{}
	}
	c.metrics = newMetrics(c.logger)
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ConnectionID returns the id assigned by the server, 0 if not connected
func (c *Controller) ConnectionID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectionID
}

// Cars returns a snapshot of the car registry
func (c *Controller) Cars() model.CarMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cars.Snapshot()
}

// Connect sends the registration request.
// Only valid while disconnected.
func (c *Controller) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Disconnected {
		return c.usageError("connect", ErrAlreadyConnected)
	}
	data, err := protocol.RegisterConnection(c.params)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	if err := c.sender.Send(data); err != nil {
		return fmt.Errorf("send registration: %w", err)
	}
	c.state = AwaitingRegistration
	c.logger.Info("Registration sent",
		log.String("displayName", c.params.DisplayName),
		log.Uint("updateInterval", uint(c.params.UpdateIntervalMS)))
	return nil
}

// Disconnect deregisters from the server and emits the disconnect event.
// Valid while connected or awaiting the registration result, the server may
// have registered the client even if the result got lost.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	if c.state == Disconnected {
		err := c.usageError("disconnect", ErrNotConnected)
		c.mu.Unlock()
		return err
	}
	if err := c.sender.Send(protocol.DeregisterConnection()); err != nil {
		c.logger.Warn("could not send deregistration", log.ErrorField(err))
	}
	c.logger.Info("Disconnected", log.Int32("connectionId", c.connectionID))
	c.state = Disconnected
	c.connectionID = 0
	c.cars.Reset(nil)
	c.mu.Unlock()

	c.listener.OnDisconnect()
	return nil
}

// RequestEntryList asks the server for the entry list of the session.
func (c *Controller) RequestEntryList() error {
	return c.command("requestEntryList", false, func(id int32) ([]byte, error) {
		return protocol.RequestEntryList(id), nil
	})
}

func (c *Controller) RequestTrackData() error {
	return c.command("requestTrackData", false, func(id int32) ([]byte, error) {
		return protocol.RequestTrackData(id), nil
	})
}

// SetHUDPage switches the HUD page shown by the game.
// Requires a read-write connection.
func (c *Controller) SetHUDPage(page string) error {
	return c.command("setHUDPage", true, func(id int32) ([]byte, error) {
		return protocol.ChangeHUDPage(id, page)
	})
}

// SetFocus changes the focused car and/or camera.
// Requires a read-write connection.
func (c *Controller) SetFocus(target protocol.FocusTarget) error {
	return c.command("setFocus", true, func(id int32) ([]byte, error) {
		return protocol.ChangeFocus(id, target)
	})
}

// RequestInstantReplay starts a replay in the game.
// Requires a read-write connection.
func (c *Controller) RequestInstantReplay(req protocol.InstantReplay) error {
	return c.command("requestInstantReplay", true, func(id int32) ([]byte, error) {
		return protocol.RequestInstantReplay(id, req)
	})
}

func (c *Controller) command(
	op string,
	needsWrite bool,
	encode func(connectionID int32) ([]byte, error),
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsConnected() {
		return c.usageError(op, ErrNotConnected)
	}
	if needsWrite && c.state != ConnectedReadWrite {
		return c.usageError(op, ErrReadOnly)
	}
	data, err := encode(c.connectionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.sender.Send(data)
}

// HandleDatagram decodes a datagram sent by the server, updates the
// session state and emits the resulting event.
// Errors are logged and only affect this datagram.
func (c *Controller) HandleDatagram(data []byte) error {
	c.metrics.countReceived()
	ev, msgType, err := c.process(data)
	if err != nil {
		reason := discardReason(err)
		c.metrics.countDiscarded(reason)
		c.logger.Warn("discarding datagram",
			log.String("reason", reason),
			log.Int("size", len(data)),
			log.ErrorField(err))
		return err
	}
	if ev == nil {
		c.metrics.countDiscarded(reasonNotConnected)
		c.logger.Debug("ignoring datagram while disconnected", log.String("type", msgType))
		return nil
	}
	c.metrics.countDecoded(msgType)
	Dispatch(ev, c.listener)
	return nil
}

// process holds the lock while the registry and state are modified.
// A nil event without error means the datagram was ignored.
func (c *Controller) process(data []byte) (ev model.Event, msgType string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disconnected {
		if len(data) > 0 {
			msgType = model.MessageType(data[0]).String()
		}
		return nil, msgType, nil
	}
	msg, trailing, err := protocol.DecodeWithTrailing(data, c.cars)
	if err != nil {
		return nil, "", err
	}
	msgType = msg.MessageType().String()
	if trailing > 0 {
		c.metrics.countTrailing(msgType)
		c.logger.Debug("trailing bytes after message",
			log.String("type", msgType),
			log.Int("trailing", trailing),
			log.Int("size", len(data)))
	}
	switch m := msg.(type) {
	case *model.RegistrationResult:
		c.handleRegistration(m)
		return m, msgType, nil
	case *model.EntryList:
		c.cars.Reset(m.CarIDs)
		c.logger.Debug("entry list received", log.Int("cars", len(m.CarIDs)))
		return c.cars.Snapshot(), msgType, nil
	case *model.RealTimeCarUpdate:
		c.checkUnknownCar(m.CarIndex)
		return m, msgType, nil
	case *model.RealTimeUpdate:
		return m, msgType, nil
	case *model.TrackData:
		return m, msgType, nil
	case *model.EntryListCar:
		return m, msgType, nil
	case *model.BroadcastingEvent:
		return m, msgType, nil
	}
	return nil, "", fmt.Errorf("no event for message type %s", msgType)
}

func (c *Controller) handleRegistration(res *model.RegistrationResult) {
	if c.state != AwaitingRegistration {
		c.logger.Warn("unexpected registration result",
			log.String("state", c.state.String()),
			log.Int32("connectionId", res.ConnectionID))
		return
	}
	if !res.ConnectionSuccess {
		c.logger.Error("registration rejected",
			log.String("reason", res.ErrorMessage))
		c.state = Disconnected
		return
	}
	c.connectionID = res.ConnectionID
	if res.IsReadOnly {
		c.state = ConnectedReadOnly
		c.logger.Info("Connected read only", log.Int32("connectionId", res.ConnectionID))
		return
	}
	c.state = ConnectedReadWrite
	c.logger.Info("Connected", log.Int32("connectionId", res.ConnectionID))
	c.send(protocol.RequestTrackData(c.connectionID))
	c.send(protocol.RequestEntryList(c.connectionID))
	c.lastRefresh = c.now()
}

func (c *Controller) checkUnknownCar(carIndex uint16) {
	if c.refresh <= 0 || c.state != ConnectedReadWrite || c.cars.Contains(carIndex) {
		return
	}
	now := c.now()
	if now.Sub(c.lastRefresh) < c.refresh {
		return
	}
	c.logger.Debug("unknown car, requesting entry list", log.Uint16("carIndex", carIndex))
	c.lastRefresh = now
	c.send(protocol.RequestEntryList(c.connectionID))
}

func (c *Controller) send(data []byte) {
	if err := c.sender.Send(data); err != nil {
		c.logger.Warn("send failed",
			log.String("command", model.CommandType(data[0]).String()),
			log.ErrorField(err))
	}
}

func (c *Controller) usageError(op string, err error) error {
	ret := &UsageError{Op: op, State: c.state, Err: err}
	c.logger.Warn("invalid operation", log.ErrorField(ret))
	return ret
}
