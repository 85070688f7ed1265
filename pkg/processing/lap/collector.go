// Package lap detects completed laps in car updates.
package lap

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/session"
)

type (
	// Sink receives every completed lap
	Sink interface {
		StoreLap(ctx context.Context, l *model.CompletedLap) error
	}
	SinkFunc func(ctx context.Context, l *model.CompletedLap) error

	// Collector is a session listener. A lap is completed when the lap
	// counter of a car increases, the first update of a car only sets
	// the counter.
	Collector struct {
		session.EmptyListener
		mu     sync.Mutex
		ctx    context.Context
		sink   Sink
		logger *log.Logger
		now    func() time.Time
		cars   map[uint16]*model.EntryListCar
		laps   map[uint16]uint16
		best   map[uint16]*model.CompletedLap
	}
	Option func(*Collector)
)

var _ session.Listener = (*Collector)(nil)

func (f SinkFunc) StoreLap(ctx context.Context, l *model.CompletedLap) error {
	return f(ctx, l)
}

func WithSink(s Sink) Option {
	return func(c *Collector) {
		c.sink = s
	}
}

func WithContext(ctx context.Context) Option {
	return func(c *Collector) {
		c.ctx = ctx
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Collector) {
		c.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		ctx:    context.Background(),
		logger: log.Default().Named("lapcollector"),
		now:    time.Now,
		cars:   map[uint16]*model.EntryListCar{},
		laps:   map[uint16]uint16{},
		best:   map[uint16]*model.CompletedLap{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnEntryList drops the details of cars no longer part of the session
func (c *Collector) OnEntryList(cars model.CarMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.cars {
		if _, ok := cars[id]; !ok {
			delete(c.cars, id)
			delete(c.laps, id)
		}
	}
}

func (c *Collector) OnEntryListCar(car *model.EntryListCar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars[car.CarID] = car
}

func (c *Collector) OnRealTimeCarUpdate(u *model.RealTimeCarUpdate) {
	completed := c.process(u)
	if completed == nil || c.sink == nil {
		return
	}
	if err := c.sink.StoreLap(c.ctx, completed); err != nil {
		c.logger.Error("could not store lap",
			log.Uint16("car", completed.CarID),
			log.Uint16("lap", completed.LapNo),
			log.ErrorField(err))
	}
}

// OnDisconnect resets the lap counters, best laps are kept
func (c *Collector) OnDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.laps)
}

func (c *Collector) process(u *model.RealTimeCarUpdate) *model.CompletedLap {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, seen := c.laps[u.CarIndex]
	c.laps[u.CarIndex] = u.Laps
	if !seen || u.Laps <= prev {
		return nil
	}
	completed := &model.CompletedLap{
		CarID:      u.CarIndex,
		LapNo:      u.Laps,
		Lap:        u.LastLap,
		RecordedAt: c.now(),
	}
	if car, ok := c.cars[u.CarIndex]; ok {
		completed.RaceNumber = car.RaceNumber
		completed.TeamName = car.TeamName
		completed.DriverName = driverName(car, u.LastLap.DriverIndex)
	}
	if isValid(&completed.Lap) {
		if best, ok := c.best[u.CarIndex]; !ok ||
			completed.Lap.LapTimeMS.GetOrZero() < best.Lap.LapTimeMS.GetOrZero() {
			c.best[u.CarIndex] = completed
		}
	}
	c.logger.Debug("lap completed",
		log.Uint16("car", completed.CarID),
		log.Uint16("lap", completed.LapNo),
		log.Any("time", completed.Lap.LapTimeMS))
	return completed
}

// BestLaps returns the best valid lap of each car, fastest first
func (c *Collector) BestLaps() []*model.CompletedLap {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := lo.Values(c.best)
	slices.SortFunc(ret, func(a, b *model.CompletedLap) int {
		return cmp.Or(
			cmp.Compare(a.Lap.LapTimeMS.GetOrZero(), b.Lap.LapTimeMS.GetOrZero()),
			cmp.Compare(a.CarID, b.CarID))
	})
	return ret
}

func isValid(l *model.Lap) bool {
	return l.HasTime() && !l.IsInvalid && l.IsValidForBest
}

// driverName prefers the driver of the lap over the current driver of the car
func driverName(car *model.EntryListCar, driverIndex uint16) string {
	if int(driverIndex) < len(car.Drivers) {
		return car.Drivers[driverIndex].FullName()
	}
	if car.CurrentDriver != nil {
		return car.CurrentDriver.FullName()
	}
	return ""
}
