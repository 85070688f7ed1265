// Package broadcast distributes the values of a source channel to subscribers.
package broadcast

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/accbroadcast-go/log"
)

// see https://betterprogramming.pub/how-to-broadcast-messages-in-go-using-channels-b68f42bdf32e

type (
	Server[T any] interface {
		// Subscribe returns a channel receiving all values sent to the source
		// after the subscription. The channel is closed by CancelSubscription,
		// Close or when the source is closed.
		Subscribe() <-chan T
		CancelSubscription(<-chan T)
		Close()
	}

	Option[T any] func(*server[T])

	server[T any] struct {
		name           string
		source         <-chan T
		listeners      []chan T
		addListener    chan chan T
		removeListener chan (<-chan T)
		ctx            context.Context
		cancel         context.CancelFunc
		done           chan struct{}
		sendTimeout    time.Duration
		bufferSize     int
		logger         *log.Logger
		numRcv         atomic.Int64
		numSnd         atomic.Int64
		numSkip        atomic.Int64
		numListeners   atomic.Int64
	}
)

// WithSendTimeout sets how long a slow subscriber may block a value
// before it is skipped for this subscriber. Default is 50ms.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(s *server[T]) {
		s.sendTimeout = d
	}
}

// WithBufferSize sets the capacity of subscriber channels
func WithBufferSize[T any](n int) Option[T] {
	return func(s *server[T]) {
		s.bufferSize = n
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(s *server[T]) {
		s.logger = l
	}
}

func NewServer[T any](name string, source <-chan T, opts ...Option[T]) Server[T] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &server[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		sendTimeout:    50 * time.Millisecond,
		logger:         log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMetrics()
	go s.serve()
	return s
}

func (s *server[T]) Subscribe() <-chan T {
	ch := make(chan T, s.bufferSize)
	select {
	case s.addListener <- ch:
	case <-s.done:
		close(ch)
	}
	return ch
}

func (s *server[T]) CancelSubscription(ch <-chan T) {
	select {
	case s.removeListener <- ch:
	case <-s.done:
	}
}

// Close stops the server and closes all subscriber channels
func (s *server[T]) Close() {
	s.cancel()
	<-s.done
	s.logger.Info("Broadcast server closed",
		log.String("name", s.name),
		log.Int64("rcv", s.numRcv.Load()),
		log.Int64("snd", s.numSnd.Load()),
		log.Int64("skip", s.numSkip.Load()))
}

func (s *server[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter(fmt.Sprintf("accb.broadcast.%s", s.name))
	register := func(metricName, desc string, value *atomic.Int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value.Load(),
					metric.WithAttributes(attribute.String("name", s.name)))
				return nil
			})); err != nil {
			s.logger.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("accb.broadcast.rcv", "Number of received messages", &s.numRcv)
	register("accb.broadcast.snd", "Number of sent messages", &s.numSnd)
	register("accb.broadcast.skip", "Number of skipped messages", &s.numSkip)
	register("accb.broadcast.listener", "Number of listeners", &s.numListeners)
}

func (s *server[T]) serve() {
	defer func() {
		for _, listener := range s.listeners {
			close(listener)
		}
		s.listeners = nil
		s.numListeners.Store(0)
		close(s.done)
	}()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ch := <-s.addListener:
			s.listeners = append(s.listeners, ch)
			s.numListeners.Store(int64(len(s.listeners)))
		case ch := <-s.removeListener:
			for i, listener := range s.listeners {
				if listener == ch {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					close(listener)
					break
				}
			}
			s.numListeners.Store(int64(len(s.listeners)))
		case msg, ok := <-s.source:
			if !ok {
				s.logger.Debug("source closed", log.String("name", s.name))
				return
			}
			s.numRcv.Add(1)
			s.deliver(msg)
		}
	}
}

func (s *server[T]) deliver(msg T) {
	for _, listener := range s.listeners {
		select {
		case listener <- msg:
			s.numSnd.Add(1)
		case <-time.After(s.sendTimeout):
			s.numSkip.Add(1)
			s.logger.Debug("skipping slow listener", log.String("name", s.name))
		}
	}
}
