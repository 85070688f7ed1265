package util

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/session"
	"github.com/mpapenbr/accbroadcast-go/pkg/utils/broadcast"
)

// Pipeline distributes the events of a controller to consumers running in
// their own goroutines.
type Pipeline struct {
	events chan model.Event
	server broadcast.Server[model.Event]
	g      *errgroup.Group
	ctx    context.Context
}

// NewPipeline creates the pipeline. Consumers stop when ctx is done or after
// Close delivered all pending events.
func NewPipeline(ctx context.Context) *Pipeline {
	events := make(chan model.Event)
	g, gctx := errgroup.WithContext(ctx)
	return &Pipeline{
		events: events,
		server: broadcast.NewServer[model.Event]("events", events,
			broadcast.WithBufferSize[model.Event](1000),
			broadcast.WithSendTimeout[model.Event](time.Second),
			broadcast.WithLogger[model.Event](log.Default().Named("broadcast"))),
		g:   g,
		ctx: gctx,
	}
}

// Listener is the controller side of the pipeline
func (p *Pipeline) Listener() session.Listener {
	return session.NewChannelListener(p.events)
}

// Attach dispatches all events to l
func (p *Pipeline) Attach(l session.Listener) {
	ch := p.server.Subscribe()
	p.g.Go(func() error {
		session.Consume(p.ctx, ch, l)
		return nil
	})
}

// AttachFunc runs fn with a new subscription
func (p *Pipeline) AttachFunc(fn func(ctx context.Context, events <-chan model.Event) error) {
	ch := p.server.Subscribe()
	p.g.Go(func() error {
		return fn(p.ctx, ch)
	})
}

// Close must be called after the controller stopped emitting events.
// It waits for the consumers to process the pending events.
func (p *Pipeline) Close() error {
	close(p.events)
	err := p.g.Wait()
	p.server.Close()
	return err
}
