package util

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/session"
	"github.com/mpapenbr/accbroadcast-go/testsupport/basedata"
)

type collected struct {
	mu    sync.Mutex
	names []string
}

func (c *collected) add(ev model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, ev.EventName())
}

func TestPipelineDeliversToAllConsumers(t *testing.T) {
	p := NewPipeline(context.Background())
	first := &collected{}
	second := &collected{}
	p.Attach(session.EventFunc(first.add))
	p.AttachFunc(func(ctx context.Context, events <-chan model.Event) error {
		session.Consume(ctx, events, session.EventFunc(second.add))
		return nil
	})

	l := p.Listener()
	l.OnTrackData(basedata.SampleTrackData())
	l.OnEntryListCar(basedata.SampleEntryListCar(1))
	l.OnDisconnect()
	require.NoError(t, p.Close())

	want := []string{model.EventTrackData, model.EventEntryListCar, model.EventDisconnect}
	assert.Equal(t, want, first.names)
	assert.Equal(t, want, second.names)
}

func TestPipelineConsumerError(t *testing.T) {
	p := NewPipeline(context.Background())
	p.AttachFunc(func(ctx context.Context, events <-chan model.Event) error {
		<-events
		return assert.AnError
	})
	canceled := make(chan struct{})
	p.AttachFunc(func(ctx context.Context, events <-chan model.Event) error {
		<-ctx.Done()
		close(canceled)
		return nil
	})
	p.Listener().OnDisconnect()

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("other consumers were not canceled")
	}
	assert.ErrorIs(t, p.Close(), assert.AnError)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"WARN", "warn"},
		{"unknown", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseLogLevel(tt.in, 0)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
