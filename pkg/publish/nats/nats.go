// Package nats publishes session events to NATS.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
)

const (
	SubjectPrefix = "accb"
	Bucket        = "accb"
)

type (
	// Conn is the part of a NATS connection used for publishing
	Conn interface {
		Publish(subj string, data []byte) error
	}
	// KeyValue is the part of a JetStream key value store used for snapshots
	KeyValue interface {
		Put(ctx context.Context, key string, value []byte) (uint64, error)
	}

	// Publisher sends each event as JSON to accb.<sessionID>.<eventName>.
	// Track data and entry list are also kept in the key value bucket so
	// late subscribers can catch up.
	Publisher struct {
		conn      Conn
		kv        KeyValue
		sessionID string
		l         *log.Logger
		kvTimeout time.Duration
	}
	Option func(*Publisher)
)

// events stored as snapshot in the key value bucket
var snapshotEvents = map[string]bool{
	model.EventTrackData: true,
	model.EventEntryList: true,
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

// New creates the key value bucket if needed
func New(ctx context.Context, nc *nats.Conn, sessionID string, opts ...Option) (*Publisher, error) {
	kv, err := setupKV(ctx, nc)
	if err != nil {
		return nil, fmt.Errorf("setup key value bucket: %w", err)
	}
	return newPublisher(nc, kv, sessionID, opts...), nil
}

func newPublisher(conn Conn, kv KeyValue, sessionID string, opts ...Option) *Publisher {
	p := &Publisher{
		conn:      conn,
		kv:        kv,
		sessionID: sessionID,
		l:         log.Default().Named("nats"),
		kvTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func setupKV(ctx context.Context, nc *nats.Conn) (jetstream.KeyValue, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: Bucket,
		TTL:    time.Hour * 24,
	})
}

func Subject(sessionID, eventName string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sessionID, eventName)
}

func SnapshotKey(sessionID, eventName string) string {
	return fmt.Sprintf("%s.%s", sessionID, eventName)
}

// Run publishes all events received on events until the channel is closed
// or ctx is done.
func (p *Publisher) Run(ctx context.Context, events <-chan model.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				p.l.Debug("event channel closed")
				return
			}
			if err := p.Publish(ctx, ev); err != nil {
				p.l.Warn("could not publish event",
					log.String("event", ev.EventName()),
					log.ErrorField(err))
			}
		}
	}
}

func (p *Publisher) Publish(ctx context.Context, ev model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventName(), err)
	}
	if err := p.conn.Publish(Subject(p.sessionID, ev.EventName()), data); err != nil {
		return err
	}
	if !snapshotEvents[ev.EventName()] || p.kv == nil {
		return nil
	}
	kvCtx, cancel := context.WithTimeout(ctx, p.kvTimeout)
	defer cancel()
	key := SnapshotKey(p.sessionID, ev.EventName())
	rev, err := p.kv.Put(kvCtx, key, data)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	p.l.Debug("snapshot put",
		log.String("key", key),
		log.Int("dataLen", len(data)),
		log.Uint64("rev", rev))
	return nil
}
