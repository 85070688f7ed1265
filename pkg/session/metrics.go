package session

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/protocol"
	"github.com/mpapenbr/accbroadcast-go/pkg/wire"
)

// reasons for discarded datagrams
const (
	reasonNotConnected = "not_connected"
	reasonUnknownType  = "unknown_type"
	reasonUnderrun     = "underrun"
	reasonEncoding     = "encoding"
	reasonDriverIndex  = "driver_index"
	reasonDecode       = "decode"
)

type metrics struct {
	received  metric.Int64Counter
	discarded metric.Int64Counter
	decoded   metric.Int64Counter
	trailing  metric.Int64Counter
}

func newMetrics(logger *log.Logger) *metrics {
	meter := otel.GetMeterProvider().Meter("accb.session")
	register := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"))
		if err != nil {
			logger.Error("failed to register metric",
				log.String("metric", name),
				log.ErrorField(err))
		}
		return c
	}
	return &metrics{
		received:  register("accb.datagrams.received", "Number of received datagrams"),
		discarded: register("accb.datagrams.discarded", "Number of discarded datagrams"),
		decoded:   register("accb.messages.decoded", "Number of decoded messages"),
		trailing: register("accb.datagrams.trailing",
			"Number of datagrams with bytes after the decoded message"),
	}
}

func (m *metrics) countReceived() {
	if m.received != nil {
		m.received.Add(context.Background(), 1)
	}
}

func (m *metrics) countDiscarded(reason string) {
	if m.discarded != nil {
		m.discarded.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *metrics) countDecoded(msgType string) {
	if m.decoded != nil {
		m.decoded.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("type", msgType)))
	}
}

func (m *metrics) countTrailing(msgType string) {
	if m.trailing != nil {
		m.trailing.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("type", msgType)))
	}
}

func discardReason(err error) string {
	var typeErr *protocol.UnknownMessageTypeError
	switch {
	case errors.As(err, &typeErr):
		return reasonUnknownType
	case errors.Is(err, wire.ErrUnderrun):
		return reasonUnderrun
	case errors.Is(err, wire.ErrEncoding):
		return reasonEncoding
	case errors.Is(err, protocol.ErrDriverIndexOutOfRange):
		return reasonDriverIndex
	default:
		return reasonDecode
	}
}
