package lap

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
)

// Store persists completed laps of one recording session
type Store struct {
	pool      *pgxpool.Pool
	sessionID uuid.UUID
	tracer    trace.Tracer
}

func NewStore(pool *pgxpool.Pool, sessionID uuid.UUID) *Store {
	return &Store{
		pool:      pool,
		sessionID: sessionID,
		tracer:    otel.Tracer("accb.repository.lap"),
	}
}

func (s *Store) StoreLap(ctx context.Context, l *model.CompletedLap) error {
	ctx, span := s.tracer.Start(ctx, "lap.store",
		trace.WithAttributes(
			attribute.Int("car", int(l.CarID)),
			attribute.Int("lap", int(l.LapNo)),
		))
	defer span.End()
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := Create(ctx, tx, s.sessionID, l)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
