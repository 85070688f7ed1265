package util

import (
	"context"
	"errors"
	"os"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/pgx-contrib/pgxtrace"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/config"
	"github.com/mpapenbr/accbroadcast-go/pkg/db/postgres"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	lapProc "github.com/mpapenbr/accbroadcast-go/pkg/processing/lap"
	natsPub "github.com/mpapenbr/accbroadcast-go/pkg/publish/nats"
	"github.com/mpapenbr/accbroadcast-go/pkg/render"
	lapRepo "github.com/mpapenbr/accbroadcast-go/pkg/repository/lap"
	sessionRepo "github.com/mpapenbr/accbroadcast-go/pkg/repository/session"
)

// Sinks are the optional consumers of a session configured by flags
type Sinks struct {
	SessionID string
	pool      *pgxpool.Pool
	tracker   *sessionRepo.Tracker
	collector *lapProc.Collector
	nc        *nats.Conn
}

// SetupSinks attaches the renderer, the database and the NATS publisher
// to the pipeline.
func SetupSinks(ctx context.Context, p *Pipeline, serverAddr string) (*Sinks, error) {
	s := &Sinks{SessionID: uuid.Must(uuid.NewV7()).String()}
	r, err := render.New(config.Output, os.Stdout, log.Default().Named("render"))
	if err != nil {
		return nil, err
	}
	p.Attach(r)

	if config.DB != "" {
		if err := s.setupDB(ctx, p, serverAddr); err != nil {
			s.Close()
			return nil, err
		}
	}
	if config.NatsURL != "" {
		if err := s.setupNats(ctx, p); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Sinks) setupDB(ctx context.Context, p *Pipeline, serverAddr string) error {
	tracer := pgxtrace.CompositeQueryTracer{
		postgres.NewMyTracer(SQLLogger(), log.DebugLevel),
	}
	if config.EnableTelemetry {
		tracer = append(tracer, postgres.NewOtlpTracer())
	}
	pool, err := postgres.InitWithURL(ctx, config.DB, postgres.WithTracer(tracer))
	if err != nil {
		return err
	}
	s.pool = pool
	tracker, err := sessionRepo.StartTracking(ctx, pool, config.DisplayName, serverAddr)
	if err != nil {
		return err
	}
	s.tracker = tracker
	s.SessionID = tracker.ID().String()
	s.collector = lapProc.NewCollector(
		lapProc.WithSink(lapRepo.NewStore(pool, tracker.ID())),
		lapProc.WithContext(ctx),
		lapProc.WithLogger(log.Default().Named("lapcollector")))
	p.Attach(tracker)
	p.Attach(s.collector)
	return nil
}

func (s *Sinks) setupNats(ctx context.Context, p *Pipeline) error {
	nc, err := nats.Connect(config.NatsURL, nats.Name("accb"))
	if err != nil {
		return err
	}
	s.nc = nc
	pub, err := natsPub.New(ctx, nc, s.SessionID,
		natsPub.WithLogger(log.Default().Named("nats")))
	if err != nil {
		return err
	}
	p.AttachFunc(func(ctx context.Context, events <-chan model.Event) error {
		pub.Run(ctx, events)
		return nil
	})
	log.Info("Publishing to NATS",
		log.String("subjects", natsPub.Subject(s.SessionID, "*")))
	return nil
}

// Close finishes the recording session and releases the connections.
// Call it after the pipeline is closed.
func (s *Sinks) Close() error {
	var err error
	if s.collector != nil {
		for _, l := range s.collector.BestLaps() {
			log.Info("best lap",
				log.Uint16("car", l.CarID),
				log.Int32("raceNumber", l.RaceNumber),
				log.String("driver", l.DriverName),
				log.Int32("lapTimeMS", l.Lap.LapTimeMS.GetOrZero()))
		}
	}
	if s.tracker != nil {
		s.tracker.Finish()
	}
	if s.nc != nil {
		err = errors.Join(err, s.nc.Drain())
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
