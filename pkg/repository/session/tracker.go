package session

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/repository"
	sess "github.com/mpapenbr/accbroadcast-go/pkg/session"
)

// Tracker keeps the recording session row in sync with the connection.
// Failures are logged, the connection is not affected.
type Tracker struct {
	sess.EmptyListener
	ctx  context.Context
	conn repository.Querier
	id   uuid.UUID
	now  func() time.Time
	l    *log.Logger
}

var _ sess.Listener = (*Tracker)(nil)

// StartTracking creates the recording session row and returns a listener
// updating it.
func StartTracking(
	ctx context.Context,
	conn repository.Querier,
	displayName, serverAddr string,
) (*Tracker, error) {
	t := &Tracker{
		ctx:  ctx,
		conn: conn,
		id:   uuid.Must(uuid.NewV7()),
		now:  time.Now,
		l:    log.Default().Named("tracker"),
	}
	err := Create(ctx, conn, &model.RecordingSession{
		ID:          t.id,
		DisplayName: displayName,
		ServerAddr:  serverAddr,
		StartedAt:   t.now(),
	})
	if err != nil {
		return nil, err
	}
	t.l.Info("recording session created", log.String("id", t.id.String()))
	return t, nil
}

func (t *Tracker) ID() uuid.UUID {
	return t.id
}

func (t *Tracker) OnRegistrationResult(res *model.RegistrationResult) {
	if !res.ConnectionSuccess {
		return
	}
	if _, err := UpdateConnection(t.ctx, t.conn, t.id, res.ConnectionID); err != nil {
		t.l.Warn("could not store connection id", log.ErrorField(err))
	}
}

func (t *Tracker) OnTrackData(td *model.TrackData) {
	if _, err := UpdateTrack(t.ctx, t.conn, t.id, td); err != nil {
		t.l.Warn("could not store track", log.ErrorField(err))
	}
}

func (t *Tracker) OnDisconnect() {
	t.Finish()
}

// Finish sets the end time of the session if not already done
func (t *Tracker) Finish() {
	// the tracker context may already be canceled during shutdown
	ctx, cancel := context.WithTimeout(context.WithoutCancel(t.ctx), 5*time.Second)
	defer cancel()
	if _, err := Finish(ctx, t.conn, t.id, t.now()); err != nil {
		t.l.Warn("could not finish session", log.ErrorField(err))
	}
}
