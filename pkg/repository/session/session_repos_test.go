//nolint:dupl,funlen,errcheck //ok for this test code
package session

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/testsupport/basedata"
	"github.com/mpapenbr/accbroadcast-go/testsupport/testdb"
)

func sampleSession() *model.RecordingSession {
	return &model.RecordingSession{
		ID:          uuid.Must(uuid.NewV7()),
		DisplayName: "test",
		ServerAddr:  "127.0.0.1:9000",
		StartedAt:   basedata.TestTime(),
	}
}

func createSampleEntry(db *pgxpool.Pool) *model.RecordingSession {
	s := sampleSession()
	err := pgx.BeginFunc(context.Background(), db, func(tx pgx.Tx) error {
		return Create(context.Background(), tx, s)
	})
	if err != nil {
		log.Fatalf("createSampleEntry: %v\n", err)
	}
	return s
}

func TestCreateAndLoad(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	s := createSampleEntry(pool)

	got, err := LoadByID(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.ID, s.ID)
	assert.Equal(t, got.DisplayName, "test")
	assert.Assert(t, got.StartedAt.Equal(s.StartedAt))
	assert.Assert(t, got.ConnectionID.IsNull())
	assert.Assert(t, got.TrackName.IsNull())
	assert.Assert(t, got.EndedAt.IsNull())

	err = Create(ctx, pool, s)
	assert.Assert(t, err != nil, "duplicate id must fail")
}

func TestUpdates(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	s := createSampleEntry(pool)

	n, err := UpdateConnection(ctx, pool, s.ID, 42)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	n, err = UpdateTrack(ctx, pool, s.ID, basedata.SampleTrackData())
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	end := s.StartedAt.Add(time.Hour)
	n, err = Finish(ctx, pool, s.ID, end)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
	n, err = Finish(ctx, pool, s.ID, end.Add(time.Hour))
	assert.NilError(t, err)
	assert.Equal(t, n, 0, "finished sessions stay unchanged")

	got, err := LoadByID(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.ConnectionID, null.From(int32(42)))
	assert.Equal(t, got.TrackName, null.From("Spa-Francorchamps"))
	assert.Equal(t, got.TrackID, null.From(int32(11)))
	assert.Equal(t, got.TrackLengthM, null.From(int32(7004)))
	assert.Assert(t, got.EndedAt.GetOrZero().Equal(end))
}

func TestLoadLatestAndDelete(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	first := createSampleEntry(pool)
	second := sampleSession()
	second.StartedAt = first.StartedAt.Add(time.Minute)
	assert.NilError(t, Create(ctx, pool, second))

	got, err := LoadLatest(ctx, pool, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].ID, second.ID)
	assert.Equal(t, got[1].ID, first.ID)

	n, err := DeleteByID(ctx, pool, first.ID)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
	_, err = LoadByID(ctx, pool, first.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
