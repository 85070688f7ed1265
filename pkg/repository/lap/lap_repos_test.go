//nolint:dupl,funlen,errcheck //ok for this test code
package lap

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/repository/session"
	"github.com/mpapenbr/accbroadcast-go/testsupport/basedata"
	"github.com/mpapenbr/accbroadcast-go/testsupport/testdb"
)

func createSession(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.Must(uuid.NewV7())
	assert.NilError(t, session.Create(context.Background(), pool, &model.RecordingSession{
		ID:          id,
		DisplayName: "test",
		ServerAddr:  "127.0.0.1:9000",
		StartedAt:   basedata.TestTime(),
	}))
	return id
}

func sampleLap(carID, lapNo uint16, lapTime int32, valid bool) *model.CompletedLap {
	l := basedata.SampleLap()
	l.CarIndex = carID
	l.LapTimeMS = null.From(lapTime)
	l.IsValidForBest = valid
	l.IsInvalid = !valid
	return &model.CompletedLap{
		CarID:      carID,
		RaceNumber: int32(carID) + 100,
		TeamName:   "Team Sample",
		DriverName: "Anna Racer",
		LapNo:      lapNo,
		Lap:        l,
		RecordedAt: basedata.TestTime().Add(time.Duration(lapNo) * time.Minute),
	}
}

func ptrs(splits []null.Val[int32]) []*int32 {
	return lo.Map(splits, func(s null.Val[int32], _ int) *int32 { return s.Ptr() })
}

func TestCreateAndLoad(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sessionID := createSession(t, pool)

	in := sampleLap(7, 1, 98765, true)
	n, err := Create(ctx, pool, sessionID, in)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	n, err = Create(ctx, pool, sessionID, in)
	assert.NilError(t, err)
	assert.Equal(t, n, 0, "duplicate lap is ignored")

	got, err := LoadBySession(ctx, pool, sessionID)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].CarID, uint16(7))
	assert.Equal(t, got[0].LapNo, uint16(1))
	assert.Equal(t, got[0].Lap.LapTimeMS, null.From(int32(98765)))
	assert.DeepEqual(t, ptrs(got[0].Lap.Splits), ptrs(in.Lap.Splits))
	assert.Assert(t, got[0].RecordedAt.Equal(in.RecordedAt))
}

func TestLapWithoutTime(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sessionID := createSession(t, pool)

	in := sampleLap(3, 1, 0, false)
	in.Lap.LapTimeMS = null.Val[int32]{}
	in.Lap.Splits = []null.Val[int32]{}
	_, err := Create(ctx, pool, sessionID, in)
	assert.NilError(t, err)

	got, err := LoadBySession(ctx, pool, sessionID)
	assert.NilError(t, err)
	assert.Assert(t, got[0].Lap.LapTimeMS.IsNull())
	assert.Equal(t, len(got[0].Lap.Splits), 0)
}

func TestLoadBestLaps(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sessionID := createSession(t, pool)

	for _, l := range []*model.CompletedLap{
		sampleLap(7, 1, 99000, true),
		sampleLap(7, 2, 98000, true),
		sampleLap(7, 3, 90000, false),
		sampleLap(9, 1, 97000, true),
		sampleLap(11, 1, 80000, false),
	} {
		_, err := Create(ctx, pool, sessionID, l)
		assert.NilError(t, err)
	}

	got, err := LoadBestLaps(ctx, pool, sessionID)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].CarID, uint16(9))
	assert.Equal(t, got[1].CarID, uint16(7))
	assert.Equal(t, got[1].LapNo, uint16(2))
}

func TestStore(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sessionID := createSession(t, pool)

	store := NewStore(pool, sessionID)
	assert.NilError(t, store.StoreLap(ctx, sampleLap(7, 1, 98765, true)))

	n, err := DeleteBySession(ctx, pool, sessionID)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
}
