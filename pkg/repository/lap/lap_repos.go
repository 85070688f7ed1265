//nolint:whitespace // can't make both the linter and editor happy
package lap

import (
	"context"

	"github.com/aarondl/opt/null"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/repository"
)

// Create stores a completed lap. A lap already stored for the same car and
// lap number is kept, the number of inserted rows is returned.
func Create(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
	l *model.CompletedLap,
) (int, error) {
	splits := lo.Map(l.Lap.Splits, func(s null.Val[int32], _ int) *int32 {
		return s.Ptr()
	})
	cmdTag, err := conn.Exec(ctx, `
	insert into lap (
		session_id, car_id, race_number, team_name, driver_name, lap_no,
		lap_time_ms, splits, is_invalid, is_valid_for_best, is_out_lap, is_in_lap,
		recorded_at
	) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	on conflict (session_id, car_id, lap_no) do nothing
	`,
		sessionID, int32(l.CarID), l.RaceNumber, l.TeamName, l.DriverName, int32(l.LapNo),
		l.Lap.LapTimeMS.Ptr(), splits,
		l.Lap.IsInvalid, l.Lap.IsValidForBest, l.Lap.IsOutLap, l.Lap.IsInLap,
		l.RecordedAt,
	)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// LoadBySession returns all laps of a session ordered by car and lap number
func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) ([]*model.CompletedLap, error) {
	return query(ctx, conn,
		selector+" where session_id=$1 order by car_id, lap_no", sessionID)
}

// LoadBestLaps returns the fastest valid lap of each car, fastest first
func LoadBestLaps(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) ([]*model.CompletedLap, error) {
	return query(ctx, conn, `
	select * from (
		select distinct on (car_id) `+columns+` from lap
		where session_id=$1 and lap_time_ms is not null
		and not is_invalid and is_valid_for_best
		order by car_id, lap_time_ms, lap_no
	) best order by lap_time_ms, car_id
	`, sessionID)
}

func DeleteBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap where session_id=$1", sessionID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func query(
	ctx context.Context,
	conn repository.Querier,
	sql string,
	args ...any,
) ([]*model.CompletedLap, error) {
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []*model.CompletedLap{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// little helper
const columns = `car_id, race_number, team_name, driver_name, lap_no,
	lap_time_ms, splits, is_invalid, is_valid_for_best, is_out_lap, is_in_lap,
	recorded_at`

const selector = "select " + columns + " from lap"

func scan(row pgx.Row) (*model.CompletedLap, error) {
	var item model.CompletedLap
	var carID, lapNo int32
	var lapTime *int32
	var splits []*int32
	if err := row.Scan(
		&carID, &item.RaceNumber, &item.TeamName, &item.DriverName, &lapNo,
		&lapTime, &splits,
		&item.Lap.IsInvalid, &item.Lap.IsValidForBest, &item.Lap.IsOutLap, &item.Lap.IsInLap,
		&item.RecordedAt,
	); err != nil {
		return nil, err
	}
	item.CarID = uint16(carID)
	item.LapNo = uint16(lapNo)
	item.Lap.CarIndex = item.CarID
	item.Lap.LapTimeMS = null.FromPtr(lapTime)
	item.Lap.Splits = lo.Map(splits, func(s *int32, _ int) null.Val[int32] {
		return null.FromPtr(s)
	})
	return &item, nil
}
