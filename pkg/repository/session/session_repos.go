//nolint:whitespace // can't make both the linter and editor happy
package session

import (
	"context"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
	"github.com/mpapenbr/accbroadcast-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, s *model.RecordingSession) error {
	_, err := conn.Exec(ctx, `
	insert into recording_session (
		id, display_name, server_addr, connection_id,
		track_name, track_id, track_length_m, started_at, ended_at
	) values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		s.ID, s.DisplayName, s.ServerAddr, s.ConnectionID.Ptr(),
		s.TrackName.Ptr(), s.TrackID.Ptr(), s.TrackLengthM.Ptr(),
		s.StartedAt, s.EndedAt.Ptr(),
	)
	return err
}

// UpdateConnection stores the connection id assigned by the server
func UpdateConnection(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
	connectionID int32,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"update recording_session set connection_id=$1 where id=$2",
		connectionID, id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func UpdateTrack(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
	td *model.TrackData,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, `
	update recording_session set track_name=$1, track_id=$2, track_length_m=$3
	where id=$4
	`, td.TrackName, td.TrackID, td.TrackLengthM, id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// Finish sets the end time, sessions already finished are not modified
func Finish(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
	endedAt time.Time,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"update recording_session set ended_at=$1 where id=$2 and ended_at is null",
		endedAt, id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
) (*model.RecordingSession, error) {
	row := conn.QueryRow(ctx, selector+" where id=$1", id)
	return scan(row)
}

// LoadLatest returns the most recently started sessions, newest first
func LoadLatest(
	ctx context.Context,
	conn repository.Querier,
	limit int,
) ([]*model.RecordingSession, error) {
	rows, err := conn.Query(ctx, selector+" order by started_at desc limit $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []*model.RecordingSession{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// deletes an entry (and its laps) from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from recording_session where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = `select id, display_name, server_addr, connection_id,
	track_name, track_id, track_length_m, started_at, ended_at
	from recording_session`

func scan(row pgx.Row) (*model.RecordingSession, error) {
	var item model.RecordingSession
	var connectionID, trackID, trackLength *int32
	var trackName *string
	var endedAt *time.Time
	if err := row.Scan(
		&item.ID, &item.DisplayName, &item.ServerAddr, &connectionID,
		&trackName, &trackID, &trackLength, &item.StartedAt, &endedAt,
	); err != nil {
		return nil, err
	}
	item.ConnectionID = null.FromPtr(connectionID)
	item.TrackName = null.FromPtr(trackName)
	item.TrackID = null.FromPtr(trackID)
	item.TrackLengthM = null.FromPtr(trackLength)
	item.EndedAt = null.FromPtr(endedAt)
	return &item, nil
}
