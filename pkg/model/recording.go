package model

import (
	"time"

	"github.com/aarondl/opt/null"
	"github.com/gofrs/uuid/v5"
)

// RecordingSession is a single run of the client against a server
type RecordingSession struct {
	ID           uuid.UUID           `json:"id"`
	DisplayName  string              `json:"displayName"`
	ServerAddr   string              `json:"serverAddr"`
	ConnectionID null.Val[int32]     `json:"connectionId"`
	TrackName    null.Val[string]    `json:"trackName"`
	TrackID      null.Val[int32]     `json:"trackId"`
	TrackLengthM null.Val[int32]     `json:"trackLengthM"`
	StartedAt    time.Time           `json:"startedAt"`
	EndedAt      null.Val[time.Time] `json:"endedAt"`
}
