package model

import (
	"time"

	"github.com/aarondl/opt/null"
)

// Lap times and splits are null when the server has no value
type Lap struct {
	LapTimeMS      null.Val[int32]   `json:"lapTimeMS"`
	CarIndex       uint16            `json:"carIndex"`
	DriverIndex    uint16            `json:"driverIndex"`
	Splits         []null.Val[int32] `json:"splits"`
	IsInvalid      bool              `json:"isInvalid"`
	IsValidForBest bool              `json:"isValidForBest"`
	IsOutLap       bool              `json:"isOutLap"`
	IsInLap        bool              `json:"isInLap"`
}

// HasTime reports whether a lap time is present
func (l *Lap) HasTime() bool {
	return l.LapTimeMS.IsValue()
}

// CompletedLap is a finished lap of a car enriched with entry list data
type CompletedLap struct {
	CarID      uint16    `json:"carId"`
	RaceNumber int32     `json:"raceNumber"`
	TeamName   string    `json:"teamName"`
	DriverName string    `json:"driverName"`
	LapNo      uint16    `json:"lapNo"`
	Lap        Lap       `json:"lap"`
	RecordedAt time.Time `json:"recordedAt"`
}
