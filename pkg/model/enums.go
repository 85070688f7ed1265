package model

type (
	RaceSessionType       uint8
	SessionPhase          uint8
	CarLocation           uint8
	BroadcastingEventType uint8
	DriverCategory        uint8
	CupCategory           uint8
	// Nationality is kept as the raw code sent by the server
	Nationality uint16
)

const (
	SessionTypePractice        RaceSessionType = 0
	SessionTypeQualifying      RaceSessionType = 4
	SessionTypeSuperpole       RaceSessionType = 9
	SessionTypeRace            RaceSessionType = 10
	SessionTypeHotlap          RaceSessionType = 11
	SessionTypeHotstint        RaceSessionType = 12
	SessionTypeHotlapSuperpole RaceSessionType = 13
	SessionTypeReplay          RaceSessionType = 14
)

const (
	PhaseNone SessionPhase = iota
	PhaseStarting
	PhasePreFormation
	PhaseFormationLap
	PhasePreSession
	PhaseSession
	PhaseSessionOver
	PhasePostSession
	PhaseResultUI
)

const (
	CarLocationNone CarLocation = iota
	CarLocationTrack
	CarLocationPitlane
	CarLocationPitEntry
	CarLocationPitExit
)

const (
	EventTypeNone BroadcastingEventType = iota
	EventTypeGreenFlag
	EventTypeSessionOver
	EventTypePenaltyCommMsg
	EventTypeAccident
	EventTypeLapCompleted
	EventTypeBestSessionLap
	EventTypeBestPersonalLap
)

const (
	DriverCategoryBronze   DriverCategory = 0
	DriverCategorySilver   DriverCategory = 1
	DriverCategoryGold     DriverCategory = 2
	DriverCategoryPlatinum DriverCategory = 3
	DriverCategoryError    DriverCategory = 255
)

const (
	CupCategoryOverall CupCategory = iota
	CupCategoryProAm
	CupCategoryAm
	CupCategorySilver
	CupCategoryNational
)

var sessionTypeNames = map[RaceSessionType]string{
	SessionTypePractice:        "Practice",
	SessionTypeQualifying:      "Qualifying",
	SessionTypeSuperpole:       "Superpole",
	SessionTypeRace:            "Race",
	SessionTypeHotlap:          "Hotlap",
	SessionTypeHotstint:        "Hotstint",
	SessionTypeHotlapSuperpole: "HotlapSuperpole",
	SessionTypeReplay:          "Replay",
}

func (s RaceSessionType) String() string {
	if name, ok := sessionTypeNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (p SessionPhase) String() string {
	return lookupName(int(p), []string{
		"None", "Starting", "PreFormation", "FormationLap", "PreSession",
		"Session", "SessionOver", "PostSession", "ResultUI",
	})
}

func (c CarLocation) String() string {
	return lookupName(int(c), []string{"None", "Track", "Pitlane", "PitEntry", "PitExit"})
}

func (t BroadcastingEventType) String() string {
	return lookupName(int(t), []string{
		"None", "GreenFlag", "SessionOver", "PenaltyCommMsg", "Accident",
		"LapCompleted", "BestSessionLap", "BestPersonalLap",
	})
}

func (d DriverCategory) String() string {
	if d == DriverCategoryError {
		return "Error"
	}
	return lookupName(int(d), []string{"Bronze", "Silver", "Gold", "Platinum"})
}

func (c CupCategory) String() string {
	return lookupName(int(c), []string{"Overall", "ProAm", "Am", "Silver", "National"})
}

func lookupName(idx int, names []string) string {
	if idx >= 0 && idx < len(names) {
		return names[idx]
	}
	return "Unknown"
}
