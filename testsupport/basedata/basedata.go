// Package basedata provides sample records and builds server side datagrams
// for tests.
package basedata

import (
	"time"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

func SampleLap() model.Lap {
	return model.Lap{
		LapTimeMS:      null.From(int32(98765)),
		CarIndex:       7,
		DriverIndex:    0,
		Splits:         []null.Val[int32]{null.From(int32(30000)), {}, null.From(int32(35000))},
		IsValidForBest: true,
	}
}

func EmptyLap() model.Lap {
	return model.Lap{Splits: []null.Val[int32]{}}
}

func SampleDrivers() []model.Driver {
	return []model.Driver{
		{
			FirstName: "Max", LastName: "Driver", ShortName: "MDR",
			Category: model.DriverCategoryGold, Nationality: 2,
		},
		{
			FirstName: "Anna", LastName: "Racer", ShortName: "ARA",
			Category: model.DriverCategorySilver, Nationality: 9,
		},
	}
}

// SampleEntryListCar returns a car with two drivers, the second one driving
func SampleEntryListCar(carID uint16) *model.EntryListCar {
	drivers := SampleDrivers()
	return &model.EntryListCar{
		CarID: carID,
		Car: model.Car{
			CarModelType:       20,
			TeamName:           "Team Sample",
			RaceNumber:         int32(carID) + 100,
			CupCategory:        model.CupCategoryProAm,
			CurrentDriverIndex: 1,
			Nationality:        2,
			Drivers:            drivers,
			CurrentDriver:      &drivers[1],
		},
	}
}

func SampleRealTimeUpdate() *model.RealTimeUpdate {
	return &model.RealTimeUpdate{
		EventIndex:      1,
		SessionIndex:    2,
		SessionType:     model.SessionTypeRace,
		Phase:           model.PhaseSession,
		SessionTime:     123456.5,
		SessionEndTime:  3600000,
		FocusedCarIndex: 7,
		ActiveCameraSet: "set1",
		ActiveCamera:    "CameraTV1",
		CurrentHUDPage:  "Broadcasting",
		TimeOfDay:       43200,
		AmbientTemp:     22,
		TrackTemp:       31,
		Clouds:          0.3,
		RainLevel:       0.1,
		Wetness:         0,
		BestSessionLap:  SampleLap(),
	}
}

func SampleRealTimeCarUpdate(carIndex, laps uint16) *model.RealTimeCarUpdate {
	last := SampleLap()
	last.CarIndex = carIndex
	return &model.RealTimeCarUpdate{
		CarIndex:       carIndex,
		DriverIndex:    1,
		DriverCount:    2,
		Gear:           3,
		WorldPosX:      100.5,
		WorldPosY:      -20.25,
		Yaw:            1.5,
		CarLocation:    model.CarLocationTrack,
		SpeedKMH:       212,
		Position:       4,
		CupPosition:    2,
		TrackPosition:  5,
		SplinePosition: 0.42,
		Laps:           laps,
		Delta:          -250,
		BestSessionLap: SampleLap(),
		LastLap:        last,
		CurrentLap:     EmptyLap(),
	}
}

func SampleTrackData() *model.TrackData {
	return &model.TrackData{
		ConnectionID: 42,
		TrackName:    "Spa-Francorchamps",
		TrackID:      11,
		TrackLengthM: 7004,
		CameraSets: []model.CameraSet{
			{Name: "Driveable", Cameras: []string{"Chase", "Cockpit"}},
			{Name: "Helicam", Cameras: []string{}},
			{Name: "set1", Cameras: []string{"CameraTV1"}},
		},
		HUDPages: []string{"Blank", "Broadcasting"},
	}
}
