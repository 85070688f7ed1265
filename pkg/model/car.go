package model

import "fmt"

type Driver struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	ShortName   string         `json:"shortName"`
	Category    DriverCategory `json:"category"`
	Nationality Nationality    `json:"nationality"`
}

// Car is replaced as a whole when new data arrives, never patched.
// CurrentDriver points into Drivers.
type Car struct {
	CarModelType       uint8       `json:"carModelType"`
	TeamName           string      `json:"teamName"`
	RaceNumber         int32       `json:"raceNumber"`
	CupCategory        CupCategory `json:"cupCategory"`
	CurrentDriverIndex uint8       `json:"currentDriverIndex"`
	Nationality        Nationality `json:"nationality"`
	Drivers            []Driver    `json:"drivers"`
	CurrentDriver      *Driver     `json:"currentDriver"`
}

// EntryListCar is the detailed roster record of a single car
type EntryListCar struct {
	CarID uint16 `json:"carId"`
	Car
}

// EntryList holds the car ids announced by the server
type EntryList struct {
	ConnectionID int32    `json:"connectionId"`
	CarIDs       []uint16 `json:"carIds"`
}

// CarMap is a snapshot of the car registry.
// A nil value is a placeholder for an announced car without details yet.
type CarMap map[uint16]*Car

func (d *Driver) FullName() string {
	return fmt.Sprintf("%s %s", d.FirstName, d.LastName)
}
