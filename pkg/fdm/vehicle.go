package fdm

import "time"

type VehicleStatus string

const (
	VehicleStatusInactive     VehicleStatus = "INACTIVE"
	VehicleStatusActive                     = "ACTIVE"
	VehicleStatusOutOfService               = "OUT_OF_SERVICE"
)

type Vehicle struct {
	PrimaryIdentifier string            `groups:"basic"`
	OtherIdentifiers  map[string]string `groups:"detailed"`

	Route Route `groups:"basic"`

	// CurrentStopRef is the last stop the vehicle is known to have reached. If
	// it no longer appears on the assigned route the vehicle is treated as not
	// yet started, never as an error.
	CurrentStopRef string `groups:"basic"`

	Location *Location `groups:"basic"`

	LastUpdated time.Time `groups:"basic"`

	Status VehicleStatus `groups:"basic"`

	Schedule map[string]interface{} `groups:"detailed"`

	CreationDateTime     time.Time `groups:"internal"`
	ModificationDateTime time.Time `groups:"internal"`
}
