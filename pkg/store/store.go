package store

import (
	"context"
	"errors"

	"github.com/fleetwatch/fleetwatch/pkg/fdm"
)

var (
	// ErrNotFound is returned when a referenced vehicle or stop does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when the underlying store could not complete a
	// write, eg. the record vanished between read and update. The caller
	// surfaces it unmodified - retry policy belongs to the store's operator.
	ErrConflict = errors.New("record write conflict")
)

type VehicleStore interface {
	Vehicle(ctx context.Context, identifier string) (*fdm.Vehicle, error)
	SaveVehicle(ctx context.Context, vehicle *fdm.Vehicle) error
	UpdateVehicleFields(ctx context.Context, identifier string, fields map[string]interface{}) error
	VehiclesByStatus(ctx context.Context, status fdm.VehicleStatus) ([]*fdm.Vehicle, error)
	VehiclesServingStop(ctx context.Context, stopRef string) ([]*fdm.Vehicle, error)
}

type StopStore interface {
	Stop(ctx context.Context, identifier string) (*fdm.Stop, error)
}
