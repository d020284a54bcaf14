package tracker

import (
	"context"

	"github.com/fleetwatch/fleetwatch/pkg/authorize"
	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/fleetwatch/fleetwatch/pkg/store"
	"github.com/rs/zerolog/log"
)

// Service is the caller boundary of the tracking core. The HTTP layer and the
// queue consumers both drive these two operations; neither operation knows
// anything about transport framing or status codes.
type Service struct {
	Vehicles  store.VehicleStore
	Estimator *Estimator
}

func NewService(vehicles store.VehicleStore, estimator *Estimator) *Service {
	return &Service{
		Vehicles:  vehicles,
		Estimator: estimator,
	}
}

// RecordPosition folds a position report into the vehicle's persisted state
// and returns the derived snapshot. An oracle outage degrades the snapshot but
// never loses the position update; persistence errors are surfaced unmodified.
func (s *Service) RecordPosition(ctx context.Context, vehicleIdentifier string, position *fdm.VehiclePosition) (*fdm.TrackingSnapshot, error) {
	vehicle, err := s.Vehicles.Vehicle(ctx, vehicleIdentifier)
	if err != nil {
		return nil, err
	}

	updated, snapshot, err := s.Estimator.Apply(ctx, vehicle, position)
	if err != nil {
		return nil, err
	}

	if err := s.Vehicles.SaveVehicle(ctx, updated); err != nil {
		return nil, err
	}

	log.Debug().
		Str("vehicle", vehicleIdentifier).
		Str("nextstop", snapshot.NextStopRef).
		Bool("degraded", snapshot.Degraded).
		Msg("Recorded vehicle position")

	return snapshot, nil
}

// ProposeMutation applies the actor's proposed field changes after running
// them through the authorization filter. Denial and not-found stay distinct
// outcomes. A mutation whose entire field set is filtered away still succeeds.
func (s *Service) ProposeMutation(ctx context.Context, actor authorize.Actor, vehicleIdentifier string, proposedFields map[string]interface{}) (*fdm.Vehicle, error) {
	vehicle, err := s.Vehicles.Vehicle(ctx, vehicleIdentifier)
	if err != nil {
		return nil, err
	}

	allowedFields, err := authorize.Filter(actor, vehicle, proposedFields)
	if err != nil {
		return nil, err
	}

	if len(allowedFields) > 0 {
		if err := s.Vehicles.UpdateVehicleFields(ctx, vehicleIdentifier, allowedFields); err != nil {
			return nil, err
		}
	}

	return s.Vehicles.Vehicle(ctx, vehicleIdentifier)
}
