package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/fleetwatch/fleetwatch/pkg/routing"
	"github.com/fleetwatch/fleetwatch/pkg/store"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// ErrInvalidPosition is returned before any oracle call when a position report
// carries out-of-range coordinates.
var ErrInvalidPosition = errors.New("invalid vehicle position")

const defaultOracleTimeout = 10 * time.Second

var validate = validator.New()

// Estimator derives a vehicle's route progress from a raw position report and
// queries the routing oracle for time and distance to the next stop.
type Estimator struct {
	Oracle routing.Oracle
	Stops  store.StopStore

	// OracleTimeout bounds each estimation pass's oracle queries. A timed out
	// query degrades its snapshot field exactly like a failed one.
	OracleTimeout time.Duration
}

func NewEstimator(oracle routing.Oracle, stops store.StopStore) *Estimator {
	return &Estimator{
		Oracle:        oracle,
		Stops:         stops,
		OracleTimeout: defaultOracleTimeout,
	}
}

// Estimate produces a fresh TrackingSnapshot for the vehicle at the reported
// position. A vehicle whose current stop is the end of the route, or whose
// current stop reference no longer matches the route, gets a snapshot with
// unknown estimates and no oracle call is made. Oracle failures degrade the
// affected field to unknown; they never fail the pass.
func (e *Estimator) Estimate(ctx context.Context, vehicle *fdm.Vehicle, position *fdm.VehiclePosition) (*fdm.TrackingSnapshot, error) {
	if err := validate.Struct(position); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPosition, err)
	}

	snapshot := &fdm.TrackingSnapshot{
		VehicleRef:     vehicle.PrimaryIdentifier,
		Location:       position.Location(),
		CurrentStopRef: vehicle.CurrentStopRef,
		GeneratedAt:    time.Now(),
	}

	currentIndex := vehicle.Route.StopIndex(vehicle.CurrentStopRef)

	nextStopRef, ok := vehicle.Route.NextStopRef(currentIndex)
	if !ok {
		// Terminal state (or not yet on a recognised leg) - nothing to estimate
		return snapshot, nil
	}
	snapshot.NextStopRef = nextStopRef

	nextStop, err := e.Stops.Stop(ctx, nextStopRef)
	if err != nil {
		return nil, err
	}

	oracleCtx, cancel := context.WithTimeout(ctx, e.OracleTimeout)
	defer cancel()

	// The two oracle queries are independent reads, run them concurrently and
	// join before producing the snapshot. Each fails on its own.
	var durationSeconds, distanceMetres float64
	var durationErr, distanceErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		durationSeconds, durationErr = e.Oracle.EstimateDuration(oracleCtx, snapshot.Location, nextStop.Location)
	})
	wg.Go(func() {
		distanceMetres, distanceErr = e.Oracle.EstimateDistance(oracleCtx, snapshot.Location, nextStop.Location)
	})
	wg.Wait()

	if durationErr == nil {
		// Whole minutes, halves round away from zero
		eta := int(math.Round(durationSeconds / 60))
		snapshot.ETAMinutes = &eta
	} else {
		snapshot.Degraded = true
		log.Debug().Err(durationErr).Str("vehicle", vehicle.PrimaryIdentifier).Msg("Duration estimate unavailable")
	}

	if distanceErr == nil {
		distance := int(math.Round(distanceMetres))
		snapshot.DistanceToNextMetres = &distance
	} else {
		snapshot.Degraded = true
		log.Debug().Err(distanceErr).Str("vehicle", vehicle.PrimaryIdentifier).Msg("Distance estimate unavailable")
	}

	return snapshot, nil
}

// Apply runs Estimate and folds the result into a complete new vehicle value
// ready for persistence. The input vehicle is never mutated; LastUpdated never
// regresses; the route's aggregate duration estimate keeps its last good value
// when the oracle could not supply a fresh one.
func (e *Estimator) Apply(ctx context.Context, vehicle *fdm.Vehicle, position *fdm.VehiclePosition) (*fdm.Vehicle, *fdm.TrackingSnapshot, error) {
	snapshot, err := e.Estimate(ctx, vehicle, position)
	if err != nil {
		return nil, nil, err
	}

	updated := *vehicle
	updated.Location = snapshot.Location

	if now := time.Now(); now.After(updated.LastUpdated) {
		updated.LastUpdated = now
	}

	if snapshot.ETAMinutes != nil {
		updated.Route.EstimatedDurationMinutes = *snapshot.ETAMinutes
	}

	return &updated, snapshot, nil
}
