package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/fleetwatch/fleetwatch/pkg/store"
)

type fakeOracle struct {
	durationSeconds float64
	durationErr     error

	distanceMetres float64
	distanceErr    error

	calls int64
}

func (o *fakeOracle) EstimateDuration(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (float64, error) {
	atomic.AddInt64(&o.calls, 1)
	return o.durationSeconds, o.durationErr
}

func (o *fakeOracle) EstimateDistance(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (float64, error) {
	atomic.AddInt64(&o.calls, 1)
	return o.distanceMetres, o.distanceErr
}

type fakeStopStore map[string]*fdm.Stop

func (s fakeStopStore) Stop(ctx context.Context, identifier string) (*fdm.Stop, error) {
	stop, ok := s[identifier]
	if !ok {
		return nil, store.ErrNotFound
	}
	return stop, nil
}

func testStops() fakeStopStore {
	return fakeStopStore{
		"STOP:A": {PrimaryIdentifier: "STOP:A", Location: fdm.NewLocation(0, 0)},
		"STOP:B": {PrimaryIdentifier: "STOP:B", Location: fdm.NewLocation(1, 0)},
		"STOP:C": {PrimaryIdentifier: "STOP:C", Location: fdm.NewLocation(2, 0)},
	}
}

func testTrackedVehicle(currentStopRef string) *fdm.Vehicle {
	return &fdm.Vehicle{
		PrimaryIdentifier: "VEHICLE:1",
		Route: fdm.Route{
			StopRefs: []string{"STOP:A", "STOP:B", "STOP:C"},
		},
		CurrentStopRef: currentStopRef,
		Status:         fdm.VehicleStatusActive,
	}
}

func testPosition() *fdm.VehiclePosition {
	return &fdm.VehiclePosition{
		Latitude:   0.5,
		Longitude:  0.9,
		Speed:      12,
		Bearing:    90,
		RecordedAt: time.Now(),
	}
}

func TestEstimateNextLeg(t *testing.T) {
	oracle := &fakeOracle{durationSeconds: 300, distanceMetres: 1500}
	estimator := NewEstimator(oracle, testStops())

	snapshot, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:B"), testPosition())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.CurrentStopRef != "STOP:B" {
		t.Errorf("CurrentStopRef = %q, want STOP:B", snapshot.CurrentStopRef)
	}
	if snapshot.NextStopRef != "STOP:C" {
		t.Errorf("NextStopRef = %q, want STOP:C", snapshot.NextStopRef)
	}
	if snapshot.ETAMinutes == nil || *snapshot.ETAMinutes != 5 {
		t.Errorf("ETAMinutes = %v, want 5", snapshot.ETAMinutes)
	}
	if snapshot.DistanceToNextMetres == nil || *snapshot.DistanceToNextMetres != 1500 {
		t.Errorf("DistanceToNextMetres = %v, want 1500", snapshot.DistanceToNextMetres)
	}
	if snapshot.Degraded {
		t.Error("snapshot should not be degraded")
	}
}

func TestEstimateEndOfRoute(t *testing.T) {
	oracle := &fakeOracle{durationSeconds: 300, distanceMetres: 1500}
	estimator := NewEstimator(oracle, testStops())

	snapshot, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:C"), testPosition())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.NextStopRef != "" {
		t.Errorf("NextStopRef = %q, want none", snapshot.NextStopRef)
	}
	if snapshot.ETAMinutes != nil || snapshot.DistanceToNextMetres != nil {
		t.Error("terminal snapshot should carry no estimates")
	}
	if snapshot.Degraded {
		t.Error("terminal snapshot is a normal outcome, not a degraded one")
	}
	if atomic.LoadInt64(&oracle.calls) != 0 {
		t.Errorf("oracle was called %d times, want 0", oracle.calls)
	}
}

func TestEstimateUnrecognisedCurrentStop(t *testing.T) {
	oracle := &fakeOracle{}
	estimator := NewEstimator(oracle, testStops())

	// Stale reference, eg. the stop was removed from the route after a
	// reassignment. Treated as not yet started, not as an error.
	snapshot, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:GONE"), testPosition())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.NextStopRef != "" || snapshot.ETAMinutes != nil || snapshot.DistanceToNextMetres != nil {
		t.Error("unstarted snapshot should carry no estimates")
	}
	if atomic.LoadInt64(&oracle.calls) != 0 {
		t.Errorf("oracle was called %d times, want 0", oracle.calls)
	}
}

func TestEstimateFieldsDegradeIndependently(t *testing.T) {
	tests := []struct {
		name         string
		oracle       *fakeOracle
		wantETA      *int
		wantDistance *int
	}{
		{
			name:         "duration times out",
			oracle:       &fakeOracle{durationErr: context.DeadlineExceeded, distanceMetres: 800},
			wantETA:      nil,
			wantDistance: intPtr(800),
		},
		{
			name:         "distance unavailable",
			oracle:       &fakeOracle{durationSeconds: 300, distanceErr: errors.New("connection refused")},
			wantETA:      intPtr(5),
			wantDistance: nil,
		},
		{
			name:         "both unavailable",
			oracle:       &fakeOracle{durationErr: errors.New("boom"), distanceErr: errors.New("boom")},
			wantETA:      nil,
			wantDistance: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimator := NewEstimator(tt.oracle, testStops())

			snapshot, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:B"), testPosition())
			if err != nil {
				t.Fatalf("oracle failure must not fail the pass: %v", err)
			}

			if !intPtrEqual(snapshot.ETAMinutes, tt.wantETA) {
				t.Errorf("ETAMinutes = %v, want %v", snapshot.ETAMinutes, tt.wantETA)
			}
			if !intPtrEqual(snapshot.DistanceToNextMetres, tt.wantDistance) {
				t.Errorf("DistanceToNextMetres = %v, want %v", snapshot.DistanceToNextMetres, tt.wantDistance)
			}
			if !snapshot.Degraded {
				t.Error("snapshot should be marked degraded")
			}
		})
	}
}

func TestEstimateETARounding(t *testing.T) {
	tests := []struct {
		durationSeconds float64
		wantMinutes     int
	}{
		{20, 0},
		{30, 1}, // halves round away from zero
		{89, 1},
		{90, 2},
		{300, 5},
	}

	for _, tt := range tests {
		oracle := &fakeOracle{durationSeconds: tt.durationSeconds, distanceMetres: 100}
		estimator := NewEstimator(oracle, testStops())

		snapshot, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:B"), testPosition())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if snapshot.ETAMinutes == nil || *snapshot.ETAMinutes != tt.wantMinutes {
			t.Errorf("eta for %vs = %v, want %d", tt.durationSeconds, snapshot.ETAMinutes, tt.wantMinutes)
		}
	}
}

func TestEstimateInvalidPosition(t *testing.T) {
	tests := []struct {
		name     string
		position *fdm.VehiclePosition
	}{
		{"latitude too high", &fdm.VehiclePosition{Latitude: 120, Longitude: 0}},
		{"latitude too low", &fdm.VehiclePosition{Latitude: -95, Longitude: 0}},
		{"longitude too high", &fdm.VehiclePosition{Latitude: 0, Longitude: 190}},
		{"longitude too low", &fdm.VehiclePosition{Latitude: 0, Longitude: -181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &fakeOracle{}
			estimator := NewEstimator(oracle, testStops())

			_, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:B"), tt.position)

			if !errors.Is(err, ErrInvalidPosition) {
				t.Errorf("Estimate() error = %v, want ErrInvalidPosition", err)
			}
			if atomic.LoadInt64(&oracle.calls) != 0 {
				t.Error("validation must fail fast before any oracle call")
			}
		})
	}
}

func TestEstimateMissingNextStopRecord(t *testing.T) {
	oracle := &fakeOracle{}
	stops := testStops()
	delete(stops, "STOP:C")
	estimator := NewEstimator(oracle, stops)

	_, err := estimator.Estimate(context.Background(), testTrackedVehicle("STOP:B"), testPosition())

	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Estimate() error = %v, want store.ErrNotFound", err)
	}
}

func TestApplyUpdatesVehicle(t *testing.T) {
	oracle := &fakeOracle{durationSeconds: 300, distanceMetres: 1500}
	estimator := NewEstimator(oracle, testStops())

	vehicle := testTrackedVehicle("STOP:B")
	vehicle.Route.EstimatedDurationMinutes = 9
	previousUpdate := time.Now().Add(-time.Minute)
	vehicle.LastUpdated = previousUpdate

	position := testPosition()

	updated, snapshot, err := estimator.Apply(context.Background(), vehicle, position)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Location == nil || updated.Location.Latitude() != position.Latitude || updated.Location.Longitude() != position.Longitude {
		t.Errorf("Location = %v, want reported position", updated.Location)
	}
	if !updated.LastUpdated.After(previousUpdate) {
		t.Error("LastUpdated should advance")
	}
	if updated.Route.EstimatedDurationMinutes != 5 {
		t.Errorf("EstimatedDurationMinutes = %d, want 5", updated.Route.EstimatedDurationMinutes)
	}
	if snapshot.ETAMinutes == nil || *snapshot.ETAMinutes != 5 {
		t.Errorf("snapshot eta = %v, want 5", snapshot.ETAMinutes)
	}

	// Input vehicle must stay untouched
	if vehicle.Location != nil {
		t.Error("Apply mutated the input vehicle's location")
	}
	if !vehicle.LastUpdated.Equal(previousUpdate) {
		t.Error("Apply mutated the input vehicle's LastUpdated")
	}
	if vehicle.Route.EstimatedDurationMinutes != 9 {
		t.Error("Apply mutated the input vehicle's route estimate")
	}
}

func TestApplyRetainsLastGoodEstimate(t *testing.T) {
	oracle := &fakeOracle{durationErr: errors.New("oracle down"), distanceMetres: 800}
	estimator := NewEstimator(oracle, testStops())

	vehicle := testTrackedVehicle("STOP:B")
	vehicle.Route.EstimatedDurationMinutes = 7

	updated, snapshot, err := estimator.Apply(context.Background(), vehicle, testPosition())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Route.EstimatedDurationMinutes != 7 {
		t.Errorf("EstimatedDurationMinutes = %d, want last good value 7", updated.Route.EstimatedDurationMinutes)
	}
	if snapshot.ETAMinutes != nil {
		t.Errorf("snapshot eta = %v, want nil", snapshot.ETAMinutes)
	}
	if !snapshot.Degraded {
		t.Error("snapshot should be marked degraded")
	}
}

func TestApplyNeverRegressesLastUpdated(t *testing.T) {
	oracle := &fakeOracle{durationSeconds: 300, distanceMetres: 1500}
	estimator := NewEstimator(oracle, testStops())

	vehicle := testTrackedVehicle("STOP:B")
	future := time.Now().Add(time.Hour)
	vehicle.LastUpdated = future

	updated, _, err := estimator.Apply(context.Background(), vehicle, testPosition())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.LastUpdated.Before(future) {
		t.Errorf("LastUpdated regressed from %v to %v", future, updated.LastUpdated)
	}
}

func intPtr(value int) *int {
	return &value
}

func intPtrEqual(a *int, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
