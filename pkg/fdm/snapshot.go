package fdm

import "time"

// TrackingSnapshot is a derived view of a vehicle's progress along its route,
// produced fresh on every position report and never persisted or mutated in
// place.
type TrackingSnapshot struct {
	VehicleRef string `groups:"basic"`

	Location *Location `groups:"basic"`

	CurrentStopRef string `groups:"basic"`
	NextStopRef    string `groups:"basic"`

	// ETAMinutes and DistanceToNextMetres are nil when no next stop exists or
	// when the routing oracle could not supply the value. Each degrades
	// independently.
	ETAMinutes           *int `groups:"basic"`
	DistanceToNextMetres *int `groups:"basic"`

	// Degraded marks a snapshot where at least one oracle query failed even
	// though the position update itself succeeded.
	Degraded bool `groups:"basic"`

	GeneratedAt time.Time `groups:"basic"`
}
