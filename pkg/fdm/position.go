package fdm

import "time"

// VehiclePosition is a single device report. It is consumed immediately to
// produce a TrackingSnapshot and not retained.
type VehiclePosition struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`

	Speed   float64 `json:"speed"`
	Bearing float64 `json:"bearing"`

	RecordedAt time.Time `json:"recorded_at"`
}

func (p *VehiclePosition) Location() *Location {
	return NewLocation(p.Longitude, p.Latitude)
}
