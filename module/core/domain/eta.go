package domain

import "time"

type TransportMode string

const (
	TransportWalking   TransportMode = "WALKING"
	TransportBicycling TransportMode = "BICYCLING"
	TransportTransit   TransportMode = "TRANSIT"
	TransportDriving   TransportMode = "DRIVING"
)

type ETA struct {
	DistanceMeters  float64       `json:"distance_meters"`
	DistanceText    string        `json:"distance_text"`
	DurationMinutes float64       `json:"duration_minutes"`
	DurationText    string        `json:"duration_text"`
	ArrivalAt       time.Time     `json:"arrival_at"`
	Mode            TransportMode `json:"mode"`
}

type DeparturePlan struct {
	DepartAt           time.Time `json:"depart_at"`
	ETA                ETA       `json:"eta"`
	MinutesUntilDepart float64   `json:"minutes_until_depart"`
	LeaveNow           bool      `json:"leave_now"`
}
