package domain

import "time"

const DefaultGeofenceRadius = 100.0

type GeofenceState string

const (
	GeofenceOutside     GeofenceState = "OUTSIDE"
	GeofenceApproaching GeofenceState = "OUTSIDE_APPROACHING"
	GeofenceInside      GeofenceState = "INSIDE"
)

// GeofenceConfig is fixed at registration. Runtime bookkeeping lives in the
// engine and is only exposed through Geofence snapshots.
type GeofenceConfig struct {
	ID           string   `json:"id"`
	Activity     Activity `json:"activity"`
	Center       Coord    `json:"center"`
	RadiusMeters float64  `json:"radius_meters"`
}

type Geofence struct {
	GeofenceConfig
	Active           bool          `json:"active"`
	State            GeofenceState `json:"state"`
	EnteredAt        *time.Time    `json:"entered_at,omitempty"`
	ApproachNotified bool          `json:"approach_notified"`
	LastDistance     *float64      `json:"last_distance_meters,omitempty"`
}

func (g Geofence) Inside() bool {
	return g.State == GeofenceInside
}

type GeofenceEventType string

const (
	GeofenceEntry    GeofenceEventType = "geofence_entry"
	GeofenceExit     GeofenceEventType = "geofence_exit"
	GeofenceApproach GeofenceEventType = "geofence_approaching"
)

type GeofenceEvent struct {
	ID             string            `json:"id"`
	Type           GeofenceEventType `json:"event"`
	GeofenceID     string            `json:"geofence_id"`
	ActivityID     string            `json:"activity_id"`
	ActivityTitle  string            `json:"activity_title"`
	DistanceMeters float64           `json:"distance_meters"`
	Position       Position          `json:"position"`
	Timestamp      time.Time         `json:"timestamp"`
}

type NotificationKind string

const (
	NotificationArrival  NotificationKind = "arrival"
	NotificationApproach NotificationKind = "approaching"
)

// Vibration patterns in milliseconds, on/off alternating.
var (
	HapticSuccess = []int{50, 100, 50}
	HapticWarning = []int{100, 50, 100, 50, 100}
	HapticError   = []int{200}
)

// Notification is handed to the delivery collaborator; this service never
// renders or vibrates anything itself.
type Notification struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	ActivityID string           `json:"activity_id"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Tag        string           `json:"tag"`
	Haptic     []int            `json:"haptic"`
	CreatedAt  time.Time        `json:"created_at"`
}
