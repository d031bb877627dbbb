package domain

import "time"

type Coord struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Position is a single fix delivered by the location stream. A new reading
// supersedes the previous one; positions are never mutated.
type Position struct {
	Coord
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
}

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

// SensorOptions is what the platform sensor is configured with.
type SensorOptions struct {
	HighAccuracy bool
	MaxCachedAge time.Duration
	Timeout      time.Duration
}

type TrackingProfile struct {
	Name              string        `json:"name"`
	HighAccuracy      bool          `json:"high_accuracy"`
	MaxCachedAge      time.Duration `json:"max_cached_age"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	MinMovementMeters float64       `json:"min_movement_meters"`
}

func (p TrackingProfile) SensorOptions() SensorOptions {
	return SensorOptions{
		HighAccuracy: p.HighAccuracy,
		MaxCachedAge: p.MaxCachedAge,
		Timeout:      p.RequestTimeout,
	}
}

var (
	HighAccuracyProfile = TrackingProfile{
		Name:              "high_accuracy",
		HighAccuracy:      true,
		MaxCachedAge:      5 * time.Second,
		RequestTimeout:    10 * time.Second,
		MinMovementMeters: 10,
	}
	BatterySaverProfile = TrackingProfile{
		Name:              "battery_saver",
		HighAccuracy:      false,
		MaxCachedAge:      30 * time.Second,
		RequestTimeout:    10 * time.Second,
		MinMovementMeters: 50,
	}
)

func ProfileByName(name string) (TrackingProfile, error) {
	switch name {
	case HighAccuracyProfile.Name:
		return HighAccuracyProfile, nil
	case BatterySaverProfile.Name:
		return BatterySaverProfile, nil
	}
	return TrackingProfile{}, ErrUnknownProfile
}

type DevicePosition struct {
	DeviceID string   `json:"device_id"`
	Position Position `json:"position"`
}

type HistoryQuery struct {
	DeviceID string
	Start    time.Time
	End      time.Time
}

// WatchID identifies one continuous sensor subscription.
type WatchID uint64
