package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied  = errors.New("location permission denied")
	ErrSensorTimeout     = errors.New("location sensor timeout")
	ErrSensorUnavailable = errors.New("location sensor unavailable")

	ErrUnknownProfile   = errors.New("unknown tracking profile")
	ErrGeofenceNotFound = errors.New("geofence not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrNoPosition       = errors.New("no known position")
)

// SensorErrorCode mirrors the platform geolocation error codes.
type SensorErrorCode int

const (
	SensorPermissionDenied    SensorErrorCode = 1
	SensorPositionUnavailable SensorErrorCode = 2
	SensorTimeout             SensorErrorCode = 3
)

func (c SensorErrorCode) String() string {
	switch c {
	case SensorPermissionDenied:
		return "permission_denied"
	case SensorPositionUnavailable:
		return "position_unavailable"
	case SensorTimeout:
		return "timeout"
	}
	return "unknown"
}

type SensorError struct {
	Code    SensorErrorCode
	Message string
}

func (e *SensorError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sensor error: %s", e.Code)
	}
	return fmt.Sprintf("sensor error: %s: %s", e.Code, e.Message)
}

func (e *SensorError) Unwrap() error {
	switch e.Code {
	case SensorPermissionDenied:
		return ErrPermissionDenied
	case SensorTimeout:
		return ErrSensorTimeout
	}
	return ErrSensorUnavailable
}
