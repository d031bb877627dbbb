package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/geo"
)

// Average speeds in km/h. These are city-traffic guesses, not routing.
var averageSpeedKmh = map[domain.TransportMode]float64{
	domain.TransportWalking:   4,
	domain.TransportBicycling: 15,
	domain.TransportTransit:   25,
	domain.TransportDriving:   30,
}

// ParseTransportMode accepts any casing; empty means walking.
func ParseTransportMode(s string) (domain.TransportMode, error) {
	if s == "" {
		return domain.TransportWalking, nil
	}
	m := domain.TransportMode(strings.ToUpper(s))
	if _, ok := averageSpeedKmh[m]; !ok {
		return "", fmt.Errorf("unknown transport mode %q", s)
	}
	return m, nil
}

// EstimateETA is a straight-line, constant-speed estimate.
func EstimateETA(from, to domain.Coord, mode domain.TransportMode, now time.Time) domain.ETA {
	speed, ok := averageSpeedKmh[mode]
	if !ok {
		mode = domain.TransportWalking
		speed = averageSpeedKmh[mode]
	}
	d := geo.DistanceMeters(from, to)
	minutes := d / 1000 / speed * 60
	return domain.ETA{
		DistanceMeters:  d,
		DistanceText:    FormatDistance(d),
		DurationMinutes: minutes,
		DurationText:    FormatDuration(minutes),
		ArrivalAt:       now.Add(time.Duration(minutes * float64(time.Minute))),
		Mode:            mode,
	}
}

// PlanDeparture works back from the target arrival time, keeping buffer
// minutes of slack.
func PlanDeparture(target time.Time, from, to domain.Coord, mode domain.TransportMode, buffer time.Duration, now time.Time) domain.DeparturePlan {
	eta := EstimateETA(from, to, mode, now)
	travel := time.Duration(eta.DurationMinutes * float64(time.Minute))
	depart := target.Add(-travel - buffer)
	until := depart.Sub(now).Minutes()
	return domain.DeparturePlan{
		DepartAt:           depart,
		ETA:                eta,
		MinutesUntilDepart: until,
		LeaveNow:           until <= 0,
	}
}

func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0fm", math.Round(meters))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

func FormatDuration(minutes float64) string {
	if minutes < 60 {
		return fmt.Sprintf("about %d min", int(math.Round(minutes)))
	}
	hours := int(minutes / 60)
	rest := int(math.Round(math.Mod(minutes, 60)))
	if rest == 0 {
		return fmt.Sprintf("about %d h", hours)
	}
	return fmt.Sprintf("about %d h %d min", hours, rest)
}
