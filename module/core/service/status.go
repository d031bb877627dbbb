package service

import (
	"fmt"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

// TripStatus compares now against the trip bounds. Both bounds belong to
// IN_PROGRESS.
func TripStatus(start, end, now time.Time) domain.TripStatus {
	switch {
	case now.Before(start):
		return domain.TripBeforeTrip
	case now.After(end):
		return domain.TripCompleted
	}
	return domain.TripInProgress
}

// ActivityStatus uses the resolved activity start. The end instant counts as
// COMPLETED, the start instant as IN_PROGRESS.
func ActivityStatus(a domain.Activity, now time.Time) domain.ActivityStatus {
	start, end := a.Start, a.End()
	switch {
	case !now.Before(end):
		return domain.ActivityCompleted
	case !now.Before(start):
		return domain.ActivityInProgress
	}
	return domain.ActivityUpcoming
}

// CurrentActivity returns the first IN_PROGRESS activity in schedule order.
func CurrentActivity(s *domain.Schedule, now time.Time) (domain.TravelDay, domain.Activity, bool) {
	if s == nil {
		return domain.TravelDay{}, domain.Activity{}, false
	}
	for _, d := range s.Days {
		for _, a := range d.Activities {
			if ActivityStatus(a, now) == domain.ActivityInProgress {
				return d, a, true
			}
		}
	}
	return domain.TravelDay{}, domain.Activity{}, false
}

// NextActivity returns the first UPCOMING activity in schedule order.
func NextActivity(s *domain.Schedule, now time.Time) (domain.TravelDay, domain.Activity, bool) {
	if s == nil {
		return domain.TravelDay{}, domain.Activity{}, false
	}
	for _, d := range s.Days {
		for _, a := range d.Activities {
			if ActivityStatus(a, now) == domain.ActivityUpcoming {
				return d, a, true
			}
		}
	}
	return domain.TravelDay{}, domain.Activity{}, false
}

// CombineDateAndTime interprets date (2006-01-02) and hhmm (15:04) as a wall
// clock reading in loc, independent of the process time zone.
func CombineDateAndTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine %q %q: %w", date, hhmm, err)
	}
	return t, nil
}

// TimeUntil decomposes to-from. A non-positive difference is all zeros.
func TimeUntil(from, to time.Time) domain.Countdown {
	total := int64(to.Sub(from) / time.Second)
	if total <= 0 {
		return domain.Countdown{}
	}
	return domain.Countdown{
		Days:         int(total / 86400),
		Hours:        int(total % 86400 / 3600),
		Minutes:      int(total % 3600 / 60),
		Seconds:      int(total % 60),
		TotalSeconds: total,
	}
}
