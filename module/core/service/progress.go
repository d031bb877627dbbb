package service

import (
	"math"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

// ComputeProgress aggregates the trip at now. An activity counts as done
// when its time window has passed or it was checked in by hand. Before the
// trip the countdown to the start replaces the percentage, which stays 0.
func ComputeProgress(s *domain.Schedule, now time.Time, checkIns domain.CheckInSet) domain.Progress {
	if s == nil {
		return domain.Progress{Status: domain.TripBeforeTrip}
	}

	p := domain.Progress{
		Status:     TripStatus(s.StartAt, s.EndAt, now),
		TotalCount: s.ActivityCount(),
	}
	for _, d := range s.Days {
		for _, a := range d.Activities {
			status := ActivityStatus(a, now)
			if status == domain.ActivityCompleted || checkIns.Has(a.ID) {
				p.CompletedCount++
			}
			if status == domain.ActivityInProgress && p.CurrentActivity == nil {
				day, act := d.Day, a
				p.CurrentDay = &day
				p.CurrentActivity = &act
			}
		}
	}
	if p.Status == domain.TripBeforeTrip {
		c := TimeUntil(now, s.StartAt)
		p.TimeUntilStart = &c
		return p
	}
	p.Percentage = percent(p.CompletedCount, p.TotalCount)
	return p
}

// DayProgress is the share of the day's activities whose window has passed.
// Manual check-ins are not counted here.
func DayProgress(day domain.TravelDay, now time.Time) int {
	done := 0
	for _, a := range day.Activities {
		if ActivityStatus(a, now) == domain.ActivityCompleted {
			done++
		}
	}
	return percent(done, len(day.Activities))
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
