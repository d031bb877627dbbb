package service

import (
	"testing"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

var kst = time.FixedZone("KST", 9*60*60)

func intPtr(v int) *int { return &v }

func mustCombine(t *testing.T, date, hhmm string) time.Time {
	t.Helper()
	ts, err := CombineDateAndTime(date, hhmm, kst)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	return ts
}

func scheduledActivity(t *testing.T, id, date, hhmm string, minutes *int) domain.Activity {
	t.Helper()
	return domain.Activity{
		ID:              id,
		Time:            hhmm,
		Title:           "Activity " + id,
		DurationMinutes: minutes,
		Start:           mustCombine(t, date, hhmm),
	}
}

// testSchedule builds a two-day trip with five activities, the first two on
// day 1 and the rest on day 2.
func testSchedule(t *testing.T) *domain.Schedule {
	t.Helper()
	loc := &domain.Location{Lat: marbleMountains.Lat, Lon: marbleMountains.Lon, Address: "Marble Mountains"}
	day1 := domain.TravelDay{Day: 1, Date: "2026-01-15", Activities: []domain.Activity{
		scheduledActivity(t, "d1-1", "2026-01-15", "13:00", nil),
		scheduledActivity(t, "d1-2", "2026-01-15", "15:00", intPtr(90)),
	}}
	day2 := domain.TravelDay{Day: 2, Date: "2026-01-16", Activities: []domain.Activity{
		scheduledActivity(t, "d2-1", "2026-01-16", "09:00", nil),
		scheduledActivity(t, "d2-2", "2026-01-16", "11:00", intPtr(30)),
		scheduledActivity(t, "d2-3", "2026-01-16", "14:00", nil),
	}}
	day2.Activities[2].Location = loc
	return &domain.Schedule{
		Title:     "Da Nang",
		TimeZone:  "Asia/Seoul",
		StartDate: "2026-01-15",
		EndDate:   "2026-01-19",
		Days:      []domain.TravelDay{day1, day2},
		StartAt:   time.Date(2026, 1, 15, 0, 0, 0, 0, kst),
		EndAt:     time.Date(2026, 1, 19, 23, 59, 59, 0, kst),
		Zone:      kst,
	}
}

func TestActivityStatus_Boundaries(t *testing.T) {
	a := scheduledActivity(t, "a", "2026-01-15", "13:00", intPtr(60))

	tests := []struct {
		name string
		now  time.Time
		want domain.ActivityStatus
	}{
		{"before start", time.Date(2026, 1, 15, 12, 59, 0, 0, kst), domain.ActivityUpcoming},
		{"at start", time.Date(2026, 1, 15, 13, 0, 0, 0, kst), domain.ActivityInProgress},
		{"just before end", time.Date(2026, 1, 15, 13, 59, 59, 0, kst), domain.ActivityInProgress},
		{"at end", time.Date(2026, 1, 15, 14, 0, 0, 0, kst), domain.ActivityCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityStatus(a, tt.now); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestActivityStatus_ZeroDurationIsCompleted(t *testing.T) {
	a := scheduledActivity(t, "a", "2026-01-15", "13:00", intPtr(0))
	if got := ActivityStatus(a, a.Start); got != domain.ActivityCompleted {
		t.Fatalf("expected COMPLETED, got %s", got)
	}
}

func TestActivityStatus_DefaultDuration(t *testing.T) {
	a := scheduledActivity(t, "a", "2026-01-15", "13:00", nil)
	if got := ActivityStatus(a, a.Start.Add(59*time.Minute)); got != domain.ActivityInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", got)
	}
	if got := ActivityStatus(a, a.Start.Add(60*time.Minute)); got != domain.ActivityCompleted {
		t.Errorf("expected COMPLETED, got %s", got)
	}
}

func TestActivityStatus_ObserverZoneIrrelevant(t *testing.T) {
	a := scheduledActivity(t, "a", "2026-01-15", "13:00", nil)
	// 13:30 KST seen from Da Nang (UTC+7) and from UTC.
	ict := time.FixedZone("ICT", 7*60*60)
	for _, now := range []time.Time{
		time.Date(2026, 1, 15, 11, 30, 0, 0, ict),
		time.Date(2026, 1, 15, 4, 30, 0, 0, time.UTC),
	} {
		if got := ActivityStatus(a, now); got != domain.ActivityInProgress {
			t.Errorf("now=%s: expected IN_PROGRESS, got %s", now, got)
		}
	}
}

func TestTripStatus(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, kst)
	end := time.Date(2026, 1, 19, 23, 59, 59, 0, kst)

	tests := []struct {
		name string
		now  time.Time
		want domain.TripStatus
	}{
		{"before", time.Date(2026, 1, 10, 12, 0, 0, 0, kst), domain.TripBeforeTrip},
		{"at start", start, domain.TripInProgress},
		{"during", time.Date(2026, 1, 17, 12, 0, 0, 0, kst), domain.TripInProgress},
		{"at end", end, domain.TripInProgress},
		{"after", time.Date(2026, 1, 20, 12, 0, 0, 0, kst), domain.TripCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TripStatus(start, end, tt.now); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCurrentActivity(t *testing.T) {
	s := testSchedule(t)

	day, a, ok := CurrentActivity(s, time.Date(2026, 1, 16, 11, 10, 0, 0, kst))
	if !ok {
		t.Fatal("expected a current activity")
	}
	if day.Day != 2 || a.ID != "d2-2" {
		t.Errorf("expected day 2 d2-2, got day %d %s", day.Day, a.ID)
	}

	if _, _, ok := CurrentActivity(s, time.Date(2026, 1, 16, 12, 0, 0, 0, kst)); ok {
		t.Error("expected no current activity in a gap")
	}
	if _, _, ok := CurrentActivity(nil, time.Now()); ok {
		t.Error("expected no current activity for nil schedule")
	}
}

func TestNextActivity(t *testing.T) {
	s := testSchedule(t)

	_, a, ok := NextActivity(s, time.Date(2026, 1, 16, 12, 0, 0, 0, kst))
	if !ok || a.ID != "d2-3" {
		t.Fatalf("expected d2-3, got %s (ok=%t)", a.ID, ok)
	}
	if _, _, ok := NextActivity(s, time.Date(2026, 1, 17, 0, 0, 0, 0, kst)); ok {
		t.Error("expected no next activity after the last one")
	}
}

func TestCombineDateAndTime(t *testing.T) {
	got, err := CombineDateAndTime("2026-01-15", "13:00", kst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 15, 4, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}

	if _, err := CombineDateAndTime("2026-01-15", "25:00", kst); err == nil {
		t.Error("expected error for invalid time")
	}
}

func TestTimeUntil(t *testing.T) {
	from := time.Date(2026, 1, 10, 0, 0, 0, 0, kst)
	to := from.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second)

	got := TimeUntil(from, to)
	want := domain.Countdown{Days: 2, Hours: 3, Minutes: 4, Seconds: 5, TotalSeconds: 183845}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if got := TimeUntil(to, from); got != (domain.Countdown{}) {
		t.Errorf("expected zero countdown, got %+v", got)
	}
}
