package domain

import "time"

// DefaultActivityDuration applies when an activity does not state a duration.
const DefaultActivityDuration = 60 * time.Minute

type Location struct {
	Lat     float64 `yaml:"latitude" json:"latitude" validate:"latitude"`
	Lon     float64 `yaml:"longitude" json:"longitude" validate:"longitude"`
	Address string  `yaml:"address" json:"address,omitempty"`
}

func (l Location) Coord() Coord {
	return Coord{Lat: l.Lat, Lon: l.Lon}
}

// Activity is one scheduled stop. Time is the local start time (HH:mm) in the
// trip time zone; Start is resolved from the owning day when the schedule is
// loaded.
type Activity struct {
	ID              string    `yaml:"id" json:"id" validate:"required"`
	Time            string    `yaml:"time" json:"time" validate:"required,datetime=15:04"`
	Title           string    `yaml:"title" json:"title" validate:"required"`
	Description     string    `yaml:"description" json:"description,omitempty"`
	DurationMinutes *int      `yaml:"duration" json:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
	Location        *Location `yaml:"location" json:"location,omitempty"`
	Start           time.Time `yaml:"-" json:"start"`
}

func (a Activity) Duration() time.Duration {
	if a.DurationMinutes == nil {
		return DefaultActivityDuration
	}
	return time.Duration(*a.DurationMinutes) * time.Minute
}

func (a Activity) End() time.Time {
	return a.Start.Add(a.Duration())
}

type TravelDay struct {
	Day        int        `yaml:"day" json:"day" validate:"gte=1"`
	Date       string     `yaml:"date" json:"date" validate:"required,datetime=2006-01-02"`
	DayOfWeek  string     `yaml:"day_of_week" json:"day_of_week,omitempty"`
	Activities []Activity `yaml:"activities" json:"activities" validate:"dive"`
}

// Schedule is read-only for the lifetime of a tracking session. Day and
// activity order is significant.
type Schedule struct {
	Title     string      `yaml:"title" json:"title" validate:"required"`
	TimeZone  string      `yaml:"time_zone" json:"time_zone" validate:"required"`
	StartDate string      `yaml:"start_date" json:"-" validate:"required"`
	EndDate   string      `yaml:"end_date" json:"-" validate:"required"`
	Days      []TravelDay `yaml:"days" json:"days" validate:"dive"`

	StartAt time.Time      `yaml:"-" json:"start_at"`
	EndAt   time.Time      `yaml:"-" json:"end_at"`
	Zone    *time.Location `yaml:"-" json:"-"`
}

func (s *Schedule) ActivityCount() int {
	n := 0
	for _, d := range s.Days {
		n += len(d.Activities)
	}
	return n
}

func (s *Schedule) FindActivity(id string) (TravelDay, Activity, bool) {
	for _, d := range s.Days {
		for _, a := range d.Activities {
			if a.ID == id {
				return d, a, true
			}
		}
	}
	return TravelDay{}, Activity{}, false
}

func (s *Schedule) FindDay(day int) (TravelDay, bool) {
	for _, d := range s.Days {
		if d.Day == day {
			return d, true
		}
	}
	return TravelDay{}, false
}
