package schedule

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

// LoadFile reads and resolves a trip schedule from a YAML file.
func LoadFile(path string) (*domain.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a schedule, then resolves every activity start
// and the trip bounds in the schedule's time zone. A date-only start_date
// begins at midnight; a date-only end_date runs to the last second of that
// day. RFC 3339 timestamps are taken as is.
func Parse(data []byte) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	v := validator.New()
	if err := v.Struct(s); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	zone, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", s.TimeZone, err)
	}
	s.Zone = zone

	if s.StartAt, err = parseBound(s.StartDate, zone, false); err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	if s.EndAt, err = parseBound(s.EndDate, zone, true); err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if s.EndAt.Before(s.StartAt) {
		return nil, fmt.Errorf("end_date %s is before start_date %s", s.EndDate, s.StartDate)
	}

	seen := make(map[string]struct{})
	for i := range s.Days {
		day := &s.Days[i]
		for j := range day.Activities {
			a := &day.Activities[j]
			if _, dup := seen[a.ID]; dup {
				return nil, fmt.Errorf("duplicate activity id %q", a.ID)
			}
			seen[a.ID] = struct{}{}

			a.Start, err = time.ParseInLocation("2006-01-02 15:04", day.Date+" "+a.Time, zone)
			if err != nil {
				return nil, fmt.Errorf("activity %s: %w", a.ID, err)
			}
		}
	}
	return &s, nil
}

func parseBound(v string, zone *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, zone)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	return t, nil
}
