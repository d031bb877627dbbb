package domain

type ActivityStatus string

const (
	ActivityUpcoming   ActivityStatus = "UPCOMING"
	ActivityInProgress ActivityStatus = "IN_PROGRESS"
	ActivityCompleted  ActivityStatus = "COMPLETED"
)

type TripStatus string

const (
	TripBeforeTrip TripStatus = "BEFORE_TRIP"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
)

type Countdown struct {
	Days         int   `json:"days"`
	Hours        int   `json:"hours"`
	Minutes      int   `json:"minutes"`
	Seconds      int   `json:"seconds"`
	TotalSeconds int64 `json:"total_seconds"`
}

type Progress struct {
	Status          TripStatus `json:"status"`
	CurrentDay      *int       `json:"current_day"`
	CurrentActivity *Activity  `json:"current_activity"`
	CompletedCount  int        `json:"completed_count"`
	TotalCount      int        `json:"total_count"`
	Percentage      int        `json:"percentage"`
	TimeUntilStart  *Countdown `json:"time_until_start,omitempty"`
}

// CheckInSet holds the ids of activities the user marked complete by hand.
type CheckInSet map[string]struct{}

func NewCheckInSet(ids ...string) CheckInSet {
	s := make(CheckInSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s CheckInSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
