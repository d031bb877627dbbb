package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/service"
)

const defaultDepartureBuffer = 10 * time.Minute

type overridesSource interface {
	Overrides(ctx context.Context) domain.CheckInSet
}

type positionSource interface {
	LastPosition() (domain.Position, bool)
}

type tripResponse struct {
	Title         string             `json:"title"`
	TimeZone      string             `json:"time_zone"`
	StartAt       time.Time          `json:"start_at"`
	EndAt         time.Time          `json:"end_at"`
	Status        domain.TripStatus  `json:"status"`
	ActivityCount int                `json:"activity_count"`
	Days          []domain.TravelDay `json:"days"`
}

type dayProgressResponse struct {
	Day        int    `json:"day"`
	Date       string `json:"date"`
	Percentage int    `json:"percentage"`
}

type activityStatusResponse struct {
	ActivityID string                `json:"activity_id"`
	Title      string                `json:"title"`
	Day        int                   `json:"day"`
	Status     domain.ActivityStatus `json:"status"`
	Start      time.Time             `json:"start"`
	End        time.Time             `json:"end"`
}

type etaResponse struct {
	ActivityID string                `json:"activity_id"`
	ETA        domain.ETA            `json:"eta"`
	Departure  *domain.DeparturePlan `json:"departure,omitempty"`
}

type TripHandler struct {
	schedule  *domain.Schedule
	checkins  overridesSource
	positions positionSource
	now       func() time.Time
}

func NewTripHandler(schedule *domain.Schedule, checkins overridesSource, positions positionSource) *TripHandler {
	return &TripHandler{schedule: schedule, checkins: checkins, positions: positions, now: time.Now}
}

func (h *TripHandler) Register(r *gin.RouterGroup) {
	r.GET("/trip", h.GetTrip)
	r.GET("/trip/progress", h.GetProgress)
	r.GET("/trip/days/:day/progress", h.GetDayProgress)
	r.GET("/trip/activities/:id/status", h.GetActivityStatus)
	r.GET("/trip/activities/:id/eta", h.GetActivityETA)
}

func (h *TripHandler) GetTrip(c *gin.Context) {
	c.JSON(http.StatusOK, tripResponse{
		Title:         h.schedule.Title,
		TimeZone:      h.schedule.TimeZone,
		StartAt:       h.schedule.StartAt,
		EndAt:         h.schedule.EndAt,
		Status:        service.TripStatus(h.schedule.StartAt, h.schedule.EndAt, h.now()),
		ActivityCount: h.schedule.ActivityCount(),
		Days:          h.schedule.Days,
	})
}

func (h *TripHandler) GetProgress(c *gin.Context) {
	overrides := h.checkins.Overrides(c.Request.Context())
	c.JSON(http.StatusOK, service.ComputeProgress(h.schedule, h.now(), overrides))
}

func (h *TripHandler) GetDayProgress(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day parameter"})
		return
	}

	day, ok := h.schedule.FindDay(n)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "day not found"})
		return
	}

	c.JSON(http.StatusOK, dayProgressResponse{
		Day:        day.Day,
		Date:       day.Date,
		Percentage: service.DayProgress(day, h.now()),
	})
}

func (h *TripHandler) GetActivityStatus(c *gin.Context) {
	day, a, ok := h.schedule.FindActivity(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		return
	}

	c.JSON(http.StatusOK, activityStatusResponse{
		ActivityID: a.ID,
		Title:      a.Title,
		Day:        day.Day,
		Status:     service.ActivityStatus(a, h.now()),
		Start:      a.Start,
		End:        a.End(),
	})
}

// GetActivityETA estimates travel from the last known position to the
// activity. Upcoming activities also get a departure plan; ?buffer is in
// minutes.
func (h *TripHandler) GetActivityETA(c *gin.Context) {
	mode, err := service.ParseTransportMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buffer := defaultDepartureBuffer
	if v := c.Query("buffer"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buffer parameter"})
			return
		}
		buffer = time.Duration(minutes) * time.Minute
	}

	_, a, ok := h.schedule.FindActivity(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		return
	}
	if a.Location == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "activity has no location"})
		return
	}

	p, ok := h.positions.LastPosition()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no known position"})
		return
	}

	now := h.now()
	resp := etaResponse{
		ActivityID: a.ID,
		ETA:        service.EstimateETA(p.Coord, a.Location.Coord(), mode, now),
	}
	if service.ActivityStatus(a, now) == domain.ActivityUpcoming {
		plan := service.PlanDeparture(a.Start, p.Coord, a.Location.Coord(), mode, buffer, now)
		resp.Departure = &plan
	}
	c.JSON(http.StatusOK, resp)
}
