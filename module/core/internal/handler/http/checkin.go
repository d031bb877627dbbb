package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type checkInService interface {
	List(ctx context.Context) ([]string, error)
	Toggle(ctx context.Context, activityID string) (bool, error)
	Clear(ctx context.Context) error
}

type checkInsResponse struct {
	ActivityIDs []string `json:"activity_ids"`
	Count       int      `json:"count"`
}

type CheckInHandler struct {
	svc checkInService
}

func NewCheckInHandler(svc checkInService) *CheckInHandler {
	return &CheckInHandler{svc: svc}
}

func (h *CheckInHandler) Register(r *gin.RouterGroup) {
	r.GET("/checkins", h.List)
	r.POST("/checkins/:id/toggle", h.Toggle)
	r.DELETE("/checkins", h.Clear)
}

func (h *CheckInHandler) List(c *gin.Context) {
	ids, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch check-ins"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, checkInsResponse{ActivityIDs: ids, Count: len(ids)})
}

func (h *CheckInHandler) Toggle(c *gin.Context) {
	id := c.Param("id")

	checked, err := h.svc.Toggle(c.Request.Context(), id)
	if errors.Is(err, domain.ErrActivityNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle check-in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity_id": id, "checked_in": checked})
}

func (h *CheckInHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear check-ins"})
		return
	}
	c.Status(http.StatusNoContent)
}
