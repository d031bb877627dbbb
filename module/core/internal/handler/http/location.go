package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type locationStream interface {
	CheckPermission(ctx context.Context) domain.PermissionState
	RequestPermission(ctx context.Context) bool
	StartWatching()
	StopWatching()
	SetProfile(profile domain.TrackingProfile)
	Profile() domain.TrackingProfile
	Watching() bool
	LastPosition() (domain.Position, bool)
}

type historyService interface {
	GetLatest(ctx context.Context, deviceID string) (*domain.DevicePosition, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error)
	ListDevices(ctx context.Context) ([]string, error)
	DeviceID() string
}

type positionResponse struct {
	DeviceID  string   `json:"device_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type watchResponse struct {
	Watching bool   `json:"watching"`
	Profile  string `json:"profile"`
}

type profileRequest struct {
	Profile string `json:"profile" binding:"required"`
}

type LocationHandler struct {
	stream  locationStream
	history historyService
}

func NewLocationHandler(stream locationStream, history historyService) *LocationHandler {
	return &LocationHandler{stream: stream, history: history}
}

func (h *LocationHandler) Register(r *gin.RouterGroup) {
	r.GET("/location/permission", h.GetPermission)
	r.POST("/location/permission", h.RequestPermission)
	r.POST("/location/watch", h.StartWatching)
	r.DELETE("/location/watch", h.StopWatching)
	r.PUT("/location/profile", h.SetProfile)
	r.GET("/location/current", h.GetCurrent)
	r.GET("/location/history", h.GetHistory)
	r.GET("/location/devices", h.GetDevices)
	r.GET("/location/devices/:device_id/latest", h.GetDeviceLatest)
}

func (h *LocationHandler) GetPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.stream.CheckPermission(c.Request.Context())})
}

func (h *LocationHandler) RequestPermission(c *gin.Context) {
	granted := h.stream.RequestPermission(c.Request.Context())
	state := domain.PermissionDenied
	if granted {
		state = domain.PermissionGranted
	}
	c.JSON(http.StatusOK, gin.H{"granted": granted, "state": state})
}

func (h *LocationHandler) StartWatching(c *gin.Context) {
	h.stream.StartWatching()
	c.JSON(http.StatusOK, h.watchStatus())
}

func (h *LocationHandler) StopWatching(c *gin.Context) {
	h.stream.StopWatching()
	c.JSON(http.StatusOK, h.watchStatus())
}

func (h *LocationHandler) SetProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := domain.ProfileByName(req.Profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.stream.SetProfile(profile)
	c.JSON(http.StatusOK, h.watchStatus())
}

func (h *LocationHandler) GetCurrent(c *gin.Context) {
	p, ok := h.stream.LastPosition()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no known position"})
		return
	}
	c.JSON(http.StatusOK, toPositionResponse(h.history.DeviceID(), p))
}

func (h *LocationHandler) GetHistory(c *gin.Context) {
	deviceID := c.DefaultQuery("device_id", h.history.DeviceID())

	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	query := &domain.HistoryQuery{
		DeviceID: deviceID,
		Start:    time.Unix(start, 0),
		End:      time.Unix(end, 0),
	}

	positions, err := h.history.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]positionResponse, len(positions))
	for i, dp := range positions {
		results[i] = toPositionResponse(dp.DeviceID, dp.Position)
	}
	c.JSON(http.StatusOK, results)
}

func (h *LocationHandler) GetDevices(c *gin.Context) {
	ids, err := h.history.ListDevices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch devices"})
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *LocationHandler) GetDeviceLatest(c *gin.Context) {
	dp, err := h.history.GetLatest(c.Request.Context(), c.Param("device_id"))
	if errors.Is(err, domain.ErrNoPosition) {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch position"})
		return
	}
	c.JSON(http.StatusOK, toPositionResponse(dp.DeviceID, dp.Position))
}

func (h *LocationHandler) watchStatus() watchResponse {
	return watchResponse{Watching: h.stream.Watching(), Profile: h.stream.Profile().Name}
}

func toPositionResponse(deviceID string, p domain.Position) positionResponse {
	return positionResponse{
		DeviceID:  deviceID,
		Latitude:  p.Lat,
		Longitude: p.Lon,
		Accuracy:  p.Accuracy,
		Speed:     p.Speed,
		Heading:   p.Heading,
		Timestamp: p.Timestamp.Unix(),
	}
}
