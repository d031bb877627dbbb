package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type geofenceRegistry interface {
	Geofences() []domain.Geofence
	Active() []domain.Geofence
	Inside() []domain.Geofence
	FindNearestActive(c domain.Coord) (domain.Geofence, float64, bool)
}

type nearestResponse struct {
	Geofence       domain.Geofence `json:"geofence"`
	DistanceMeters float64         `json:"distance_meters"`
}

type GeofenceHandler struct {
	engine    geofenceRegistry
	positions positionSource
}

func NewGeofenceHandler(engine geofenceRegistry, positions positionSource) *GeofenceHandler {
	return &GeofenceHandler{engine: engine, positions: positions}
}

func (h *GeofenceHandler) Register(r *gin.RouterGroup) {
	r.GET("/geofences", h.GetGeofences)
	r.GET("/geofences/nearest", h.GetNearest)
}

// GetGeofences lists registered geofences; ?filter=active|inside narrows it.
func (h *GeofenceHandler) GetGeofences(c *gin.Context) {
	var fences []domain.Geofence
	switch c.Query("filter") {
	case "":
		fences = h.engine.Geofences()
	case "active":
		fences = h.engine.Active()
	case "inside":
		fences = h.engine.Inside()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter parameter"})
		return
	}
	c.JSON(http.StatusOK, fences)
}

// GetNearest uses ?lat=&lon= when both are given, otherwise the last known
// position.
func (h *GeofenceHandler) GetNearest(c *gin.Context) {
	var from domain.Coord
	if c.Query("lat") != "" || c.Query("lon") != "" {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil || lat < -90 || lat > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat parameter"})
			return
		}
		lon, err := strconv.ParseFloat(c.Query("lon"), 64)
		if err != nil || lon < -180 || lon > 180 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon parameter"})
			return
		}
		from = domain.Coord{Lat: lat, Lon: lon}
	} else {
		p, ok := h.positions.LastPosition()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no known position"})
			return
		}
		from = p.Coord
	}

	g, d, ok := h.engine.FindNearestActive(from)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active geofence"})
		return
	}
	c.JSON(http.StatusOK, nearestResponse{Geofence: g, DistanceMeters: d})
}
