// server/internal/api/handlers/common.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/geo"
)

// respondError maps the engine's typed errors onto status codes:
// validation and illegal transitions are 400, unknown ids 404, lost races
// and uniqueness violations 409. Anything untyped is a 500.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidState:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperr.KindDependency:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CoordinatesPayload is the {lat,lng} object used across request bodies.
// Pointers distinguish "missing" from a legitimate zero coordinate.
type CoordinatesPayload struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (p *CoordinatesPayload) Point() *geo.Point {
	if p == nil || p.Lat == nil || p.Lng == nil {
		return nil
	}
	return &geo.Point{Latitude: *p.Lat, Longitude: *p.Lng}
}

// pointFromPair converts the [lat,lng] array form used by the nearby
// endpoints.
func pointFromPair(pair []float64) *geo.Point {
	if len(pair) != 2 {
		return nil
	}
	return &geo.Point{Latitude: pair[0], Longitude: pair[1]}
}
