// server/internal/api/handlers/ngo_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"food-rescue-api-server/internal/linking"
	"food-rescue-api-server/internal/matching"
	"food-rescue-api-server/internal/store"
)

type NgoHandler struct {
	Matcher  *matching.Service
	Workflow *linking.Workflow
	Store    store.Store
}

type CreateNgoRequestPayload struct {
	FoodItem      string     `json:"foodItem"`
	FoodType      string     `json:"foodType" binding:"required"`
	Quantity      string     `json:"quantity" binding:"required"`
	Urgency       string     `json:"urgency"`
	PreferredDate *time.Time `json:"preferredDate"`
	Location      string     `json:"location"`
}

// FindNearbyNgos is the NGO-side variant of the proximity query; NGOs use it
// to see peers, volunteers use the volunteer route.
func (h *NgoHandler) FindNearbyNgos(c *gin.Context) {
	var req NearbyNgosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seeker := pointFromPair(req.Location)
	if seeker == nil || !seeker.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location must be a valid [lat, lng] pair"})
		return
	}

	ngos, err := h.Matcher.NearbyNgos(c.Request.Context(), *seeker, req.MaxDistanceKm*1000, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ngos)
}

// CreateRequest records a standing food request for the calling NGO.
func (h *NgoHandler) CreateRequest(c *gin.Context) {
	var req CreateNgoRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, _, err := h.Workflow.CreateRequest(c.Request.Context(), linking.CreateRequestInput{
		NgoID:         c.GetString("user_id"),
		FoodItem:      req.FoodItem,
		FoodType:      req.FoodType,
		Quantity:      req.Quantity,
		Urgency:       req.Urgency,
		PreferredDate: req.PreferredDate,
		Location:      req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetRequests lists an NGO's requests, standing and recommended.
func (h *NgoHandler) GetRequests(c *gin.Context) {
	requests, err := h.Store.NgoRequestsByNgo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// CancelRequest withdraws a Pending request on behalf of its creator.
func (h *NgoHandler) CancelRequest(c *gin.Context) {
	if err := h.Workflow.CancelRequest(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}
