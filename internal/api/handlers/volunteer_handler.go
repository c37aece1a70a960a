// server/internal/api/handlers/volunteer_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/linking"
	"food-rescue-api-server/internal/matching"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/notify"
	"food-rescue-api-server/internal/store"
)

type VolunteerHandler struct {
	Engine   *lifecycle.Engine
	Matcher  *matching.Service
	Workflow *linking.Workflow
	Store    store.Store
	Notifier *notify.Notifier
}

type AcceptDonationRequest struct {
	Volunteer string `json:"volunteer"`
}

type RecommendNgoRequest struct {
	NgoID string `json:"ngoId" binding:"required"`
}

type VolunteerNgoRequest struct {
	NgoID         string     `json:"ngoId" binding:"required"`
	FoodItem      string     `json:"foodItem"`
	FoodType      string     `json:"foodType" binding:"required"`
	Quantity      string     `json:"quantity" binding:"required"`
	Urgency       string     `json:"urgency"`
	PreferredDate *time.Time `json:"preferredDate"`
	Location      string     `json:"location"`
}

type NearbyNgosRequest struct {
	Location      []float64 `json:"location" binding:"required"` // [lat, lng]
	MaxDistanceKm float64   `json:"maxDistanceKm"`
}

// AcceptDonation arbitrates the volunteer's claim. Exactly one of any number
// of concurrent accepts wins; the rest get 409. The donor notification runs
// after the claim has committed, so its failure is only a warning.
func (h *VolunteerHandler) AcceptDonation(c *gin.Context) {
	donationID := c.Param("donationId")

	volunteerID := c.GetString("user_id")
	var req AcceptDonationRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Volunteer != "" {
		volunteerID = req.Volunteer
	}
	if volunteerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volunteer is required"})
		return
	}

	donation, pickup, err := h.Engine.Accept(c.Request.Context(), donationID, volunteerID)
	warning := ""
	if err != nil {
		if !apperr.IsDependency(err) {
			respondError(c, err)
			return
		}
		warning = err.Error()
	}

	if h.Notifier != nil {
		if err := h.Notifier.DonationClaimed(c.Request.Context(), donation.DonorID, donation); err != nil {
			warning = "donor notification could not be delivered"
		}
	}

	resp := gin.H{
		"status":   models.StatusPicked,
		"donation": donation,
		"pickup":   pickup,
	}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// StartTransit marks the pickup as on the road.
func (h *VolunteerHandler) StartTransit(c *gin.Context) {
	donation, err := h.Engine.StartTransit(c.Request.Context(), c.Param("donationId"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusInTransit, "donation": donation})
}

// ConfirmDelivery completes the lifecycle.
func (h *VolunteerHandler) ConfirmDelivery(c *gin.Context) {
	donation, err := h.Engine.ConfirmDelivery(c.Request.Context(), c.Param("donationId"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusDelivered, "donation": donation})
}

// GetPickups lists a volunteer's assignments joined with donation detail.
func (h *VolunteerHandler) GetPickups(c *gin.Context) {
	volunteerID := c.Param("id")

	pickups, err := h.Store.PickupsByVolunteer(c.Request.Context(), volunteerID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(pickups))
	for _, p := range pickups {
		entry := gin.H{"pickup": p}
		if donation, err := h.Store.DonationByID(c.Request.Context(), p.DonationID); err == nil {
			entry["donation"] = donation
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

// ToggleAvailability flips the volunteer's availability flag, creating the
// volunteer record on first use.
func (h *VolunteerHandler) ToggleAvailability(c *gin.Context) {
	userID := c.Param("id")

	if _, err := h.Store.EnsureVolunteer(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	volunteer, err := h.Store.ToggleVolunteerAvailability(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volunteer)
}

// RecommendNgo runs the recommendation workflow for a donation this
// volunteer is carrying.
func (h *VolunteerHandler) RecommendNgo(c *gin.Context) {
	var req RecommendNgoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, warning, err := h.Workflow.RecommendNgo(c.Request.Context(),
		c.Param("donationId"), c.GetString("user_id"), req.NgoID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"request": request}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// RequestNgo records a volunteer-initiated standing request for an NGO.
func (h *VolunteerHandler) RequestNgo(c *gin.Context) {
	var req VolunteerNgoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, warning, err := h.Workflow.CreateRequest(c.Request.Context(), linking.CreateRequestInput{
		NgoID:         req.NgoID,
		VolunteerID:   c.GetString("user_id"),
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

	resp := gin.H{"request": request}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusCreated, resp)
}

// FindNearbyNgos ranks NGOs that are open right now and within range.
func (h *VolunteerHandler) FindNearbyNgos(c *gin.Context) {
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
