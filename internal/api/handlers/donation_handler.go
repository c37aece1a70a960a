// server/internal/api/handlers/donation_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/geo"
	"food-rescue-api-server/internal/geocode"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/linking"
	"food-rescue-api-server/internal/matching"
	"food-rescue-api-server/internal/s3"
	"food-rescue-api-server/internal/store"
)

type DonationHandler struct {
	Engine   *lifecycle.Engine
	Matcher  *matching.Service
	Workflow *linking.Workflow
	Store    store.Store
	Uploader *s3.Uploader
	Geocoder *geocode.Client
}

type CreateDonationRequest struct {
	FoodItem       string              `json:"foodItem" binding:"required"`
	FoodType       string              `json:"foodType" binding:"required"`
	Quantity       string              `json:"quantity" binding:"required"`
	Packaging      string              `json:"packaging"`
	Servings       int                 `json:"servings"`
	Refrigerated   bool                `json:"refrigerated"`
	StorageNotes   string              `json:"storageNotes"`
	ContactNumber  string              `json:"contactNumber"`
	LocationLabel  string              `json:"locationLabel"`
	Coordinates    *CoordinatesPayload `json:"coordinates"`
	PickupTimeSlot string              `json:"pickupTimeSlot"`
	Urgency        string              `json:"urgency"`
	NeedsVehicle   bool                `json:"needsVehicle"`
	PreparedAt     time.Time           `json:"preparedAt" binding:"required"`
	AvailableFrom  time.Time           `json:"availableFrom"`
	ExpiresAt      time.Time           `json:"expiresAt" binding:"required"`
	NgoRequestID   string              `json:"ngoRequestId"`
}

type EditDonationRequest struct {
	FoodItem       *string             `json:"foodItem"`
	FoodType       *string             `json:"foodType"`
	Quantity       *string             `json:"quantity"`
	Packaging      *string             `json:"packaging"`
	Servings       *int                `json:"servings"`
	Refrigerated   *bool               `json:"refrigerated"`
	StorageNotes   *string             `json:"storageNotes"`
	ContactNumber  *string             `json:"contactNumber"`
	LocationLabel  *string             `json:"locationLabel"`
	Coordinates    *CoordinatesPayload `json:"coordinates"`
	PickupTimeSlot *string             `json:"pickupTimeSlot"`
	Urgency        *string             `json:"urgency"`
	NeedsVehicle   *bool               `json:"needsVehicle"`
	PreparedAt     *time.Time          `json:"preparedAt"`
	AvailableFrom  *time.Time          `json:"availableFrom"`
	ExpiresAt      *time.Time          `json:"expiresAt"`
}

type NearbyDonationsRequest struct {
	UserID   string    `json:"userId"`
	Location []float64 `json:"location"` // [lat, lng]
	Filters  struct {
		FoodType      string  `json:"foodType"`
		Urgency       string  `json:"urgency"`
		NeedsVehicle  *bool   `json:"needsVehicle"`
		PickupSlot    string  `json:"pickupSlot"`
		MaxDistanceKm float64 `json:"maxDistanceKm"`
	} `json:"filters"`
}

// CreateDonation stores a new donation in Available state. When the body
// references an NgoRequest, the linkage runs after the insert; a bad
// reference degrades to an unlinked donation instead of losing the
// submission.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	donorID := c.GetString("user_id")

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point := req.Coordinates.Point()
	label := req.LocationLabel
	if label == "" && point != nil && h.Geocoder != nil {
		lookupCtx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		resolved, err := h.Geocoder.Reverse(lookupCtx, point.Latitude, point.Longitude)
		cancel()
		if err != nil {
			log.Printf("reverse geocoding failed, keeping empty label: %v", err)
		} else {
			label = resolved
		}
	}

	donation, err := h.Engine.CreateDonation(c.Request.Context(), lifecycle.CreateDonationInput{
		DonorID:        donorID,
		FoodItem:       req.FoodItem,
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		Packaging:      req.Packaging,
		Servings:       req.Servings,
		Refrigerated:   req.Refrigerated,
		StorageNotes:   req.StorageNotes,
		ContactNumber:  req.ContactNumber,
		LocationLabel:  label,
		Location:       point,
		PickupTimeSlot: req.PickupTimeSlot,
		Urgency:        req.Urgency,
		NeedsVehicle:   req.NeedsVehicle,
		PreparedAt:     req.PreparedAt,
		AvailableFrom:  req.AvailableFrom,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.NgoRequestID != "" {
		linked, linkErr := h.Workflow.LinkDonationToRequest(c.Request.Context(), donation.DonationID, req.NgoRequestID)
		if linkErr != nil {
			// Graceful degradation: the donation stands, just without the
			// NGO linkage.
			log.Printf("could not link donation %s to request %s: %v", donation.DonationID, req.NgoRequestID, linkErr)
		} else {
			donation = linked
		}
	}

	c.JSON(http.StatusCreated, donation)
}

func (h *DonationHandler) UpdateDonation(c *gin.Context) {
	donationID := c.Param("id")

	var req EditDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.Engine.EditDonation(c.Request.Context(), donationID, lifecycle.EditDonationInput{
		FoodItem:       req.FoodItem,
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		Packaging:      req.Packaging,
		Servings:       req.Servings,
		Refrigerated:   req.Refrigerated,
		StorageNotes:   req.StorageNotes,
		ContactNumber:  req.ContactNumber,
		LocationLabel:  req.LocationLabel,
		Location:       req.Coordinates.Point(),
		PickupTimeSlot: req.PickupTimeSlot,
		Urgency:        req.Urgency,
		NeedsVehicle:   req.NeedsVehicle,
		PreparedAt:     req.PreparedAt,
		AvailableFrom:  req.AvailableFrom,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (h *DonationHandler) DeleteDonation(c *gin.Context) {
	donationID := c.Param("id")

	if err := h.Engine.DeleteDonation(c.Request.Context(), donationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Donation deleted successfully"})
}

func (h *DonationHandler) GetDonation(c *gin.Context) {
	donation, err := h.Store.DonationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Donation not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

// GetAllDonations lists donations, optionally filtered by ?status=.
func (h *DonationHandler) GetAllDonations(c *gin.Context) {
	donations, err := h.Store.Donations(c.Request.Context(), store.DonationFilter{
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (h *DonationHandler) GetDonationsByDonor(c *gin.Context) {
	donations, err := h.Store.Donations(c.Request.Context(), store.DonationFilter{
		DonorID: c.Param("donorId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// GetDonationsAssignedToNgo lists donations carrying this NGO's snapshot,
// whether linked through a standing request or a volunteer recommendation.
func (h *DonationHandler) GetDonationsAssignedToNgo(c *gin.Context) {
	donations, err := h.Store.Donations(c.Request.Context(), store.DonationFilter{
		NgoID: c.Param("ngoId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// FindNearbyDonations matches Available donations against the seeker's
// location and filters.
func (h *DonationHandler) FindNearbyDonations(c *gin.Context) {
	var req NearbyDonationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var seeker *geo.Point
	if len(req.Location) > 0 {
		seeker = pointFromPair(req.Location)
		if seeker == nil || !seeker.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "location must be a valid [lat, lng] pair"})
			return
		}
	}

	matches, err := h.Matcher.NearbyDonations(c.Request.Context(), seeker, matching.DonationFilters{
		FoodType:      req.Filters.FoodType,
		Urgency:       req.Filters.Urgency,
		NeedsVehicle:  req.Filters.NeedsVehicle,
		PickupSlot:    req.Filters.PickupSlot,
		MaxDistanceKm: req.Filters.MaxDistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// UploadPhoto stores a donation photo in S3 and writes the URL back onto
// the donation.
func (h *DonationHandler) UploadPhoto(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}
	donationID := c.Param("id")

	if _, err := h.Store.DonationByID(c.Request.Context(), donationID); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Donation not found"})
			return
		}
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("donations/%s/%s%s", donationID, uuid.New().String()[:8], filepath.Ext(fileHeader.Filename))
	url, err := h.Uploader.UploadPhoto(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, apperr.Dependency("photo upload failed", err))
		return
	}

	if err := h.Store.SetDonationPhoto(c.Request.Context(), donationID, url); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoURL": url})
}
