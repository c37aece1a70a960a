// server/internal/api/handlers/user_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"food-rescue-api-server/internal/auth"
	"food-rescue-api-server/internal/geo"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

type UserHandler struct {
	Store store.Store
}

type NgoProfilePayload struct {
	NgoName       string   `json:"ngoName" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	OperatingDays []string `json:"operatingDays" binding:"required"`
	OpenTime      string   `json:"openTime" binding:"required"`  // "HH:MM"
	CloseTime     string   `json:"closeTime" binding:"required"` // "HH:MM"
}

type RegisterRequest struct {
	Email         string              `json:"email" binding:"required,email"`
	Name          string              `json:"name" binding:"required"`
	Password      string              `json:"password" binding:"required,min=8"`
	Role          string              `json:"role" binding:"required"`
	ContactNumber string              `json:"contactNumber"`
	Coordinates   *CoordinatesPayload `json:"coordinates"`
	NgoProfile    *NgoProfilePayload  `json:"ngoProfile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Role {
	case models.RoleDonor, models.RoleVolunteer, models.RoleNgo:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be donor, volunteer or ngo"})
		return
	}

	point := req.Coordinates.Point()
	if point != nil && !point.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	var ngoProfile *models.NgoProfile
	if req.Role == models.RoleNgo {
		if req.NgoProfile == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ngoProfile is required for the ngo role"})
			return
		}
		open, err := geo.ParseClock(req.NgoProfile.OpenTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		closeMin, err := geo.ParseClock(req.NgoProfile.CloseTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ngoProfile = &models.NgoProfile{
			NgoName: req.NgoProfile.NgoName,
			Address: req.NgoProfile.Address,
			OperatingHours: geo.OperatingWindow{
				Days:        req.NgoProfile.OperatingDays,
				OpenMinute:  open,
				CloseMinute: closeMin,
			},
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		UserID:        fmt.Sprintf("USR-%s", uuid.New().String()[:8]),
		Email:         req.Email,
		Name:          req.Name,
		Password:      hashedPassword,
		Role:          req.Role,
		ContactNumber: req.ContactNumber,
		Location:      point,
		NgoProfile:    ngoProfile,
		Status:        "active",
		CreatedAt:     time.Now(),
	}
	if err := h.Store.InsertUser(c.Request.Context(), user); err != nil {
		if err == store.ErrDuplicate {
			c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.UserID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
