// server/internal/models/donation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-rescue-api-server/internal/geo"
)

type Donation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonationID string             `bson:"donationID" json:"donationID"` // e.g., "DON-1a2b3c4d"

	DonorID      string       `bson:"donorID" json:"donorID"`
	DonorDetails DonorDetails `bson:"donorDetails" json:"donorDetails"`

	FoodItem      string `bson:"foodItem" json:"foodItem"`
	FoodType      string `bson:"foodType" json:"foodType"` // e.g., "Cooked", "Packaged", "Produce"
	Quantity      string `bson:"quantity" json:"quantity"`
	Packaging     string `bson:"packaging,omitempty" json:"packaging,omitempty"`
	Servings      int    `bson:"servings,omitempty" json:"servings,omitempty"`
	Refrigerated  bool   `bson:"refrigerated" json:"refrigerated"`
	StorageNotes  string `bson:"storageNotes,omitempty" json:"storageNotes,omitempty"`
	ContactNumber string `bson:"contactNumber" json:"contactNumber"`
	PhotoURL      string `bson:"photoURL,omitempty" json:"photoURL,omitempty"`

	// LocationLabel is display-only; Location is the source of truth.
	LocationLabel  string     `bson:"locationLabel,omitempty" json:"locationLabel,omitempty"`
	Location       *geo.Point `bson:"location,omitempty" json:"location,omitempty"`
	PickupTimeSlot string     `bson:"pickupTimeSlot,omitempty" json:"pickupTimeSlot,omitempty"`
	Urgency        string     `bson:"urgency,omitempty" json:"urgency,omitempty"`
	NeedsVehicle   bool       `bson:"needsVehicle" json:"needsVehicle"`

	PreparedAt    time.Time `bson:"preparedAt" json:"preparedAt"`
	AvailableFrom time.Time `bson:"availableFrom" json:"availableFrom"`
	ExpiresAt     time.Time `bson:"expiresAt" json:"expiresAt"`

	Status      string `bson:"status" json:"status"` // Available, Picked, InTransit, Delivered
	VolunteerID string `bson:"volunteerID,omitempty" json:"volunteerID,omitempty"`

	// Set when the donation fulfills a standing NgoRequest (Path A) or a
	// volunteer recommends an NGO (Path B).
	NgoRequestID string      `bson:"ngoRequestID,omitempty" json:"ngoRequestID,omitempty"`
	NgoDetails   *NgoDetails `bson:"ngoDetails,omitempty" json:"ngoDetails,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
