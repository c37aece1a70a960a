// server/internal/models/ngo_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NgoRequest is a standing ask from an NGO for food, or a volunteer-initiated
// recommendation tied to a specific donation.
type NgoRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID string             `bson:"requestID" json:"requestID"` // e.g., "REQ-1a2b3c4d"

	NgoID       string `bson:"ngoID" json:"ngoID"`
	VolunteerID string `bson:"volunteerID,omitempty" json:"volunteerID,omitempty"`
	DonationID  string `bson:"donationID,omitempty" json:"donationID,omitempty"`

	FoodItem      string     `bson:"foodItem,omitempty" json:"foodItem,omitempty"`
	FoodType      string     `bson:"foodType" json:"foodType"`
	Quantity      string     `bson:"quantity" json:"quantity"`
	Urgency       string     `bson:"urgency" json:"urgency"` // Low, Medium, High
	PreferredDate *time.Time `bson:"preferredDate,omitempty" json:"preferredDate,omitempty"`
	Location      string     `bson:"location,omitempty" json:"location,omitempty"`

	Status      string    `bson:"status" json:"status"` // Pending, Accepted, Rejected
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
}
