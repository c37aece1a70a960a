// server/internal/models/pickup_assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickupAssignment binds one volunteer to one donation. At most one active
// assignment exists per donation; the store's unique index on
// (volunteerID, donationID) rejects duplicate claims from the same volunteer.
type PickupAssignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PickupID    string             `bson:"pickupID" json:"pickupID"` // e.g., "PCK-1a2b3c4d"
	DonationID  string             `bson:"donationID" json:"donationID"`
	VolunteerID string             `bson:"volunteerID" json:"volunteerID"`
	Status      string             `bson:"status" json:"status"` // Accepted, InTransit, Delivered
	AcceptedAt  time.Time          `bson:"acceptedAt" json:"acceptedAt"`
	DeliveredAt *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}
