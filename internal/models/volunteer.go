// server/internal/models/volunteer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Volunteer is a capability record layered on a User. Creation is idempotent:
// at most one record per user, created on first volunteer-role activity.
type Volunteer struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string             `bson:"userID" json:"userID"`
	Available         bool               `bson:"available" json:"available"`
	AssignedDonations []string           `bson:"assignedDonations" json:"assignedDonations"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
