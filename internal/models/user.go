// server/internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"food-rescue-api-server/internal/geo"
)

// NgoProfile carries the NGO-only fields of a user.
type NgoProfile struct {
	NgoName        string              `bson:"ngoName" json:"ngoName"`
	Address        string              `bson:"address" json:"address"`
	OperatingHours geo.OperatingWindow `bson:"operatingHours" json:"operatingHours"`
}

// User matches the document in MongoDB. Identity itself is owned by the auth
// subsystem; the engine only reads role and profile fields.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"userID" json:"userID"` // e.g., "USR-1a2b3c4d"
	Email         string             `bson:"email" json:"email"`
	Name          string             `bson:"name" json:"name"`
	Password      string             `bson:"password" json:"-"`
	Role          string             `bson:"role" json:"role"` // donor, volunteer, ngo, admin
	ContactNumber string             `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Location      *geo.Point         `bson:"location,omitempty" json:"location,omitempty"`
	NgoProfile    *NgoProfile        `bson:"ngoProfile,omitempty" json:"ngoProfile,omitempty"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
