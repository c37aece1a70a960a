// server/internal/models/common.go
package models

// Donation status values. Picked may only be reached from Available,
// Delivered is terminal.
const (
	StatusAvailable = "Available"
	StatusPicked    = "Picked"
	StatusInTransit = "InTransit"
	StatusDelivered = "Delivered"
)

// PickupAssignment status values.
const (
	PickupAccepted  = "Accepted"
	PickupInTransit = "InTransit"
	PickupDelivered = "Delivered"
)

// NgoRequest status values.
const (
	RequestPending  = "Pending"
	RequestAccepted = "Accepted"
	RequestRejected = "Rejected"
)

// User roles.
const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleNgo       = "ngo"
	RoleAdmin     = "admin"
)

// Urgency levels for an NgoRequest.
const (
	UrgencyLow    = "Low"
	UrgencyMedium = "Medium"
	UrgencyHigh   = "High"
)

// NgoDetails is the snapshot of an NGO profile copied onto a Donation when
// the donation is linked to that NGO. The copy is immutable once written;
// later profile edits do not rewrite historical donations.
type NgoDetails struct {
	NgoID         string `bson:"ngoID" json:"ngoID"`
	Name          string `bson:"name" json:"name"`
	Address       string `bson:"address" json:"address"`
	ContactNumber string `bson:"contactNumber" json:"contactNumber"`
	Email         string `bson:"email" json:"email"`
}

// DonorDetails is the snapshot of the donor profile written at creation time.
type DonorDetails struct {
	Name          string `bson:"name" json:"name"`
	ContactNumber string `bson:"contactNumber" json:"contactNumber"`
	Email         string `bson:"email" json:"email"`
}
