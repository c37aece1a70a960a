// server/internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"food-rescue-api-server/internal/models"
)

var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrStateChanged means a conditional write found the document in a
	// different state than required (someone else got there first).
	ErrStateChanged = errors.New("store: state changed")
	// ErrDuplicate means a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("store: duplicate")
)

// DonationFilter narrows a donation listing. Zero fields are ignored.
type DonationFilter struct {
	Status  string
	DonorID string
	NgoID   string // donations whose NGO snapshot references this NGO
}

// Store is the persistence contract shared by the Mongo implementation and
// the in-memory one used in tests. The conditional methods (Claim, Advance,
// ReplaceIfAvailable, DeleteIfAvailable, AcceptNgoRequest) are the atomic
// check-and-set primitives the lifecycle engine builds on; in-process locking
// alone would not survive multiple service instances sharing one database.
type Store interface {
	// Donations
	InsertDonation(ctx context.Context, d *models.Donation) error
	DonationByID(ctx context.Context, donationID string) (*models.Donation, error)
	Donations(ctx context.Context, f DonationFilter) ([]models.Donation, error)
	ReplaceDonationIfAvailable(ctx context.Context, d *models.Donation) error
	DeleteDonationIfAvailable(ctx context.Context, donationID string) error
	// ClaimDonation atomically moves an Available donation to Picked and
	// records the pickup assignment. Exactly one concurrent claim succeeds;
	// the rest get ErrStateChanged (or ErrDuplicate for a repeat claim by
	// the same volunteer).
	ClaimDonation(ctx context.Context, donationID string, pickup *models.PickupAssignment) (*models.Donation, error)
	AdvanceDonation(ctx context.Context, donationID, volunteerID string, from []string, to string, deliveredAt *time.Time) (*models.Donation, error)
	SetDonationNgo(ctx context.Context, donationID, requestID string, details models.NgoDetails) error
	SetDonationPhoto(ctx context.Context, donationID, url string) error

	// NGO requests
	InsertNgoRequest(ctx context.Context, r *models.NgoRequest) error
	NgoRequestByID(ctx context.Context, requestID string) (*models.NgoRequest, error)
	NgoRequestsByNgo(ctx context.Context, ngoID string) ([]models.NgoRequest, error)
	AcceptNgoRequest(ctx context.Context, requestID, donationID string) error
	CancelNgoRequest(ctx context.Context, requestID, requesterID string) error

	// Volunteers
	EnsureVolunteer(ctx context.Context, userID string) (*models.Volunteer, error)
	VolunteerByUserID(ctx context.Context, userID string) (*models.Volunteer, error)
	ToggleVolunteerAvailability(ctx context.Context, userID string) (*models.Volunteer, error)
	AppendVolunteerAssignment(ctx context.Context, userID, donationID string) error
	PickupsByVolunteer(ctx context.Context, volunteerID string) ([]models.PickupAssignment, error)

	// Users
	InsertUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
	UsersByRole(ctx context.Context, role string) ([]models.User, error)
}
