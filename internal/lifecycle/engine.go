// server/internal/lifecycle/engine.go
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/geo"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

// Engine owns the donation state machine:
//
//	Available -> Picked -> InTransit -> Delivered
//
// Picked is only reachable from Available, Delivered is terminal, and a
// donation can be deleted only while Available. Accept arbitration delegates
// to the store's conditional claim so that exactly one of any number of
// concurrent accepts succeeds.
type Engine struct {
	Store store.Store
}

type CreateDonationInput struct {
	DonorID        string
	FoodItem       string
	FoodType       string
	Quantity       string
	Packaging      string
	Servings       int
	Refrigerated   bool
	StorageNotes   string
	ContactNumber  string
	LocationLabel  string
	Location       *geo.Point
	PickupTimeSlot string
	Urgency        string
	NeedsVehicle   bool
	PreparedAt     time.Time
	AvailableFrom  time.Time
	ExpiresAt      time.Time
}

// EditDonationInput carries the donor-editable fields; nil means unchanged.
type EditDonationInput struct {
	FoodItem       *string
	FoodType       *string
	Quantity       *string
	Packaging      *string
	Servings       *int
	Refrigerated   *bool
	StorageNotes   *string
	ContactNumber  *string
	LocationLabel  *string
	Location       *geo.Point
	PickupTimeSlot *string
	Urgency        *string
	NeedsVehicle   *bool
	PreparedAt     *time.Time
	AvailableFrom  *time.Time
	ExpiresAt      *time.Time
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8])
}

func validateDonation(d *models.Donation) error {
	if d.FoodItem == "" || d.FoodType == "" || d.Quantity == "" {
		return apperr.Validationf("foodItem, foodType and quantity are required")
	}
	if d.Location != nil && !d.Location.Valid() {
		return apperr.Validationf("coordinates out of range: lat %.4f, lng %.4f",
			d.Location.Latitude, d.Location.Longitude)
	}
	if !d.PreparedAt.IsZero() && !d.ExpiresAt.IsZero() && !d.ExpiresAt.After(d.PreparedAt) {
		return apperr.Validationf("expiresAt must be after preparedAt")
	}
	if !d.PreparedAt.IsZero() && !d.AvailableFrom.IsZero() && d.AvailableFrom.Before(d.PreparedAt) {
		return apperr.Validationf("availableFrom must not be before preparedAt")
	}
	return nil
}

// CreateDonation validates the input, snapshots the donor profile and stores
// the donation in Available state. Linking to an NgoRequest is handled by the
// linking workflow afterwards, so a bad request reference never aborts the
// donor's submission.
func (e *Engine) CreateDonation(ctx context.Context, in CreateDonationInput) (*models.Donation, error) {
	donor, err := e.Store.UserByID(ctx, in.DonorID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFoundf("donor %s not found", in.DonorID)
		}
		return nil, err
	}

	now := time.Now()
	d := &models.Donation{
		DonationID: newID("DON"),
		DonorID:    donor.UserID,
		DonorDetails: models.DonorDetails{
			Name:          donor.Name,
			ContactNumber: donor.ContactNumber,
			Email:         donor.Email,
		},
		FoodItem:       in.FoodItem,
		FoodType:       in.FoodType,
		Quantity:       in.Quantity,
		Packaging:      in.Packaging,
		Servings:       in.Servings,
		Refrigerated:   in.Refrigerated,
		StorageNotes:   in.StorageNotes,
		ContactNumber:  in.ContactNumber,
		LocationLabel:  in.LocationLabel,
		Location:       in.Location,
		PickupTimeSlot: in.PickupTimeSlot,
		Urgency:        in.Urgency,
		NeedsVehicle:   in.NeedsVehicle,
		PreparedAt:     in.PreparedAt,
		AvailableFrom:  in.AvailableFrom,
		ExpiresAt:      in.ExpiresAt,
		Status:         models.StatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if d.ContactNumber == "" {
		d.ContactNumber = donor.ContactNumber
	}
	if err := validateDonation(d); err != nil {
		return nil, err
	}
	if err := e.Store.InsertDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// EditDonation applies a donor edit. Edits are only meaningful while the
// donation is Available; the conditional replace rejects an edit that races
// with a claim.
func (e *Engine) EditDonation(ctx context.Context, donationID string, in EditDonationInput) (*models.Donation, error) {
	d, err := e.Store.DonationByID(ctx, donationID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFoundf("donation %s not found", donationID)
		}
		return nil, err
	}
	if d.Status != models.StatusAvailable {
		return nil, apperr.InvalidStatef("donation %s is %s and can no longer be edited", donationID, d.Status)
	}

	if in.FoodItem != nil {
		d.FoodItem = *in.FoodItem
	}
	if in.FoodType != nil {
		d.FoodType = *in.FoodType
	}
	if in.Quantity != nil {
		d.Quantity = *in.Quantity
	}
	if in.Packaging != nil {
		d.Packaging = *in.Packaging
	}
	if in.Servings != nil {
		d.Servings = *in.Servings
	}
	if in.Refrigerated != nil {
		d.Refrigerated = *in.Refrigerated
	}
	if in.StorageNotes != nil {
		d.StorageNotes = *in.StorageNotes
	}
	if in.ContactNumber != nil {
		d.ContactNumber = *in.ContactNumber
	}
	if in.LocationLabel != nil {
		d.LocationLabel = *in.LocationLabel
	}
	if in.Location != nil {
		d.Location = in.Location
	}
	if in.PickupTimeSlot != nil {
		d.PickupTimeSlot = *in.PickupTimeSlot
	}
	if in.Urgency != nil {
		d.Urgency = *in.Urgency
	}
	if in.NeedsVehicle != nil {
		d.NeedsVehicle = *in.NeedsVehicle
	}
	if in.PreparedAt != nil {
		d.PreparedAt = *in.PreparedAt
	}
	if in.AvailableFrom != nil {
		d.AvailableFrom = *in.AvailableFrom
	}
	if in.ExpiresAt != nil {
		d.ExpiresAt = *in.ExpiresAt
	}
	if err := validateDonation(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now()

	if err := e.Store.ReplaceDonationIfAvailable(ctx, d); err != nil {
		switch err {
		case store.ErrNotFound:
			return nil, apperr.NotFoundf("donation %s not found", donationID)
		case store.ErrStateChanged:
			return nil, apperr.Conflictf("donation %s was claimed while editing", donationID)
		}
		return nil, err
	}
	return d, nil
}

// DeleteDonation removes a donation. Only Available donations may be
// deleted; once Picked or beyond the record is permanent.
func (e *Engine) DeleteDonation(ctx context.Context, donationID string) error {
	err := e.Store.DeleteDonationIfAvailable(ctx, donationID)
	switch err {
	case nil:
		return nil
	case store.ErrNotFound:
		return apperr.NotFoundf("donation %s not found", donationID)
	case store.ErrStateChanged:
		return apperr.InvalidStatef("only Available donations can be deleted")
	}
	return err
}

// Accept arbitrates a volunteer's claim. The store's conditional update
// guarantees at most one winner; everyone else gets a conflict, never a
// silent overwrite.
func (e *Engine) Accept(ctx context.Context, donationID, volunteerUserID string) (*models.Donation, *models.PickupAssignment, error) {
	if _, err := e.Store.EnsureVolunteer(ctx, volunteerUserID); err != nil {
		return nil, nil, err
	}

	pickup := &models.PickupAssignment{
		PickupID:    newID("PCK"),
		DonationID:  donationID,
		VolunteerID: volunteerUserID,
		Status:      models.PickupAccepted,
		AcceptedAt:  time.Now(),
	}
	d, err := e.Store.ClaimDonation(ctx, donationID, pickup)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			return nil, nil, apperr.NotFoundf("donation %s not found", donationID)
		case store.ErrStateChanged:
			return nil, nil, apperr.Conflictf("donation %s has already been accepted", donationID)
		case store.ErrDuplicate:
			return nil, nil, apperr.Conflictf("you have already accepted donation %s", donationID)
		}
		return nil, nil, err
	}

	if err := e.Store.AppendVolunteerAssignment(ctx, volunteerUserID, donationID); err != nil {
		// The claim is committed; the dashboard list is best-effort.
		return d, pickup, apperr.Dependency("failed to record assignment on volunteer", err)
	}
	return d, pickup, nil
}

// StartTransit marks a picked donation as on the road.
func (e *Engine) StartTransit(ctx context.Context, donationID, volunteerUserID string) (*models.Donation, error) {
	d, err := e.Store.AdvanceDonation(ctx, donationID, volunteerUserID,
		[]string{models.StatusPicked}, models.StatusInTransit, nil)
	return d, e.mapAdvanceErr(donationID, err)
}

// ConfirmDelivery completes the lifecycle and stamps the assignment's
// delivery time. Valid from Picked or InTransit.
func (e *Engine) ConfirmDelivery(ctx context.Context, donationID, volunteerUserID string) (*models.Donation, error) {
	now := time.Now()
	d, err := e.Store.AdvanceDonation(ctx, donationID, volunteerUserID,
		[]string{models.StatusPicked, models.StatusInTransit}, models.StatusDelivered, &now)
	return d, e.mapAdvanceErr(donationID, err)
}

func (e *Engine) mapAdvanceErr(donationID string, err error) error {
	switch err {
	case nil:
		return nil
	case store.ErrNotFound:
		return apperr.NotFoundf("donation %s not found", donationID)
	case store.ErrStateChanged:
		return apperr.InvalidStatef("donation %s is not in a state this transition applies to", donationID)
	}
	return err
}
