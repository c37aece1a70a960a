// server/internal/linking/workflow.go
package linking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/notify"
	"food-rescue-api-server/internal/store"
)

// Workflow links NgoRequests and Donations in both directions: a donor
// donating against a standing request, and a volunteer recommending an NGO
// for a donation they are carrying.
type Workflow struct {
	Store    store.Store
	Notifier *notify.Notifier
}

func snapshotNgo(ngo *models.User) models.NgoDetails {
	details := models.NgoDetails{
		NgoID:         ngo.UserID,
		Name:          ngo.Name,
		ContactNumber: ngo.ContactNumber,
		Email:         ngo.Email,
	}
	if ngo.NgoProfile != nil {
		if ngo.NgoProfile.NgoName != "" {
			details.Name = ngo.NgoProfile.NgoName
		}
		details.Address = ngo.NgoProfile.Address
	}
	return details
}

// LinkDonationToRequest fulfills a standing NGO request with a donation:
// the NGO profile is snapshotted onto the donation and the request moves to
// Accepted with a back-reference. The caller decides how to degrade when
// this fails; the donation itself is already committed.
func (w *Workflow) LinkDonationToRequest(ctx context.Context, donationID, requestID string) (*models.Donation, error) {
	request, err := w.Store.NgoRequestByID(ctx, requestID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFoundf("ngo request %s not found", requestID)
		}
		return nil, err
	}

	ngo, err := w.Store.UserByID(ctx, request.NgoID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFoundf("ngo %s not found", request.NgoID)
		}
		return nil, err
	}

	if err := w.Store.AcceptNgoRequest(ctx, requestID, donationID); err != nil {
		switch err {
		case store.ErrNotFound:
			return nil, apperr.NotFoundf("ngo request %s not found", requestID)
		case store.ErrStateChanged:
			return nil, apperr.Conflictf("ngo request %s is no longer pending", requestID)
		}
		return nil, err
	}

	if err := w.Store.SetDonationNgo(ctx, donationID, requestID, snapshotNgo(ngo)); err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFoundf("donation %s not found", donationID)
		}
		return nil, err
	}
	return w.Store.DonationByID(ctx, donationID)
}

// RecommendNgo handles a volunteer recommending an NGO for a donation they
// accepted: snapshot the NGO onto the donation, create a Pending NgoRequest
// back-referencing both, and notify the NGO. The returned warning is set when
// notification delivery failed; the linkage itself is already committed.
func (w *Workflow) RecommendNgo(ctx context.Context, donationID, volunteerUserID, ngoID string) (*models.NgoRequest, string, error) {
	donation, err := w.Store.DonationByID(ctx, donationID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, "", apperr.NotFoundf("donation %s not found", donationID)
		}
		return nil, "", err
	}

	ngo, err := w.Store.UserByID(ctx, ngoID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, "", apperr.NotFoundf("ngo %s not found", ngoID)
		}
		return nil, "", err
	}
	if ngo.Role != models.RoleNgo {
		return nil, "", apperr.Validationf("user %s is not an NGO", ngoID)
	}

	request := &models.NgoRequest{
		RequestID:   fmt.Sprintf("REQ-%s", uuid.New().String()[:8]),
		NgoID:       ngo.UserID,
		VolunteerID: volunteerUserID,
		DonationID:  donation.DonationID,
		FoodItem:    donation.FoodItem,
		FoodType:    donation.FoodType,
		Quantity:    donation.Quantity,
		Urgency:     urgencyOrDefault(donation.Urgency),
		Location:    donation.LocationLabel,
		Status:      models.RequestPending,
		RequestedAt: time.Now(),
	}
	if err := w.Store.InsertNgoRequest(ctx, request); err != nil {
		return nil, "", err
	}
	if err := w.Store.SetDonationNgo(ctx, donationID, request.RequestID, snapshotNgo(ngo)); err != nil {
		if err == store.ErrNotFound {
			return nil, "", apperr.NotFoundf("donation %s not found", donationID)
		}
		return nil, "", err
	}

	warning := ""
	if w.Notifier != nil {
		if err := w.Notifier.NgoRecommended(ctx, ngo.UserID, request); err != nil {
			warning = "NGO notification could not be delivered"
		}
	}
	return request, warning, nil
}

// CreateRequestInput covers both a standing NGO request and the
// volunteer-initiated variant (VolunteerID set).
type CreateRequestInput struct {
	NgoID         string
	VolunteerID   string
	FoodItem      string
	FoodType      string
	Quantity      string
	Urgency       string
	PreferredDate *time.Time
	Location      string
}

// CreateRequest records a new Pending NgoRequest. When a volunteer raised it
// on the NGO's behalf, the NGO is notified.
func (w *Workflow) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.NgoRequest, string, error) {
	ngo, err := w.Store.UserByID(ctx, in.NgoID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, "", apperr.NotFoundf("ngo %s not found", in.NgoID)
		}
		return nil, "", err
	}
	if ngo.Role != models.RoleNgo {
		return nil, "", apperr.Validationf("user %s is not an NGO", in.NgoID)
	}
	if in.FoodType == "" || in.Quantity == "" {
		return nil, "", apperr.Validationf("foodType and quantity are required")
	}
	urgency := urgencyOrDefault(in.Urgency)
	if urgency != models.UrgencyLow && urgency != models.UrgencyMedium && urgency != models.UrgencyHigh {
		return nil, "", apperr.Validationf("urgency must be Low, Medium or High")
	}

	request := &models.NgoRequest{
		RequestID:     fmt.Sprintf("REQ-%s", uuid.New().String()[:8]),
		NgoID:         ngo.UserID,
		VolunteerID:   in.VolunteerID,
		FoodItem:      in.FoodItem,
		FoodType:      in.FoodType,
		Quantity:      in.Quantity,
		Urgency:       urgency,
		PreferredDate: in.PreferredDate,
		Location:      in.Location,
		Status:        models.RequestPending,
		RequestedAt:   time.Now(),
	}
	if err := w.Store.InsertNgoRequest(ctx, request); err != nil {
		return nil, "", err
	}

	warning := ""
	if in.VolunteerID != "" && w.Notifier != nil {
		if err := w.Notifier.NgoRecommended(ctx, ngo.UserID, request); err != nil {
			warning = "NGO notification could not be delivered"
		}
	}
	return request, warning, nil
}

// CancelRequest lets the creator withdraw a request while it is Pending.
func (w *Workflow) CancelRequest(ctx context.Context, requestID, requesterID string) error {
	err := w.Store.CancelNgoRequest(ctx, requestID, requesterID)
	switch err {
	case nil:
		return nil
	case store.ErrNotFound:
		return apperr.NotFoundf("ngo request %s not found", requestID)
	case store.ErrStateChanged:
		return apperr.InvalidStatef("only the creator may cancel, and only while Pending")
	}
	return err
}

func urgencyOrDefault(u string) string {
	if u == "" {
		return models.UrgencyMedium
	}
	return u
}
