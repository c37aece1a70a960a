// server/internal/lifecycle/engine_test.go
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"food-rescue-api-server/internal/apperr"
	"food-rescue-api-server/internal/geo"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, mem.InsertUser(context.Background(), &models.User{
		UserID:        "USR-donor",
		Email:         "donor@example.com",
		Name:          "Dana Donor",
		Role:          models.RoleDonor,
		ContactNumber: "555-0101",
	}))
	return &Engine{Store: mem}, mem
}

func validInput() CreateDonationInput {
	now := time.Now()
	return CreateDonationInput{
		DonorID:       "USR-donor",
		FoodItem:      "Rice and curry",
		FoodType:      "Cooked",
		Quantity:      "20 boxes",
		Location:      &geo.Point{Latitude: 10.5, Longitude: 76.2},
		PreparedAt:    now,
		AvailableFrom: now,
		ExpiresAt:     now.Add(6 * time.Hour),
	}
}

func TestCreateDonation(t *testing.T) {
	engine, _ := newTestEngine(t)

	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, models.StatusAvailable, d.Status)
	require.NotEmpty(t, d.DonationID)
	// Donor profile is snapshotted at write time.
	require.Equal(t, "Dana Donor", d.DonorDetails.Name)
	require.Equal(t, "555-0101", d.ContactNumber)
}

func TestCreateDonationExpiryBeforePrepared(t *testing.T) {
	engine, mem := newTestEngine(t)

	in := validInput()
	in.ExpiresAt = in.PreparedAt.Add(-time.Hour)
	_, err := engine.CreateDonation(context.Background(), in)
	require.True(t, apperr.IsValidation(err))

	// Nothing persisted.
	donations, err := mem.Donations(context.Background(), store.DonationFilter{})
	require.NoError(t, err)
	require.Empty(t, donations)
}

func TestCreateDonationAvailableFromBeforePrepared(t *testing.T) {
	engine, _ := newTestEngine(t)

	in := validInput()
	in.AvailableFrom = in.PreparedAt.Add(-time.Hour)
	_, err := engine.CreateDonation(context.Background(), in)
	require.True(t, apperr.IsValidation(err))
}

func TestCreateDonationInvalidCoordinates(t *testing.T) {
	engine, _ := newTestEngine(t)

	in := validInput()
	in.Location = &geo.Point{Latitude: 95, Longitude: 10}
	_, err := engine.CreateDonation(context.Background(), in)
	require.True(t, apperr.IsValidation(err))
}

func TestCreateDonationUnknownDonor(t *testing.T) {
	engine, _ := newTestEngine(t)

	in := validInput()
	in.DonorID = "USR-nobody"
	_, err := engine.CreateDonation(context.Background(), in)
	require.True(t, apperr.IsNotFound(err))
}

func TestAcceptHappyPath(t *testing.T) {
	engine, mem := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	claimed, pickup, err := engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPicked, claimed.Status)
	require.Equal(t, "USR-vol1", claimed.VolunteerID)
	require.Equal(t, models.PickupAccepted, pickup.Status)

	pickups, err := mem.PickupsByVolunteer(context.Background(), "USR-vol1")
	require.NoError(t, err)
	require.Len(t, pickups, 1)

	// The volunteer record was created on first activity.
	v, err := mem.VolunteerByUserID(context.Background(), "USR-vol1")
	require.NoError(t, err)
	require.Contains(t, v.AssignedDonations, d.DonationID)
}

func TestAcceptSecondVolunteerConflicts(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol2")
	require.True(t, apperr.IsConflict(err))

	// The donation stays with the first volunteer.
	got, err := engine.Store.DonationByID(context.Background(), d.DonationID)
	require.NoError(t, err)
	require.Equal(t, "USR-vol1", got.VolunteerID)
}

func TestAcceptSameVolunteerTwiceConflicts(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.True(t, apperr.IsConflict(err))
}

func TestAcceptUnknownDonation(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, _, err := engine.Accept(context.Background(), "DON-missing", "USR-vol1")
	require.True(t, apperr.IsNotFound(err))
}

func TestAcceptConcurrentExactlyOneWinner(t *testing.T) {
	engine, mem := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	const volunteers = 25
	var wg sync.WaitGroup
	errs := make([]error, volunteers)
	for i := 0; i < volunteers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = engine.Accept(context.Background(), d.DonationID, fmt.Sprintf("USR-vol%d", i))
		}(i)
	}
	wg.Wait()

	winners, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case apperr.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, winners)
	require.Equal(t, volunteers-1, conflicts)

	// Exactly one assignment exists for the donation.
	total := 0
	for i := 0; i < volunteers; i++ {
		pickups, err := mem.PickupsByVolunteer(context.Background(), fmt.Sprintf("USR-vol%d", i))
		require.NoError(t, err)
		total += len(pickups)
	}
	require.Equal(t, 1, total)
}

func TestDeleteOnlyWhileAvailable(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	require.True(t, apperr.IsNotFound(engine.DeleteDonation(context.Background(), "DON-missing")))

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)

	err = engine.DeleteDonation(context.Background(), d.DonationID)
	require.True(t, apperr.IsInvalidState(err))

	d2, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)
	require.NoError(t, engine.DeleteDonation(context.Background(), d2.DonationID))
}

func TestTransitAndDelivery(t *testing.T) {
	engine, mem := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	// Transit before pickup is illegal.
	_, err = engine.StartTransit(context.Background(), d.DonationID, "USR-vol1")
	require.True(t, apperr.IsInvalidState(err))

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)

	inTransit, err := engine.StartTransit(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	require.Equal(t, models.StatusInTransit, inTransit.Status)

	delivered, err := engine.ConfirmDelivery(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, delivered.Status)

	pickups, err := mem.PickupsByVolunteer(context.Background(), "USR-vol1")
	require.NoError(t, err)
	require.Len(t, pickups, 1)
	require.Equal(t, models.PickupDelivered, pickups[0].Status)
	require.NotNil(t, pickups[0].DeliveredAt)
}

func TestDeliveryDirectlyFromPicked(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	delivered, err := engine.ConfirmDelivery(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, delivered.Status)
}

func TestDeliveredIsTerminal(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)
	_, err = engine.ConfirmDelivery(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)

	_, err = engine.StartTransit(context.Background(), d.DonationID, "USR-vol1")
	require.True(t, apperr.IsInvalidState(err))
	_, err = engine.ConfirmDelivery(context.Background(), d.DonationID, "USR-vol1")
	require.True(t, apperr.IsInvalidState(err))
	require.True(t, apperr.IsInvalidState(engine.DeleteDonation(context.Background(), d.DonationID)))
}

func TestOnlyAssignedVolunteerMayAdvance(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)

	_, err = engine.StartTransit(context.Background(), d.DonationID, "USR-vol2")
	require.True(t, apperr.IsInvalidState(err))
}

func TestEditOnlyWhileAvailable(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	newItem := "Bread"
	edited, err := engine.EditDonation(context.Background(), d.DonationID, EditDonationInput{FoodItem: &newItem})
	require.NoError(t, err)
	require.Equal(t, "Bread", edited.FoodItem)

	_, _, err = engine.Accept(context.Background(), d.DonationID, "USR-vol1")
	require.NoError(t, err)

	_, err = engine.EditDonation(context.Background(), d.DonationID, EditDonationInput{FoodItem: &newItem})
	require.True(t, apperr.IsInvalidState(err))
}

func TestEditRejectsBadDates(t *testing.T) {
	engine, _ := newTestEngine(t)
	d, err := engine.CreateDonation(context.Background(), validInput())
	require.NoError(t, err)

	bad := d.PreparedAt.Add(-time.Hour)
	_, err = engine.EditDonation(context.Background(), d.DonationID, EditDonationInput{ExpiresAt: &bad})
	require.True(t, apperr.IsValidation(err))
}
