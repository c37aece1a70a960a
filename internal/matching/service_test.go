// server/internal/matching/service_test.go
package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"food-rescue-api-server/internal/geo"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

func seedDonation(t *testing.T, mem *store.Memory, d models.Donation) {
	t.Helper()
	if d.Status == "" {
		d.Status = models.StatusAvailable
	}
	require.NoError(t, mem.InsertDonation(context.Background(), &d))
}

func TestNearbyDonationsOnlyAvailable(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	loc := &geo.Point{Latitude: 0.1, Longitude: 0}
	seedDonation(t, mem, models.Donation{DonationID: "DON-a", Location: loc})
	seedDonation(t, mem, models.Donation{DonationID: "DON-b", Location: loc, Status: models.StatusPicked})
	seedDonation(t, mem, models.Donation{DonationID: "DON-c", Location: loc, Status: models.StatusDelivered})

	out, err := svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "DON-a", out[0].DonationID)
}

func TestNearbyDonationsSortedByDistance(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	seedDonation(t, mem, models.Donation{DonationID: "DON-far", Location: &geo.Point{Latitude: 2, Longitude: 0}})
	seedDonation(t, mem, models.Donation{DonationID: "DON-near", Location: &geo.Point{Latitude: 0.1, Longitude: 0}})
	seedDonation(t, mem, models.Donation{DonationID: "DON-mid", Location: &geo.Point{Latitude: 1, Longitude: 0}})

	out, err := svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "DON-near", out[0].DonationID)
	require.Equal(t, "DON-mid", out[1].DonationID)
	require.Equal(t, "DON-far", out[2].DonationID)

	require.NotNil(t, out[1].DistanceKm)
	require.InDelta(t, 111.19, *out[1].DistanceKm, 0.1)
}

func TestNearbyDonationsFilters(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	loc := &geo.Point{Latitude: 0.1, Longitude: 0}
	seedDonation(t, mem, models.Donation{
		DonationID: "DON-cooked", Location: loc,
		FoodType: "Cooked", Urgency: models.UrgencyHigh, NeedsVehicle: true, PickupTimeSlot: "Evening 6-8pm",
	})
	seedDonation(t, mem, models.Donation{
		DonationID: "DON-raw", Location: loc,
		FoodType: "Raw", Urgency: models.UrgencyLow, PickupTimeSlot: "Morning",
	})

	out, err := svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{FoodType: "cooked"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "DON-cooked", out[0].DonationID)

	out, err = svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{Urgency: "high"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	vehicle := false
	out, err = svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{NeedsVehicle: &vehicle})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "DON-raw", out[0].DonationID)

	out, err = svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{PickupSlot: "evening"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "DON-cooked", out[0].DonationID)

	// AND semantics across filters.
	out, err = svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{FoodType: "Cooked", Urgency: "Low"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestNearbyDonationsMaxDistance(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	seedDonation(t, mem, models.Donation{DonationID: "DON-near", Location: &geo.Point{Latitude: 0.1, Longitude: 0}})
	seedDonation(t, mem, models.Donation{DonationID: "DON-far", Location: &geo.Point{Latitude: 2, Longitude: 0}})
	seedDonation(t, mem, models.Donation{DonationID: "DON-nowhere"})

	out, err := svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{MaxDistanceKm: 50})
	require.NoError(t, err)
	// The cap drops both the far donation and the one with no location.
	require.Len(t, out, 1)
	require.Equal(t, "DON-near", out[0].DonationID)
}

func TestNearbyDonationsUnlocatedKeptLastWithoutCap(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	seedDonation(t, mem, models.Donation{DonationID: "DON-nowhere"})
	seedDonation(t, mem, models.Donation{DonationID: "DON-near", Location: &geo.Point{Latitude: 0.1, Longitude: 0}})

	out, err := svc.NearbyDonations(context.Background(), &geo.Point{}, DonationFilters{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "DON-near", out[0].DonationID)
	require.Equal(t, "DON-nowhere", out[1].DonationID)
	require.Nil(t, out[1].DistanceKm)
}

func TestNearbyDonationsNoSeeker(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	seedDonation(t, mem, models.Donation{DonationID: "DON-a", Location: &geo.Point{Latitude: 2, Longitude: 0}})
	seedDonation(t, mem, models.Donation{DonationID: "DON-b", Location: &geo.Point{Latitude: 0.1, Longitude: 0}})

	// Without a seeker location the list is unranked and carries no distances.
	out, err := svc.NearbyDonations(context.Background(), nil, DonationFilters{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "DON-a", out[0].DonationID)
	require.Nil(t, out[0].DistanceKm)
}

func seedNgo(t *testing.T, mem *store.Memory, id string, loc *geo.Point, window geo.OperatingWindow) {
	t.Helper()
	require.NoError(t, mem.InsertUser(context.Background(), &models.User{
		UserID:        id,
		Email:         id + "@example.com",
		Name:          id,
		Role:          models.RoleNgo,
		ContactNumber: "555-0100",
		Location:      loc,
		NgoProfile: &models.NgoProfile{
			NgoName:        "Shelter " + id,
			Address:        "1 Main St",
			OperatingHours: window,
		},
	}))
}

func TestNearbyNgos(t *testing.T) {
	mem := store.NewMemory()
	svc := &Service{Store: mem}

	allWeek := geo.OperatingWindow{
		Days:        []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		OpenMinute:  0,
		CloseMinute: 23*60 + 59,
	}
	weekdays := geo.OperatingWindow{
		Days:        []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		OpenMinute:  9 * 60,
		CloseMinute: 17 * 60,
	}

	seedNgo(t, mem, "USR-ngo-far", &geo.Point{Latitude: 2, Longitude: 0}, allWeek)
	seedNgo(t, mem, "USR-ngo-near", &geo.Point{Latitude: 0.1, Longitude: 0}, allWeek)
	seedNgo(t, mem, "USR-ngo-closed", &geo.Point{Latitude: 0.2, Longitude: 0}, weekdays)
	seedNgo(t, mem, "USR-ngo-nowhere", nil, allWeek)
	require.NoError(t, mem.InsertUser(context.Background(), &models.User{
		UserID: "USR-donor", Email: "donor@example.com", Role: models.RoleDonor,
		Location: &geo.Point{Latitude: 0.1, Longitude: 0},
	}))

	// A Monday evening: the weekday 9-17 shelter is closed.
	at := time.Date(2026, time.January, 5, 20, 0, 0, 0, time.UTC)

	out, err := svc.NearbyNgos(context.Background(), geo.Point{}, 0, at)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "USR-ngo-near", out[0].NgoID)
	require.Equal(t, "USR-ngo-far", out[1].NgoID)
	require.Equal(t, "Shelter USR-ngo-near", out[0].Name)
	require.Greater(t, out[1].DistanceKm, out[0].DistanceKm)

	// During business hours the weekday shelter is back in.
	open := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	out, err = svc.NearbyNgos(context.Background(), geo.Point{}, 0, open)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "USR-ngo-closed", out[1].NgoID)

	// Radius cuts the far shelter.
	out, err = svc.NearbyNgos(context.Background(), geo.Point{}, 50000, at)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "USR-ngo-near", out[0].NgoID)
}
