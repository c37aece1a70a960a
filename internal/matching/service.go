// server/internal/matching/service.go
package matching

import (
	"context"
	"sort"
	"strings"
	"time"

	"food-rescue-api-server/internal/geo"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

// Service produces the candidate lists for the volunteer dashboard (nearby
// Available donations) and the recommendation flow (nearby open NGOs). All
// queries are read-only.
type Service struct {
	Store store.Store
}

// DonationFilters are AND-combined on top of the Status==Available base
// filter. Zero values are ignored.
type DonationFilters struct {
	FoodType      string
	Urgency       string
	NeedsVehicle  *bool
	PickupSlot    string // case-insensitive substring match
	MaxDistanceKm float64
}

// DonationMatch is a donation annotated with its display distance.
type DonationMatch struct {
	models.Donation
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// NgoMatch is one open NGO within range.
type NgoMatch struct {
	NgoID         string     `json:"ngoID"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	ContactNumber string     `json:"contactNumber"`
	Location      *geo.Point `json:"location,omitempty"`
	DistanceKm    float64    `json:"distanceKm"`
}

func (f DonationFilters) matches(d *models.Donation) bool {
	if f.FoodType != "" && !strings.EqualFold(d.FoodType, f.FoodType) {
		return false
	}
	if f.Urgency != "" && !strings.EqualFold(d.Urgency, f.Urgency) {
		return false
	}
	if f.NeedsVehicle != nil && d.NeedsVehicle != *f.NeedsVehicle {
		return false
	}
	if f.PickupSlot != "" && !strings.Contains(strings.ToLower(d.PickupTimeSlot), strings.ToLower(f.PickupSlot)) {
		return false
	}
	return true
}

// NearbyDonations returns Available donations matching the filters, sorted
// ascending by distance to the seeker. Donations without a location point are
// kept at the end of the list when no distance cap is set, and dropped when
// one is; they are never treated as distance zero.
func (s *Service) NearbyDonations(ctx context.Context, seeker *geo.Point, f DonationFilters) ([]DonationMatch, error) {
	donations, err := s.Store.Donations(ctx, store.DonationFilter{Status: models.StatusAvailable})
	if err != nil {
		return nil, err
	}

	type scored struct {
		match  DonationMatch
		meters float64
	}
	located := []scored{}
	unlocated := []DonationMatch{}

	for i := range donations {
		d := donations[i]
		if !f.matches(&d) {
			continue
		}
		if seeker == nil || d.Location == nil {
			unlocated = append(unlocated, DonationMatch{Donation: d})
			continue
		}
		meters := geo.Distance(*seeker, *d.Location)
		if f.MaxDistanceKm > 0 && meters > f.MaxDistanceKm*1000 {
			continue
		}
		km := geo.RoundKm(meters)
		located = append(located, scored{
			match:  DonationMatch{Donation: d, DistanceKm: &km},
			meters: meters,
		})
	}

	// Sort at full precision; the rounded value is display-only.
	sort.SliceStable(located, func(i, j int) bool {
		return located[i].meters < located[j].meters
	})

	out := make([]DonationMatch, 0, len(located)+len(unlocated))
	for _, sc := range located {
		out = append(out, sc.match)
	}
	if f.MaxDistanceKm <= 0 && seeker != nil {
		out = append(out, unlocated...)
	} else if seeker == nil {
		out = unlocated
	}
	return out, nil
}

// NearbyNgos returns NGOs within radiusMeters of the seeker whose operating
// window covers the given instant, ordered ascending by distance. A radius of
// zero means rank-only. NGOs without a stored location are never candidates.
func (s *Service) NearbyNgos(ctx context.Context, seeker geo.Point, radiusMeters float64, at time.Time) ([]NgoMatch, error) {
	ngos, err := s.Store.UsersByRole(ctx, models.RoleNgo)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(ngos))
	entries := []geo.Entry{}
	for _, ngo := range ngos {
		if ngo.Location == nil || ngo.NgoProfile == nil {
			continue
		}
		if !ngo.NgoProfile.OperatingHours.OpenAt(at) {
			continue
		}
		byID[ngo.UserID] = ngo
		entries = append(entries, geo.Entry{ID: ngo.UserID, Point: *ngo.Location})
	}

	matches := geo.Nearest(seeker, entries, radiusMeters)
	out := make([]NgoMatch, 0, len(matches))
	for _, m := range matches {
		ngo := byID[m.ID]
		out = append(out, NgoMatch{
			NgoID:         ngo.UserID,
			Name:          ngo.NgoProfile.NgoName,
			Address:       ngo.NgoProfile.Address,
			ContactNumber: ngo.ContactNumber,
			Location:      ngo.Location,
			DistanceKm:    geo.RoundKm(m.DistanceMeters),
		})
	}
	return out, nil
}
