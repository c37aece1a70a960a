// server/internal/store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	"food-rescue-api-server/internal/models"
)

// Memory is an in-process Store used by the test suites. It honors the same
// conditional-write semantics as the Mongo implementation, with a single
// mutex standing in for the database's atomicity.
type Memory struct {
	mu         sync.Mutex
	donations  map[string]*models.Donation
	pickups    map[string]*models.PickupAssignment // keyed volunteerID|donationID
	requests   map[string]*models.NgoRequest
	volunteers map[string]*models.Volunteer
	users      map[string]*models.User
	order      []string // donation insertion order, for stable listings
	userOrder  []string
}

func NewMemory() *Memory {
	return &Memory{
		donations:  make(map[string]*models.Donation),
		pickups:    make(map[string]*models.PickupAssignment),
		requests:   make(map[string]*models.NgoRequest),
		volunteers: make(map[string]*models.Volunteer),
		users:      make(map[string]*models.User),
	}
}

func pickupKey(volunteerID, donationID string) string {
	return volunteerID + "|" + donationID
}

// --- Donations ---

func (s *Memory) InsertDonation(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.donations[d.DonationID] = &cp
	s.order = append(s.order, d.DonationID)
	return nil
}

func (s *Memory) DonationByID(ctx context.Context, donationID string) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Memory) Donations(ctx context.Context, f DonationFilter) ([]models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Donation{}
	for _, id := range s.order {
		d, ok := s.donations[id]
		if !ok {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.DonorID != "" && d.DonorID != f.DonorID {
			continue
		}
		if f.NgoID != "" && (d.NgoDetails == nil || d.NgoDetails.NgoID != f.NgoID) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Memory) ReplaceDonationIfAvailable(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.donations[d.DonationID]
	if !ok {
		return ErrNotFound
	}
	if existing.Status != models.StatusAvailable {
		return ErrStateChanged
	}
	cp := *d
	s.donations[d.DonationID] = &cp
	return nil
}

func (s *Memory) DeleteDonationIfAvailable(ctx context.Context, donationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return ErrNotFound
	}
	if d.Status != models.StatusAvailable {
		return ErrStateChanged
	}
	delete(s.donations, donationID)
	return nil
}

func (s *Memory) ClaimDonation(ctx context.Context, donationID string, pickup *models.PickupAssignment) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, exists := s.pickups[pickupKey(pickup.VolunteerID, donationID)]; exists {
		return nil, ErrDuplicate
	}
	if d.Status != models.StatusAvailable {
		return nil, ErrStateChanged
	}
	d.Status = models.StatusPicked
	d.VolunteerID = pickup.VolunteerID
	d.UpdatedAt = time.Now()
	cp := *pickup
	s.pickups[pickupKey(pickup.VolunteerID, donationID)] = &cp
	claimed := *d
	return &claimed, nil
}

func (s *Memory) AdvanceDonation(ctx context.Context, donationID, volunteerID string, from []string, to string, deliveredAt *time.Time) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return nil, ErrNotFound
	}
	if d.VolunteerID != volunteerID {
		return nil, ErrStateChanged
	}
	allowed := false
	for _, st := range from {
		if d.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrStateChanged
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	if p, ok := s.pickups[pickupKey(volunteerID, donationID)]; ok {
		p.Status = pickupStatusFor(to)
		if deliveredAt != nil {
			t := *deliveredAt
			p.DeliveredAt = &t
		}
	}
	cp := *d
	return &cp, nil
}

func (s *Memory) SetDonationNgo(ctx context.Context, donationID, requestID string, details models.NgoDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return ErrNotFound
	}
	cp := details
	d.NgoDetails = &cp
	if requestID != "" {
		d.NgoRequestID = requestID
	}
	d.UpdatedAt = time.Now()
	return nil
}

func (s *Memory) SetDonationPhoto(ctx context.Context, donationID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return ErrNotFound
	}
	d.PhotoURL = url
	d.UpdatedAt = time.Now()
	return nil
}

// --- NGO requests ---

func (s *Memory) InsertNgoRequest(ctx context.Context, r *models.NgoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.requests[r.RequestID] = &cp
	return nil
}

func (s *Memory) NgoRequestByID(ctx context.Context, requestID string) (*models.NgoRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Memory) NgoRequestsByNgo(ctx context.Context, ngoID string) ([]models.NgoRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.NgoRequest{}
	for _, r := range s.requests {
		if r.NgoID == ngoID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Memory) AcceptNgoRequest(ctx context.Context, requestID, donationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	if r.Status != models.RequestPending {
		return ErrStateChanged
	}
	r.Status = models.RequestAccepted
	r.DonationID = donationID
	return nil
}

func (s *Memory) CancelNgoRequest(ctx context.Context, requestID, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	if r.Status != models.RequestPending || (r.NgoID != requesterID && r.VolunteerID != requesterID) {
		return ErrStateChanged
	}
	r.Status = models.RequestRejected
	return nil
}

// --- Volunteers ---

func (s *Memory) EnsureVolunteer(ctx context.Context, userID string) (*models.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.volunteers[userID]; ok {
		cp := *v
		return &cp, nil
	}
	now := time.Now()
	v := &models.Volunteer{
		UserID:            userID,
		Available:         true,
		AssignedDonations: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.volunteers[userID] = v
	cp := *v
	return &cp, nil
}

func (s *Memory) VolunteerByUserID(ctx context.Context, userID string) (*models.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *Memory) ToggleVolunteerAvailability(ctx context.Context, userID string) (*models.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[userID]
	if !ok {
		return nil, ErrNotFound
	}
	v.Available = !v.Available
	v.UpdatedAt = time.Now()
	cp := *v
	return &cp, nil
}

func (s *Memory) AppendVolunteerAssignment(ctx context.Context, userID, donationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[userID]
	if !ok {
		return nil
	}
	for _, id := range v.AssignedDonations {
		if id == donationID {
			return nil
		}
	}
	v.AssignedDonations = append(v.AssignedDonations, donationID)
	v.UpdatedAt = time.Now()
	return nil
}

func (s *Memory) PickupsByVolunteer(ctx context.Context, volunteerID string) ([]models.PickupAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PickupAssignment{}
	for _, p := range s.pickups {
		if p.VolunteerID == volunteerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- Users ---

func (s *Memory) InsertUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	cp := *u
	s.users[u.UserID] = &cp
	s.userOrder = append(s.userOrder, u.UserID)
	return nil
}

func (s *Memory) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) UserByID(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Memory) UsersByRole(ctx context.Context, role string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, id := range s.userOrder {
		u := s.users[id]
		if u != nil && u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}
