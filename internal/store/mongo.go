// server/internal/store/mongo.go
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"food-rescue-api-server/internal/models"
)

// Mongo implements Store on top of a mongo.Database.
type Mongo struct {
	DB *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{DB: db}
}

func (s *Mongo) donations() *mongo.Collection   { return s.DB.Collection("donations") }
func (s *Mongo) pickups() *mongo.Collection     { return s.DB.Collection("pickup_assignments") }
func (s *Mongo) ngoRequests() *mongo.Collection { return s.DB.Collection("ngo_requests") }
func (s *Mongo) volunteers() *mongo.Collection  { return s.DB.Collection("volunteers") }
func (s *Mongo) users() *mongo.Collection       { return s.DB.Collection("users") }

// --- Donations ---

func (s *Mongo) InsertDonation(ctx context.Context, d *models.Donation) error {
	result, err := s.donations().InsertOne(ctx, d)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return nil
}

func (s *Mongo) DonationByID(ctx context.Context, donationID string) (*models.Donation, error) {
	var d models.Donation
	err := s.donations().FindOne(ctx, bson.M{"donationID": donationID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Mongo) Donations(ctx context.Context, f DonationFilter) ([]models.Donation, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.DonorID != "" {
		filter["donorID"] = f.DonorID
	}
	if f.NgoID != "" {
		filter["ngoDetails.ngoID"] = f.NgoID
	}

	cursor, err := s.donations().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err = cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	return donations, nil
}

// ReplaceDonationIfAvailable overwrites the donation only while it is still
// Available, so a concurrent claim cannot be clobbered by an edit.
func (s *Mongo) ReplaceDonationIfAvailable(ctx context.Context, d *models.Donation) error {
	result, err := s.donations().ReplaceOne(ctx,
		bson.M{"donationID": d.DonationID, "status": models.StatusAvailable}, d)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return s.donationMissOrState(ctx, d.DonationID)
	}
	return nil
}

func (s *Mongo) DeleteDonationIfAvailable(ctx context.Context, donationID string) error {
	result, err := s.donations().DeleteOne(ctx,
		bson.M{"donationID": donationID, "status": models.StatusAvailable})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return s.donationMissOrState(ctx, donationID)
	}
	return nil
}

// donationMissOrState disambiguates a zero-match conditional write.
func (s *Mongo) donationMissOrState(ctx context.Context, donationID string) error {
	count, err := s.donations().CountDocuments(ctx, bson.M{"donationID": donationID})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStateChanged
}

func (s *Mongo) ClaimDonation(ctx context.Context, donationID string, pickup *models.PickupAssignment) (*models.Donation, error) {
	session, err := s.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		// First-come-wins: the update only matches while the donation is
		// still Available. ErrNoDocuments here means somebody else already
		// claimed it (or the id is unknown).
		var claimed models.Donation
		err := s.donations().FindOneAndUpdate(sessCtx,
			bson.M{"donationID": donationID, "status": models.StatusAvailable},
			bson.M{"$set": bson.M{
				"status":      models.StatusPicked,
				"volunteerID": pickup.VolunteerID,
				"updatedAt":   time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&claimed)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, s.donationMissOrState(sessCtx, donationID)
			}
			return nil, err
		}

		// The unique (volunteerID, donationID) index rejects a repeat claim
		// by the same volunteer; the abort rolls the status update back.
		result, err := s.pickups().InsertOne(sessCtx, pickup)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicate
			}
			return nil, err
		}
		if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
			pickup.ID = oid
		}
		return &claimed, nil
	}

	result, err := session.WithTransaction(ctx, callback)
	if err != nil {
		return nil, err
	}
	return result.(*models.Donation), nil
}

func (s *Mongo) AdvanceDonation(ctx context.Context, donationID, volunteerID string, from []string, to string, deliveredAt *time.Time) (*models.Donation, error) {
	var updated models.Donation
	err := s.donations().FindOneAndUpdate(ctx,
		bson.M{
			"donationID":  donationID,
			"volunteerID": volunteerID,
			"status":      bson.M{"$in": from},
		},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, s.donationMissOrState(ctx, donationID)
		}
		return nil, err
	}

	pickupSet := bson.M{"status": pickupStatusFor(to)}
	if deliveredAt != nil {
		pickupSet["deliveredAt"] = *deliveredAt
	}
	_, err = s.pickups().UpdateOne(ctx,
		bson.M{"donationID": donationID, "volunteerID": volunteerID},
		bson.M{"$set": pickupSet})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func pickupStatusFor(donationStatus string) string {
	switch donationStatus {
	case models.StatusInTransit:
		return models.PickupInTransit
	case models.StatusDelivered:
		return models.PickupDelivered
	default:
		return models.PickupAccepted
	}
}

func (s *Mongo) SetDonationNgo(ctx context.Context, donationID, requestID string, details models.NgoDetails) error {
	set := bson.M{"ngoDetails": details, "updatedAt": time.Now()}
	if requestID != "" {
		set["ngoRequestID"] = requestID
	}
	result, err := s.donations().UpdateOne(ctx,
		bson.M{"donationID": donationID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) SetDonationPhoto(ctx context.Context, donationID, url string) error {
	result, err := s.donations().UpdateOne(ctx,
		bson.M{"donationID": donationID},
		bson.M{"$set": bson.M{"photoURL": url, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- NGO requests ---

func (s *Mongo) InsertNgoRequest(ctx context.Context, r *models.NgoRequest) error {
	result, err := s.ngoRequests().InsertOne(ctx, r)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

func (s *Mongo) NgoRequestByID(ctx context.Context, requestID string) (*models.NgoRequest, error) {
	var r models.NgoRequest
	err := s.ngoRequests().FindOne(ctx, bson.M{"requestID": requestID}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Mongo) NgoRequestsByNgo(ctx context.Context, ngoID string) ([]models.NgoRequest, error) {
	cursor, err := s.ngoRequests().Find(ctx, bson.M{"ngoID": ngoID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.NgoRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.NgoRequest{}
	}
	return requests, nil
}

// AcceptNgoRequest links a donation to a Pending request. Once Accepted the
// link is immutable, so the filter is conditioned on Pending.
func (s *Mongo) AcceptNgoRequest(ctx context.Context, requestID, donationID string) error {
	result, err := s.ngoRequests().UpdateOne(ctx,
		bson.M{"requestID": requestID, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": models.RequestAccepted, "donationID": donationID}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := s.ngoRequests().CountDocuments(ctx, bson.M{"requestID": requestID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStateChanged
	}
	return nil
}

func (s *Mongo) CancelNgoRequest(ctx context.Context, requestID, requesterID string) error {
	result, err := s.ngoRequests().UpdateOne(ctx,
		bson.M{
			"requestID": requestID,
			"status":    models.RequestPending,
			"$or": bson.A{
				bson.M{"ngoID": requesterID},
				bson.M{"volunteerID": requesterID},
			},
		},
		bson.M{"$set": bson.M{"status": models.RequestRejected}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := s.ngoRequests().CountDocuments(ctx, bson.M{"requestID": requestID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStateChanged
	}
	return nil
}

// --- Volunteers ---

func (s *Mongo) EnsureVolunteer(ctx context.Context, userID string) (*models.Volunteer, error) {
	now := time.Now()
	var v models.Volunteer
	err := s.volunteers().FindOneAndUpdate(ctx,
		bson.M{"userID": userID},
		bson.M{
			"$setOnInsert": bson.M{
				"userID":            userID,
				"available":         true,
				"assignedDonations": []string{},
				"createdAt":         now,
				"updatedAt":         now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Mongo) VolunteerByUserID(ctx context.Context, userID string) (*models.Volunteer, error) {
	var v models.Volunteer
	err := s.volunteers().FindOne(ctx, bson.M{"userID": userID}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *Mongo) ToggleVolunteerAvailability(ctx context.Context, userID string) (*models.Volunteer, error) {
	var v models.Volunteer
	err := s.volunteers().FindOneAndUpdate(ctx,
		bson.M{"userID": userID},
		bson.A{bson.M{"$set": bson.M{
			"available": bson.M{"$not": "$available"},
			"updatedAt": "$$NOW",
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *Mongo) AppendVolunteerAssignment(ctx context.Context, userID, donationID string) error {
	_, err := s.volunteers().UpdateOne(ctx,
		bson.M{"userID": userID},
		bson.M{
			"$addToSet": bson.M{"assignedDonations": donationID},
			"$set":      bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (s *Mongo) PickupsByVolunteer(ctx context.Context, volunteerID string) ([]models.PickupAssignment, error) {
	cursor, err := s.pickups().Find(ctx, bson.M{"volunteerID": volunteerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pickups []models.PickupAssignment
	if err = cursor.All(ctx, &pickups); err != nil {
		return nil, err
	}
	if pickups == nil {
		pickups = []models.PickupAssignment{}
	}
	return pickups, nil
}

// --- Users ---

func (s *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	result, err := s.users().InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Mongo) UserByID(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := s.users().FindOne(ctx, bson.M{"userID": userID}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Mongo) UsersByRole(ctx context.Context, role string) ([]models.User, error) {
	cursor, err := s.users().Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
