package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/pkg/config"
	"roomsvc/pkg/model"
)

const (
	CollectionName = "Rooms"
)

// RoomRepository is the document store adapter. A room document embeds its
// booking collection, so the room is the unit of concurrency control: all
// booking mutations go through the conditional single-document operations
// below, never through read-modify-write from application code.
type RoomRepository interface {
	Insert(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, roomID string) (*model.Room, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, roomID string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, roomID string) error

	AppendBookingIfSlotFree(ctx context.Context, roomID string, booking *model.Booking) error
	RemoveBookingByID(ctx context.Context, roomID, bookingID string) (*model.Booking, error)
	FindBookingAtSlot(ctx context.Context, roomID string, start time.Time) (*model.Booking, error)
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique room_id index. Called once at startup.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	collection := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "room_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create room_id index: %w", err)
	}
	return nil
}

func (r *mongoRoomRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoomRepository) Insert(ctx context.Context, room *model.Room) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if room.Bookings == nil {
		room.Bookings = []model.Booking{}
	}

	if _, err := r.collection.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return roomerrors.ErrRoomExists
		}
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, roomID string) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomerrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "room_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	return rooms, nil
}

func (r *mongoRoomRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	return count, nil
}

func (r *mongoRoomRepository) Update(ctx context.Context, roomID string, updates *model.RoomUpdate) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{}
	if updates.Capacity != nil {
		set["capacity"] = *updates.Capacity
	}
	if updates.Equipment != nil {
		set["equipment"] = *updates.Equipment
	}
	if updates.NoiseLevel != "" {
		set["noise_level"] = updates.NoiseLevel
	}
	if updates.TemperatureLevel != "" {
		set["temperature_level"] = updates.TemperatureLevel
	}
	if updates.WifiSpeed != nil {
		set["wifi_speed"] = *updates.WifiSpeed
	}

	if len(set) == 0 {
		return r.FindByID(ctx, roomID)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var room model.Room
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"room_id": roomID}, bson.M{"$set": set}, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomerrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) Delete(ctx context.Context, roomID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if result.DeletedCount == 0 {
		return roomerrors.ErrRoomNotFound
	}

	return nil
}

// AppendBookingIfSlotFree inserts the booking into the room's collection only
// if no existing entry has the same start instant. The guard is evaluated
// server-side in the update filter, so of any set of concurrent attempts for
// the same room and slot at most one can succeed, across any number of
// service instances. Assigns the booking its store identifier on success.
func (r *mongoRoomRepository) AppendBookingIfSlotFree(ctx context.Context, roomID string, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.ID = primitive.NewObjectID().Hex()

	// "bookings.start $ne" matches only when no array element has this start.
	filter := bson.M{
		"room_id":        roomID,
		"bookings.start": bson.M{"$ne": booking.Start},
	}
	update := bson.M{"$push": bson.M{"bookings": booking}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		booking.ID = ""
		return fmt.Errorf("failed to append booking: %w", err)
	}

	if result.MatchedCount == 0 {
		booking.ID = ""
		exists, err := r.roomExists(ctx, roomID)
		if err != nil {
			return err
		}
		if !exists {
			return roomerrors.ErrRoomNotFound
		}
		return roomerrors.ErrSlotTaken
	}

	return nil
}

// RemoveBookingByID pulls the booking out of the room's collection and
// returns it as it was before removal, in one store command. The pre-image is
// needed so callers can notify the users that had been on the booking.
func (r *mongoRoomRepository) RemoveBookingByID(ctx context.Context, roomID, bookingID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":      roomID,
		"bookings._id": bookingID,
	}
	update := bson.M{"$pull": bson.M{"bookings": bson.M{"_id": bookingID}}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"bookings": bson.M{"$elemMatch": bson.M{"_id": bookingID}}})

	var doc struct {
		Bookings []model.Booking `bson:"bookings"`
	}
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			exists, existsErr := r.roomExists(ctx, roomID)
			if existsErr != nil {
				return nil, existsErr
			}
			if !exists {
				return nil, roomerrors.ErrRoomNotFound
			}
			return nil, roomerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to remove booking: %w", err)
	}

	if len(doc.Bookings) == 0 {
		return nil, roomerrors.ErrBookingNotFound
	}

	return &doc.Bookings[0], nil
}

// FindBookingAtSlot returns the booking occupying the given start instant.
// The exclusivity invariant means at most one element can match; if the store
// ever held more, only the first is reported.
func (r *mongoRoomRepository) FindBookingAtSlot(ctx context.Context, roomID string, start time.Time) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"room_id":  1,
		"bookings": bson.M{"$elemMatch": bson.M{"start": start}},
	})

	var doc struct {
		Bookings []model.Booking `bson:"bookings"`
	}
	err := r.collection.FindOne(ctx, bson.M{"room_id": roomID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomerrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find booking at slot: %w", err)
	}

	if len(doc.Bookings) == 0 {
		return nil, roomerrors.ErrBookingNotFound
	}

	return &doc.Bookings[0], nil
}

func (r *mongoRoomRepository) roomExists(ctx context.Context, roomID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"room_id": roomID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check room existence: %w", err)
	}
	return count > 0, nil
}
