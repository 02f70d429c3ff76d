package notifications

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	AdminCollection = "admin_notifications"
	UserCollection  = "user_notifications"
)

// Store is the notification inbox. userID is ignored for the admin audience,
// whose inbox is shared by every admin.
type Store interface {
	Save(ctx context.Context, d Delivery) error
	List(ctx context.Context, audience Audience, userID string, limit, offset int64) ([]Notification, error)
	CountUnread(ctx context.Context, audience Audience, userID string) (int64, error)
	MarkRead(ctx context.Context, audience Audience, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, audience Audience, userID string) (int64, error)
}

type mongoStore struct {
	admin *mongo.Collection
	user  *mongo.Collection
	now   func() time.Time
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{
		admin: db.Collection(AdminCollection),
		user:  db.Collection(UserCollection),
		now:   time.Now,
	}
}

// EnsureIndexes creates the inbox indexes; safe to call on every start
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", UserCollection, err)
	}
	_, err = db.Collection(AdminCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", AdminCollection, err)
	}
	return nil
}

func (s *mongoStore) collection(audience Audience) *mongo.Collection {
	if audience == AudienceAdmin {
		return s.admin
	}
	return s.user
}

func scope(audience Audience, userID string) bson.M {
	if audience == AudienceAdmin {
		return bson.M{}
	}
	return bson.M{"user_id": userID}
}

// Save inserts the document once; a redelivered event hits the _id unique
// index and leaves the stored copy (including its read state) untouched.
func (s *mongoStore) Save(ctx context.Context, d Delivery) error {
	_, err := s.collection(d.Audience).InsertOne(ctx, d.Notification)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to save %s notification: %w", d.Audience, err)
	}
	return nil
}

func (s *mongoStore) List(ctx context.Context, audience Audience, userID string, limit, offset int64) ([]Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := s.collection(audience).Find(ctx, scope(audience, userID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cur.Close(ctx)

	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

func (s *mongoStore) CountUnread(ctx context.Context, audience Audience, userID string) (int64, error) {
	filter := scope(audience, userID)
	filter["is_read"] = false
	n, err := s.collection(audience).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (s *mongoStore) MarkRead(ctx context.Context, audience Audience, userID, id string) (bool, error) {
	filter := scope(audience, userID)
	filter["_id"] = id
	res, err := s.collection(audience).UpdateOne(ctx, filter, s.readUpdate())
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *mongoStore) MarkAllRead(ctx context.Context, audience Audience, userID string) (int64, error) {
	filter := scope(audience, userID)
	filter["is_read"] = false
	res, err := s.collection(audience).UpdateMany(ctx, filter, s.readUpdate())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *mongoStore) readUpdate() bson.M {
	return bson.M{"$set": bson.M{"is_read": true, "read_at": s.now()}}
}
