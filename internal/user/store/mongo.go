package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"userhub/internal/platform/tracing"
	"userhub/internal/user/models"
)

const usersCollection = "users"

// MongoStore persists users in a MongoDB collection. Email uniqueness is
// enforced by a unique index (see EnsureIndexes); duplicate-key errors are
// mapped to ErrDuplicateEmail so the race-free invariant holds for both
// inserts and email-changing updates.
type MongoStore struct {
	users *mongo.Collection
}

func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{users: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure users email index: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, user *models.User) (err error) {
	ctx, end := tracing.Start(ctx, "store.Insert")
	defer func() { end(err) }()

	_, err = s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert %q: %w", user.Email, ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, user *models.User) (err error) {
	ctx, end := tracing.Start(ctx, "store.Update")
	defer func() { end(err) }()

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("update %q: %w", user.Email, ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %q: %w", user.ID, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (u *models.User, err error) {
	ctx, end := tracing.Start(ctx, "store.FindByID")
	defer func() { end(err) }()

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (u *models.User, err error) {
	ctx, end := tracing.Start(ctx, "store.FindByEmail")
	defer func() { end(err) }()

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) ListAll(ctx context.Context) (users []*models.User, err error) {
	ctx, end := tracing.Start(ctx, "store.ListAll")
	defer func() { end(err) }()

	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users = make([]*models.User, 0)
	if err = cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (err error) {
	ctx, end := tracing.Start(ctx, "store.Delete")
	defer func() { end(err) }()

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	return nil
}
