package repositories

import (
	"context"
	"errors"
	"time"

	"contaula-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateKey is returned when an insert violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// UserRepository persists users in the users collection.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository returns a repository bound to the shared users collection.
func NewUserRepository() *UserRepository {
	return &UserRepository{collection: Users()}
}

// EnsureIndexes creates the unique index on username. Safe to call on every
// process start.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert writes a new user. Returns ErrDuplicateKey when the username is
// already taken.
func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

// FindByUsername returns the user document, or nil when absent.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies a partial update to the user. Nil fields are left untouched.
// Returns false when no document matched.
func (r *UserRepository) Update(ctx context.Context, username string, passwordHash, role *string, now time.Time) (bool, error) {
	set := bson.M{"updated_at": now}
	if passwordHash != nil {
		set["password_hash"] = *passwordHash
	}
	if role != nil {
		set["role"] = *role
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// Delete removes the user document. Absent usernames are a silent no-op.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"username": username})
	return err
}

// List returns every user, sorted by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Usernames returns the set of all usernames. Used by the bootstrap orphan
// sweep.
func (r *UserRepository) Usernames(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "username", bson.M{})
	if err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			usernames = append(usernames, s)
		}
	}
	return usernames, nil
}
