package repositories

import (
	"context"
	"fmt"
	"time"

	"contaula-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProgressRepository persists per-user progress in the progress collection.
type ProgressRepository struct {
	collection *mongo.Collection
}

// NewProgressRepository returns a repository bound to the shared progress
// collection.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{collection: Progress()}
}

// EnsureIndexes creates the unique index on username.
func (r *ProgressRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert writes a new progress document. Returns ErrDuplicateKey when a
// document for the username already exists.
func (r *ProgressRepository) Insert(ctx context.Context, progress *models.Progress) error {
	_, err := r.collection.InsertOne(ctx, progress)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

// FindByUsername returns the progress document, or nil when absent.
func (r *ProgressRepository) FindByUsername(ctx context.Context, username string) (*models.Progress, error) {
	var progress models.Progress
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&progress)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// SetLevel writes one level result and the recomputed survey gate in a single
// document-atomic update. Returns false when no document matched.
func (r *ProgressRepository) SetLevel(ctx context.Context, username string, level int, result models.LevelResult, surveyUnlocked bool, now time.Time) (bool, error) {
	field := fmt.Sprintf("level%d", level)
	update := bson.M{"$set": bson.M{
		field:             result,
		"survey_unlocked": surveyUnlocked,
		"updated_at":      now,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes the progress document. Absent usernames are a silent no-op.
func (r *ProgressRepository) Delete(ctx context.Context, username string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"username": username})
	return err
}

// DeleteOrphans removes progress documents whose username is not in the
// given set. A crash between the two halves of a user deletion leaves a
// progress document behind; the bootstrap sweeps them here.
func (r *ProgressRepository) DeleteOrphans(ctx context.Context, usernames []string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"username": bson.M{"$nin": usernames}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
