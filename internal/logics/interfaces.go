package logics

import (
	"context"
	"time"

	"contaula-server/internal/models"
)

// UserStore is the persistence surface the user service depends on.
// Implemented by repositories.UserRepository; tests substitute fakes.
type UserStore interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, passwordHash, role *string, now time.Time) (bool, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]models.User, error)
	Usernames(ctx context.Context) ([]string, error)
}

// ProgressStore is the persistence surface the progress service depends on.
type ProgressStore interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, progress *models.Progress) error
	FindByUsername(ctx context.Context, username string) (*models.Progress, error)
	SetLevel(ctx context.Context, username string, level int, result models.LevelResult, surveyUnlocked bool, now time.Time) (bool, error)
	Delete(ctx context.Context, username string) error
	DeleteOrphans(ctx context.Context, usernames []string) (int64, error)
}

// CredentialVerifier is the slice of the user service the session service
// needs.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}
