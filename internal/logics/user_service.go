package logics

import (
	"context"
	"errors"
	"time"

	"contaula-server/configs"
	"contaula-server/internal/auth"
	"contaula-server/internal/models"
	"contaula-server/internal/repositories"

	"go.uber.org/zap"
)

const (
	// adminUsername is the bootstrapped administrator account.
	adminUsername = "admin"

	// placeholderAdminPassword is used when no initial password is
	// configured. The administrator is expected to rotate it on first login.
	placeholderAdminPassword = "cambiar-admin-123"
)

// UserService owns CRUD over users and the one-shot bootstrap. Every
// username crossing this boundary is normalized first, so lookups are
// symmetric with writes.
type UserService struct {
	users    UserStore
	progress ProgressStore
	hasher   *auth.Hasher
	logger   *zap.Logger
}

// NewUserService wires the service against the shared repositories.
func NewUserService(users UserStore, progress ProgressStore, hasher *auth.Hasher, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		progress: progress,
		hasher:   hasher,
		logger:   logger,
	}
}

// Bootstrap ensures the unique indexes, sweeps orphan progress documents and
// creates the default administrator if absent. Idempotent: safe to call on
// every process start, including concurrently from a second process (the
// unique index turns that race into a benign duplicate-key error).
func (s *UserService) Bootstrap(ctx context.Context) error {
	if err := s.users.EnsureIndexes(ctx); err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to ensure users index", err)
	}
	if err := s.progress.EnsureIndexes(ctx); err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to ensure progress index", err)
	}

	// A crash between the two halves of a delete leaves a progress document
	// without its user; sweep them before anything else runs.
	usernames, err := s.users.Usernames(ctx)
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to list usernames", err)
	}
	swept, err := s.progress.DeleteOrphans(ctx, usernames)
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to sweep orphan progress", err)
	}
	if swept > 0 {
		s.logger.Warn("Swept orphan progress documents", zap.Int64("count", swept))
	}

	return s.ensureDefaultAdmin(ctx)
}

func (s *UserService) ensureDefaultAdmin(ctx context.Context) error {
	existing, err := s.users.FindByUsername(ctx, adminUsername)
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to look up admin", err)
	}

	now := time.Now().UTC()

	if existing == nil {
		password := configs.Configs.Authn.DefaultAdminPassword
		if password == "" {
			password = placeholderAdminPassword
			s.logger.Warn("No default admin password configured, using placeholder; rotate it on first login")
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}

		err = s.users.Insert(ctx, &models.User{
			Username:     adminUsername,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			// Another process won the bootstrap race.
			s.logger.Info("Default admin already created concurrently")
		case err != nil:
			return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to insert default admin", err)
		default:
			s.logger.Info("Default admin created")
		}
	}

	// The admin's progress document may be missing after a crash between the
	// two inserts, or after a concurrent bootstrap lost the same race.
	adminProgress, err := s.progress.FindByUsername(ctx, adminUsername)
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to look up admin progress", err)
	}
	if adminProgress == nil {
		err := s.progress.Insert(ctx, models.NewProgress(adminUsername, now))
		if err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
			return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to insert admin progress", err)
		}
	}

	return nil
}

// CreateUser writes a new user and its matching progress document.
func (s *UserService) CreateUser(ctx context.Context, rawUsername, password, role string) (*models.User, error) {
	username := models.NormalizeUsername(rawUsername)
	if username == "" {
		return nil, auth.NewAuthError(auth.ErrInvalidField, "username is empty after normalization")
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, auth.NewAuthError(auth.ErrInvalidField, "unknown role: "+role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, auth.NewAuthError(auth.ErrUserAlreadyExists, "username already taken: "+username)
		}
		return nil, auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to insert user", err)
	}

	// A duplicate here is an orphan left by a crashed delete; the existing
	// document belongs to this username, keep it.
	if err := s.progress.Insert(ctx, models.NewProgress(username, now)); err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
		return nil, auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to insert progress", err)
	}

	s.logger.Info("User created", zap.String("username", username), zap.String("role", role))
	return user, nil
}

// UpdateUser partially updates a user. Nil arguments leave the field
// untouched; the password, when present, is hashed before storage.
func (s *UserService) UpdateUser(ctx context.Context, rawUsername string, newPassword, newRole *string) error {
	username := models.NormalizeUsername(rawUsername)
	if username == "" {
		return auth.NewAuthError(auth.ErrInvalidField, "username is empty after normalization")
	}
	if newRole != nil && !models.ValidRole(*newRole) {
		return auth.NewAuthError(auth.ErrInvalidField, "unknown role: "+*newRole)
	}
	if newPassword == nil && newRole == nil {
		return auth.NewAuthError(auth.ErrInvalidField, "nothing to update")
	}

	var passwordHash *string
	if newPassword != nil {
		hash, err := s.hasher.Hash(*newPassword)
		if err != nil {
			return err
		}
		passwordHash = &hash
	}

	matched, err := s.users.Update(ctx, username, passwordHash, newRole, time.Now().UTC())
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to update user", err)
	}
	if !matched {
		return auth.NewAuthError(auth.ErrUserNotFound, "no user named "+username)
	}

	s.logger.Info("User updated", zap.String("username", username),
		zap.Bool("password_changed", newPassword != nil), zap.Bool("role_changed", newRole != nil))
	return nil
}

// DeleteUser removes a user and its progress document. Progress goes first:
// a crash between the two deletes leaves an orphan progress document, which
// the bootstrap sweep can recognize and remove. Absent usernames are a
// silent no-op.
func (s *UserService) DeleteUser(ctx context.Context, rawUsername string) error {
	username := models.NormalizeUsername(rawUsername)
	if username == "" {
		return auth.NewAuthError(auth.ErrInvalidField, "username is empty after normalization")
	}

	if err := s.progress.Delete(ctx, username); err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to delete progress", err)
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to delete user", err)
	}

	s.logger.Info("User deleted", zap.String("username", username))
	return nil
}

// VerifyCredentials returns the user on a password match and nil otherwise.
// It does not distinguish "no such user" from "wrong password", and it burns
// one hash comparison either way so the two cases are also indistinguishable
// by latency.
func (s *UserService) VerifyCredentials(ctx context.Context, rawUsername, password string) (*models.User, error) {
	username := models.NormalizeUsername(rawUsername)

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to look up user", err)
	}

	if user == nil {
		s.hasher.VerifyDummy(password)
		return nil, nil
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

// ListUsers returns every user, sorted by username.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to list users", err)
	}
	return users, nil
}
