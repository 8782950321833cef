package logics_test

import (
	"context"
	"testing"
	"time"

	"contaula-server/configs"
	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) (*logics.UserService, *fakeUserStore, *fakeProgressStore) {
	t.Helper()
	hasher, err := auth.NewHasher(bcrypt.MinCost)
	assert.NoError(t, err)
	users := newFakeUserStore()
	progress := newFakeProgressStore()
	return logics.NewUserService(users, progress, hasher, zap.NewNop()), users, progress
}

func TestUserService_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("creates default admin with configured password", func(t *testing.T) {
		configs.Configs.Authn.DefaultAdminPassword = "inicial-segura"
		defer func() { configs.Configs.Authn.DefaultAdminPassword = "" }()

		svc, users, progress := newTestUserService(t)
		assert.NoError(t, svc.Bootstrap(ctx))

		admin := users.users["admin"]
		assert.NotNil(t, admin)
		assert.Equal(t, models.RoleAdmin, admin.Role)
		assert.NotEqual(t, "inicial-segura", admin.PasswordHash)

		p := progress.docs["admin"]
		assert.NotNil(t, p)
		assert.False(t, p.SurveyUnlocked)

		verified, err := svc.VerifyCredentials(ctx, "admin", "inicial-segura")
		assert.NoError(t, err)
		assert.NotNil(t, verified)
	})

	t.Run("falls back to placeholder password", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)
		assert.NoError(t, svc.Bootstrap(ctx))
		assert.NotNil(t, users.users["admin"])

		verified, err := svc.VerifyCredentials(ctx, "admin", "cambiar-admin-123")
		assert.NoError(t, err)
		assert.NotNil(t, verified)
	})

	t.Run("idempotent across restarts", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)
		assert.NoError(t, svc.Bootstrap(ctx))

		original := *users.users["admin"]
		assert.NoError(t, svc.Bootstrap(ctx))
		assert.NoError(t, svc.Bootstrap(ctx))

		assert.Len(t, users.users, 1)
		assert.Equal(t, original.PasswordHash, users.users["admin"].PasswordHash,
			"a second bootstrap must not rotate the admin password")
	})

	t.Run("does not touch a customized admin", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)
		assert.NoError(t, svc.Bootstrap(ctx))

		newPassword := "rotada-456"
		assert.NoError(t, svc.UpdateUser(ctx, "admin", &newPassword, nil))
		rotated := users.users["admin"].PasswordHash

		assert.NoError(t, svc.Bootstrap(ctx))
		assert.Equal(t, rotated, users.users["admin"].PasswordHash)
	})

	t.Run("losing the insert race is benign", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)
		users.forceInsertDup = true

		assert.NoError(t, svc.Bootstrap(ctx), "a concurrent bootstrap winning the race is not an error")
	})

	t.Run("repairs a missing admin progress document", func(t *testing.T) {
		svc, _, progress := newTestUserService(t)
		assert.NoError(t, svc.Bootstrap(ctx))

		delete(progress.docs, "admin")
		assert.NoError(t, svc.Bootstrap(ctx))
		assert.NotNil(t, progress.docs["admin"])
	})

	t.Run("sweeps orphan progress documents", func(t *testing.T) {
		svc, _, progress := newTestUserService(t)
		assert.NoError(t, svc.Bootstrap(ctx))

		// A crashed delete removes progress first, so the other orphan shape
		// is a progress document whose user is gone.
		progress.docs["fantasma"] = models.NewProgress("fantasma", time.Now())
		assert.NoError(t, svc.Bootstrap(ctx))

		assert.Nil(t, progress.docs["fantasma"])
		assert.NotNil(t, progress.docs["admin"])
	})
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with matching progress", func(t *testing.T) {
		svc, users, progress := newTestUserService(t)

		user, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEqual(t, "secreto123", user.PasswordHash)

		assert.NotNil(t, users.users["alice"])
		assert.NotNil(t, progress.docs["alice"], "every user gets a progress document")
	})

	t.Run("normalizes the username before writing", func(t *testing.T) {
		svc, users, progress := newTestUserService(t)

		user, err := svc.CreateUser(ctx, "  Alice ", "secreto123", "")
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.NotNil(t, users.users["alice"])
		assert.NotNil(t, progress.docs["alice"])
	})

	t.Run("empty role defaults to user", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)

		user, err := svc.CreateUser(ctx, "bob", "secreto123", "")
		assert.NoError(t, err)
		assert.Equal(t, models.RoleUser, user.Role)
	})

	t.Run("duplicate username leaves the store unchanged", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)

		first, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
		assert.NoError(t, err)

		_, err = svc.CreateUser(ctx, "ALICE", "otra456", models.RoleAdmin)
		assert.True(t, auth.IsAuthError(err, auth.ErrUserAlreadyExists))

		stored := users.users["alice"]
		assert.Equal(t, first.PasswordHash, stored.PasswordHash)
		assert.Equal(t, models.RoleUser, stored.Role)
		assert.Len(t, users.users, 1)
	})

	t.Run("rejects whitespace-only username", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)

		_, err := svc.CreateUser(ctx, "   ", "secreto123", models.RoleUser)
		assert.True(t, auth.IsAuthError(err, auth.ErrInvalidField))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)

		_, err := svc.CreateUser(ctx, "alice", "secreto123", "superadmin")
		assert.True(t, auth.IsAuthError(err, auth.ErrInvalidField))
	})

	t.Run("reuses an orphan progress document", func(t *testing.T) {
		svc, _, progress := newTestUserService(t)
		progress.docs["alice"] = models.NewProgress("alice", time.Now())
		progress.docs["alice"].Level1.Passed = true

		_, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
		assert.NoError(t, err, "an orphan progress document must not block recreation")
	})
}

func TestUserService_VerifyCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestUserService(t)

	_, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
	assert.NoError(t, err)

	t.Run("correct password returns the user", func(t *testing.T) {
		user, err := svc.VerifyCredentials(ctx, "alice", "secreto123")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("lookup is symmetric with the write normalization", func(t *testing.T) {
		user, err := svc.VerifyCredentials(ctx, "  ALICE ", "secreto123")
		assert.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("wrong password is indistinguishable from unknown user", func(t *testing.T) {
		wrongPassword, err := svc.VerifyCredentials(ctx, "alice", "otra456")
		assert.NoError(t, err)
		assert.Nil(t, wrongPassword)

		unknownUser, err := svc.VerifyCredentials(ctx, "nadie", "secreto123")
		assert.NoError(t, err)
		assert.Nil(t, unknownUser)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("role change takes effect", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)
		_, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
		assert.NoError(t, err)

		newRole := models.RoleAdmin
		assert.NoError(t, svc.UpdateUser(ctx, "alice", nil, &newRole))
		assert.Equal(t, models.RoleAdmin, users.users["alice"].Role)
	})

	t.Run("password change replaces the hash", func(t *testing.T) {
		svc, users, _ := newTestUserService(t)
		_, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
		assert.NoError(t, err)
		oldHash := users.users["alice"].PasswordHash

		newPassword := "nueva789"
		assert.NoError(t, svc.UpdateUser(ctx, "alice", &newPassword, nil))
		assert.NotEqual(t, oldHash, users.users["alice"].PasswordHash)

		user, err := svc.VerifyCredentials(ctx, "alice", "nueva789")
		assert.NoError(t, err)
		assert.NotNil(t, user)

		user, err = svc.VerifyCredentials(ctx, "alice", "secreto123")
		assert.NoError(t, err)
		assert.Nil(t, user, "the old password must stop working")
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)
		newRole := models.RoleAdmin
		err := svc.UpdateUser(ctx, "nadie", nil, &newRole)
		assert.True(t, auth.IsAuthError(err, auth.ErrUserNotFound))
	})

	t.Run("nothing to update", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)
		err := svc.UpdateUser(ctx, "alice", nil, nil)
		assert.True(t, auth.IsAuthError(err, auth.ErrInvalidField))
	})

	t.Run("invalid role", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)
		bad := "root"
		err := svc.UpdateUser(ctx, "alice", nil, &bad)
		assert.True(t, auth.IsAuthError(err, auth.ErrInvalidField))
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("removes user and progress together", func(t *testing.T) {
		svc, users, progress := newTestUserService(t)
		_, err := svc.CreateUser(ctx, "alice", "secreto123", models.RoleUser)
		assert.NoError(t, err)

		assert.NoError(t, svc.DeleteUser(ctx, "Alice"))
		assert.Nil(t, users.users["alice"])
		assert.Nil(t, progress.docs["alice"], "no progress document may outlive its user")
	})

	t.Run("absent username is a silent no-op", func(t *testing.T) {
		svc, _, _ := newTestUserService(t)
		assert.NoError(t, svc.DeleteUser(ctx, "nadie"))
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestUserService(t)

	for _, name := range []string{"carla", "alice", "bruno"} {
		_, err := svc.CreateUser(ctx, name, "secreto123", models.RoleUser)
		assert.NoError(t, err)
	}

	users, err := svc.ListUsers(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bruno", users[1].Username)
	assert.Equal(t, "carla", users[2].Username)
}
