package logics_test

import (
	"context"
	"testing"
	"time"

	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestProgressService(t *testing.T) (*logics.ProgressService, *fakeProgressStore) {
	t.Helper()
	progress := newFakeProgressStore()
	return logics.NewProgressService(progress, zap.NewNop()), progress
}

func seedProgress(store *fakeProgressStore, username string) {
	store.docs[username] = models.NewProgress(username, time.Now().UTC())
}

func TestProgressService_RecordLevel(t *testing.T) {
	ctx := context.Background()

	t.Run("records score, date and elapsed time", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		assert.NoError(t, svc.RecordLevel(ctx, "alice", 2, 100, 340))

		result := store.docs["alice"].Level2
		assert.True(t, result.Passed)
		assert.NotNil(t, result.Date)
		assert.NotNil(t, result.Score)
		assert.Equal(t, 100.0, *result.Score)
		assert.Equal(t, 340, result.TimeSec)
	})

	t.Run("normalizes the username", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		assert.NoError(t, svc.RecordLevel(ctx, " Alice ", 1, 100, 120))
		assert.True(t, store.docs["alice"].Level1.Passed)
	})

	t.Run("survey unlocks only after all four levels", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		for _, level := range []int{1, 2, 3} {
			assert.NoError(t, svc.RecordLevel(ctx, "alice", level, 100, 200))
			assert.False(t, store.docs["alice"].SurveyUnlocked)
		}

		assert.NoError(t, svc.RecordLevel(ctx, "alice", 4, 100, 200))
		assert.True(t, store.docs["alice"].SurveyUnlocked)
	})

	t.Run("order of completion does not matter", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		for _, level := range []int{4, 2, 1} {
			assert.NoError(t, svc.RecordLevel(ctx, "alice", level, 100, 200))
		}
		assert.False(t, store.docs["alice"].SurveyUnlocked)

		assert.NoError(t, svc.RecordLevel(ctx, "alice", 3, 100, 200))
		assert.True(t, store.docs["alice"].SurveyUnlocked)
	})

	t.Run("repeating a level keeps the survey unlocked", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		for level := 1; level <= 4; level++ {
			assert.NoError(t, svc.RecordLevel(ctx, "alice", level, 100, 200))
		}
		assert.NoError(t, svc.RecordLevel(ctx, "alice", 2, 100, 90))
		assert.True(t, store.docs["alice"].SurveyUnlocked)
	})

	t.Run("level out of range", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		assert.True(t, auth.IsAuthError(svc.RecordLevel(ctx, "alice", 0, 100, 10), auth.ErrInvalidField))
		assert.True(t, auth.IsAuthError(svc.RecordLevel(ctx, "alice", 5, 100, 10), auth.ErrInvalidField))
	})

	t.Run("negative elapsed time", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")

		err := svc.RecordLevel(ctx, "alice", 1, 100, -5)
		assert.True(t, auth.IsAuthError(err, auth.ErrInvalidField))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestProgressService(t)
		err := svc.RecordLevel(ctx, "nadie", 1, 100, 10)
		assert.True(t, auth.IsAuthError(err, auth.ErrUserNotFound))
	})
}

func TestProgressService_GetProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored document", func(t *testing.T) {
		svc, store := newTestProgressService(t)
		seedProgress(store, "alice")
		store.docs["alice"].Level1.Passed = true

		progress, err := svc.GetProgress(ctx, " ALICE ")
		assert.NoError(t, err)
		assert.Equal(t, "alice", progress.Username)
		assert.True(t, progress.Level1.Passed)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestProgressService(t)
		_, err := svc.GetProgress(ctx, "nadie")
		assert.True(t, auth.IsAuthError(err, auth.ErrUserNotFound))
	})
}
