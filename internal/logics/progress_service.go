package logics

import (
	"context"
	"fmt"
	"time"

	"contaula-server/internal/auth"
	"contaula-server/internal/models"

	"go.uber.org/zap"
)

// ProgressService records level outcomes and serves progress documents.
type ProgressService struct {
	progress ProgressStore
	logger   *zap.Logger
}

func NewProgressService(progress ProgressStore, logger *zap.Logger) *ProgressService {
	return &ProgressService{progress: progress, logger: logger}
}

// RecordLevel marks a level as passed with its score and elapsed time, and
// rewrites the survey gate from the four passed flags. The gate is never
// taken from client input.
func (s *ProgressService) RecordLevel(ctx context.Context, rawUsername string, level int, score float64, timeSec int) error {
	username := models.NormalizeUsername(rawUsername)
	if level < 1 || level > models.NumLevels {
		return auth.NewAuthError(auth.ErrInvalidField, fmt.Sprintf("level out of range: %d", level))
	}
	if timeSec < 0 {
		return auth.NewAuthError(auth.ErrInvalidField, "time_sec must not be negative")
	}

	progress, err := s.progress.FindByUsername(ctx, username)
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to look up progress", err)
	}
	if progress == nil {
		return auth.NewAuthError(auth.ErrUserNotFound, "no progress for "+username)
	}

	now := time.Now().UTC()
	result := models.LevelResult{
		Passed:  true,
		Date:    &now,
		Score:   &score,
		TimeSec: timeSec,
	}
	*progress.Level(level) = result

	matched, err := s.progress.SetLevel(ctx, username, level, result, progress.ComputeSurveyUnlocked(), now)
	if err != nil {
		return auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to record level", err)
	}
	if !matched {
		return auth.NewAuthError(auth.ErrUserNotFound, "no progress for "+username)
	}

	s.logger.Info("Level recorded",
		zap.String("username", username),
		zap.Int("level", level),
		zap.Float64("score", score),
		zap.Int("timeSec", timeSec))
	return nil
}

// GetProgress returns the progress document for a user.
func (s *ProgressService) GetProgress(ctx context.Context, rawUsername string) (*models.Progress, error) {
	username := models.NormalizeUsername(rawUsername)

	progress, err := s.progress.FindByUsername(ctx, username)
	if err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrStoreUnavailable, "failed to look up progress", err)
	}
	if progress == nil {
		return nil, auth.NewAuthError(auth.ErrUserNotFound, "no progress for "+username)
	}
	return progress, nil
}
