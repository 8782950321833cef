package logics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contaula-server/internal/repositories"

	"github.com/redis/go-redis/v9"
)

// Generated exercises live in redis keyed by user and level, so grading is
// checked against what the server actually handed out, never against
// client-supplied parameters.
const exerciseTTL = 2 * time.Hour

func exerciseKey(username string, level int) string {
	return fmt.Sprintf("exercise:%s:%d", username, level)
}

func cacheExercise(ctx context.Context, username string, level int, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize exercise: %w", err)
	}
	if err := repositories.DBS.Redis.Set(ctx, exerciseKey(username, level), data, exerciseTTL).Err(); err != nil {
		return fmt.Errorf("failed to store exercise in Redis: %w", err)
	}
	return nil
}

// loadExercise fills value from the cached exercise. Returns false when no
// exercise is outstanding for this user and level.
func loadExercise(ctx context.Context, username string, level int, value interface{}) (bool, error) {
	data, err := repositories.DBS.Redis.Get(ctx, exerciseKey(username, level)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read exercise from Redis: %w", err)
	}
	if err := json.Unmarshal([]byte(data), value); err != nil {
		return false, fmt.Errorf("failed to deserialize exercise: %w", err)
	}
	return true, nil
}

func dropExercise(ctx context.Context, username string, level int) {
	repositories.DBS.Redis.Del(ctx, exerciseKey(username, level))
}
