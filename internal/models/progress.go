package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NumLevels is the number of graded levels in the course.
const NumLevels = 4

// LevelResult records the outcome of one level for one user.
type LevelResult struct {
	Passed  bool       `bson:"passed" json:"passed"`
	Date    *time.Time `bson:"date" json:"date"`
	Score   *float64   `bson:"score" json:"score"`
	TimeSec int        `bson:"time_sec" json:"time_sec"`
}

// Progress is the per-user record of level completion. There is exactly one
// Progress document per user, keyed by the same normalized username.
type Progress struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username       string             `bson:"username" json:"username"`
	Level1         LevelResult        `bson:"level1" json:"level1"`
	Level2         LevelResult        `bson:"level2" json:"level2"`
	Level3         LevelResult        `bson:"level3" json:"level3"`
	Level4         LevelResult        `bson:"level4" json:"level4"`
	SurveyUnlocked bool               `bson:"survey_unlocked" json:"survey_unlocked"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// NewProgress returns the empty progress document for a user.
func NewProgress(username string, now time.Time) *Progress {
	return &Progress{
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Level returns a pointer to the result for level n (1..4), nil otherwise.
func (p *Progress) Level(n int) *LevelResult {
	switch n {
	case 1:
		return &p.Level1
	case 2:
		return &p.Level2
	case 3:
		return &p.Level3
	case 4:
		return &p.Level4
	}
	return nil
}

// ComputeSurveyUnlocked derives the survey gate from the four passed flags.
// It is always recomputed at write time, never trusted from client input.
func (p *Progress) ComputeSurveyUnlocked() bool {
	return p.Level1.Passed && p.Level2.Passed && p.Level3.Passed && p.Level4.Passed
}
