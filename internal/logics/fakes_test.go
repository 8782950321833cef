package logics_test

import (
	"context"
	"sort"
	"time"

	"contaula-server/internal/models"
	"contaula-server/internal/repositories"
)

// In-memory stand-ins for the mongo repositories, keyed the same way
// (normalized username). forceInsertDup simulates losing a unique-index race
// to another process.

type fakeUserStore struct {
	users          map[string]*models.User
	forceInsertDup bool
	indexCalls     int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) EnsureIndexes(ctx context.Context) error {
	f.indexCalls++
	return nil
}

func (f *fakeUserStore) Insert(ctx context.Context, user *models.User) error {
	if f.forceInsertDup {
		return repositories.ErrDuplicateKey
	}
	if _, ok := f.users[user.Username]; ok {
		return repositories.ErrDuplicateKey
	}
	clone := *user
	f.users[user.Username] = &clone
	return nil
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) Update(ctx context.Context, username string, passwordHash, role *string, now time.Time) (bool, error) {
	u, ok := f.users[username]
	if !ok {
		return false, nil
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if role != nil {
		u.Role = *role
	}
	u.UpdatedAt = now
	return true, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, username string) error {
	delete(f.users, username)
	return nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	names, _ := f.Usernames(ctx)
	out := make([]models.User, 0, len(names))
	for _, n := range names {
		out = append(out, *f.users[n])
	}
	return out, nil
}

func (f *fakeUserStore) Usernames(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.users))
	for n := range f.users {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

type fakeProgressStore struct {
	docs           map[string]*models.Progress
	forceInsertDup bool
	indexCalls     int
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{docs: map[string]*models.Progress{}}
}

func (f *fakeProgressStore) EnsureIndexes(ctx context.Context) error {
	f.indexCalls++
	return nil
}

func (f *fakeProgressStore) Insert(ctx context.Context, progress *models.Progress) error {
	if f.forceInsertDup {
		return repositories.ErrDuplicateKey
	}
	if _, ok := f.docs[progress.Username]; ok {
		return repositories.ErrDuplicateKey
	}
	clone := *progress
	f.docs[progress.Username] = &clone
	return nil
}

func (f *fakeProgressStore) FindByUsername(ctx context.Context, username string) (*models.Progress, error) {
	p, ok := f.docs[username]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProgressStore) SetLevel(ctx context.Context, username string, level int, result models.LevelResult, surveyUnlocked bool, now time.Time) (bool, error) {
	p, ok := f.docs[username]
	if !ok {
		return false, nil
	}
	*p.Level(level) = result
	p.SurveyUnlocked = surveyUnlocked
	p.UpdatedAt = now
	return true, nil
}

func (f *fakeProgressStore) Delete(ctx context.Context, username string) error {
	delete(f.docs, username)
	return nil
}

func (f *fakeProgressStore) DeleteOrphans(ctx context.Context, usernames []string) (int64, error) {
	keep := map[string]bool{}
	for _, n := range usernames {
		keep[n] = true
	}
	var swept int64
	for n := range f.docs {
		if !keep[n] {
			delete(f.docs, n)
			swept++
		}
	}
	return swept, nil
}
