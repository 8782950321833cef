package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// defaultCost keeps a single verification above ~50ms on commodity hardware.
const defaultCost = 12

// Hasher wraps bcrypt with a configurable work factor.
type Hasher struct {
	cost      int
	dummyHash string
}

// NewHasher creates a Hasher. A cost outside bcrypt's valid range falls back
// to the default. The dummy hash is generated once and used to equalize the
// latency of credential checks against unknown usernames.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("contaula-dummy-password"), cost)
	if err != nil {
		return nil, NewAuthErrorWithCause(ErrInternal, "failed to generate dummy hash", err)
	}
	return &Hasher{cost: cost, dummyHash: string(dummy)}, nil
}

// Hash derives a salted one-way hash from the plain password. The output
// embeds a per-call random salt, so two calls never produce the same value.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", NewAuthErrorWithCause(ErrInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// Verify checks plain against a stored hash. A malformed hash is treated as
// a mismatch, never an error.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyDummy burns one hash comparison against the canned hash. Called when
// the target user does not exist so the latency of a failed login does not
// reveal whether the username was valid.
func (h *Hasher) VerifyDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummyHash), []byte(plain))
}
