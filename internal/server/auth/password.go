// Package auth contains the credential primitives of the server: the bcrypt
// password hasher and the JWT token issuer.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
)

const (
	// MinCost and MaxCost bound the bcrypt work factor to keep attacker cost
	// high without making legitimate logins unusably slow.
	MinCost = 10
	MaxCost = 16

	// DefaultCost is the work factor used when none is configured.
	DefaultCost = 12
)

// Hasher produces and verifies one-way adaptive password hashes. It holds
// only immutable configuration, so a single value is safe for concurrent use.
type Hasher struct {
	cost  int
	dummy string
}

// NewHasher constructs a Hasher with the given bcrypt cost. A cost outside
// [MinCost, MaxCost] is a configuration error.
func NewHasher(cost int) (*Hasher, error) {
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, MinCost, MaxCost)
	}

	// The dummy hash lets callers burn a real bcrypt comparison on the
	// user-not-found path so it is not distinguishable from a wrong password.
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy hash seed: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(seed), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &Hasher{cost: cost, dummy: string(dummy)}, nil
}

// Hash returns the bcrypt hash of password. Blank or whitespace-only
// passwords are rejected with common.ErrInvalidInput.
func (h *Hasher) Hash(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("password cannot be empty: %w", common.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	return string(hash), nil
}

// Verify reports whether password matches the stored hash. It never returns
// an error: a missing hash or a mismatch both read as false.
func (h *Hasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DummyHash returns a valid bcrypt hash of a random value generated at
// construction. Verifying against it always fails but costs the same as a
// real comparison.
func (h *Hasher) DummyHash() string {
	return h.dummy
}
