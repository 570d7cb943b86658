package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and checks account passwords with bcrypt.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{Cost: cost}
}

func (h Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A malformed hash is an error,
// a mismatch is not.
func (h Hasher) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
