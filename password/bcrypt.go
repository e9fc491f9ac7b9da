package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	minCost      = bcrypt.DefaultCost
	minPassBytes = 8
)

// Bcrypt hashes and verifies passwords with a fixed work factor.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt hasher. Costs below bcrypt's default are
// rejected; zero selects the default.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < minCost || cost > bcrypt.MaxCost {
		return nil, errors.New("password: invalid bcrypt cost")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash derives a salted bcrypt hash from the raw password bytes.
func (b *Bcrypt) Hash(password string) (string, error) {
	if len(password) < minPassBytes {
		return "", errors.New("password must be at least 8 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. A mismatch is
// not an error; errors are reserved for malformed hashes.
func (b *Bcrypt) Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// NeedsUpgrade reports whether the stored hash was produced with a weaker
// work factor than currently configured.
func (b *Bcrypt) NeedsUpgrade(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}
	return cost < b.cost, nil
}
