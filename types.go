package authcore

import "context"

// Account is the external principal record. The core treats it as
// immutable input per call; it never creates or mutates accounts.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsAdmin      bool
}

// sanitized returns a copy safe to hand back to callers: no password hash
// ever appears in a result.
func (a *Account) sanitized() *Account {
	cp := *a
	cp.PasswordHash = ""
	return &cp
}

// AccountStore is the external account-lookup collaborator. Absent
// accounts are reported as (nil, nil); errors are reserved for backend
// failures.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// PasswordVerifier is the opaque password-verify collaborator.
type PasswordVerifier interface {
	Verify(plain, hash string) (bool, error)
}

// TokenPair is an access/refresh token pair minted for one session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult carries the token pair and the sanitized account it was
// issued for. Login and Refresh return the same shape.
type LoginResult struct {
	TokenPair
	Account *Account
}
