package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/clutchworks/authcore/jwt"
)

// VerifyAccess authenticates a request-scoped access token and resolves
// its account. A refresh token is rejected here even though its signature
// verifies; the two kinds are never interchangeable.
//
// Session state is deliberately not consulted: an access token stays good
// for its full (short) lifetime even if the session behind it was rotated
// or logged out in the meantime.
func (s *Service) VerifyAccess(ctx context.Context, token string) (*Account, error) {
	account, err := s.verifyAccess(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
			s.metrics.inc(ctx, s.metrics.accessRejected)
		}
		return nil, err
	}
	s.metrics.inc(ctx, s.metrics.accessVerified)
	return account, nil
}

func (s *Service) verifyAccess(ctx context.Context, token string) (*Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != jwt.KindAccess {
		return nil, fmt.Errorf("%w: token is not an access token", ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	account, err := s.findAccountByID(ctx, claims.Subject, "access")
	if err != nil {
		return nil, err
	}
	return account.sanitized(), nil
}

// VerifyAccessOptional is VerifyAccess for endpoints that work with or
// without a caller identity: a missing, expired, or invalid token yields
// (nil, nil) instead of an error. Infrastructure failures still surface.
func (s *Service) VerifyAccessOptional(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, nil
	}
	account, err := s.VerifyAccess(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}
