package authcore

import (
	"context"

	"github.com/clutchworks/authcore/jwt"
)

// Logout tears down the session referenced by an access token. The token
// must verify; already-gone sessions are not an error, so logout is
// idempotent.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return err
	}
	if claims.Kind != jwt.KindAccess {
		return ErrTokenInvalid
	}
	if claims.SessionID == "" {
		// Tokens minted before a session exists have nothing to tear down.
		return nil
	}

	_, err = s.LogoutSession(ctx, claims.SessionID)
	return err
}

// LogoutSession deletes a session by identity, reporting whether it
// existed. Used by Logout and by administrative revocation.
func (s *Service) LogoutSession(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return false, storeErr(err)
	}
	if deleted {
		s.metrics.inc(ctx, s.metrics.sessionDeleted)
		s.logger.Info().Str("session_id", sessionID).Msg("logout")
	}
	return deleted, nil
}
