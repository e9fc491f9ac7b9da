package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/clutchworks/authcore/jwt"
	"github.com/clutchworks/authcore/session"
)

// Refresh exchanges a refresh token for a fresh pair bound to a rotated
// session. The presented token's session identity is consumed in the
// exchange: replaying it, or racing another refresh for the same session,
// fails with [ErrTokenInvalid].
//
// Callers are told only expired vs. invalid. Which specific check failed
// (binding mismatch, unknown session, unusable account) is logged and
// never surfaced.
func (s *Service) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*LoginResult, error) {
	result, err := s.refresh(ctx, refreshToken, ip, userAgent)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
			s.metrics.inc(ctx, s.metrics.refreshRejected)
		}
		return nil, err
	}
	s.metrics.inc(ctx, s.metrics.refreshSuccess)
	return result, nil
}

func (s *Service) refresh(ctx context.Context, refreshToken, ip, userAgent string) (*LoginResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: incomplete claim set", ErrTokenInvalid)
	}

	account, err := s.findAccountByID(ctx, claims.Subject, "refresh")
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Unknown, already rotated, or expired out of the store. A
			// replayed token lands here.
			s.logger.Warn().Str("account_id", account.ID).Str("session_id", claims.SessionID).
				Msg("refresh for unknown session")
			return nil, ErrTokenInvalid
		}
		return nil, storeErr(err)
	}

	if err := s.checkBinding(claims, sess, ip, userAgent); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !sess.ExpiresAt.After(now) {
		// Store TTL and recorded expiry can disagree briefly; trust the
		// record and clear it.
		if _, err := s.sessions.Delete(ctx, sess.ID); err != nil {
			return nil, storeErr(err)
		}
		s.logger.Warn().Str("session_id", sess.ID).Msg("refresh for expired session")
		return nil, ErrTokenInvalid
	}

	sess.ExpiresAt = now.Add(s.config.Session.TTL)
	rotated, err := s.sessions.Rotate(ctx, sess)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Lost a concurrent rotation. No retry: the winner already
			// holds the live pair.
			s.logger.Warn().Str("session_id", sess.ID).Msg("refresh lost rotation race")
			return nil, ErrTokenInvalid
		}
		return nil, storeErr(err)
	}
	s.metrics.inc(ctx, s.metrics.sessionRotated)

	pair, err := s.mintPair(account, rotated.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).
		Str("old_session_id", sess.ID).Str("session_id", rotated.ID).
		Msg("refresh")

	return &LoginResult{TokenPair: *pair, Account: account.sanitized()}, nil
}

// checkBinding enforces that the token's subject owns the session and that
// the caller presents the exact client identity the session was bound to.
func (s *Service) checkBinding(claims *jwt.Claims, sess *session.Session, ip, userAgent string) error {
	switch {
	case sess.UserID != claims.Subject:
		s.logger.Warn().Str("session_id", sess.ID).Str("subject", claims.Subject).
			Msg("refresh subject does not own session")
	case sess.IPAddress != ip:
		s.logger.Warn().Str("session_id", sess.ID).Msg("refresh from mismatched IP")
	case sess.UserAgent != userAgent:
		s.logger.Warn().Str("session_id", sess.ID).Msg("refresh from mismatched user agent")
	default:
		return nil
	}
	return ErrTokenInvalid
}
