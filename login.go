package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/clutchworks/authcore/session"
)

// Login authenticates the email/password pair and returns a fresh token
// pair bound to a session for (account, ip, userAgent).
//
// If a live session already exists for that exact identity tuple it is
// kept, its expiry pushed out to a full session TTL, and the new refresh
// token references the same session ID. Outstanding refresh tokens for
// that session therefore stay valid; only Refresh rotates the ID.
func (s *Service) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	account, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.inc(ctx, s.metrics.loginFailure)
		}
		return nil, err
	}

	sess, err := s.loginSession(ctx, account.ID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	pair, err := s.mintPair(account, sess.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.inc(ctx, s.metrics.loginSuccess)
	s.logger.Info().Str("account_id", account.ID).Str("session_id", sess.ID).Msg("login")

	return &LoginResult{TokenPair: *pair, Account: account.sanitized()}, nil
}

// verifyCredentials resolves the account and checks the password. All
// rejection paths return bare ErrInvalidCredentials so the caller-visible
// failure is byte-identical regardless of cause.
func (s *Service) verifyCredentials(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if account == nil {
		s.logger.Debug().Str("email", email).Msg("login for unknown email")
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		s.logger.Warn().Str("account_id", account.ID).Msg("login for inactive account")
		return nil, ErrInvalidCredentials
	}

	ok, err := s.passwords.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		s.logger.Debug().Str("account_id", account.ID).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// loginSession reuses the live session for (userID, ip, userAgent) when
// one exists, renewing its expiry, and creates one otherwise. Two logins
// racing on the same tuple may both create; the later identity-index
// write wins and the orphaned record ages out on its native TTL.
func (s *Service) loginSession(ctx context.Context, userID, ip, userAgent string) (*session.Session, error) {
	sess, err := s.sessions.GetByIdentity(ctx, userID, ip, userAgent)
	switch {
	case err == nil:
		sess.ExpiresAt = s.now().UTC().Add(s.config.Session.TTL)
		renewed, err := s.sessions.Update(ctx, sess)
		if err == nil {
			return renewed, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, storeErr(err)
		}
		// Expired between lookup and renewal; fall through and create.
	case errors.Is(err, session.ErrNotFound):
	default:
		return nil, storeErr(err)
	}

	now := s.now().UTC()
	created, err := s.sessions.Create(ctx, &session.Session{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Session.TTL),
	})
	if err != nil {
		return nil, storeErr(err)
	}
	s.metrics.inc(ctx, s.metrics.sessionCreated)
	return created, nil
}

// mintPair issues the access/refresh pair for an account and session.
func (s *Service) mintPair(account *Account, sessionID string) (*TokenPair, error) {
	access, err := s.tokens.MintAccess(account.ID, account.IsAdmin, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.MintRefresh(account.ID, account.IsAdmin, sessionID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
