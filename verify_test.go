package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestVerifyAccess(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount()))

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	account, err := svc.VerifyAccess(context.Background(), login.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if account.ID != "acct-alice" || account.Email != "alice@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.PasswordHash != "" {
		t.Fatal("password hash leaked into verify result")
	}
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount()))

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	_, err := svc.VerifyAccess(context.Background(), login.RefreshToken)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token accepted as access token: got %v", err)
	}
}

func TestVerifyAccessSurvivesRotationAndLogout(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount()))
	ctx := context.Background()

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	if _, err := svc.Refresh(ctx, login.RefreshToken, "203.0.113.7", "test-agent/1.0"); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if err := svc.Logout(ctx, login.AccessToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// Access tokens are stateless: still good for their own lifetime.
	if _, err := svc.VerifyAccess(ctx, login.AccessToken); err != nil {
		t.Fatalf("access token rejected after rotation and logout: %v", err)
	}
}

func TestVerifyAccessUnusableAccount(t *testing.T) {
	alice := aliceAccount()
	accounts := newFakeAccounts(alice)
	svc, _ := newTestService(t, accounts)

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	accounts.mu.Lock()
	delete(accounts.byID, alice.ID)
	accounts.mu.Unlock()

	_, err := svc.VerifyAccess(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("deleted account: got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessOptional(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount()))
	ctx := context.Background()

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	account, err := svc.VerifyAccessOptional(ctx, login.AccessToken)
	if err != nil || account == nil {
		t.Fatalf("valid token: got (%v, %v)", account, err)
	}

	for _, token := range []string{"", "garbage", login.RefreshToken} {
		account, err := svc.VerifyAccessOptional(ctx, token)
		if err != nil {
			t.Fatalf("token %q: unexpected error %v", token, err)
		}
		if account != nil {
			t.Fatalf("token %q: expected anonymous result, got %+v", token, account)
		}
	}
}

func TestVerifyAccessOptionalSurfacesBackendFailure(t *testing.T) {
	accounts := newFakeAccounts(aliceAccount())
	svc, _ := newTestService(t, accounts)

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	accounts.mu.Lock()
	accounts.err = errors.New("connection refused")
	accounts.mu.Unlock()

	_, err := svc.VerifyAccessOptional(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
}
