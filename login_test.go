package authcore

import (
	"context"
	"errors"
	"testing"

	"github.com/clutchworks/authcore/jwt"
)

func TestLoginMintsBoundPair(t *testing.T) {
	alice := aliceAccount()
	alice.IsAdmin = true
	svc, _ := newTestService(t, newFakeAccounts(alice))

	res := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens to be minted")
	}
	if res.Account == nil || res.Account.ID != alice.ID {
		t.Fatalf("unexpected account in result: %+v", res.Account)
	}
	if res.Account.PasswordHash != "" {
		t.Fatal("password hash leaked into login result")
	}

	access, err := svc.tokens.Verify(res.AccessToken)
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	refresh, err := svc.tokens.Verify(res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token does not verify: %v", err)
	}

	if access.Kind != jwt.KindAccess || refresh.Kind != jwt.KindRefresh {
		t.Fatalf("wrong token kinds: %s / %s", access.Kind, refresh.Kind)
	}
	if access.Subject != alice.ID || refresh.Subject != alice.ID {
		t.Fatalf("wrong subjects: %s / %s", access.Subject, refresh.Subject)
	}
	if !access.Admin || !refresh.Admin {
		t.Fatal("admin flag not carried into claims")
	}
	if access.SessionID == "" || access.SessionID != refresh.SessionID {
		t.Fatalf("pair not bound to one session: %q / %q", access.SessionID, refresh.SessionID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	inactive := aliceAccount()
	inactive.ID = "acct-bob"
	inactive.Email = "bob@example.com"
	inactive.IsActive = false
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount(), inactive))

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct-password-123"},
		{"wrong password", "alice@example.com", "wrong"},
		{"inactive account", "bob@example.com", "correct-password-123"},
	}

	var msgs []string
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc.email, tc.password, "203.0.113.7", "test-agent/1.0")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: got %v, want ErrInvalidCredentials", tc.name, err)
		}
		msgs = append(msgs, err.Error())
	}
	for _, m := range msgs[1:] {
		if m != msgs[0] {
			t.Fatalf("login failures are distinguishable: %q vs %q", msgs[0], m)
		}
	}
}

func TestLoginReusesLiveSessionForSameIdentity(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount()))

	first := mustLogin(t, svc, "alice@example.com", "correct-password-123")
	second := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	if sessionIDOf(t, svc, first.RefreshToken) != sessionIDOf(t, svc, second.RefreshToken) {
		t.Fatal("same identity tuple should reuse the live session")
	}

	// The first refresh token references the same session, so it must
	// still work after the second login.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken, "203.0.113.7", "test-agent/1.0"); err != nil {
		t.Fatalf("pre-renewal refresh token rejected: %v", err)
	}
}

func TestLoginSeparatesSessionsPerIdentityTuple(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccounts(aliceAccount()))
	ctx := context.Background()

	laptop, err := svc.Login(ctx, "alice@example.com", "correct-password-123", "203.0.113.7", "laptop/1.0")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	phone, err := svc.Login(ctx, "alice@example.com", "correct-password-123", "198.51.100.2", "phone/2.0")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if sessionIDOf(t, svc, laptop.RefreshToken) == sessionIDOf(t, svc, phone.RefreshToken) {
		t.Fatal("different identity tuples must get separate sessions")
	}
}

func TestLoginBackendFailure(t *testing.T) {
	accounts := newFakeAccounts(aliceAccount())
	accounts.err = errors.New("connection refused")
	svc, _ := newTestService(t, accounts)

	_, err := svc.Login(context.Background(), "alice@example.com", "correct-password-123", "203.0.113.7", "test-agent/1.0")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("backend failure must not masquerade as bad credentials")
	}
}
