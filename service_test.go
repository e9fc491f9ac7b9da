package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNewRequiresCollaborators(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	accounts := newFakeAccounts()
	cfg := testConfig()

	cases := []struct {
		name string
		deps Deps
	}{
		{"no redis", Deps{Accounts: accounts, Passwords: fakePasswords{}}},
		{"no accounts", Deps{Redis: rdb, Passwords: fakePasswords{}}},
		{"no passwords", Deps{Redis: rdb, Accounts: accounts}},
	}
	for _, tc := range cases {
		if _, err := New(cfg, tc.deps); !errors.Is(err, ErrServiceNotReady) {
			t.Fatalf("%s: got %v, want ErrServiceNotReady", tc.name, err)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	deps := Deps{Redis: rdb, Accounts: newFakeAccounts(), Passwords: fakePasswords{}}

	cfg := testConfig()
	cfg.JWT.Secret = []byte("short")
	if _, err := New(cfg, deps); err == nil {
		t.Fatal("expected short secret to be rejected")
	}

	cfg = testConfig()
	cfg.Session.TTL = time.Minute
	if _, err := New(cfg, deps); err == nil {
		t.Fatal("expected session TTL below refresh TTL to be rejected")
	}
}

func TestServicePing(t *testing.T) {
	svc, mr := newTestService(t, newFakeAccounts())

	if _, err := svc.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	mr.Close()
	if _, err := svc.Ping(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
}

func TestStoreOutageSurfacesAsUnavailable(t *testing.T) {
	svc, mr := newTestService(t, newFakeAccounts(aliceAccount()))
	ctx := context.Background()

	login := mustLogin(t, svc, "alice@example.com", "correct-password-123")

	mr.Close()

	if _, err := svc.Login(ctx, "alice@example.com", "correct-password-123", "203.0.113.7", "test-agent/1.0"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("login during outage: got %v, want ErrStoreUnavailable", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken, "203.0.113.7", "test-agent/1.0"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("refresh during outage: got %v, want ErrStoreUnavailable", err)
	}
}
