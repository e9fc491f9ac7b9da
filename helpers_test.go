package authcore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]*Account
	err  error
}

func newFakeAccounts(accounts ...*Account) *fakeAccounts {
	f := &fakeAccounts{byID: make(map[string]*Account)}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// fakePasswords treats "hash:<plain>" as the stored hash of <plain>.
type fakePasswords struct{}

func (fakePasswords) Verify(plain, hash string) (bool, error) {
	return hash == "hash:"+plain, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.AccessTTL = 5 * time.Minute
	cfg.JWT.RefreshTTL = time.Hour
	cfg.Session.TTL = time.Hour
	return cfg
}

func aliceAccount() *Account {
	return &Account{
		ID:           "acct-alice",
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "hash:correct-password-123",
		IsActive:     true,
	}
}

func newTestService(t *testing.T, accounts *fakeAccounts) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc, err := New(testConfig(), Deps{
		Redis:     rdb,
		Accounts:  accounts,
		Passwords: fakePasswords{},
	})
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}
	return svc, mr
}

func mustLogin(t *testing.T, svc *Service, email, password string) *LoginResult {
	t.Helper()
	res, err := svc.Login(context.Background(), email, password, "203.0.113.7", "test-agent/1.0")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return res
}

func sessionIDOf(t *testing.T, svc *Service, token string) string {
	t.Helper()
	claims, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if claims.SessionID == "" {
		t.Fatal("token carries no session id")
	}
	return claims.SessionID
}
