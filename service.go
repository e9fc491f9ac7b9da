package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/clutchworks/authcore/jwt"
	"github.com/clutchworks/authcore/session"
)

// Service composes the token codec, session store, and external
// collaborators into the login, refresh, and access-verification
// orchestrators. Construct it once at process start and share it; there
// are no hidden globals.
type Service struct {
	config    Config
	tokens    *jwt.Codec
	sessions  *session.Store
	accounts  AccountStore
	passwords PasswordVerifier
	logger    zerolog.Logger
	metrics   *metrics
	now       func() time.Time
}

// Deps carries the external collaborators a [Service] is wired with.
type Deps struct {
	// Redis backs the session store.
	Redis redis.UniversalClient
	// Accounts is the external account store.
	Accounts AccountStore
	// Passwords is the password-verify collaborator.
	Passwords PasswordVerifier
	// Logger receives internal diagnostics (binding-mismatch detail and
	// the like that callers must never see). Defaults to a no-op logger.
	Logger *zerolog.Logger
	// Meter supplies the service's counters. Defaults to a no-op meter.
	Meter metric.Meter
}

// New validates cfg, wires the collaborators, and returns a ready Service.
func New(cfg Config, deps Deps) (*Service, error) {
	if deps.Redis == nil || deps.Accounts == nil || deps.Passwords == nil {
		return nil, ErrServiceNotReady
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := jwt.NewCodec(jwt.Config{
		Secret:        cfg.JWT.Secret,
		SigningMethod: cfg.JWT.SigningMethod,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = *deps.Logger
	}

	meter := deps.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("authcore")
	}
	m, err := newMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:    cfg,
		tokens:    codec,
		sessions:  session.NewStore(deps.Redis, cfg.Session.RedisPrefix),
		accounts:  deps.Accounts,
		passwords: deps.Passwords,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// Ping reports session-store availability and latency, for readiness
// checks.
func (s *Service) Ping(ctx context.Context) (time.Duration, error) {
	d, err := s.sessions.Ping(ctx)
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return d, nil
}

// findAccountByID translates account-store results into the refresh/verify
// contract: backend failures are infrastructure errors, absent or inactive
// accounts collapse into ErrTokenInvalid so a crafted token reveals
// nothing about account state.
func (s *Service) findAccountByID(ctx context.Context, id, reason string) (*Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if account == nil || !account.IsActive {
		s.logger.Warn().Str("account_id", id).Str("reason", reason).
			Bool("absent", account == nil).
			Msg("token presented for unusable account")
		return nil, ErrTokenInvalid
	}
	return account, nil
}

// storeErr maps session-store failures onto the root taxonomy, leaving
// contract errors (not found, invalid state) untouched.
func storeErr(err error) error {
	if errors.Is(err, session.ErrRedisUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
