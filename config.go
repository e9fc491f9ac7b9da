package authcore

import (
	"errors"
	"time"

	"github.com/clutchworks/authcore/jwt"
)

// Config holds the process-wide settings of the core, read once at
// construction and immutable afterwards.
type Config struct {
	JWT     JWTConfig
	Session SessionConfig
}

// JWTConfig configures the token codec. Secret and SigningMethod are
// validated by the codec itself.
type JWTConfig struct {
	Secret        []byte
	SigningMethod jwt.SigningMethod
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// SessionConfig configures the session store.
type SessionConfig struct {
	// RedisPrefix namespaces all session keys ("session" when empty).
	RedisPrefix string
	// TTL is the lifetime granted to a session on login and on every
	// successful refresh.
	TTL time.Duration
}

// DefaultConfig mirrors the defaults of the reference deployment:
// 5-minute access tokens, 7-day refresh tokens, 7-day sessions.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: jwt.MethodHS256,
			AccessTTL:     5 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix: "session",
			TTL:         7 * 24 * time.Hour,
		},
	}
}

// Validate checks the settings the root package owns. Codec-level settings
// are validated by jwt.NewCodec during construction.
func (c Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("authcore: session TTL must be positive")
	}
	if c.Session.TTL < c.JWT.RefreshTTL {
		// A refresh token that outlives its session is merely useless;
		// the reverse wastes store capacity. Flag the misconfiguration.
		return errors.New("authcore: session TTL must be at least the refresh TTL")
	}
	return nil
}
