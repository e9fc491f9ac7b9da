package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates access tokens from refresh tokens in the claim set.
type Kind string

const (
	// KindAccess marks short-lived tokens authorizing individual requests.
	KindAccess Kind = "access"
	// KindRefresh marks longer-lived tokens used solely to obtain a new pair.
	KindRefresh Kind = "refresh"
)

// SigningMethod selects the symmetric signing algorithm.
type SigningMethod string

const (
	MethodHS256 SigningMethod = "hs256"
	MethodHS384 SigningMethod = "hs384"
	MethodHS512 SigningMethod = "hs512"
)

var (
	// ErrExpired is returned when a token's signature is valid but its
	// expiry has passed (within the configured leeway).
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for any signature, structural, or
	// missing-field problem. Expired vs. malformed is the only
	// distinction this package surfaces.
	ErrInvalid = errors.New("token invalid")
)

const minSecretLen = 32

// Config holds the codec's process-wide settings, read once at construction.
type Config struct {
	Secret        []byte
	SigningMethod SigningMethod
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Claims is the claim set carried by every token the codec mints.
//
// SessionID is present only on tokens minted after a session exists; the
// admin flag is denormalized so authorization does not need a store
// round-trip.
type Claims struct {
	Admin     bool   `json:"is_admin"`
	SessionID string `json:"session_id,omitempty"`
	Kind      Kind   `json:"type"`
	jwt.RegisteredClaims
}

// Codec mints and verifies signed bearer tokens. It performs no I/O and is
// safe for concurrent use.
type Codec struct {
	config Config
	method jwt.SigningMethod
	now    func() time.Time
}

// NewCodec validates cfg and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("jwt: secret must be at least %d bytes", minSecretLen)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("jwt: refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway configuration")
	}

	var method jwt.SigningMethod
	switch cfg.SigningMethod {
	case "", MethodHS256:
		method = jwt.SigningMethodHS256
	case MethodHS384:
		method = jwt.SigningMethodHS384
	case MethodHS512:
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwt: unsupported signing method %q", cfg.SigningMethod)
	}

	return &Codec{config: cfg, method: method, now: time.Now}, nil
}

// MintAccess signs an access token for subject with the given admin flag and
// session identity.
func (c *Codec) MintAccess(subject string, admin bool, sessionID string) (string, error) {
	return c.mint(KindAccess, c.config.AccessTTL, subject, admin, sessionID)
}

// MintRefresh signs a refresh token carrying the same claim set as the
// matching access token but with the refresh TTL.
func (c *Codec) MintRefresh(subject string, admin bool, sessionID string) (string, error) {
	return c.mint(KindRefresh, c.config.RefreshTTL, subject, admin, sessionID)
}

func (c *Codec) mint(kind Kind, ttl time.Duration, subject string, admin bool, sessionID string) (string, error) {
	now := c.now()
	claims := Claims{
		Admin:     admin,
		SessionID: sessionID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(c.method, claims).SignedString(c.config.Secret)
}

// Verify checks signature and expiry and returns the decoded claim set.
// Expiry is judged against the codec's own clock, never the caller's.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%w: unknown token kind", ErrInvalid)
	}

	return claims, nil
}

// VerifyRefresh is Verify plus a kind check: anything other than a refresh
// token fails with [ErrInvalid].
func (c *Codec) VerifyRefresh(tokenStr string) (*Claims, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%w: token is not a refresh token", ErrInvalid)
	}
	return claims, nil
}
