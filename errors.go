package authcore

import (
	"errors"

	"github.com/clutchworks/authcore/jwt"
	"github.com/clutchworks/authcore/session"
)

var (
	// ErrInvalidCredentials is returned for every login failure: unknown
	// email, inactive account, or wrong password. The three cases are
	// deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenExpired is returned when a token's signature is valid but
	// its expiry has passed.
	ErrTokenExpired = jwt.ErrExpired

	// ErrTokenInvalid is returned for a bad signature, wrong token kind,
	// missing claim, unknown or expired session, or identity-binding
	// mismatch. Which of these occurred is logged internally, never
	// surfaced.
	ErrTokenInvalid = jwt.ErrInvalid

	// ErrInvalidState is returned when a session write would persist a
	// non-positive TTL.
	ErrInvalidState = session.ErrInvalidState

	// ErrSessionNotFound is returned by store-facing operations targeting
	// a session identity that does not exist.
	ErrSessionNotFound = session.ErrNotFound

	// ErrStoreUnavailable wraps transient session-store or
	// account-backend failures. It is the only error kind that maps to a
	// 5xx at the transport layer; everything above is a deliberate
	// rejection and is never retried inside the core.
	ErrStoreUnavailable = errors.New("auth backend unavailable")

	// ErrServiceNotReady is returned when a Service is constructed with a
	// missing collaborator.
	ErrServiceNotReady = errors.New("service not ready")
)
