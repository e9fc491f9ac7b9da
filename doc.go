// Package authcore is a credential-and-session lifecycle core: it
// authenticates a principal with a password, issues a signed access/refresh
// token pair, and binds each refresh token to a server-side session keyed by
// (user, client IP, client User-Agent).
//
// Refresh tokens are single-use. Every successful refresh rotates the
// session identity atomically in the store, so a replayed or stolen old
// refresh token can never succeed after a legitimate rotation, and of any
// set of concurrent refreshes exactly one wins.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Service], [Config], the error
// taxonomy, and the collaborator interfaces ([AccountStore],
// [PasswordVerifier]). Token mechanics live in the jwt subpackage, the
// rotation protocol in the session subpackage. HTTP transport, request
// parsing, and account mutation are external consumers, never imported
// here.
//
// All Service methods are safe to call from multiple goroutines after
// construction through [New]; the only mutual exclusion in the system is
// the one the session store enforces during rotation.
package authcore
