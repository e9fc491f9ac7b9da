// Package session provides the Redis-backed session store and its rotation
// protocol: creation, identity-triple lookup, renewal, atomic rotation, and
// deletion of server-side session records with native TTL expiry.
//
// # Rotation contract
//
// Rotate is the security-critical operation. Writing the new record,
// repointing the identity-lookup index, and deleting the old record happen
// inside a single Lua script, so a concurrent refresh presenting the old
// session identity either observes the session before rotation or finds it
// absent, never a half-applied state.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Session] model. It does not
// interpret tokens or decide authentication policy; those belong to the
// root package.
package session
