// Package password provides the default bcrypt implementation of the
// password-verify collaborator. The core treats hashing as an opaque
// verify(plain, hash) service; this package is one interchangeable
// implementation of it.
package password
