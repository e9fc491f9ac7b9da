// Package jwt implements the signed bearer-token codec: minting and verifying
// access and refresh tokens with a kind discriminator so one can never be
// accepted in place of the other.
//
// The codec is stateless. Validity of a token is a pure function of the
// configured secret, the claim set, and the verifier's clock; refresh tokens
// additionally depend on the continued existence of the session they name,
// which is enforced by the caller, not here.
package jwt
