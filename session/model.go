package session

import "time"

// Session binds a refresh token's validity to an account and client
// fingerprint (IP address + User-Agent). The ID is generated by the store
// and is absent until first persisted.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Clone returns a shallow copy so store operations never mutate the
// caller's value on failure.
func (s *Session) Clone() *Session {
	cp := *s
	return &cp
}
