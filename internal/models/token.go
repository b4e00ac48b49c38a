package models

import "time"

// IssuedToken records a bearer token handed out at token exchange. The token
// value is exactly the upstream session token: the broker deliberately does
// not mint its own opaque tokens, so the same string doubles as a valid
// credential against the downstream BV-BRC services.
type IssuedToken struct {
	Token    string
	Username string
	IssuedAt time.Time
}

// AccessToken is the result of verifying a bearer token. It is produced
// per-request and never persisted. ExpiresAt is a bookkeeping value only;
// authoritative validity of the underlying credential is whatever the
// upstream system enforces.
type AccessToken struct {
	Token     string
	ClientID  string
	Username  string
	Scopes    []string
	ExpiresAt time.Time
}
