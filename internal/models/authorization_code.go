package models

import "time"

// AuthorizationCode stores OAuth 2.0 authorization codes (RFC 6749).
// Codes are short-lived (default 10 minutes) and single-use. The upstream
// session token obtained at login rides along so the token endpoint can hand
// it back as the bearer credential.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	RedirectURI         string
	CodeChallenge       string // empty = PKCE not used
	CodeChallengeMethod string // only "S256" is supported
	Scope               string
	UpstreamToken       string // token minted by the BV-BRC authenticator
	Username            string
	ExpiresAt           time.Time
	Used                bool
}

func (a *AuthorizationCode) IsExpired() bool {
	return time.Now().After(a.ExpiresAt)
}
