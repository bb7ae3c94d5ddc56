// Package auth provides ZIA session authentication.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// SessionCookie is the cookie carrying the ZIA session token.
const SessionCookie = "JSESSIONID"

// MinAPIKeyLength is the shortest key the obfuscation can index into.
const MinAPIKeyLength = 12

// ErrShortAPIKey is returned when the API key cannot be obfuscated.
var ErrShortAPIKey = errors.New("api key must be at least 12 characters")

// Credentials holds the admin login and the raw cloud API key.
type Credentials struct {
	Username string
	Password string
	APIKey   string
}

// Valid reports whether credentials are configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.Username != "" && c.Password != "" && c.APIKey != ""
}

// LoginRequest is the body posted to /authenticatedSession.
type LoginRequest struct {
	APIKey    string `json:"apiKey"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Timestamp int64  `json:"timestamp"`
}

// NewLoginRequest builds a login body with the key obfuscated against now.
func (c *Credentials) NewLoginRequest(now time.Time) (*LoginRequest, error) {
	ts, key, err := ObfuscateAPIKey(c.APIKey, now)
	if err != nil {
		return nil, err
	}
	return &LoginRequest{
		APIKey:    key,
		Username:  c.Username,
		Password:  c.Password,
		Timestamp: ts,
	}, nil
}

// ObfuscateAPIKey derives the login key from the raw API key and the current
// time. The result must match the server's computation digit for digit.
func ObfuscateAPIKey(apiKey string, now time.Time) (int64, string, error) {
	if len(apiKey) < MinAPIKeyLength {
		return 0, "", ErrShortAPIKey
	}

	ts := now.UnixMilli()
	tail := ts % 1_000_000
	n := fmt.Sprintf("%06d", tail)
	r := fmt.Sprintf("%06d", tail>>1)

	key := make([]byte, 0, len(n)+len(r))
	for i := range len(n) {
		key = append(key, apiKey[n[i]-'0'])
	}
	for j := range len(r) {
		key = append(key, apiKey[r[j]-'0'+2])
	}

	return ts, string(key), nil
}

// Session is an authenticated session token. A Session is never mutated;
// a new login produces a new value.
type Session struct {
	ID         string
	ObtainedAt time.Time
}

// NewSession extracts the session token from login response cookies.
// It returns nil if the session cookie is absent.
func NewSession(cookies []*http.Cookie, now time.Time) *Session {
	for _, c := range cookies {
		if c.Name == SessionCookie && c.Value != "" {
			return &Session{ID: c.Value, ObtainedAt: now}
		}
	}
	return nil
}

// Apply attaches the session cookie to an HTTP request.
func (s *Session) Apply(req *http.Request) {
	if s == nil {
		return
	}
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.ID})
}

// Age returns how long ago the session was obtained.
func (s *Session) Age(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	return now.Sub(s.ObtainedAt)
}

// String hides the token value.
func (s *Session) String() string {
	if s == nil {
		return "<no session>"
	}
	return "session(" + strconv.Itoa(len(s.ID)) + " chars)"
}
