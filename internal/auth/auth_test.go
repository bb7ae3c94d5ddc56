package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-zia/internal/auth"
)

const testAPIKey = "3JrrIbUVDrLr"

func TestObfuscateAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		millis int64
		wantTS int64
		want   string
	}{
		{"digits 123456", 1700000123456, 1700000123456, "JrrIbUrDrrIL"},
		{"leading zeros kept", 1699999000007, 1699999000007, "33333Vrrrrrb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, key, err := auth.ObfuscateAPIKey(testAPIKey, time.UnixMilli(tt.millis))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTS, ts)
			assert.Equal(t, tt.want, key)
			assert.Len(t, key, 12)
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		now := time.UnixMilli(1700000123456)
		_, a, err := auth.ObfuscateAPIKey(testAPIKey, now)
		require.NoError(t, err)
		_, b, err := auth.ObfuscateAPIKey(testAPIKey, now)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("short key", func(t *testing.T) {
		_, _, err := auth.ObfuscateAPIKey("short", time.Now())
		require.ErrorIs(t, err, auth.ErrShortAPIKey)
	})
}

func TestCredentials(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, (&auth.Credentials{Username: "u", Password: "p", APIKey: "k"}).Valid())
		assert.False(t, (&auth.Credentials{Username: "u", Password: "p"}).Valid())
		var nilCreds *auth.Credentials
		assert.False(t, nilCreds.Valid())
	})

	t.Run("NewLoginRequest", func(t *testing.T) {
		creds := &auth.Credentials{Username: "admin@example.com", Password: "secret", APIKey: testAPIKey}
		req, err := creds.NewLoginRequest(time.UnixMilli(1700000123456))
		require.NoError(t, err)
		assert.Equal(t, "JrrIbUrDrrIL", req.APIKey)
		assert.Equal(t, "admin@example.com", req.Username)
		assert.Equal(t, "secret", req.Password)
		assert.Equal(t, int64(1700000123456), req.Timestamp)
	})
}

func TestSession(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("from cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		http.SetCookie(rec, &http.Cookie{Name: "other", Value: "x"})
		http.SetCookie(rec, &http.Cookie{Name: auth.SessionCookie, Value: "abc123"})

		s := auth.NewSession(rec.Result().Cookies(), now)
		require.NotNil(t, s)
		assert.Equal(t, "abc123", s.ID)
		assert.Equal(t, time.Minute, s.Age(now.Add(time.Minute)))
		assert.NotContains(t, s.String(), "abc123")
	})

	t.Run("missing cookie", func(t *testing.T) {
		assert.Nil(t, auth.NewSession(nil, now))
	})

	t.Run("Apply", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		(&auth.Session{ID: "abc123"}).Apply(req)
		c, err := req.Cookie(auth.SessionCookie)
		require.NoError(t, err)
		assert.Equal(t, "abc123", c.Value)

		req = httptest.NewRequest(http.MethodGet, "/users", nil)
		var none *auth.Session
		none.Apply(req)
		assert.Empty(t, req.Cookies())
	})
}
