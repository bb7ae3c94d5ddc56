package zia_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-zia"
)

const (
	testUsername = "admin@example.com"
	testPassword = "secret"
	testAPIKey   = "3JrrIbUVDrLr"
)

// fakeZIA serves /authenticatedSession itself and hands every other request
// to handler after checking the session cookie.
type fakeZIA struct {
	logins  atomic.Int32
	logouts atomic.Int32

	mu     sync.Mutex
	sleeps []time.Duration
}

func (f *fakeZIA) recordedSleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

func setupTestServer(t *testing.T, handler http.HandlerFunc, opts ...zia.ClientOption) (*zia.Client, *fakeZIA) {
	t.Helper()
	fake := &fakeZIA{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/authenticatedSession" {
			switch r.Method {
			case http.MethodPost:
				n := fake.logins.Add(1)
				http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: fmt.Sprintf("session-%d", n)})
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"authType":"ADMIN_LOGIN","obfuscateApiKey":false,"passwordExpiryTime":0,"passwordExpiryDays":0}`))
			case http.MethodDelete:
				fake.logouts.Add(1)
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
			return
		}

		_, err := r.Cookie("JSESSIONID")
		assert.NoError(t, err, "request without session cookie: %s %s", r.Method, r.URL)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	base := []zia.ClientOption{
		zia.WithBaseURL(server.URL + "/api/v1"),
		zia.WithCredentials(testUsername, testPassword, testAPIKey),
		zia.WithTransportRetries(0),
	}
	client, err := zia.NewClient(append(base, opts...)...)
	require.NoError(t, err)

	zia.SetSleepFunc(client, func(_ context.Context, d time.Duration) error {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.sleeps = append(fake.sleeps, d)
		return nil
	})

	return client, fake
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}
