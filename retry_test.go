package zia_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-zia"
)

func TestRetry_RateLimitThenExpiredSession(t *testing.T) {
	var calls atomic.Int32
	client, fake := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/42", r.URL.Path)
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"Rate Limit (1/SECOND) exceeded","Retry-After":"2 seconds"}`))
		case 2:
			w.WriteHeader(http.StatusUnauthorized)
		default:
			writeJSON(t, w, map[string]any{"id": 42, "name": "Jane", "email": "jane@example.com"})
		}
	})

	_, err := client.Login(t.Context())
	require.NoError(t, err)

	user, err := client.Users.Get(t.Context(), 42)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)

	assert.Equal(t, []time.Duration{7 * time.Second}, fake.recordedSleeps())
	assert.EqualValues(t, 2, fake.logins.Load())
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetry_LazyLogin(t *testing.T) {
	client, fake := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]string{"status": "ACTIVE"})
	})

	assert.False(t, client.LoggedIn())

	status, err := client.Status.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, zia.StatusActive, status.Status)
	assert.True(t, client.LoggedIn())
	assert.EqualValues(t, 1, fake.logins.Load())

	_, err = client.Status.Get(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, fake.logins.Load())
}

func TestRetry_Exhausted(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		var calls atomic.Int32
		client, fake := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"Retry-After":"1 seconds"}`))
		})

		_, err := client.Status.Get(t.Context())
		require.Error(t, err)

		var exhausted *zia.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, zia.FailureRateLimited, exhausted.Kind)
		assert.Equal(t, 5, exhausted.Attempts)

		var rl *zia.RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, time.Second, rl.RetryAfter)

		assert.EqualValues(t, 5, calls.Load())
		assert.Len(t, fake.recordedSleeps(), 4)
		for _, d := range fake.recordedSleeps() {
			assert.Equal(t, 6*time.Second, d)
		}
	})

	t.Run("server error", func(t *testing.T) {
		var calls atomic.Int32
		client, fake := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":"UNEXPECTED_ERROR","message":"boom"}`))
		})

		_, err := client.Status.Get(t.Context())

		var exhausted *zia.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, zia.FailureStatus, exhausted.Kind)

		var serverErr *zia.ServerError
		require.ErrorAs(t, err, &serverErr)
		assert.Equal(t, "boom", serverErr.Message)

		assert.EqualValues(t, 5, calls.Load())
		assert.Empty(t, fake.recordedSleeps())
		assert.EqualValues(t, 1, fake.logins.Load())
	})

	t.Run("session always rejected", func(t *testing.T) {
		var calls atomic.Int32
		client, fake := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}, zia.WithMaxAttempts(3))

		_, err := client.Status.Get(t.Context())

		var exhausted *zia.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, zia.FailureAuthentication, exhausted.Kind)
		assert.Equal(t, 3, exhausted.Attempts)

		var authErr *zia.AuthenticationError
		require.ErrorAs(t, err, &authErr)

		assert.EqualValues(t, 3, calls.Load())
		assert.EqualValues(t, 3, fake.logins.Load())
		assert.False(t, client.LoggedIn())
	})

	t.Run("login rejected", func(t *testing.T) {
		var logins atomic.Int32
		client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v1/authenticatedSession" {
				logins.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			t.Errorf("unexpected request %s", r.URL.Path)
		}, zia.WithMaxAttempts(2))

		_, err := client.Status.Get(t.Context())

		var exhausted *zia.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, zia.FailureAuthentication, exhausted.Kind)
		assert.EqualValues(t, 2, logins.Load())
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		client, err := zia.NewClient(
			zia.WithBaseURL(server.URL+"/api/v1"),
			zia.WithCredentials(testUsername, testPassword, testAPIKey),
			zia.WithTransportRetries(0),
			zia.WithMaxAttempts(2),
		)
		require.NoError(t, err)

		_, err = client.Status.Get(t.Context())

		var exhausted *zia.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, zia.FailureTransport, exhausted.Kind)
		assert.Equal(t, 2, exhausted.Attempts)
	})
}

func TestRetry_RateLimitedLogin(t *testing.T) {
	newClient := func(t *testing.T, limited int32) (*zia.Client, *atomic.Int32, *[]time.Duration) {
		t.Helper()
		var logins atomic.Int32
		client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v1/authenticatedSession" {
				if logins.Add(1) <= limited {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)
					_, _ = w.Write([]byte(`{"Retry-After":"2 seconds"}`))
					return
				}
				http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc"})
				writeJSON(t, w, map[string]string{"authType": "ADMIN_LOGIN"})
				return
			}
			writeJSON(t, w, map[string]string{"status": "ACTIVE"})
		})

		var sleeps []time.Duration
		zia.SetSleepFunc(client, func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		})
		return client, &logins, &sleeps
	}

	t.Run("waits before logging in again", func(t *testing.T) {
		client, logins, sleeps := newClient(t, 1)

		status, err := client.Status.Get(t.Context())
		require.NoError(t, err)
		assert.Equal(t, zia.StatusActive, status.Status)
		assert.Equal(t, []time.Duration{7 * time.Second}, *sleeps)
		assert.EqualValues(t, 2, logins.Load())
	})

	t.Run("exhausted", func(t *testing.T) {
		client, logins, sleeps := newClient(t, 100)

		_, err := client.Status.Get(t.Context())

		var exhausted *zia.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, zia.FailureRateLimited, exhausted.Kind)
		assert.Equal(t, 5, exhausted.Attempts)

		var rl *zia.RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 2*time.Second, rl.RetryAfter)

		assert.Equal(t, []time.Duration{7 * time.Second, 7 * time.Second, 7 * time.Second, 7 * time.Second}, *sleeps)
		assert.EqualValues(t, 5, logins.Load())
		assert.False(t, client.LoggedIn())
	})

	t.Run("after expired session", func(t *testing.T) {
		var (
			logins atomic.Int32
			calls  atomic.Int32
			logs   bytes.Buffer
		)
		client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v1/authenticatedSession" {
				if logins.Add(1) == 2 {
					w.WriteHeader(http.StatusTooManyRequests)
					_, _ = w.Write([]byte(`{"Retry-After":"1 seconds"}`))
					return
				}
				http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc"})
				writeJSON(t, w, map[string]string{"authType": "ADMIN_LOGIN"})
				return
			}
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(t, w, map[string]string{"status": "ACTIVE"})
		}, zia.WithLogger(zerolog.New(&logs)))
		var sleeps []time.Duration
		zia.SetSleepFunc(client, func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		})

		_, err := client.Status.Get(t.Context())
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{6 * time.Second}, sleeps)
		assert.EqualValues(t, 3, logins.Load())
		assert.EqualValues(t, 2, calls.Load())
		assert.Contains(t, logs.String(), `"sessionAge":`)
	})
}

func TestRetry_NotFoundCarriesResource(t *testing.T) {
	client, _ := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"RESOURCE_NOT_FOUND","message":"Resource does not exist"}`))
	}, zia.WithMaxAttempts(1))

	_, err := client.Users.Get(t.Context(), 99)

	var notFound *zia.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.ResourceType)
	assert.Equal(t, "99", notFound.ResourceID)
}

func TestRetry_ContextCanceledDuringSleep(t *testing.T) {
	var calls atomic.Int32
	client, _ := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithCancel(t.Context())
	zia.SetSleepFunc(client, func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	})

	_, err := client.Status.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetry_CanceledBeforeStart(t *testing.T) {
	client, fake := setupTestServer(t, func(http.ResponseWriter, *http.Request) {
		t.Error("unexpected request")
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.Status.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fake.logins.Load())
}

func TestRetry_HeaderRetryAfter(t *testing.T) {
	var calls atomic.Int32
	client, fake := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, map[string]string{"status": "PENDING"})
	}, zia.WithRateLimitMargin(0))

	status, err := client.Status.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, zia.StatusPending, status.Status)
	assert.Equal(t, []time.Duration{3 * time.Second}, fake.recordedSleeps())
}

func TestRetry_TransientStatusRecovers(t *testing.T) {
	var calls atomic.Int32
	client, fake := setupTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, map[string]string{"status": "ACTIVE"})
	})

	_, err := client.Status.Get(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Empty(t, fake.recordedSleeps())
}
