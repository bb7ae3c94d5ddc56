package zia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-zia/internal/api"
)

// call sends req through the retry loop and decodes a 2xx body into result.
//
// Every pass consumes one attempt, including a rate-limited one, so a call
// makes at most maxAttempts requests. A missing session triggers a login. A
// 429 on the request or on that login sleeps for the server's Retry-After
// plus the configured margin. A 401 re-authenticates. Anything else is logged
// and retried until attempts run out. The last attempt neither sleeps nor
// logs in again.
func (c *Client) call(ctx context.Context, req *api.Request, result any) error {
	var (
		lastErr error
		kind    FailureKind
	)

	logger := c.log.With().Str("method", req.Method).Str("path", req.Path).Logger()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		final := attempt == c.maxAttempts

		if c.session == nil {
			if _, err := c.Login(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				lastErr = err
				if kind, err = c.loginFailed(ctx, logger, attempt, final, err); err != nil {
					return err
				}
				continue
			}
		}

		req.Session = c.session
		resp, err := c.transport.Do(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn().Err(err).Int("attempt", attempt).Msg("request failed")
			lastErr, kind = err, FailureTransport
			continue
		}

		if resp.Success() {
			return decodeBody(resp.Body, result)
		}

		lastErr = parseError(resp.StatusCode, resp.Body, resp.Headers)

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			kind = FailureRateLimited
			if err := c.rateLimited(ctx, logger, attempt, final, lastErr); err != nil {
				return err
			}

		case http.StatusUnauthorized:
			kind = FailureAuthentication
			logger.Warn().Int("attempt", attempt).Dur("sessionAge", c.session.Age(c.now())).
				Msg("session rejected, logging in again")
			c.session = nil
			if final {
				break
			}
			if _, err := c.Login(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				lastErr = err
				if kind, err = c.loginFailed(ctx, logger, attempt, final, err); err != nil {
					return err
				}
			}

		default:
			kind = FailureStatus
			logger.Warn().Err(lastErr).Int("attempt", attempt).Int("status", resp.StatusCode).Msg("request failed")
		}
	}

	err := &RetryExhaustedError{Kind: kind, Attempts: c.maxAttempts, Err: lastErr}
	logger.Error().Err(err).Msg("giving up")
	return err
}

// rateLimited waits out a 429 unless the attempt is the last one.
func (c *Client) rateLimited(ctx context.Context, logger zerolog.Logger, attempt int, final bool, err error) error {
	wait := c.rateLimitMargin
	var rl *RateLimitError
	if errors.As(err, &rl) {
		wait += rl.RetryAfter
	}
	logger.Warn().Int("attempt", attempt).Dur("wait", wait).Msg("rate limited")
	if final {
		return nil
	}
	return c.sleep(ctx, wait)
}

// loginFailed classifies a failed login. A rate-limited login waits like a
// rate-limited request does. The returned error is non-nil only when ctx
// ends during that wait.
func (c *Client) loginFailed(ctx context.Context, logger zerolog.Logger, attempt int, final bool, err error) (FailureKind, error) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return FailureRateLimited, c.rateLimited(ctx, logger, attempt, final, err)
	}

	logger.Warn().Err(err).Int("attempt", attempt).Msg("login failed")
	var apiErr *APIError
	if errors.As(err, &apiErr) || errors.Is(err, ErrNoSessionCookie) {
		return FailureAuthentication, nil
	}
	return FailureTransport, nil
}

func decodeBody(body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}
