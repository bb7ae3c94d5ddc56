package zia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tphakala/go-zia/internal/api"
	"github.com/tphakala/go-zia/internal/auth"
)

const sessionPath = "/authenticatedSession"

// Login authenticates with the obfuscated API key and stores the returned
// session token on the client, replacing any previous one.
func (c *Client) Login(ctx context.Context) (*AuthSession, error) {
	c.log.Debug().Str("username", c.creds.Username).Msg("logging in")

	body, err := c.creds.NewLoginRequest(c.now())
	if err != nil {
		return nil, fmt.Errorf("zia: building login request: %w", err)
	}

	resp, err := c.transport.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   sessionPath,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Success() {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	session := auth.NewSession(resp.Cookies, c.now())
	if session == nil {
		return nil, ErrNoSessionCookie
	}

	var result AuthSession
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("unmarshaling login response: %w", err)
		}
	}

	c.session = session
	c.log.Debug().Str("authType", result.AuthType).Msg("logged in")

	return &result, nil
}

// Logout ends the current session. Calling it without an active session,
// or after the server already expired the session, is not an error.
func (c *Client) Logout(ctx context.Context) error {
	session := c.session
	if session == nil {
		c.log.Debug().Msg("logout without active session")
		return nil
	}
	c.session = nil

	resp, err := c.transport.Do(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    sessionPath,
		Session: session,
	})
	if err != nil {
		return err
	}

	if resp.Success() || resp.StatusCode == http.StatusUnauthorized {
		c.log.Debug().Msg("logged out")
		return nil
	}

	return parseError(resp.StatusCode, resp.Body, resp.Headers)
}

// LoggedIn reports whether the client holds a session token.
func (c *Client) LoggedIn() bool {
	return c.session != nil
}
