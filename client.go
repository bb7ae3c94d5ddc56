// Package zia provides a Go client for the Zscaler Internet Access (ZIA)
// administrative API.
//
// Basic usage:
//
//	client, err := zia.NewClient(
//	    zia.WithCloud("zsapi.zscalerbeta.net"),
//	    zia.WithCredentials(username, password, apiKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Logout(ctx)
//
//	for user, err := range client.Users.List(ctx, nil) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(user.Email)
//	}
package zia

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tphakala/go-zia/internal/api"
	"github.com/tphakala/go-zia/internal/auth"
)

// Default configuration values.
const (
	defaultTimeout          = 30 * time.Second
	defaultMaxAttempts      = 5
	defaultRateLimitMargin  = 5 * time.Second
	defaultTransportRetries = 3
)

// Client is the ZIA API client.
//
// A Client owns its session token and is not safe for concurrent use.
type Client struct {
	// Users provides access to user operations.
	Users UserService
	// Groups provides access to group operations.
	Groups GroupService
	// Departments provides access to department operations.
	Departments DepartmentService
	// Locations provides access to location operations.
	Locations LocationService
	// Status provides access to configuration activation.
	Status StatusService

	transport *api.Transport
	creds     *auth.Credentials
	session   *auth.Session
	log       zerolog.Logger

	maxAttempts     int
	rateLimitMargin time.Duration
	sleep           func(context.Context, time.Duration) error
	now             func() time.Time
}

// NewClient creates a new ZIA client with the given options.
// No request is made until the first call.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout:          defaultTimeout,
		logger:           zerolog.Nop(),
		maxAttempts:      defaultMaxAttempts,
		rateLimitMargin:  defaultRateLimitMargin,
		transportRetries: defaultTransportRetries,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	baseURL := cfg.baseURL
	if baseURL == "" && cfg.cloud != "" {
		baseURL = cloudBaseURL(cfg.cloud)
	}
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	creds := &auth.Credentials{
		Username: cfg.username,
		Password: cfg.password,
		APIKey:   cfg.apiKey,
	}
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}
	if len(creds.APIKey) < auth.MinAPIKeyLength {
		return nil, ErrInvalidAPIKey
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.timeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		}
	}

	transport, err := api.NewTransport(baseURL, httpClient, cfg.transportRetries, cfg.logger)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}

	client := &Client{
		transport:       transport,
		creds:           creds,
		log:             cfg.logger,
		maxAttempts:     cfg.maxAttempts,
		rateLimitMargin: cfg.rateLimitMargin,
		sleep:           sleepContext,
		now:             time.Now,
	}

	// Initialize services
	client.Users = newUserService(client)
	client.Groups = newGroupService(client)
	client.Departments = newDepartmentService(client)
	client.Locations = newLocationService(client)
	client.Status = newStatusService(client)

	return client, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL.String()
}

func cloudBaseURL(cloud string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(cloud, "https://"), "http://")
	return "https://" + strings.TrimSuffix(host, "/") + "/api/v1"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
