package zia

import (
	"context"
	"net/http"

	"github.com/tphakala/go-zia/internal/api"
)

// StatusService reads and activates pending configuration changes.
type StatusService interface {
	// Get returns the current activation status.
	Get(ctx context.Context, opts ...RequestOption) (*Activation, error)

	// Activate applies pending configuration changes.
	Activate(ctx context.Context, opts ...RequestOption) (*Activation, error)
}

type statusService struct {
	client *Client
}

func newStatusService(client *Client) *statusService {
	return &statusService{client: client}
}

func (s *statusService) Get(ctx context.Context, opts ...RequestOption) (*Activation, error) {
	return s.do(ctx, http.MethodGet, "/status", opts)
}

func (s *statusService) Activate(ctx context.Context, opts ...RequestOption) (*Activation, error) {
	return s.do(ctx, http.MethodPost, "/status/activate", opts)
}

func (s *statusService) do(ctx context.Context, method, path string, opts []RequestOption) (*Activation, error) {
	reqCfg := newRequestConfig(opts...)

	var result Activation
	err := s.client.call(ctx, &api.Request{
		Method:  method,
		Path:    path,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
