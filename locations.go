package zia

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/tphakala/go-zia/internal/api"
)

// LocationService provides operations on ZIA locations and sub-locations.
type LocationService interface {
	// List returns an iterator over all locations matching the filter.
	List(ctx context.Context, filter *LocationFilter, opts ...RequestOption) iter.Seq2[*Location, error]

	// ListPage returns a single page of locations.
	ListPage(ctx context.Context, filter *LocationFilter, page *PageOptions, opts ...RequestOption) ([]*Location, error)

	// Get retrieves a single location by ID.
	Get(ctx context.Context, id int, opts ...RequestOption) (*Location, error)

	// Create adds a new location or sub-location.
	Create(ctx context.Context, location *Location, opts ...RequestOption) (*Location, error)

	// Update replaces the location with the given ID.
	Update(ctx context.Context, id int, location *Location, opts ...RequestOption) (*Location, error)

	// ListLite returns name and ID summaries of locations.
	ListLite(ctx context.Context, filter *LocationLiteFilter, opts ...RequestOption) ([]*LocationLite, error)
}

type locationService struct {
	client *Client
}

func newLocationService(client *Client) *locationService {
	return &locationService{client: client}
}

func (s *locationService) List(ctx context.Context, filter *LocationFilter, opts ...RequestOption) iter.Seq2[*Location, error] {
	reqCfg := newRequestConfig(opts...)
	return paginate(ctx, reqCfg.pageSize, func(ctx context.Context, page *PageOptions) ([]*Location, error) {
		return s.ListPage(ctx, filter, page, opts...)
	})
}

func (s *locationService) ListPage(ctx context.Context, filter *LocationFilter, page *PageOptions, opts ...RequestOption) ([]*Location, error) {
	reqCfg := newRequestConfig(opts...)

	var result []*Location
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/locations",
		Query:   filter.query(page),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *locationService) Get(ctx context.Context, id int, opts ...RequestOption) (*Location, error) {
	if err := validateID("location", id); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result Location
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/locations/%d", id),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, withResource(err, "location", id)
	}

	return &result, nil
}

func validateLocation(location *Location) error {
	if location == nil {
		return &ValidationError{
			APIError: APIError{Message: "location cannot be nil"},
		}
	}
	if location.Name == "" {
		return &ValidationError{
			APIError: APIError{Message: "location name is required"},
		}
	}
	return nil
}

func (s *locationService) Create(ctx context.Context, location *Location, opts ...RequestOption) (*Location, error) {
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result Location
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    "/locations",
		Body:    location,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *locationService) Update(ctx context.Context, id int, location *Location, opts ...RequestOption) (*Location, error) {
	if err := validateID("location", id); err != nil {
		return nil, err
	}
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result Location
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    fmt.Sprintf("/locations/%d", id),
		Body:    location,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, withResource(err, "location", id)
	}

	return &result, nil
}

func (s *locationService) ListLite(ctx context.Context, filter *LocationLiteFilter, opts ...RequestOption) ([]*LocationLite, error) {
	reqCfg := newRequestConfig(opts...)

	var result []*LocationLite
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/locations/lite",
		Query:   filter.query(),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}
