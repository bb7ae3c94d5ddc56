package zia

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/tphakala/go-zia/internal/api"
)

// DepartmentService provides read access to ZIA departments.
type DepartmentService interface {
	// List returns an iterator over all departments matching the filter.
	List(ctx context.Context, filter *SearchFilter, opts ...RequestOption) iter.Seq2[*Department, error]

	// ListPage returns a single page of departments.
	ListPage(ctx context.Context, filter *SearchFilter, page *PageOptions, opts ...RequestOption) ([]*Department, error)

	// Get retrieves a single department by ID.
	Get(ctx context.Context, id int, opts ...RequestOption) (*Department, error)
}

type departmentService struct {
	client *Client
}

func newDepartmentService(client *Client) *departmentService {
	return &departmentService{client: client}
}

func (s *departmentService) List(ctx context.Context, filter *SearchFilter, opts ...RequestOption) iter.Seq2[*Department, error] {
	reqCfg := newRequestConfig(opts...)
	return paginate(ctx, reqCfg.pageSize, func(ctx context.Context, page *PageOptions) ([]*Department, error) {
		return s.ListPage(ctx, filter, page, opts...)
	})
}

func (s *departmentService) ListPage(ctx context.Context, filter *SearchFilter, page *PageOptions, opts ...RequestOption) ([]*Department, error) {
	reqCfg := newRequestConfig(opts...)

	var result []*Department
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/departments",
		Query:   filter.query(page),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *departmentService) Get(ctx context.Context, id int, opts ...RequestOption) (*Department, error) {
	if err := validateID("department", id); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result Department
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/departments/%d", id),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, withResource(err, "department", id)
	}

	return &result, nil
}
