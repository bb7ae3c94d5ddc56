package zia

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/tphakala/go-zia/internal/api"
)

// GroupService provides read access to ZIA user groups.
type GroupService interface {
	// List returns an iterator over all groups matching the filter.
	List(ctx context.Context, filter *SearchFilter, opts ...RequestOption) iter.Seq2[*Group, error]

	// ListPage returns a single page of groups.
	ListPage(ctx context.Context, filter *SearchFilter, page *PageOptions, opts ...RequestOption) ([]*Group, error)

	// Get retrieves a single group by ID.
	Get(ctx context.Context, id int, opts ...RequestOption) (*Group, error)
}

type groupService struct {
	client *Client
}

func newGroupService(client *Client) *groupService {
	return &groupService{client: client}
}

func (s *groupService) List(ctx context.Context, filter *SearchFilter, opts ...RequestOption) iter.Seq2[*Group, error] {
	reqCfg := newRequestConfig(opts...)
	return paginate(ctx, reqCfg.pageSize, func(ctx context.Context, page *PageOptions) ([]*Group, error) {
		return s.ListPage(ctx, filter, page, opts...)
	})
}

func (s *groupService) ListPage(ctx context.Context, filter *SearchFilter, page *PageOptions, opts ...RequestOption) ([]*Group, error) {
	reqCfg := newRequestConfig(opts...)

	var result []*Group
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/groups",
		Query:   filter.query(page),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *groupService) Get(ctx context.Context, id int, opts ...RequestOption) (*Group, error) {
	if err := validateID("group", id); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result Group
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/group/%d", id),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, withResource(err, "group", id)
	}

	return &result, nil
}
