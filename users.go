package zia

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/tphakala/go-zia/internal/api"
)

// maxBulkDelete is the most users the API deletes in one request.
const maxBulkDelete = 500

// UserService provides operations on ZIA users.
type UserService interface {
	// List returns an iterator over all users matching the filter.
	// The iterator fetches pages lazily as you iterate.
	List(ctx context.Context, filter *UserFilter, opts ...RequestOption) iter.Seq2[*User, error]

	// ListPage returns a single page of users.
	ListPage(ctx context.Context, filter *UserFilter, page *PageOptions, opts ...RequestOption) ([]*User, error)

	// Get retrieves a single user by ID.
	Get(ctx context.Context, id int, opts ...RequestOption) (*User, error)

	// Create adds a new user.
	Create(ctx context.Context, user *User, opts ...RequestOption) (*User, error)

	// Update replaces the user with the given ID.
	Update(ctx context.Context, id int, user *User, opts ...RequestOption) (*User, error)

	// BulkDelete removes up to 500 users in one request.
	BulkDelete(ctx context.Context, ids []int, opts ...RequestOption) (*BulkDeleteResult, error)
}

type userService struct {
	client *Client
}

func newUserService(client *Client) *userService {
	return &userService{client: client}
}

// List returns an iterator over all users matching the filter.
func (s *userService) List(ctx context.Context, filter *UserFilter, opts ...RequestOption) iter.Seq2[*User, error] {
	reqCfg := newRequestConfig(opts...)
	return paginate(ctx, reqCfg.pageSize, func(ctx context.Context, page *PageOptions) ([]*User, error) {
		return s.ListPage(ctx, filter, page, opts...)
	})
}

// ListPage returns a single page of users.
func (s *userService) ListPage(ctx context.Context, filter *UserFilter, page *PageOptions, opts ...RequestOption) ([]*User, error) {
	reqCfg := newRequestConfig(opts...)

	var result []*User
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/users",
		Query:   filter.query(page),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Get retrieves a single user by ID.
func (s *userService) Get(ctx context.Context, id int, opts ...RequestOption) (*User, error) {
	if err := validateID("user", id); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result User
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/users/%d", id),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, withResource(err, "user", id)
	}

	return &result, nil
}

// validateUser checks the fields the API requires on create and update.
func validateUser(user *User) error {
	if user == nil {
		return &ValidationError{
			APIError: APIError{Message: "user cannot be nil"},
		}
	}
	if user.Name == "" {
		return &ValidationError{
			APIError: APIError{Message: "user name is required"},
		}
	}
	if user.Email == "" {
		return &ValidationError{
			APIError: APIError{Message: "user email is required"},
		}
	}
	return nil
}

// Create adds a new user.
func (s *userService) Create(ctx context.Context, user *User, opts ...RequestOption) (*User, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result User
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    "/users/",
		Body:    user,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Update replaces the user with the given ID.
func (s *userService) Update(ctx context.Context, id int, user *User, opts ...RequestOption) (*User, error) {
	if err := validateID("user", id); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig(opts...)

	var result User
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    fmt.Sprintf("/users/%d", id),
		Body:    user,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, withResource(err, "user", id)
	}

	return &result, nil
}

// BulkDelete removes up to 500 users in one request.
func (s *userService) BulkDelete(ctx context.Context, ids []int, opts ...RequestOption) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{
			APIError: APIError{Message: "at least one user ID is required"},
		}
	}
	if len(ids) > maxBulkDelete {
		return nil, &ValidationError{
			APIError: APIError{Message: fmt.Sprintf("at most %d users can be deleted per request, got %d", maxBulkDelete, len(ids))},
		}
	}

	reqCfg := newRequestConfig(opts...)

	var result BulkDeleteResult
	err := s.client.call(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    "/users/bulkDelete",
		Body:    map[string]any{"ids": ids},
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
