package zia

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Helper errors.
var (
	ErrNilClient               = errors.New("zia: helper requires a client")
	ErrUserNotFound            = errors.New("zia: user not found")
	ErrGroupNotFound           = errors.New("zia: group not found")
	ErrPrincipalMismatch       = errors.New("zia: fetched user does not match principal")
	ErrInvalidMembershipAction = errors.New("zia: membership action must be add or remove")
	ErrNoneGroupMissing        = errors.New("zia: no group named None")
	ErrNoneDepartmentMissing   = errors.New("zia: no department named None")
)

const (
	defaultAutomationName = "go-zia helper"
	defaultPullPageSize   = 1000
	commentTimeLayout     = "2006/01/02, 15:04:05"
)

// MembershipAction is a group membership change.
type MembershipAction string

const (
	ActionAdd    MembershipAction = "add"
	ActionRemove MembershipAction = "remove"
)

// Valid reports whether a is a known action.
func (a MembershipAction) Valid() bool {
	return a == ActionAdd || a == ActionRemove
}

// Directory is a point-in-time copy of users, departments and groups.
type Directory struct {
	Users       []*User
	Departments []*Department
	Groups      []*Group
}

// FindUser returns the single user whose email matches principal, ignoring
// case. Zero or several matches yield ErrUserNotFound.
func (d *Directory) FindUser(principal string) (*User, error) {
	var found []*User
	for _, u := range d.Users {
		if u.Matches(principal) {
			found = append(found, u)
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: %d matches for %q", ErrUserNotFound, len(found), principal)
	}
	return found[0], nil
}

// FindGroup returns the group with the given name.
func (d *Directory) FindGroup(name string) (*Group, error) {
	for _, g := range d.Groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
}

// NoneGroup returns the fallback group.
func (d *Directory) NoneGroup() (*Group, error) {
	g, err := d.FindGroup(NoneName)
	if err != nil {
		return nil, ErrNoneGroupMissing
	}
	return g, nil
}

// NoneDepartment returns the fallback department.
func (d *Directory) NoneDepartment() (*Department, error) {
	for _, dept := range d.Departments {
		if dept.Name == NoneName {
			return dept, nil
		}
	}
	return nil, ErrNoneDepartmentMissing
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithAutomationName sets the name written into the comments of updated users.
func WithAutomationName(name string) HelperOption {
	return func(h *Helper) {
		h.automation = name
	}
}

// WithHelperLogger sets the helper's logger.
func WithHelperLogger(logger zerolog.Logger) HelperOption {
	return func(h *Helper) {
		h.log = logger
	}
}

// WithPullPageSize sets the page size used by PullAll.
func WithPullPageSize(n int) HelperOption {
	return func(h *Helper) {
		h.pageSize = n
	}
}

// Helper combines client calls into directory pulls and membership updates.
type Helper struct {
	client     *Client
	log        zerolog.Logger
	automation string
	pageSize   int
	now        func() time.Time
}

// NewHelper creates a Helper on top of client.
func NewHelper(client *Client, opts ...HelperOption) (*Helper, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	h := &Helper{
		client:     client,
		log:        client.log,
		automation: defaultAutomationName,
		pageSize:   defaultPullPageSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// PullAll fetches every user, department and group, following pages.
func (h *Helper) PullAll(ctx context.Context) (*Directory, error) {
	h.log.Info().Msg("pulling all user and group data")

	pageSize := WithPageSize(h.pageSize)

	users, err := Collect(h.client.Users.List(ctx, nil, pageSize))
	if err != nil {
		return nil, fmt.Errorf("pulling users: %w", err)
	}
	departments, err := Collect(h.client.Departments.List(ctx, nil, pageSize))
	if err != nil {
		return nil, fmt.Errorf("pulling departments: %w", err)
	}
	groups, err := Collect(h.client.Groups.List(ctx, nil, pageSize))
	if err != nil {
		return nil, fmt.Errorf("pulling groups: %w", err)
	}

	h.log.Info().
		Int("users", len(users)).
		Int("departments", len(departments)).
		Int("groups", len(groups)).
		Msg("data pull complete")

	return &Directory{Users: users, Departments: departments, Groups: groups}, nil
}

// UpdateGroupMembership adds principal to, or removes it from, group and
// submits the full updated user record.
//
// The cached directory locates the user; the record sent is always freshly
// fetched. A user never ends up without groups: the None group fills an
// empty list and is dropped when a real group is added. A user without a
// department is given the None department.
func (h *Helper) UpdateGroupMembership(ctx context.Context, dir *Directory, principal string, group Group, action MembershipAction) (*User, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMembershipAction, action)
	}

	logger := h.log.With().Str("principal", principal).Str("group", group.Name).Str("action", string(action)).Logger()

	cached, err := dir.FindUser(principal)
	if err != nil {
		logger.Warn().Err(err).Msg("user not found")
		return nil, err
	}

	user, err := h.client.Users.Get(ctx, cached.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", cached.ID, err)
	}
	if !user.Matches(principal) {
		logger.Warn().Str("email", user.Email).Msg("fetched user does not match principal")
		return nil, ErrPrincipalMismatch
	}

	var none *Group
	if g, err := dir.NoneGroup(); err == nil {
		none = &Group{ID: g.ID, Name: g.Name}
	}

	if member := user.HasGroup(group); member == (action == ActionAdd) {
		logger.Info().Bool("member", member).Msg("membership already as requested, refreshing record")
	}

	groups, err := ReconcileGroups(user.Groups, group, none, action)
	if err != nil {
		return nil, err
	}
	user.Groups = groups

	if user.Department == nil {
		dept, err := dir.NoneDepartment()
		if err != nil {
			return nil, err
		}
		user.Department = &Department{ID: dept.ID, Name: dept.Name}
	}

	user.Comments = fmt.Sprintf("Updated by %s on %s UTC", h.automation, h.now().UTC().Format(commentTimeLayout))

	updated, err := h.client.Users.Update(ctx, user.ID, user)
	if err != nil {
		logger.Error().Err(err).Msg("user update failed")
		return nil, fmt.Errorf("updating user %d: %w", user.ID, err)
	}

	logger.Info().Int("groups", len(groups)).Msg("group membership updated")
	return updated, nil
}

// ReconcileGroups applies action for target to a membership list and
// returns the new list; groups is not modified. A placeholder entry with
// ID 0 at the head of the list is dropped. none may be nil when the tenant
// has no None group, in which case a removal that would leave the list
// empty fails with ErrNoneGroupMissing. Adding a group the list already
// holds leaves it unchanged; the list never carries the same group twice.
func ReconcileGroups(groups []Group, target Group, none *Group, action MembershipAction) ([]Group, error) {
	out := slices.Clone(groups)
	if len(out) > 0 && out[0].ID == 0 {
		out = out[1:]
	}

	switch action {
	case ActionRemove:
		out = slices.DeleteFunc(out, target.Same)
		if len(out) == 0 {
			if none == nil {
				return nil, ErrNoneGroupMissing
			}
			out = append(out, *none)
		}

	case ActionAdd:
		if none != nil {
			out = slices.DeleteFunc(out, none.Same)
		}
		if !slices.ContainsFunc(out, target.Same) {
			out = append(out, Group{ID: target.ID, Name: target.Name})
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMembershipAction, action)
	}

	return out, nil
}
