package application

import (
	"context"
	"strings"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const (
	opDirectory = "directory"
	opSearch    = "search_users"

	defaultSearchSize = 20
	maxSearchSize     = 100
)

// Directory lists the users visible to the requester. Owners see the whole
// tenant, optionally narrowed to one unit; unit managers see their own unit
// only; everyone else sees themself.
func (s *Service) Directory(ctx context.Context, requesterEmail string, unitID *string) (profiles []UserProfile, err error) {
	defer func() { s.record(opDirectory, err) }()

	requester, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return nil, err
	}
	users, err := s.directoryUsers(ctx, requester, normalize(unitID))
	if err != nil {
		return nil, err
	}
	return toProfiles(users), nil
}

func (s *Service) directoryUsers(ctx context.Context, requester *entity.User, unitID *string) ([]*entity.User, error) {
	switch requester.Role {
	case entity.RoleCenterOwner:
		if unitID != nil {
			return s.Users.FindAllByUnitIDAndTenantID(ctx, *unitID, requester.TenantID)
		}
		return s.Users.FindAllByTenantID(ctx, requester.TenantID)
	case entity.RoleUnitManager:
		if unitID != nil && (requester.UnitID == nil || *unitID != *requester.UnitID) {
			return nil, apperr.ScopeViolation("unit manager may only list their own unit")
		}
		if requester.UnitID == nil {
			return []*entity.User{requester}, nil
		}
		return s.Users.FindAllByUnitIDAndTenantID(ctx, *requester.UnitID, requester.TenantID)
	default:
		return []*entity.User{requester}, nil
	}
}

// Profile returns the requester's own profile.
func (s *Service) Profile(ctx context.Context, requesterEmail string) (UserProfile, error) {
	u, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return UserProfile{}, err
	}
	return ToProfile(u), nil
}

// GetUser returns one user when it is inside the requester's directory.
func (s *Service) GetUser(ctx context.Context, requesterEmail, id string) (UserProfile, error) {
	requester, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return UserProfile{}, err
	}
	target, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return UserProfile{}, err
	}
	if !requester.CanSee(target) {
		return UserProfile{}, apperr.ScopeViolation("user is outside the requester's scope")
	}
	return ToProfile(target), nil
}

// SearchUsers runs a free-text query through the directory index, scoped like
// Directory. Hits are reloaded from the repository and checked again, so a
// stale index can never widen visibility. Without an index it falls back to
// filtering the directory listing.
func (s *Service) SearchUsers(ctx context.Context, requesterEmail, text string, size int) (profiles []UserProfile, err error) {
	defer func() { s.record(opSearch, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("search text is required")
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	requester, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return nil, err
	}

	if s.Index == nil {
		users, err := s.directoryUsers(ctx, requester, nil)
		if err != nil {
			return nil, err
		}
		out := make([]*entity.User, 0, len(users))
		for _, u := range users {
			if matches(u, text) {
				out = append(out, u)
			}
			if len(out) == size {
				break
			}
		}
		return toProfiles(out), nil
	}

	ids, err := s.Index.Search(ctx, searchScope(requester, text, size))
	if err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.Users.FindByID(ctx, id)
		if apperr.Is(err, apperr.KindNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if requester.CanSee(u) {
			out = append(out, u)
		}
	}
	return toProfiles(out), nil
}

func searchScope(requester *entity.User, text string, size int) port.DirectoryQuery {
	q := port.DirectoryQuery{Text: text, TenantID: requester.TenantID, Size: size}
	switch {
	case requester.Role == entity.RoleCenterOwner:
	case requester.Role == entity.RoleUnitManager && requester.UnitID != nil:
		q.UnitID = requester.UnitID
	default:
		id := requester.ID
		q.UserID = &id
	}
	return q
}

func matches(u *entity.User, text string) bool {
	needle := strings.ToLower(text)
	for _, field := range []string{u.FirstName, u.LastName, u.Email.String()} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func normalize(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
