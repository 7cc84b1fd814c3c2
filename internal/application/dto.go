package application

import (
	"time"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
)

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	Token              entity.AuthToken `json:"token"`
	Role               string           `json:"role"`
	MustChangePassword bool             `json:"must_change_password"`
	User               UserProfile      `json:"user"`
}

type OnboardingRequest struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	OrganizationName string
}

type OnboardingResponse struct {
	Owner            UserProfile `json:"owner"`
	TenantID         string      `json:"tenant_id"`
	OrganizationName string      `json:"organization_name"`
	EmailVerified    bool        `json:"email_verified"`
	Active           bool        `json:"active"`
}

type ProvisionUserRequest struct {
	FirstName string
	LastName  string
	Email     string
	Role      string
	UnitID    *string
}

// UpdateUserRequest carries optional fields; nil means "leave unchanged".
type UpdateUserRequest struct {
	TargetID       string
	RequesterEmail string
	FirstName      *string
	LastName       *string
	Role           *string
	UnitID         *string
}

func (r UpdateUserRequest) hasProfileFields() bool {
	return r.FirstName != nil || r.LastName != nil
}

func (r UpdateUserRequest) hasAdminFields() bool {
	return r.Role != nil || r.UnitID != nil
}

type UserProfile struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	TenantID           string    `json:"tenant_id"`
	UnitID             *string   `json:"unit_id,omitempty"`
	Role               string    `json:"role"`
	EmailVerified      bool      `json:"email_verified"`
	Active             bool      `json:"active"`
	MustChangePassword bool      `json:"must_change_password"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func ToProfile(u *entity.User) UserProfile {
	return UserProfile{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email.String(),
		TenantID:           u.TenantID,
		UnitID:             u.UnitID,
		Role:               u.Role.String(),
		EmailVerified:      u.EmailVerified,
		Active:             u.Active,
		MustChangePassword: u.MustChangePassword,
		AvatarURL:          u.AvatarURL,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toProfiles(users []*entity.User) []UserProfile {
	out := make([]UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, ToProfile(u))
	}
	return out
}

type UnitView struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUnitView(u *entity.Unit) UnitView {
	return UnitView{ID: u.ID, TenantID: u.TenantID, Name: u.Name, CreatedAt: u.CreatedAt}
}
