// Package keycloak implements the identity provider gateway on top of the
// Keycloak admin and OpenID Connect APIs.
package keycloak

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const (
	attrTenantID           = "tenant_id"
	attrUnitID             = "unit_id"
	attrTempCredential     = "temporary_credential_id"

	actionUpdatePassword = "UPDATE_PASSWORD"
)

type Config struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	// AdminUser and AdminPassword switch admin calls from the client's service
	// account to a master-realm admin login.
	AdminUser     string
	AdminPassword string
	// ResetLinkLifespan is how long the emailed reset link stays valid.
	ResetLinkLifespan time.Duration
	Timeout           time.Duration
}

type Gateway struct {
	client *gocloak.GoCloak
	cfg    Config
	logger *logrus.Logger

	mu         sync.Mutex
	adminToken string
	adminExp   time.Time
}

func NewGateway(cfg Config, logger *logrus.Logger) *Gateway {
	client := gocloak.NewClient(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.Timeout > 0 {
		client.RestyClient().SetTimeout(cfg.Timeout)
	}
	return &Gateway{client: client, cfg: cfg, logger: logger}
}

// token returns a cached admin access token, refreshing it shortly before expiry.
func (g *Gateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.adminToken != "" && time.Now().Before(g.adminExp) {
		return g.adminToken, nil
	}

	var (
		jwt *gocloak.JWT
		err error
	)
	if g.cfg.AdminUser != "" {
		jwt, err = g.client.LoginAdmin(ctx, g.cfg.AdminUser, g.cfg.AdminPassword, "master")
	} else {
		jwt, err = g.client.LoginClient(ctx, g.cfg.ClientID, g.cfg.ClientSecret, g.cfg.Realm)
	}
	if err != nil {
		return "", mapError(err, "admin login")
	}
	g.adminToken = jwt.AccessToken
	g.adminExp = time.Now().Add(time.Duration(jwt.ExpiresIn)*time.Second - 30*time.Second)
	return g.adminToken, nil
}

func (g *Gateway) findUser(ctx context.Context, token, email string) (*gocloak.User, error) {
	users, err := g.client.GetUsers(ctx, token, g.cfg.Realm, gocloak.GetUsersParams{
		Email: gocloak.StringP(email),
		Exact: gocloak.BoolP(true),
	})
	if err != nil {
		return nil, mapError(err, "find user")
	}
	for _, u := range users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.KindIdentityProvider, "identity for "+email+" not found at provider")
}

// CreateIdentity creates the user with a permanent password and assigns the
// realm role named after u.Role. A forced password change is tracked by
// recording the id of the issued credential as a user attribute rather than as
// a required action, so direct-grant login keeps working with the temporary
// credential. If a later step fails the identity is deleted again.
func (g *Gateway) CreateIdentity(ctx context.Context, u *entity.User, password string) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}
	attrs := map[string][]string{
		attrTenantID: {u.TenantID},
	}
	if u.UnitID != nil {
		attrs[attrUnitID] = []string{*u.UnitID}
	}
	id, err := g.client.CreateUser(ctx, token, g.cfg.Realm, gocloak.User{
		Username:      gocloak.StringP(u.Email.String()),
		Email:         gocloak.StringP(u.Email.String()),
		FirstName:     gocloak.StringP(u.FirstName),
		LastName:      gocloak.StringP(u.LastName),
		Enabled:       gocloak.BoolP(true),
		EmailVerified: gocloak.BoolP(u.EmailVerified),
		Attributes:    &attrs,
		Credentials: &[]gocloak.CredentialRepresentation{{
			Type:      gocloak.StringP("password"),
			Value:     gocloak.StringP(password),
			Temporary: gocloak.BoolP(false),
		}},
	})
	if err != nil {
		return mapError(err, "create identity")
	}

	err = g.assignRole(ctx, token, id, u.Role.String())
	if err == nil && u.MustChangePassword {
		err = g.markTemporaryCredential(ctx, token, id)
	}
	if err != nil {
		if delErr := g.client.DeleteUser(ctx, token, g.cfg.Realm, id); delErr != nil && g.logger != nil {
			g.logger.WithError(delErr).WithField("email", u.Email.String()).Error("failed to delete identity after setup error")
		}
		return err
	}

	if !u.EmailVerified {
		if err := g.client.SendVerifyEmail(ctx, token, id, g.cfg.Realm); err != nil && g.logger != nil {
			g.logger.WithError(err).WithField("email", u.Email.String()).Warn("failed to send verification email")
		}
	}
	return nil
}

// markTemporaryCredential stores the id of the user's current password
// credential. Any later password change replaces the credential and so the id.
func (g *Gateway) markTemporaryCredential(ctx context.Context, token, userID string) error {
	creds, err := g.client.GetCredentials(ctx, token, g.cfg.Realm, userID)
	if err != nil {
		return mapError(err, "list credentials")
	}
	credID := passwordCredentialID(creds)
	if credID == "" {
		return apperr.New(apperr.KindIdentityProvider, "created identity has no password credential")
	}
	u, err := g.client.GetUserByID(ctx, token, g.cfg.Realm, userID)
	if err != nil {
		return mapError(err, "load identity")
	}
	attrs := map[string][]string{}
	if u.Attributes != nil {
		attrs = *u.Attributes
	}
	attrs[attrTempCredential] = []string{credID}
	u.Attributes = &attrs
	if err := g.client.UpdateUser(ctx, token, g.cfg.Realm, *u); err != nil {
		return mapError(err, "mark temporary credential")
	}
	return nil
}

func passwordCredentialID(creds []*gocloak.CredentialRepresentation) string {
	for _, c := range creds {
		if c != nil && c.Type != nil && *c.Type == "password" && c.ID != nil {
			return *c.ID
		}
	}
	return ""
}

func (g *Gateway) assignRole(ctx context.Context, token, userID, roleName string) error {
	role, err := g.client.GetRealmRole(ctx, token, g.cfg.Realm, roleName)
	if err != nil {
		return mapError(err, "get realm role "+roleName)
	}
	if err := g.client.AddRealmRoleToUser(ctx, token, g.cfg.Realm, userID, []gocloak.Role{*role}); err != nil {
		return mapError(err, "assign realm role "+roleName)
	}
	return nil
}

func (g *Gateway) Authenticate(ctx context.Context, email, password string) (entity.AuthToken, error) {
	jwt, err := g.client.Login(ctx, g.cfg.ClientID, g.cfg.ClientSecret, g.cfg.Realm, email, password)
	if err != nil {
		return entity.AuthToken{}, mapLoginError(err)
	}
	return entity.AuthToken{
		AccessToken:      jwt.AccessToken,
		RefreshToken:     jwt.RefreshToken,
		ExpiresIn:        jwt.ExpiresIn,
		RefreshExpiresIn: jwt.RefreshExpiresIn,
		TokenType:        jwt.TokenType,
	}, nil
}

func (g *Gateway) GetStatus(ctx context.Context, email string) (entity.ProviderStatus, error) {
	token, err := g.token(ctx)
	if err != nil {
		return entity.ProviderStatus{}, err
	}
	u, err := g.findUser(ctx, token, email)
	if err != nil {
		return entity.ProviderStatus{}, err
	}
	status := providerStatus(u)
	marked := temporaryCredentialID(u)
	if marked == "" || status.MustChangePassword {
		return status, nil
	}

	creds, err := g.client.GetCredentials(ctx, token, g.cfg.Realm, *u.ID)
	if err != nil {
		return entity.ProviderStatus{}, mapError(err, "list credentials")
	}
	if passwordCredentialID(creds) == marked {
		status.MustChangePassword = true
		return status, nil
	}
	// the temporary password was replaced; drop the stale marker
	attrs := *u.Attributes
	delete(attrs, attrTempCredential)
	if err := g.client.UpdateUser(ctx, token, g.cfg.Realm, *u); err != nil && g.logger != nil {
		g.logger.WithError(err).WithField("email", email).Warn("failed to clear temporary credential marker")
	}
	return status, nil
}

// providerStatus reads the flags carried on the user representation itself.
// A pending UPDATE_PASSWORD required action forces a password change.
func providerStatus(u *gocloak.User) entity.ProviderStatus {
	status := entity.ProviderStatus{}
	if u.EmailVerified != nil {
		status.EmailVerified = *u.EmailVerified
	}
	if u.RequiredActions != nil {
		for _, a := range *u.RequiredActions {
			if a == actionUpdatePassword {
				status.MustChangePassword = true
			}
		}
	}
	return status
}

func temporaryCredentialID(u *gocloak.User) string {
	if u.Attributes == nil {
		return ""
	}
	if v := (*u.Attributes)[attrTempCredential]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (g *Gateway) DisableIdentity(ctx context.Context, email string) error {
	return g.setEnabled(ctx, email, false)
}

func (g *Gateway) EnableIdentity(ctx context.Context, email string) error {
	return g.setEnabled(ctx, email, true)
}

func (g *Gateway) setEnabled(ctx context.Context, email string, enabled bool) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}
	u, err := g.findUser(ctx, token, email)
	if err != nil {
		return err
	}
	u.Enabled = gocloak.BoolP(enabled)
	if err := g.client.UpdateUser(ctx, token, g.cfg.Realm, *u); err != nil {
		return mapError(err, "update identity")
	}
	return nil
}

func (g *Gateway) SendPasswordReset(ctx context.Context, email string) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}
	u, err := g.findUser(ctx, token, email)
	if err != nil {
		return err
	}
	params := gocloak.ExecuteActionsEmail{
		UserID:  u.ID,
		Actions: &[]string{actionUpdatePassword},
	}
	if g.cfg.ResetLinkLifespan > 0 {
		params.Lifespan = gocloak.IntP(int(g.cfg.ResetLinkLifespan.Seconds()))
	}
	if err := g.client.ExecuteActionsEmail(ctx, token, g.cfg.Realm, params); err != nil {
		return mapError(err, "send password reset")
	}
	return nil
}

// UpdateUserRole replaces any hierarchy role the identity holds with roleName.
// Realm roles outside the hierarchy are left alone.
func (g *Gateway) UpdateUserRole(ctx context.Context, email, roleName string) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}
	u, err := g.findUser(ctx, token, email)
	if err != nil {
		return err
	}
	current, err := g.client.GetRealmRolesByUserID(ctx, token, g.cfg.Realm, *u.ID)
	if err != nil {
		return mapError(err, "list realm roles")
	}
	stale := make([]gocloak.Role, 0)
	has := false
	for _, r := range current {
		if r.Name == nil {
			continue
		}
		if *r.Name == roleName {
			has = true
			continue
		}
		if entity.UserRole(*r.Name).IsValid() {
			stale = append(stale, *r)
		}
	}
	if len(stale) > 0 {
		if err := g.client.DeleteRealmRoleFromUser(ctx, token, g.cfg.Realm, *u.ID, stale); err != nil {
			return mapError(err, "remove realm roles")
		}
	}
	if has {
		return nil
	}
	return g.assignRole(ctx, token, *u.ID, roleName)
}

func (g *Gateway) Logout(ctx context.Context, refreshToken string) error {
	if err := g.client.Logout(ctx, g.cfg.ClientID, g.cfg.ClientSecret, g.cfg.Realm, refreshToken); err != nil {
		return mapError(err, "logout")
	}
	return nil
}

var _ port.IdentityProviderGateway = (*Gateway)(nil)
