package keycloak

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Nerzal/gocloak/v13"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// lockedMarkers are substrings of Keycloak error descriptions for accounts
// that exist but may not log in.
var lockedMarkers = []string{"disabled", "locked", "temporarily"}

func isLocked(apiErr *gocloak.APIError) bool {
	if apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	for _, m := range lockedMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// mapLoginError classifies a failed password grant.
func mapLoginError(err error) error {
	var apiErr *gocloak.APIError
	if errors.As(err, &apiErr) {
		switch {
		case isLocked(apiErr):
			return apperr.Wrap(apperr.KindAccountLocked, "account is locked or disabled", err)
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusBadRequest:
			return apperr.Wrap(apperr.KindInvalidCredentials, "invalid credentials", err)
		}
	}
	return mapError(err, "authenticate")
}

// mapError classifies any other provider failure.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *gocloak.APIError
	if errors.As(err, &apiErr) && isLocked(apiErr) {
		return apperr.Wrap(apperr.KindAccountLocked, op+": provider rejected the request", err)
	}
	return apperr.Wrap(apperr.KindIdentityProvider, op+" failed", err).WithOp("keycloak")
}
