package helpers

import (
	"crypto/rsa"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks access tokens signed by the identity provider realm key.
// Tokens are issued elsewhere; this service only verifies them.
type TokenVerifier struct {
	key    *rsa.PublicKey
	issuer string
}

type Claims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	jwt.RegisteredClaims
}

// Identity returns the email the token was issued for.
func (c *Claims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.PreferredUsername
}

// NewTokenVerifier accepts the realm public key either as a full PEM block or
// as the bare base64 body the provider's realm endpoint publishes. An empty
// issuer skips the iss check.
func NewTokenVerifier(publicKey, issuer string) (*TokenVerifier, error) {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return nil, errors.New("realm public key not configured")
	}
	if !strings.HasPrefix(publicKey, "-----BEGIN") {
		publicKey = "-----BEGIN PUBLIC KEY-----\n" + publicKey + "\n-----END PUBLIC KEY-----"
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKey))
	if err != nil {
		return nil, err
	}
	return &TokenVerifier{key: key, issuer: issuer}, nil
}

func (v *TokenVerifier) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Identity() == "" {
		return nil, errors.New("token carries no email")
	}
	return claims, nil
}
