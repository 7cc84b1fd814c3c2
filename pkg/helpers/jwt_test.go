package helpers

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, base64.StdEncoding.EncodeToString(der)
}

func TestTokenVerifierAcceptsRealmToken(t *testing.T) {
	key, pub := newKeyPair(t)
	v, err := NewTokenVerifier(pub, "http://kc/realms/skilyo")
	require.NoError(t, err)

	tok := signedToken(t, key, jwt.MapClaims{
		"email": "owner@skilyo.com",
		"iss":   "http://kc/realms/skilyo",
		"exp":   time.Now().Add(time.Minute).Unix(),
		"realm_access": map[string]any{
			"roles": []string{"CENTER_OWNER"},
		},
	})
	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "owner@skilyo.com", claims.Identity())
	assert.Equal(t, []string{"CENTER_OWNER"}, claims.RealmAccess.Roles)
}

func TestTokenVerifierRejects(t *testing.T) {
	key, pub := newKeyPair(t)
	other, _ := newKeyPair(t)
	v, err := NewTokenVerifier(pub, "http://kc/realms/skilyo")
	require.NoError(t, err)

	cases := map[string]string{
		"expired": signedToken(t, key, jwt.MapClaims{
			"email": "a@b.co", "iss": "http://kc/realms/skilyo", "exp": time.Now().Add(-time.Minute).Unix(),
		}),
		"wrong issuer": signedToken(t, key, jwt.MapClaims{
			"email": "a@b.co", "iss": "http://evil", "exp": time.Now().Add(time.Minute).Unix(),
		}),
		"wrong key": signedToken(t, other, jwt.MapClaims{
			"email": "a@b.co", "iss": "http://kc/realms/skilyo", "exp": time.Now().Add(time.Minute).Unix(),
		}),
		"no email": signedToken(t, key, jwt.MapClaims{
			"iss": "http://kc/realms/skilyo", "exp": time.Now().Add(time.Minute).Unix(),
		}),
		"hmac": func() string {
			s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"email": "a@b.co", "exp": time.Now().Add(time.Minute).Unix(),
			}).SignedString([]byte("secret"))
			return s
		}(),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.Error(t, err)
		})
	}
}

func TestNewTokenVerifierRequiresKey(t *testing.T) {
	_, err := NewTokenVerifier("  ", "")
	assert.Error(t, err)
}
