package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tenant-identity/pkg/helpers"
)

const issuer = "http://keycloak:8080/realms/skilyo"

func init() {
	gin.SetMode(gin.TestMode)
}

func newVerifier(t *testing.T) (*rsa.PrivateKey, *helpers.TokenVerifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	v, err := helpers.NewTokenVerifier(base64.StdEncoding.EncodeToString(der), issuer)
	require.NoError(t, err)
	return key, v
}

func sign(t *testing.T, key *rsa.PrivateKey, email string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"email":        email,
		"iss":          issuer,
		"exp":          time.Now().Add(time.Minute).Unix(),
		"realm_access": map[string]any{"roles": []string{"UNIT_MANAGER"}},
	}).SignedString(key)
	require.NoError(t, err)
	return tok
}

func authEngine(v *helpers.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(v), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserEmail))
	})
	return r
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	key, v := newVerifier(t)
	r := authEngine(v)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, key, "Manager@Skilyo.com"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "manager@skilyo.com", w.Body.String())
}

func TestAuthFallsBackToCookie(t *testing.T) {
	key, v := newVerifier(t)
	r := authEngine(v)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: sign(t, key, "staff@skilyo.com")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff@skilyo.com", w.Body.String())
}

func TestAuthRejects(t *testing.T) {
	_, v := newVerifier(t)
	foreign, _ := newVerifier(t)
	r := authEngine(v)

	cases := map[string]string{
		"missing":      "",
		"malformed":    "Bearer not-a-jwt",
		"wrong scheme": "Basic " + sign(t, foreign, "a@b.co"),
		"foreign key":  "Bearer " + sign(t, foreign, "a@b.co"),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Body.String())
	assert.Equal(t, inbound, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestRealIPPrecedence(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIP)) })

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"forwarded", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"garbage falls through", map[string]string{"CF-Connecting-IP": "nope", "X-Forwarded-For": "also-nope"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{
		"127.0.0.1":   true,
		"10.1.2.3":    true,
		"192.168.0.9": true,
		"8.8.8.8":     false,
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(CtxRealIP, ip)
		assert.Equal(t, want, allow(c), ip)
	}
}

func TestRateLimitKeys(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.POST("/api/auth/login", func(c *gin.Context) {
		c.String(http.StatusOK, KeyByIPAndPath()(c)+"|"+KeyByUser()(c))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "rl:path:/api/auth/login:ip:198.51.100.4|rl:user:anon:ip:198.51.100.4", w.Body.String())
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, Limit{Max: 1, Window: time.Minute, Key: KeyByIP()}, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
