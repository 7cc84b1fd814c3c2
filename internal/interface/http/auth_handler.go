package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/application"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
	"github.com/oksasatya/tenant-identity/pkg/response"
)

type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type onboardingRequest struct {
	FirstName        string `json:"first_name" binding:"required,personname"`
	LastName         string `json:"last_name" binding:"required,personname"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,strongpwd"`
	OrganizationName string `json:"organization_name" binding:"required,max=200"`
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), application.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetTokens(c,
		res.Token.AccessToken, time.Duration(res.Token.ExpiresIn)*time.Second,
		res.Token.RefreshToken, time.Duration(res.Token.RefreshExpiresIn)*time.Second,
	)
	response.Success(c, http.StatusOK, res, "login successful", gin.H{"must_change_password": res.MustChangePassword})
}

// Logout POST /api/auth/logout. The refresh token comes from the body or the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(helpers.RefreshTokenCookie)
	}
	h.Cookies.Clear(c)
	if token != "" {
		if err := h.Svc.Logout(c.Request.Context(), token); err != nil {
			writeError(c, h.Logger, err)
			return
		}
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Onboarding POST /api/auth/onboarding
func (h *AuthHandler) Onboarding(c *gin.Context) {
	var req onboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Onboarding(c.Request.Context(), application.OnboardingRequest{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Password:         req.Password,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, res, "organization registered, check your inbox to verify the email", nil)
}

// PasswordReset POST /api/auth/password/reset. The answer is identical whether
// or not the account exists.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusAccepted, nil, "if the account exists, a reset email is on its way", nil)
}
