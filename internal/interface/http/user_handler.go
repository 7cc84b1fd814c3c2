package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/application"
	"github.com/oksasatya/tenant-identity/internal/interface/middleware"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
	"github.com/oksasatya/tenant-identity/pkg/response"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type provisionUserRequest struct {
	FirstName string  `json:"first_name" binding:"required,personname"`
	LastName  string  `json:"last_name" binding:"required,personname"`
	Email     string  `json:"email" binding:"required,email"`
	Role      string  `json:"role" binding:"required"`
	UnitID    *string `json:"unit_id" binding:"omitempty,uuid"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,personname"`
	LastName  *string `json:"last_name" binding:"omitempty,personname"`
	Role      *string `json:"role"`
	// An empty string detaches the user from its unit.
	UnitID *string `json:"unit_id"`
}

type accountStateRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func requester(c *gin.Context) string {
	return c.GetString(middleware.CtxUserEmail)
}

// userIDParam rejects a malformed :id before it reaches the store.
func userIDParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("user id must be a valid UUID")
	}
	return id, nil
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	p, err := h.Svc.Profile(c.Request.Context(), requester(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

// UploadAvatar POST /api/users/me/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("avatar")
	if err != nil {
		writeError(c, h.Logger, apperr.Validation("avatar file is required (max 5MB)"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, apperr.Wrap(apperr.KindInternal, "open upload", err))
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Svc.UploadAvatar(c.Request.Context(), requester(c), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "avatar updated", nil)
}

// List GET /api/users?unit_id=
func (h *UserHandler) List(c *gin.Context) {
	var unitID *string
	if v, ok := c.GetQuery("unit_id"); ok && v != "" {
		unitID = &v
	}
	users, err := h.Svc.Directory(c.Request.Context(), requester(c), unitID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)})
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), requester(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "search results", gin.H{"count": len(users)})
}

// Get GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := userIDParam(c)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	p, err := h.Svc.GetUser(c.Request.Context(), requester(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "user", nil)
}

// Create POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req provisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.ProvisionUser(c.Request.Context(), requester(c), application.ProvisionUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
		UnitID:    req.UnitID,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "user provisioned", nil)
}

// Update PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, err := userIDParam(c)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if req.UnitID != nil && *req.UnitID != "" {
		if _, err := uuid.Parse(*req.UnitID); err != nil {
			writeError(c, h.Logger, apperr.Validation("unit_id must be a valid UUID"))
			return
		}
	}
	ctx := c.Request.Context()
	err = h.Svc.UpdateUser(ctx, application.UpdateUserRequest{
		TargetID:       id,
		RequesterEmail: requester(c),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           req.Role,
		UnitID:         req.UnitID,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	p, err := h.Svc.GetUser(ctx, requester(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "user updated", nil)
}

// Ban POST /api/users/ban
func (h *UserHandler) Ban(c *gin.Context) {
	var req accountStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.Svc.BanUser(c.Request.Context(), req.Email, requester(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"email": req.Email, "active": false}, "user banned", nil)
}

// Activate POST /api/users/activate
func (h *UserHandler) Activate(c *gin.Context) {
	var req accountStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.Svc.ActivateUser(c.Request.Context(), req.Email, requester(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"email": req.Email, "active": true}, "user activated", nil)
}
