package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/response"
	"github.com/stagepass/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register. New accounts always start with
// the User role; elevated roles are granted through organization
// membership or by an admin.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	_, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c)
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName)
	if err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c)
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c)
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Denied(c)
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Denied(c)
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c)
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	// Read the context key directly; importing the middleware package
	// here would create an import cycle through JWTService.
	v, exists := c.Get("user_id")
	userID, ok := v.(uuid.UUID)
	if !exists || !ok {
		response.Denied(c)
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// List handles GET /users. Requires the user:read scope.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}
