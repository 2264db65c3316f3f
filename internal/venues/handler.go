package venues

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/response"
)

// Handler handles venue HTTP endpoints.
type Handler struct {
	repo   *Repository
	gate   *access.Gate
	logger *zap.Logger
}

// NewHandler creates a venues handler.
func NewHandler(repo *Repository, gate *access.Gate, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, gate: gate, logger: logger}
}

// CreateRequest is the body for POST /venues.
type CreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	Country        string     `json:"country"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

// Create handles POST /venues.
func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return
	}
	allowed, err := h.gate.HasScope(c.Request.Context(), userID, access.ScopeVenueWrite, body.OrganizationID)
	if err != nil || !allowed {
		response.Denied(c)
		return
	}
	v := &models.Venue{
		Name:           body.Name,
		Address:        body.Address,
		City:           body.City,
		Country:        body.Country,
		OrganizationID: body.OrganizationID,
	}
	if err := h.repo.Create(c.Request.Context(), v); err != nil {
		h.logger.Error("create venue", zap.Error(err))
		response.Internal(c)
		return
	}
	response.Created(c, v)
}

// Get handles GET /venues/:id. Private venues look missing to callers
// without org access.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid venue id")
		return
	}
	v, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "venue not found")
		return
	}
	userID, _ := middleware.UserID(c)
	visible, err := h.gate.CanView(c.Request.Context(), userID, access.ScopeVenueWrite, v.IsPrivate, v.OrganizationID)
	if err != nil || !visible {
		response.NotFound(c, "venue not found")
		return
	}
	response.OK(c, v)
}

// List handles GET /venues. Public venues only.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListPublic(c.Request.Context())
	if err != nil {
		h.logger.Error("list venues", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// ListForOrganization handles GET /organizations/:id/venues.
func (h *Handler) ListForOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return
	}
	allowed, err := h.gate.HasOrganizationScope(c.Request.Context(), userID, access.ScopeVenueWrite, orgID)
	if err != nil || !allowed {
		response.Denied(c)
		return
	}
	list, err := h.repo.ListForOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list organization venues", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /venues/:id.
func (h *Handler) Update(c *gin.Context) {
	v, ok := h.writable(c)
	if !ok {
		return
	}
	var attrs EditableAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), v.ID, attrs)
	if err != nil {
		h.logger.Error("update venue", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, updated)
}

// TogglePrivacy handles PUT /venues/:id/toggle_privacy.
func (h *Handler) TogglePrivacy(c *gin.Context) {
	v, ok := h.writable(c)
	if !ok {
		return
	}
	if v.OrganizationID == nil {
		response.BadRequest(c, "global venues cannot be made private")
		return
	}
	if err := h.repo.SetPrivacy(c.Request.Context(), v.ID, !v.IsPrivate); err != nil {
		h.logger.Error("toggle venue privacy", zap.Error(err))
		response.Internal(c)
		return
	}
	v.IsPrivate = !v.IsPrivate
	response.OK(c, v)
}

func (h *Handler) writable(c *gin.Context) (*models.Venue, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid venue id")
		return nil, false
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return nil, false
	}
	v, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "venue not found")
		return nil, false
	}
	var allowed bool
	if v.IsPrivate && v.OrganizationID != nil {
		allowed, err = h.gate.HasOrganizationScope(c.Request.Context(), userID, access.ScopeVenueWrite, *v.OrganizationID)
	} else {
		allowed, err = h.gate.HasScope(c.Request.Context(), userID, access.ScopeVenueWrite, v.OrganizationID)
	}
	if err != nil || !allowed {
		response.Denied(c)
		return nil, false
	}
	return v, true
}
