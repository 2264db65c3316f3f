package artists

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/response"
)

// Handler handles artist HTTP endpoints.
type Handler struct {
	repo   *Repository
	gate   *access.Gate
	logger *zap.Logger
}

// NewHandler creates an artists handler.
func NewHandler(repo *Repository, gate *access.Gate, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, gate: gate, logger: logger}
}

// CreateRequest is the body for POST /artists.
type CreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	Bio            string     `json:"bio"`
	ImageURL       *string    `json:"image_url"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

// Create handles POST /artists. Global artists need a global artist:write
// grant; organization artists need it within the owning organization.
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
	allowed, err := h.gate.HasScope(c.Request.Context(), userID, access.ScopeArtistWrite, body.OrganizationID)
	if err != nil || !allowed {
		response.Denied(c)
		return
	}
	a := &models.Artist{Name: body.Name, Bio: body.Bio, ImageURL: body.ImageURL, OrganizationID: body.OrganizationID}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		h.logger.Error("create artist", zap.Error(err))
		response.Internal(c)
		return
	}
	response.Created(c, a)
}

// Get handles GET /artists/:id. Private artists are indistinguishable from
// missing ones to callers without org access.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid artist id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "artist not found")
		return
	}
	userID, _ := middleware.UserID(c)
	visible, err := h.gate.CanView(c.Request.Context(), userID, access.ScopeArtistWrite, a.IsPrivate, a.OrganizationID)
	if err != nil || !visible {
		response.NotFound(c, "artist not found")
		return
	}
	response.OK(c, a)
}

// List handles GET /artists. Public artists only.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListPublic(c.Request.Context())
	if err != nil {
		h.logger.Error("list artists", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// ListForOrganization handles GET /organizations/:id/artists, private
// artists included. Requires org-scoped artist:write.
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
	allowed, err := h.gate.HasOrganizationScope(c.Request.Context(), userID, access.ScopeArtistWrite, orgID)
	if err != nil || !allowed {
		response.Denied(c)
		return
	}
	list, err := h.repo.ListForOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list organization artists", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /artists/:id.
func (h *Handler) Update(c *gin.Context) {
	a, ok := h.writable(c)
	if !ok {
		return
	}
	var attrs EditableAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), a.ID, attrs)
	if err != nil {
		h.logger.Error("update artist", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, updated)
}

// TogglePrivacy handles PUT /artists/:id/toggle_privacy. Only meaningful
// for organization-owned artists.
func (h *Handler) TogglePrivacy(c *gin.Context) {
	a, ok := h.writable(c)
	if !ok {
		return
	}
	if a.OrganizationID == nil {
		response.BadRequest(c, "global artists cannot be made private")
		return
	}
	if err := h.repo.SetPrivacy(c.Request.Context(), a.ID, !a.IsPrivate); err != nil {
		h.logger.Error("toggle artist privacy", zap.Error(err))
		response.Internal(c)
		return
	}
	a.IsPrivate = !a.IsPrivate
	response.OK(c, a)
}

// writable loads the artist and checks write access. Private artists
// require the scope within the owning organization even for users holding
// a global grant.
func (h *Handler) writable(c *gin.Context) (*models.Artist, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid artist id")
		return nil, false
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return nil, false
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "artist not found")
		return nil, false
	}
	var allowed bool
	if a.IsPrivate && a.OrganizationID != nil {
		allowed, err = h.gate.HasOrganizationScope(c.Request.Context(), userID, access.ScopeArtistWrite, *a.OrganizationID)
	} else {
		allowed, err = h.gate.HasScope(c.Request.Context(), userID, access.ScopeArtistWrite, a.OrganizationID)
	}
	if err != nil || !allowed {
		response.Denied(c)
		return nil, false
	}
	return a, true
}
