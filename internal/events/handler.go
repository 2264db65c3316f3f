package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/response"
	"github.com/stagepass/backend/pkg/storage"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	gate   *access.Gate
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, gate *access.Gate, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, gate: gate, s3: s3, logger: logger}
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	OrganizationID uuid.UUID  `json:"organization_id" binding:"required"`
	VenueID        *uuid.UUID `json:"venue_id"`
	EventStart     *time.Time `json:"event_start"`
	DoorTime       *time.Time `json:"door_time"`
}

// PromoImageRequest is the body for POST /events/:id/promo_image.
type PromoImageRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// Create handles POST /events. Requires event:write within the owning
// organization.
func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !h.require(c, access.ScopeEventWrite, body.OrganizationID) {
		return
	}
	e := &models.Event{
		Name:           body.Name,
		OrganizationID: body.OrganizationID,
		VenueID:        body.VenueID,
		EventStart:     body.EventStart,
		DoorTime:       body.DoorTime,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c)
		return
	}
	response.Created(c, e)
}

// Get handles GET /events/:id. Events are public.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// ListForOrganization handles GET /organizations/:id/events.
func (h *Handler) ListForOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListForOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list organization events", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if !h.require(c, access.ScopeEventWrite, e.OrganizationID) {
		return
	}
	var attrs EditableAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), id, attrs)
	if err != nil {
		h.logger.Error("update event", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, updated)
}

// PromoImageUploadURL handles POST /events/:id/promo_image. Returns a
// presigned PUT URL; the client uploads directly to S3 and the public
// object URL is stored on the event.
func (h *Handler) PromoImageUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "storage unavailable")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if !h.require(c, access.ScopeEventWrite, e.OrganizationID) {
		return
	}
	var body PromoImageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !storage.ValidateImageFileType(body.ContentType, body.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	key := storage.PromoImageKey(e.ID.String(), body.Filename)
	uploadURL, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), h.s3.MediaBucket(), key, body.ContentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign promo image upload", zap.Error(err))
		response.Internal(c)
		return
	}
	publicURL := h.s3.PublicObjectURL(h.s3.MediaBucket(), key)
	if err := h.repo.SetPromoImageURL(c.Request.Context(), e.ID, publicURL); err != nil {
		h.logger.Error("store promo image url", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, gin.H{
		"upload_url":      uploadURL,
		"promo_image_url": publicURL,
		"expires_in_sec":  int(h.s3.PresignExpire().Seconds()),
	})
}

func (h *Handler) require(c *gin.Context, scope access.Scope, orgID uuid.UUID) bool {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return false
	}
	allowed, err := h.gate.HasScope(c.Request.Context(), userID, scope, &orgID)
	if err != nil || !allowed {
		response.Denied(c)
		return false
	}
	return true
}
