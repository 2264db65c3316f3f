package organizations

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/queue"
	"github.com/stagepass/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo        *Repository
	gate        *access.Gate
	queue       *queue.Queue
	frontendURL string
	logger      *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, gate *access.Gate, q *queue.Queue, frontendURL string, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, gate: gate, queue: q, frontendURL: frontendURL, logger: logger}
}

// CreateOrganizationRequest is the body for POST /organizations.
type CreateOrganizationRequest struct {
	Name        string    `json:"name" binding:"required"`
	OwnerUserID uuid.UUID `json:"owner_user_id" binding:"required"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
}

// InviteRequest is the body for POST /organizations/:id/invites.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Create handles POST /organizations. Platform admins only; the named
// owner is enrolled as OrgOwner.
func (h *Handler) Create(c *gin.Context) {
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	org := &models.Organization{Name: body.Name, Address: body.Address, City: body.City, Country: body.Country}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		h.logger.Error("create organization", zap.Error(err))
		response.Internal(c)
		return
	}
	if err := h.repo.AddUser(c.Request.Context(), org.ID, body.OwnerUserID, string(access.RoleOrgOwner)); err != nil {
		h.logger.Error("enroll owner", zap.Error(err), zap.String("organization_id", org.ID.String()))
		response.Internal(c)
		return
	}
	response.Created(c, org)
}

// Get handles GET /organizations/:id. Requires org:read within the
// organization (or globally).
func (h *Handler) Get(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	if !h.require(c, access.ScopeOrgRead, orgID) {
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// Update handles PATCH /organizations/:id. Requires org:write.
func (h *Handler) Update(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	if !h.require(c, access.ScopeOrgWrite, orgID) {
		return
	}
	var attrs EditableAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.repo.Update(c.Request.Context(), orgID, attrs)
	if err != nil {
		h.logger.Error("update organization", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, org)
}

// ListMine handles GET /organizations. Returns the caller's organizations.
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return
	}
	orgs, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list organizations", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, orgs)
}

// ListMembers handles GET /organizations/:id/members. Requires org:read.
func (h *Handler) ListMembers(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	if !h.require(c, access.ScopeOrgRead, orgID) {
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list members", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, members)
}

// Invite handles POST /organizations/:id/invites. Requires org:write. The
// invite email is queued after the row commits; a delivery failure is
// logged and never fails the request.
func (h *Handler) Invite(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	if !h.require(c, access.ScopeOrgWrite, orgID) {
		return
	}
	var body InviteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}

	inv := &models.OrganizationInvite{
		OrganizationID: orgID,
		InviteEmail:    strings.ToLower(strings.TrimSpace(body.Email)),
	}
	if err := h.repo.CreateInvite(c.Request.Context(), inv); err != nil {
		h.logger.Error("create invite", zap.Error(err))
		response.Internal(c)
		return
	}

	link := fmt.Sprintf("%s/invites/%s", h.frontendURL, inv.SecurityToken)
	err = h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      queue.EmailTypeOrgInvite,
		OrganizationID: orgID,
		RecipientEmail: inv.InviteEmail,
		Subject:        fmt.Sprintf("You have been invited to join %s", org.Name),
		BodyHTML: fmt.Sprintf(
			"<p>You have been invited to join <strong>%s</strong>.</p><p><a href=%q>Accept the invitation</a></p>",
			org.Name, link),
		BodyText: fmt.Sprintf("You have been invited to join %s. Accept: %s", org.Name, link),
	})
	if err != nil {
		h.logger.Warn("enqueue invite email", zap.Error(err), zap.String("invite_id", inv.ID.String()))
	}
	response.Created(c, inv)
}

// GetInvite handles GET /invites/:token. Public: the token itself is the
// credential.
func (h *Handler) GetInvite(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}
	inv, err := h.repo.GetInviteByToken(c.Request.Context(), token)
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), inv.OrganizationID)
	if err != nil {
		response.Internal(c)
		return
	}
	response.OK(c, gin.H{"invite": inv, "organization_name": org.Name})
}

// AcceptInvite handles POST /invites/:token/accept. The caller must be
// authenticated with the invited email address.
func (h *Handler) AcceptInvite(c *gin.Context) {
	h.resolveInvite(c, true)
}

// DeclineInvite handles POST /invites/:token/decline.
func (h *Handler) DeclineInvite(c *gin.Context) {
	h.resolveInvite(c, false)
}

func (h *Handler) resolveInvite(c *gin.Context, accept bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return
	}
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}
	inv, err := h.repo.GetInviteByToken(c.Request.Context(), token)
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}

	email, _ := c.Get(middleware.ContextUserEmail)
	callerEmail, _ := email.(string)
	if !strings.EqualFold(callerEmail, inv.InviteEmail) {
		response.Denied(c)
		return
	}

	status := models.InviteStatusDeclined
	if accept {
		status = models.InviteStatusAccepted
	}
	if err := h.repo.SetInviteStatus(c.Request.Context(), inv.ID, userID, status); err != nil {
		h.logger.Error("update invite", zap.Error(err))
		response.Internal(c)
		return
	}
	if accept {
		if err := h.repo.AddUser(c.Request.Context(), inv.OrganizationID, userID, string(access.RoleOrgMember)); err != nil {
			h.logger.Error("enroll member", zap.Error(err))
			response.Internal(c)
			return
		}
	}
	response.OK(c, gin.H{"status": status})
}

// require checks an org-scoped permission and writes the uniform denial
// on failure.
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
