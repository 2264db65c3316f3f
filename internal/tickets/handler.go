package tickets

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/apperr"
	"github.com/stagepass/backend/pkg/response"
)

// Handler handles ticket type and ticket pricing HTTP endpoints.
type Handler struct {
	repo   *Repository
	ledger *Ledger
	gate   *access.Gate
	logger *zap.Logger
}

// NewHandler creates a tickets handler.
func NewHandler(repo *Repository, ledger *Ledger, gate *access.Gate, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, ledger: ledger, gate: gate, logger: logger}
}

// PricingRequest is one pricing period in a ticket type create request.
type PricingRequest struct {
	Name         string    `json:"name" binding:"required"`
	PriceInCents int64     `json:"price_in_cents"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
}

// CreateTicketTypeRequest is the body for POST /events/:id/ticket_types.
type CreateTicketTypeRequest struct {
	Name          string           `json:"name" binding:"required"`
	Capacity      int              `json:"capacity"`
	StartDate     time.Time        `json:"start_date" binding:"required"`
	EndDate       time.Time        `json:"end_date" binding:"required"`
	TicketPricing []PricingRequest `json:"ticket_pricing"`
}

// Create handles POST /events/:id/ticket_types. Requires ticket:admin for
// the event's organization. The type and its pricing periods are written
// in one transaction; any overlap rolls the whole request back.
func (h *Handler) Create(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if !h.requireTicketAdmin(c, eventID) {
		return
	}

	var req CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Capacity < 0 {
		response.BadRequest(c, "capacity must be >= 0")
		return
	}
	if !req.StartDate.Before(req.EndDate) {
		response.BadRequest(c, "start_date must be before end_date")
		return
	}

	ctx := c.Request.Context()
	tx, err := h.repo.Pool().Begin(ctx)
	if err != nil {
		h.logger.Error("begin ticket type create", zap.Error(err))
		response.Internal(c)
		return
	}
	defer tx.Rollback(ctx)

	tt := &models.TicketType{
		EventID:   eventID,
		Name:      req.Name,
		Capacity:  req.Capacity,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.repo.CreateTicketType(ctx, tx, tt); err != nil {
		h.logger.Error("create ticket type", zap.Error(err))
		response.Internal(c)
		return
	}

	periods := make([]models.TicketPricing, 0, len(req.TicketPricing))
	for _, pr := range req.TicketPricing {
		if pr.PriceInCents < 0 {
			response.BadRequest(c, "price_in_cents must be >= 0")
			return
		}
		if !pr.StartDate.Before(pr.EndDate) {
			response.AppError(c, apperr.Validation("ticket_pricing", "start_date must be before end_date"))
			return
		}
		p := models.TicketPricing{
			TicketTypeID: tt.ID,
			Name:         pr.Name,
			PriceInCents: pr.PriceInCents,
			StartDate:    pr.StartDate,
			EndDate:      pr.EndDate,
		}
		if err := h.repo.InsertPricing(ctx, tx, &p); err != nil {
			h.logger.Error("insert ticket pricing", zap.Error(err))
			response.Internal(c)
			return
		}
		periods = append(periods, p)
	}
	if err := ValidatePeriods(periods); err != nil {
		response.AppError(c, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit ticket type create", zap.Error(err))
		response.Internal(c)
		return
	}

	display := models.DisplayTicketType{TicketType: *tt, Remaining: tt.Capacity}
	if current, err := SelectCurrentPricing(periods, time.Now()); err == nil {
		display.CurrentPricing = current
	}
	response.Created(c, display)
}

// PricingPatch adds (no id) or updates (with id) one pricing period in a
// ticket type update.
type PricingPatch struct {
	ID *uuid.UUID `json:"id,omitempty"`
	TicketPricingEditableAttributes
}

// UpdateTicketTypeRequest is the body for PATCH /ticket_types/:id.
type UpdateTicketTypeRequest struct {
	TicketTypeEditableAttributes
	TicketPricing []PricingPatch `json:"ticket_pricing,omitempty"`
}

// Update handles PATCH /ticket_types/:id. Attribute changes and pricing
// period patches share one transaction; the full Published set is
// re-validated before commit.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket type id")
		return
	}
	tt, err := h.repo.GetTicketType(c.Request.Context(), id)
	if err != nil {
		response.Denied(c)
		return
	}
	if !h.requireTicketAdmin(c, tt.EventID) {
		return
	}

	var req UpdateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		response.BadRequest(c, "capacity must be >= 0")
		return
	}
	if !patchedWindowOrdered(tt, req.TicketTypeEditableAttributes) {
		response.BadRequest(c, "start_date must be before end_date")
		return
	}

	ctx := c.Request.Context()
	tx, err := h.repo.Pool().Begin(ctx)
	if err != nil {
		h.logger.Error("begin ticket type update", zap.Error(err))
		response.Internal(c)
		return
	}
	defer tx.Rollback(ctx)

	if err := h.repo.LockTicketType(ctx, tx, id); err != nil {
		response.Denied(c)
		return
	}
	updated, err := h.repo.UpdateTicketType(ctx, tx, id, req.TicketTypeEditableAttributes)
	if err != nil {
		h.logger.Error("update ticket type", zap.Error(err))
		response.Internal(c)
		return
	}

	for _, patch := range req.TicketPricing {
		if patch.ID != nil {
			if _, err := h.repo.UpdatePricing(ctx, tx, *patch.ID, patch.TicketPricingEditableAttributes); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					response.AppError(c, apperr.Validation("ticket_pricing", "pricing period not found or deleted"))
					return
				}
				h.logger.Error("update ticket pricing", zap.Error(err))
				response.Internal(c)
				return
			}
			continue
		}
		if patch.Name == nil || patch.PriceInCents == nil || patch.StartDate == nil || patch.EndDate == nil {
			response.AppError(c, apperr.Validation("ticket_pricing", "new pricing periods require name, price_in_cents, start_date and end_date"))
			return
		}
		p := models.TicketPricing{
			TicketTypeID: id,
			Name:         *patch.Name,
			PriceInCents: *patch.PriceInCents,
			StartDate:    *patch.StartDate,
			EndDate:      *patch.EndDate,
		}
		if err := h.repo.InsertPricing(ctx, tx, &p); err != nil {
			h.logger.Error("insert ticket pricing", zap.Error(err))
			response.Internal(c)
			return
		}
	}

	periods, err := h.repo.ListPublishedPricing(ctx, tx, id)
	if err != nil {
		h.logger.Error("load ticket pricing", zap.Error(err))
		response.Internal(c)
		return
	}
	for _, p := range periods {
		if !p.StartDate.Before(p.EndDate) {
			response.AppError(c, apperr.Validation("ticket_pricing", "start_date must be before end_date"))
			return
		}
	}
	if err := ValidatePeriods(periods); err != nil {
		response.AppError(c, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit ticket type update", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, updated)
}

// patchedWindowOrdered merges the stored sale window with the patch and
// reports whether start still precedes end. Checked up front so a bad
// patch fails with 400 instead of tripping the schema constraint.
func patchedWindowOrdered(tt *models.TicketType, attrs TicketTypeEditableAttributes) bool {
	start, end := tt.StartDate, tt.EndDate
	if attrs.StartDate != nil {
		start = *attrs.StartDate
	}
	if attrs.EndDate != nil {
		end = *attrs.EndDate
	}
	return start.Before(end)
}

// ListByEvent handles GET /events/:id/ticket_types. Public; each type
// carries its resolved current price and remaining inventory.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	ctx := c.Request.Context()
	types, err := h.repo.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		h.logger.Error("list ticket types", zap.Error(err))
		response.Internal(c)
		return
	}
	now := time.Now()
	display := make([]models.DisplayTicketType, 0, len(types))
	for _, tt := range types {
		remaining, err := h.ledger.Remaining(ctx, tt.ID)
		if err != nil {
			h.logger.Error("remaining inventory", zap.Error(err), zap.String("ticket_type_id", tt.ID.String()))
			response.Internal(c)
			return
		}
		d := models.DisplayTicketType{TicketType: tt, Remaining: remaining}
		periods, err := h.repo.ListPublishedPricing(ctx, h.repo.Pool(), tt.ID)
		if err != nil {
			h.logger.Error("load ticket pricing", zap.Error(err))
			response.Internal(c)
			return
		}
		current, err := SelectCurrentPricing(periods, now)
		switch {
		case err == nil:
			d.CurrentPricing = current
		case apperr.KindOf(err) == apperr.KindIntegrity:
			// Overlapping active periods mean write-time validation was
			// bypassed; this is stored-data corruption, not a user error.
			h.logger.Error("ticket pricing integrity violation",
				zap.String("ticket_type_id", tt.ID.String()), zap.Error(err))
			response.Internal(c)
			return
		}
		display = append(display, d)
	}
	response.OK(c, display)
}

// AddPricing handles POST /ticket_types/:id/ticket_pricing.
func (h *Handler) AddPricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket type id")
		return
	}
	tt, err := h.repo.GetTicketType(c.Request.Context(), id)
	if err != nil {
		response.Denied(c)
		return
	}
	if !h.requireTicketAdmin(c, tt.EventID) {
		return
	}

	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.PriceInCents < 0 {
		response.BadRequest(c, "price_in_cents must be >= 0")
		return
	}

	ctx := c.Request.Context()
	tx, err := h.repo.Pool().Begin(ctx)
	if err != nil {
		h.logger.Error("begin pricing insert", zap.Error(err))
		response.Internal(c)
		return
	}
	defer tx.Rollback(ctx)

	if err := h.repo.LockTicketType(ctx, tx, id); err != nil {
		response.Denied(c)
		return
	}
	existing, err := h.repo.ListPublishedPricing(ctx, tx, id)
	if err != nil {
		h.logger.Error("load ticket pricing", zap.Error(err))
		response.Internal(c)
		return
	}
	p := models.TicketPricing{
		TicketTypeID: id,
		Name:         req.Name,
		PriceInCents: req.PriceInCents,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := ValidateCandidate(existing, p); err != nil {
		response.AppError(c, err)
		return
	}
	if err := h.repo.InsertPricing(ctx, tx, &p); err != nil {
		h.logger.Error("insert ticket pricing", zap.Error(err))
		response.Internal(c)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit pricing insert", zap.Error(err))
		response.Internal(c)
		return
	}
	response.Created(c, p)
}

// UpdatePricing handles PATCH /ticket_pricing/:id. Date changes are
// re-validated against every other Published period of the ticket type.
func (h *Handler) UpdatePricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket pricing id")
		return
	}
	ctx := c.Request.Context()
	p, err := h.repo.GetPricing(ctx, h.repo.Pool(), id)
	if err != nil {
		response.Denied(c)
		return
	}
	tt, err := h.repo.GetTicketType(ctx, p.TicketTypeID)
	if err != nil {
		response.Denied(c)
		return
	}
	if !h.requireTicketAdmin(c, tt.EventID) {
		return
	}

	var attrs TicketPricingEditableAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if attrs.PriceInCents != nil && *attrs.PriceInCents < 0 {
		response.BadRequest(c, "price_in_cents must be >= 0")
		return
	}

	tx, err := h.repo.Pool().Begin(ctx)
	if err != nil {
		h.logger.Error("begin pricing update", zap.Error(err))
		response.Internal(c)
		return
	}
	defer tx.Rollback(ctx)

	if err := h.repo.LockTicketType(ctx, tx, p.TicketTypeID); err != nil {
		response.Denied(c)
		return
	}
	updated, err := h.repo.UpdatePricing(ctx, tx, id, attrs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.AppError(c, apperr.Validation("ticket_pricing", "pricing period not found or deleted"))
			return
		}
		h.logger.Error("update ticket pricing", zap.Error(err))
		response.Internal(c)
		return
	}
	existing, err := h.repo.ListPublishedPricing(ctx, tx, p.TicketTypeID)
	if err != nil {
		h.logger.Error("load ticket pricing", zap.Error(err))
		response.Internal(c)
		return
	}
	if err := ValidateCandidate(existing, *updated); err != nil {
		response.AppError(c, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit pricing update", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, updated)
}

// DeletePricing handles DELETE /ticket_pricing/:id. Periods referenced by
// order items flip to Deleted; unreferenced periods are removed outright.
func (h *Handler) DeletePricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket pricing id")
		return
	}
	ctx := c.Request.Context()
	p, err := h.repo.GetPricing(ctx, h.repo.Pool(), id)
	if err != nil {
		response.Denied(c)
		return
	}
	tt, err := h.repo.GetTicketType(ctx, p.TicketTypeID)
	if err != nil {
		response.Denied(c)
		return
	}
	if !h.requireTicketAdmin(c, tt.EventID) {
		return
	}

	tx, err := h.repo.Pool().Begin(ctx)
	if err != nil {
		h.logger.Error("begin pricing delete", zap.Error(err))
		response.Internal(c)
		return
	}
	defer tx.Rollback(ctx)

	refs, err := h.repo.CountOrderItemsForPricing(ctx, tx, id)
	if err != nil {
		h.logger.Error("count order items", zap.Error(err))
		response.Internal(c)
		return
	}
	if refs == 0 {
		err = h.repo.DeletePricing(ctx, tx, id)
	} else {
		err = h.repo.MarkPricingDeleted(ctx, tx, id)
	}
	if err != nil {
		h.logger.Error("delete ticket pricing", zap.Error(err))
		response.Internal(c)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit pricing delete", zap.Error(err))
		response.Internal(c)
		return
	}
	response.NoContent(c)
}

// requireTicketAdmin resolves the event's organization and checks
// ticket:admin. Every failure, lookup errors included, produces the
// uniform denial.
func (h *Handler) requireTicketAdmin(c *gin.Context, eventID uuid.UUID) bool {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return false
	}
	orgID, err := h.repo.EventOrganization(c.Request.Context(), eventID)
	if err != nil {
		response.Denied(c)
		return false
	}
	allowed, err := h.gate.HasScope(c.Request.Context(), userID, access.ScopeTicketAdmin, &orgID)
	if err != nil {
		h.logger.Error("authorization check", zap.Error(err))
		response.Denied(c)
		return false
	}
	if !allowed {
		response.Denied(c)
		return false
	}
	return true
}
