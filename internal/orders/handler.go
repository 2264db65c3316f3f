package orders

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/internal/tickets"
	"github.com/stagepass/backend/pkg/queue"
	"github.com/stagepass/backend/pkg/response"
)

// Handler handles order HTTP endpoints.
type Handler struct {
	repo    *Repository
	tickets *tickets.Repository
	ledger  *tickets.Ledger
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewHandler creates an orders handler.
func NewHandler(repo *Repository, ticketsRepo *tickets.Repository, ledger *tickets.Ledger, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, tickets: ticketsRepo, ledger: ledger, queue: q, logger: logger}
}

// ItemRequest asks for a quantity of a ticket type; the pricing period
// active right now determines the unit price.
type ItemRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
}

// CreateRequest is the body for POST /orders.
type CreateRequest struct {
	Items []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReleaseRequest is the body for POST /orders/:id/items/:item_id/release.
type ReleaseRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// Create handles POST /orders. Reserves every requested item; if any
// reservation fails, the ones already made are rolled back so the order
// is all-or-nothing.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return
	}
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	order := &models.Order{UserID: userID}
	if err := h.repo.Create(c.Request.Context(), order); err != nil {
		h.logger.Error("create order", zap.Error(err))
		response.Internal(c)
		return
	}

	var reserved []*models.OrderItem
	for _, req := range body.Items {
		item, err := h.reserve(c, order.ID, req)
		if err != nil {
			for _, r := range reserved {
				if relErr := h.ledger.Release(c.Request.Context(), r.ID, r.Quantity); relErr != nil {
					h.logger.Error("rollback reservation", zap.Error(relErr), zap.String("order_item_id", r.ID.String()))
				}
			}
			response.AppError(c, err)
			return
		}
		reserved = append(reserved, item)
		order.Items = append(order.Items, *item)
	}

	h.enqueueConfirmation(c, order)
	response.Created(c, order)
}

// reserve resolves the ticket type's currently active pricing period and
// reserves against it.
func (h *Handler) reserve(c *gin.Context, orderID uuid.UUID, req ItemRequest) (*models.OrderItem, error) {
	periods, err := h.tickets.ListPublishedPricing(c.Request.Context(), h.tickets.Pool(), req.TicketTypeID)
	if err != nil {
		h.logger.Error("load pricing periods", zap.Error(err))
		return nil, err
	}
	current, err := tickets.SelectCurrentPricing(periods, time.Now())
	if err != nil {
		return nil, err
	}
	return h.ledger.Reserve(c.Request.Context(), orderID, current.ID, req.Quantity)
}

// AddItem handles POST /orders/:id/items.
func (h *Handler) AddItem(c *gin.Context) {
	order, ok := h.owned(c)
	if !ok {
		return
	}
	if order.Status != models.OrderStatusOpen {
		response.BadRequest(c, "order is not open")
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := h.reserve(c, order.ID, req)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Created(c, item)
}

// ReleaseItem handles POST /orders/:id/items/:item_id/release. Returns
// part or all of a reservation to inventory.
func (h *Handler) ReleaseItem(c *gin.Context) {
	order, ok := h.owned(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		response.BadRequest(c, "invalid order item id")
		return
	}
	item, err := h.repo.GetItem(c.Request.Context(), itemID)
	if err != nil || item.OrderID != order.ID {
		response.NotFound(c, "order item not found")
		return
	}
	var req ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.ledger.Release(c.Request.Context(), itemID, req.Quantity); err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, gin.H{"released": req.Quantity})
}

// Get handles GET /orders/:id. Owner only; everyone else sees the uniform
// denial.
func (h *Handler) Get(c *gin.Context) {
	order, ok := h.owned(c)
	if !ok {
		return
	}
	response.OK(c, order)
}

// ListMine handles GET /orders.
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return
	}
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list orders", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, list)
}

// owned loads the order and verifies the caller owns it. A foreign order
// produces the same denial as a missing scope.
func (h *Handler) owned(c *gin.Context) (*models.Order, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Denied(c)
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return nil, false
	}
	order, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "order not found")
		return nil, false
	}
	if order.UserID != userID {
		response.Denied(c)
		return nil, false
	}
	return order, true
}

func (h *Handler) enqueueConfirmation(c *gin.Context, order *models.Order) {
	email, _ := c.Get(middleware.ContextUserEmail)
	recipient, _ := email.(string)
	if recipient == "" {
		return
	}
	var total int64
	var count int
	for _, it := range order.Items {
		total += int64(it.Quantity) * it.UnitPriceInCents
		count += it.Quantity
	}
	err := h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      queue.EmailTypeOrderConfirmation,
		OrderID:        order.ID,
		RecipientEmail: recipient,
		Subject:        "Your ticket order confirmation",
		BodyHTML: fmt.Sprintf("<p>Your order <strong>%s</strong> is confirmed: %d ticket(s), total $%.2f.</p>",
			order.ID, count, float64(total)/100),
		BodyText: fmt.Sprintf("Your order %s is confirmed: %d ticket(s), total $%.2f.",
			order.ID, count, float64(total)/100),
	})
	if err != nil {
		h.logger.Warn("enqueue order confirmation", zap.Error(err), zap.String("order_id", order.ID.String()))
	}
}
