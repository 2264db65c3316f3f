package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stagepass/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ListRecent handles GET /email_logs. Routed behind a platform-admin
// scope check; returns the latest delivery attempts.
func (h *Handler) ListRecent(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			response.BadRequest(c, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	logs, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list email logs", zap.Error(err))
		response.Internal(c)
		return
	}
	response.OK(c, logs)
}
