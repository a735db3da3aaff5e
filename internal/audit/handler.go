package audit

import (
	"strconv"

	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler serves the audit history.
type Handler struct {
	store Store
}

// NewHandler creates a new audit handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List returns the newest entries.
// GET /api/v1/admin/sales-rep-audit?customerEmail=&outcome=&limit=
func (h *Handler) List(c *gin.Context) {
	filter := Filter{
		CustomerEmail: c.Query("customerEmail"),
		Outcome:       c.Query("outcome"),
		Limit:         defaultLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			httpkit.HandleError(c, apperr.Validation("limit must be between 1 and 500"))
			return
		}
		filter.Limit = limit
	}
	switch filter.Outcome {
	case "", OutcomeAssigned, OutcomeFailed:
	default:
		httpkit.HandleError(c, apperr.Validation("unknown outcome"))
		return
	}

	entries, err := h.store.Recent(c.Request.Context(), filter)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "list audit entries", err))
		return
	}
	httpkit.OK(c, gin.H{"items": entries})
}
