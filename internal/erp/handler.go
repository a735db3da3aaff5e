package erp

import (
	"context"
	"net/http"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/validator"

	"github.com/gin-gonic/gin"
)

// Updater applies an assignment in process.
type Updater interface {
	UpdateSalesRep(ctx context.Context, customerEmail, repIdentifier string) (*salesrep.UpdateResult, error)
}

// ChangeRequest is a customer save posted by the ERP hook.
type ChangeRequest struct {
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email,max=254"`
	OldValue      string `json:"oldValue" validate:"max=200"`
	NewValue      string `json:"newValue" validate:"max=200"`
}

// Handler handles ERP change events.
type Handler struct {
	source  NotificationSource
	updater Updater
	policy  salesrep.StatusPolicy
	val     *validator.Validator
}

// NewHandler creates a new ERP handler.
func NewHandler(source NotificationSource, updater Updater, policy salesrep.StatusPolicy, val *validator.Validator) *Handler {
	return &Handler{source: source, updater: updater, policy: policy, val: val}
}

// HandleCustomerChange derives an assignment from the event and applies it.
// POST /api/v1/erp/customer-events
func (h *Handler) HandleCustomerChange(c *gin.Context) {
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, nil, apperr.Validation("invalid request body").WithDetails(err.Error()))
		return
	}
	if err := h.val.Struct(req); err != nil {
		h.respond(c, nil, apperr.Validation("validation error").WithDetails(validator.Fields(err)))
		return
	}

	assignment, err := h.source.OnChange(c.Request.Context(), ChangeEvent{
		CustomerEmail: req.CustomerEmail,
		OldValue:      req.OldValue,
		NewValue:      req.NewValue,
	})
	if err != nil {
		h.respond(c, nil, err)
		return
	}
	if assignment == nil {
		c.JSON(http.StatusOK, salesrep.Envelope{
			StatusCode: http.StatusOK,
			Body:       gin.H{"skipped": true},
		})
		return
	}

	result, err := h.updater.UpdateSalesRep(c.Request.Context(), assignment.CustomerEmail, assignment.SalesRep)
	h.respond(c, result, err)
}

func (h *Handler) respond(c *gin.Context, result *salesrep.UpdateResult, err error) {
	env := h.policy.NewEnvelope(result, err)
	c.JSON(env.StatusCode, env)
}
