package salesrep

import (
	"context"
	"net/http"

	"salesrep_sync/internal/storefront"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/httpkit"
	"salesrep_sync/platform/phone"
	"salesrep_sync/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// Enqueuer hands an assignment to the async worker and returns the task id.
type Enqueuer interface {
	EnqueueSalesRepUpdate(ctx context.Context, assignment Assignment, requestID string) (string, error)
}

// UpdateRequest is the inbound change notification.
type UpdateRequest struct {
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email,max=254"`
	SalesRep      string `json:"salesRep" validate:"max=200"`
}

// ResolveRequest is the body of a dry-run resolution.
type ResolveRequest struct {
	Identifier string `json:"identifier" validate:"max=200"`
}

// ResolveResponse reports which rep an identifier resolves to.
type ResolveResponse struct {
	Identifier string              `json:"identifier"`
	Strategy   MatchStrategy       `json:"strategy"`
	Rep        storefront.SalesRep `json:"rep"`
	Tags       []string            `json:"tags"`
}

// RepResponse is a rep as listed on the admin API.
type RepResponse struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Extension string `json:"extension,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Handler handles sales rep HTTP requests.
type Handler struct {
	service  *Service
	policy   StatusPolicy
	val      *validator.Validator
	enqueuer Enqueuer
}

// NewHandler creates a new sales rep handler.
func NewHandler(service *Service, policy StatusPolicy, val *validator.Validator) *Handler {
	return &Handler{service: service, policy: policy, val: val}
}

// HandleUpdate applies a rep assignment synchronously.
// POST /api/v1/sales-rep
func (h *Handler) HandleUpdate(c *gin.Context) {
	req, err := h.bindUpdate(c)
	if err != nil {
		h.respond(c, nil, err)
		return
	}

	result, err := h.service.UpdateSalesRep(c.Request.Context(), req.CustomerEmail, req.SalesRep)
	h.respond(c, result, err)
}

// HandleEnqueue queues a rep assignment for the worker.
// POST /api/v1/sales-rep/async
func (h *Handler) HandleEnqueue(c *gin.Context) {
	req, err := h.bindUpdate(c)
	if err == nil && req.CustomerEmail == "" {
		err = apperr.Validation("No customer email provided")
	}
	if err != nil {
		h.respond(c, nil, err)
		return
	}

	taskID, err := h.enqueuer.EnqueueSalesRepUpdate(c.Request.Context(), Assignment{
		CustomerEmail: req.CustomerEmail,
		SalesRep:      req.SalesRep,
	}, httpkit.GetRequestID(c))
	if err != nil {
		h.respond(c, nil, apperr.Wrap(apperr.KindInternal, "failed to enqueue update", err))
		return
	}

	c.JSON(http.StatusAccepted, Envelope{
		StatusCode: http.StatusAccepted,
		Body:       gin.H{"taskId": taskID},
	})
}

// HandleListReps lists the rep metaobjects currently on the storefront.
// GET /api/v1/admin/sales-reps
func (h *Handler) HandleListReps(c *gin.Context) {
	reps, err := h.service.SalesReps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]RepResponse, 0, len(reps))
	for _, rep := range reps {
		out = append(out, toRepResponse(rep))
	}
	httpkit.OK(c, gin.H{"items": out})
}

// HandleResolve previews which rep an identifier resolves to.
// POST /api/v1/admin/sales-reps/resolve
func (h *Handler) HandleResolve(c *gin.Context) {
	var req ResolveRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	rep, err := h.service.Preview(c.Request.Context(), req.Identifier)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ResolveResponse{
		Identifier: req.Identifier,
		Strategy:   h.service.Strategy(),
		Rep:        rep,
		Tags:       ComputeDelta(nil, rep).ToAdd,
	})
}

func (h *Handler) bindUpdate(c *gin.Context) (UpdateRequest, error) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, apperr.Validation(errInvalidRequest).WithDetails(err.Error())
	}
	if err := h.val.Struct(req); err != nil {
		return req, apperr.Validation(errValidation).WithDetails(validator.Fields(err))
	}
	return req, nil
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}

func (h *Handler) respond(c *gin.Context, result *UpdateResult, err error) {
	env := h.policy.NewEnvelope(result, err)
	c.JSON(env.StatusCode, env)
}

func toRepResponse(rep storefront.SalesRep) RepResponse {
	return RepResponse{
		ID:        rep.ID,
		Handle:    rep.Handle,
		Name:      rep.Name,
		Email:     rep.Email,
		Phone:     phone.NormalizeE164(rep.Phone),
		Extension: rep.Extension,
		ImageURL:  rep.ImageURL,
	}
}
