// Package httpkit provides the HTTP middleware and response helpers shared by
// every module.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"salesrep_sync/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of non-envelope error responses.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Kind      string      `json:"kind,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details, RequestID: GetRequestID(c)})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// HandleError writes err as a response and reports whether there was one.
// Typed errors use the status of their Kind; anything else is a 400.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := apperr.As(err); ok {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:     domainErr.Message,
			Kind:      domainErr.Kind.String(),
			Details:   domainErr.Details,
			RequestID: GetRequestID(c),
		})
		return true
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: GetRequestID(c)})
	return true
}
