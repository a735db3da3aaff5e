package salesrep

import (
	"fmt"
	"net/http"
	"strings"

	"salesrep_sync/platform/apperr"
)

// StatusPolicy maps an update outcome to the status code reported to the caller.
type StatusPolicy string

const (
	// PolicyDefault reports validation failures as 400 and every other failure,
	// not-found included, as 500.
	PolicyDefault StatusPolicy = "default"
	// PolicyUniform reports every failure as 500.
	PolicyUniform StatusPolicy = "uniform"
	// PolicyRESTlet reports validation failures as 200 with an error body and
	// every other failure as 500.
	PolicyRESTlet StatusPolicy = "restlet"
)

// ParseStatusPolicy validates a configured policy name. Empty means PolicyDefault.
func ParseStatusPolicy(name string) (StatusPolicy, error) {
	switch StatusPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyDefault:
		return PolicyDefault, nil
	case PolicyUniform:
		return PolicyUniform, nil
	case PolicyRESTlet:
		return PolicyRESTlet, nil
	default:
		return "", apperr.Configuration(fmt.Sprintf("unknown status policy %q", name))
	}
}

// StatusFor returns the status code for err; nil means success.
func (p StatusPolicy) StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		return http.StatusInternalServerError
	}
	switch p {
	case PolicyUniform:
		return http.StatusInternalServerError
	case PolicyRESTlet:
		return http.StatusOK
	default:
		return http.StatusBadRequest
	}
}

// Envelope is the caller-facing result of one update.
type Envelope struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// ErrorBody is the envelope body of a failed update.
type ErrorBody struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	FailedAt State  `json:"failedAt,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// NewEnvelope builds the envelope for an update outcome under policy p.
// Raw transport errors never reach the caller; only their message does.
func (p StatusPolicy) NewEnvelope(result *UpdateResult, err error) Envelope {
	status := p.StatusFor(err)
	if err == nil {
		var payload any
		if result != nil {
			payload = result.Payload
		}
		return Envelope{StatusCode: status, Body: payload}
	}

	body := ErrorBody{
		Error: err.Error(),
		Kind:  apperr.GetKind(err).String(),
	}
	if appErr, ok := apperr.As(err); ok {
		body.Error = appErr.Message
		body.Details = appErr.Details
	}
	if result != nil {
		body.FailedAt = result.FailedAt
	}
	return Envelope{StatusCode: status, Body: body}
}
