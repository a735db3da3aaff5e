package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("customer not found").WithOp("update sales rep")
	wrapped := fmt.Errorf("task failed: %w", base)

	assert.Equal(t, KindNotFound, GetKind(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "update sales rep: customer not found", base.Error())

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Same(t, base, got)

	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestTransportUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport("post graphql", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "post graphql: connection refused", err.Error())
	assert.Equal(t, "transport", err.Kind.String())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound("x").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, Upstream("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Resolution("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Configuration("x").HTTPStatus())
}
