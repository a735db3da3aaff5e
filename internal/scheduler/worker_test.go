package scheduler

import (
	"context"
	"errors"
	"testing"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/platform/apperr"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpdater struct {
	email string
	rep   string
	err   error
}

func (s *stubUpdater) UpdateSalesRep(_ context.Context, customerEmail, repIdentifier string) (*salesrep.UpdateResult, error) {
	s.email = customerEmail
	s.rep = repIdentifier
	return &salesrep.UpdateResult{}, s.err
}

func TestSalesRepUpdateTaskPayload(t *testing.T) {
	task, err := NewSalesRepUpdateTask(SalesRepUpdatePayload{CustomerEmail: " a@b.com ", SalesRep: "Jane Doe", RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, TaskSalesRepUpdate, task.Type())

	payload, err := ParseSalesRepUpdatePayload(task)
	require.NoError(t, err)
	assert.Equal(t, SalesRepUpdatePayload{CustomerEmail: "a@b.com", SalesRep: "Jane Doe", RequestID: "req-1"}, payload)
}

func TestHandleSalesRepUpdate_Success(t *testing.T) {
	task, err := NewSalesRepUpdateTask(SalesRepUpdatePayload{CustomerEmail: "a@b.com", SalesRep: "jane@example.com"})
	require.NoError(t, err)

	updater := &stubUpdater{}
	require.NoError(t, HandleSalesRepUpdate(context.Background(), updater, task))
	assert.Equal(t, "a@b.com", updater.email)
	assert.Equal(t, "jane@example.com", updater.rep)
}

func TestHandleSalesRepUpdate_RetryClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{"validation", apperr.Validation("No customer email provided"), true},
		{"not found", apperr.NotFound("customer not found"), true},
		{"resolution", apperr.Resolution("no default rep"), true},
		{"configuration", apperr.Configuration("missing token"), true},
		{"upstream", apperr.Upstream("throttled", nil), false},
		{"transport", apperr.Transport("post", errors.New("connection reset")), false},
	}

	task, err := NewSalesRepUpdateTask(SalesRepUpdatePayload{CustomerEmail: "a@b.com", SalesRep: "x"})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleSalesRepUpdate(context.Background(), &stubUpdater{err: tt.err}, task)
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestHandleSalesRepUpdate_BadPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TaskSalesRepUpdate, []byte("{not json"))
	updater := &stubUpdater{}

	err := HandleSalesRepUpdate(context.Background(), updater, task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, updater.email)
}
