package adapters

import (
	"context"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/internal/scheduler"
)

// SalesRepEnqueuer queues sales rep updates on the asynq client.
type SalesRepEnqueuer struct {
	client *scheduler.Client
}

func NewSalesRepEnqueuer(client *scheduler.Client) *SalesRepEnqueuer {
	return &SalesRepEnqueuer{client: client}
}

func (a *SalesRepEnqueuer) EnqueueSalesRepUpdate(ctx context.Context, assignment salesrep.Assignment, requestID string) (string, error) {
	info, err := a.client.EnqueueSalesRepUpdate(ctx, scheduler.SalesRepUpdatePayload{
		CustomerEmail: assignment.CustomerEmail,
		SalesRep:      assignment.SalesRep,
		RequestID:     requestID,
	})
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

var _ salesrep.Enqueuer = (*SalesRepEnqueuer)(nil)
