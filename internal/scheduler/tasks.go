package scheduler

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const TaskSalesRepUpdate = "salesrep.update"

type SalesRepUpdatePayload struct {
	CustomerEmail string `json:"customerEmail"`
	SalesRep      string `json:"salesRep"`
	RequestID     string `json:"requestId,omitempty"`
}

func NewSalesRepUpdateTask(payload SalesRepUpdatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSalesRepUpdate, data), nil
}

func ParseSalesRepUpdatePayload(task *asynq.Task) (SalesRepUpdatePayload, error) {
	var payload SalesRepUpdatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SalesRepUpdatePayload{}, err
	}
	payload.CustomerEmail = strings.TrimSpace(payload.CustomerEmail)
	return payload, nil
}
