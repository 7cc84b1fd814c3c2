// Package syncqueue retries identity provider writes that failed after the
// local store had already committed.
package syncqueue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAccountStateSync = "identity.account_state.sync"

type AccountStatePayload struct {
	Email string `json:"email"`
	// Enabled is the state requested when the task was queued. The handler
	// pushes the current local state, which may have changed since.
	Enabled bool `json:"enabled"`
}

func NewAccountStateTask(payload AccountStatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAccountStateSync, data), nil
}

func ParseAccountStatePayload(task *asynq.Task) (AccountStatePayload, error) {
	var payload AccountStatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AccountStatePayload{}, err
	}
	return payload, nil
}
