// Package schedule provides the deferred-task abstraction behind ticket
// close grace delays. Tasks are explicit and cancellable; the Redis
// backend keeps pending tasks across process restarts, the in-memory
// backend is best-effort and loses them.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	id "ticketdesk/pkg/domain"
)

// TaskKind names what a due task does.
type TaskKind string

// KindDeleteChannel removes a ticket channel after the close grace delay.
const KindDeleteChannel TaskKind = "delete-channel"

// Task is one pending deferred action.
type Task struct {
	ID        string       `json:"id"`
	Kind      TaskKind     `json:"kind"`
	ChannelID id.ChannelID `json:"channel_id"`
	DueAt     time.Time    `json:"due_at"`
}

func (t Task) encode() ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode task %s: %w", t.ID, err)
	}
	return raw, nil
}

func decodeTask(raw []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

// Executor performs a due task.
type Executor func(ctx context.Context, task Task) error

// Scheduler stores pending tasks and runs them when due.
type Scheduler interface {
	// Schedule registers a task and returns its id. A task with an empty
	// ID is assigned one.
	Schedule(ctx context.Context, task Task) (string, error)

	// Cancel drops a pending task. Cancelling an unknown or already-run
	// task is not an error.
	Cancel(ctx context.Context, taskID string) error
}
