package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory runs tasks on in-process timers. Pending tasks do not survive a
// restart; deployments that need durability configure the Redis backend.
type Memory struct {
	exec   Executor
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewMemory constructs the in-memory scheduler.
func NewMemory(exec Executor, logger *slog.Logger) (*Memory, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Memory{
		exec:   exec,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}, nil
}

func (m *Memory) Schedule(_ context.Context, task Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", fmt.Errorf("scheduler is closed")
	}

	delay := time.Until(task.DueAt)
	if delay < 0 {
		delay = 0
	}
	m.timers[task.ID] = time.AfterFunc(delay, func() { m.fire(task) })
	return task.ID, nil
}

func (m *Memory) Cancel(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.timers[taskID]; ok {
		timer.Stop()
		delete(m.timers, taskID)
	}
	return nil
}

// Close stops every pending timer.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
}

func (m *Memory) fire(task Task) {
	m.mu.Lock()
	delete(m.timers, task.ID)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.exec(ctx, task); err != nil {
		m.logger.Error("deferred task failed",
			"task_id", task.ID,
			"kind", task.Kind,
			"channel_id", task.ChannelID,
			"error", err,
		)
	}
}

var _ Scheduler = (*Memory)(nil)
