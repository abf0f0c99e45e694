package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ticketdesk/pkg/domain"
)

type recordingExecutor struct {
	mu    sync.Mutex
	tasks []Task
	done  chan struct{}
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{done: make(chan struct{}, 16)}
}

func (r *recordingExecutor) exec(_ context.Context, task Task) error {
	r.mu.Lock()
	r.tasks = append(r.tasks, task)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingExecutor) executed() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Task(nil), r.tasks...)
}

func (r *recordingExecutor) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewMemory_RequiresDependencies(t *testing.T) {
	_, err := NewMemory(nil, discardLogger())
	require.Error(t, err)

	_, err = NewMemory(func(context.Context, Task) error { return nil }, nil)
	require.Error(t, err)
}

func TestMemory_FiresDueTask(t *testing.T) {
	exec := newRecordingExecutor()
	m, err := NewMemory(exec.exec, discardLogger())
	require.NoError(t, err)
	defer m.Close()

	taskID, err := m.Schedule(context.Background(), Task{
		Kind:      KindDeleteChannel,
		ChannelID: id.ChannelID("123"),
		DueAt:     time.Now().Add(10 * time.Millisecond),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	exec.wait(t)
	executed := exec.executed()
	require.Len(t, executed, 1)
	assert.Equal(t, taskID, executed[0].ID)
	assert.Equal(t, KindDeleteChannel, executed[0].Kind)
	assert.Equal(t, id.ChannelID("123"), executed[0].ChannelID)
}

func TestMemory_PastDueFiresImmediately(t *testing.T) {
	exec := newRecordingExecutor()
	m, err := NewMemory(exec.exec, discardLogger())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Schedule(context.Background(), Task{
		Kind:  KindDeleteChannel,
		DueAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	exec.wait(t)
	assert.Len(t, exec.executed(), 1)
}

func TestMemory_CancelPreventsFiring(t *testing.T) {
	exec := newRecordingExecutor()
	m, err := NewMemory(exec.exec, discardLogger())
	require.NoError(t, err)
	defer m.Close()

	taskID, err := m.Schedule(context.Background(), Task{
		Kind:  KindDeleteChannel,
		DueAt: time.Now().Add(50 * time.Millisecond),
	})
	require.NoError(t, err)
	require.NoError(t, m.Cancel(context.Background(), taskID))

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, exec.executed())

	// Cancelling again is a no-op.
	assert.NoError(t, m.Cancel(context.Background(), taskID))
}

func TestMemory_CloseRejectsNewTasks(t *testing.T) {
	exec := newRecordingExecutor()
	m, err := NewMemory(exec.exec, discardLogger())
	require.NoError(t, err)

	m.Close()
	_, err = m.Schedule(context.Background(), Task{Kind: KindDeleteChannel, DueAt: time.Now()})
	require.Error(t, err)
}

func TestTaskCodec(t *testing.T) {
	task := Task{
		ID:        "t1",
		Kind:      KindDeleteChannel,
		ChannelID: id.ChannelID("42"),
		DueAt:     time.Now().Add(5 * time.Second).UTC().Truncate(time.Millisecond),
	}

	raw, err := task.encode()
	require.NoError(t, err)

	got, err := decodeTask(raw)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	_, err = decodeTask([]byte("{broken"))
	require.Error(t, err)
}
