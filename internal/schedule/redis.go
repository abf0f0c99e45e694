package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Due-time index: score is unix milliseconds, member is the task id.
	dueKey = "schedule:due"
	// Task payloads live under their own keys so Cancel is a cheap delete.
	taskKeyPrefix = "schedule:task:"
)

// Redis persists pending tasks so a restart during a grace window does
// not drop the deletion. A single Runner polls for due work; running
// multiple instances is safe because ZREM arbitrates claims.
type Redis struct {
	client       *redis.Client
	exec         Executor
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int64
}

// RedisOption configures the Redis scheduler.
type RedisOption func(*Redis)

// WithPollInterval overrides how often the runner looks for due tasks.
func WithPollInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// NewRedis constructs the Redis-backed scheduler.
func NewRedis(client *redis.Client, exec Executor, logger *slog.Logger, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	r := &Redis{
		client:       client,
		exec:         exec,
		logger:       logger,
		pollInterval: time.Second,
		batchSize:    16,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) Schedule(ctx context.Context, task Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	raw, err := task.encode()
	if err != nil {
		return "", err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, raw, 0)
	pipe.ZAdd(ctx, dueKey, redis.Z{
		Score:  float64(task.DueAt.UnixMilli()),
		Member: task.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("schedule task %s: %w", task.ID, err)
	}
	return task.ID, nil
}

func (r *Redis) Cancel(ctx context.Context, taskID string) error {
	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, dueKey, taskID)
	pipe.Del(ctx, taskKeyPrefix+taskID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cancel task %s: %w", taskID, err)
	}
	return nil
}

// Run polls for due tasks until the context ends.
func (r *Redis) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.runDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("scheduler poll failed", "error", err)
			}
		}
	}
}

func (r *Redis) runDue(ctx context.Context) error {
	now := time.Now().UnixMilli()
	ids, err := r.client.ZRangeByScore(ctx, dueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: r.batchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("list due tasks: %w", err)
	}

	for _, taskID := range ids {
		// ZREM returning 1 means this instance claimed the task.
		claimed, err := r.client.ZRem(ctx, dueKey, taskID).Result()
		if err != nil {
			return fmt.Errorf("claim task %s: %w", taskID, err)
		}
		if claimed == 0 {
			continue
		}
		r.runTask(ctx, taskID)
	}
	return nil
}

func (r *Redis) runTask(ctx context.Context, taskID string) {
	raw, err := r.client.GetDel(ctx, taskKeyPrefix+taskID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return // cancelled between claim and load
		}
		r.logger.Error("load due task failed", "task_id", taskID, "error", err)
		return
	}

	task, err := decodeTask(raw)
	if err != nil {
		r.logger.Error("discarding malformed task", "task_id", taskID, "error", err)
		return
	}

	if err := r.exec(ctx, task); err != nil {
		r.logger.Error("deferred task failed",
			"task_id", task.ID,
			"kind", task.Kind,
			"channel_id", task.ChannelID,
			"error", err,
		)
	}
}

var _ Scheduler = (*Redis)(nil)
