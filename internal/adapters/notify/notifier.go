// Package notify delivers registration notifications through an asynq queue.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"eventreg/internal/domain"
)

const (
	// TypeRegistrationNotice is the asynq task type of a registration notification.
	TypeRegistrationNotice = "notification:registration"
	// Queue is the asynq queue notification tasks are enqueued on.
	Queue = "notifications"

	maxRetry    = 5
	taskTimeout = 30 * time.Second
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type queueNotifier struct {
	client enqueuer
	logger *slog.Logger
}

// NewQueueNotifier returns a Notifier that enqueues each notification as an asynq task.
func NewQueueNotifier(client *asynq.Client, logger *slog.Logger) domain.Notifier {
	return &queueNotifier{client: client, logger: logger}
}

func (q *queueNotifier) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	task := asynq.NewTask(TypeRegistrationNotice, payload,
		asynq.Queue(Queue), asynq.MaxRetry(maxRetry), asynq.Timeout(taskTimeout))
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s notification: %w", n.Type, err)
	}
	q.logger.DebugContext(ctx, "notification enqueued", "task_id", info.ID, "type", n.Type, "registration_id", n.RegistrationID)
	return nil
}

type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier returns a Notifier that only logs. Used when no queue is configured.
func NewNoopNotifier(logger *slog.Logger) domain.Notifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) Notify(ctx context.Context, note domain.Notification) error {
	n.logger.DebugContext(ctx, "notification dropped (no queue configured)", "type", note.Type, "registration_id", note.RegistrationID)
	return nil
}
