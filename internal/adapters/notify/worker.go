package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"eventreg/internal/domain"
)

// Handler processes notification tasks by sending the matching email.
type Handler struct {
	email  domain.EmailService
	logger *slog.Logger
}

func NewHandler(email domain.EmailService, logger *slog.Logger) *Handler {
	return &Handler{email: email, logger: logger}
}

// HandleRegistrationNotice decodes the task payload and sends the email. A
// malformed payload or a notification without a recipient is not retried.
func (h *Handler) HandleRegistrationNotice(ctx context.Context, t *asynq.Task) error {
	var n domain.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return fmt.Errorf("decode notification: %v: %w", err, asynq.SkipRetry)
	}
	if n.Email == "" {
		h.logger.WarnContext(ctx, "notification without recipient skipped", "type", n.Type, "registration_id", n.RegistrationID)
		return nil
	}
	if err := h.email.SendRegistrationNotice(ctx, n); err != nil {
		return fmt.Errorf("send %s notice: %w", n.Type, err)
	}
	return nil
}

// NewServeMux routes notification task types to h.
func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRegistrationNotice, h.HandleRegistrationNotice)
	return mux
}

// NewServer returns an asynq server consuming the notification queue.
func NewServer(redisOpt asynq.RedisClientOpt, concurrency int, logger *slog.Logger) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.ErrorContext(ctx, "notification task failed", "type", task.Type(), "error", err)
		}),
	})
}
