/**
 * @description
 * The reconciliation hook. The two-phase writes in the finance service have
 * no compensation: when the second write fails, the pay and income records
 * are left inconsistent until an out-of-band process repairs them. This
 * package is that process's entry point. The finance service records a
 * ReconciliationTask at exactly the two second-phase failure points, and a
 * Recorder implementation decides what "record" means.
 *
 * A Recorder must never fail the caller's request: recording is best-effort
 * and the original error always propagates.
 *
 * @dependencies
 * - internal/domain: The task payload.
 * - pkg/rabbitmq: Queue-backed recorder transport.
 */
package reconcile

import (
	"context"
	"log/slog"

	"github.com/financeplanner/aggregator-service/internal/domain"
	"github.com/financeplanner/aggregator-service/pkg/rabbitmq"
)

// Recorder accepts a pending second-phase write for later replay.
type Recorder interface {
	Record(ctx context.Context, task domain.ReconciliationTask) error
}

// LogRecorder is the default Recorder when no queue is configured. It only
// logs the task as not yet reconciled, preserving the documented
// best-effort behavior without any infrastructure.
type LogRecorder struct {
	Logger *slog.Logger
}

// Record logs the task.
func (r *LogRecorder) Record(_ context.Context, task domain.ReconciliationTask) error {
	r.Logger.Error("second-phase write not yet reconciled",
		"task_id", task.TaskID,
		"action", string(task.Action),
		"user_id", task.UserID,
		"reason", task.Reason,
	)
	return nil
}

// QueueRecorder publishes tasks to the reconciliation queue for the
// reconciler worker to drain.
type QueueRecorder struct {
	Producer   *rabbitmq.Producer
	Exchange   string
	RoutingKey string
	Logger     *slog.Logger
}

// Record publishes the task. Publish failures are returned so the caller
// can log them, but callers must not let them mask the original error.
func (r *QueueRecorder) Record(ctx context.Context, task domain.ReconciliationTask) error {
	if err := r.Producer.Publish(ctx, r.Exchange, r.RoutingKey, task); err != nil {
		return err
	}
	r.Logger.Warn("second-phase write queued for reconciliation",
		"task_id", task.TaskID,
		"action", string(task.Action),
		"user_id", task.UserID,
	)
	return nil
}
