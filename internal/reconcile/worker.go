/**
 * @description
 * The out-of-band reconciliation worker. On a cron schedule it drains the
 * pending-task queue and replays each second-phase write against the
 * finance service: income saves/updates for ReconcileSaveIncome tasks and
 * income deletes for ReconcileDeleteIncome tasks. A task that still fails
 * is requeued for the next drain.
 *
 * The worker authenticates with its own configured credential; inbound
 * request credentials are never stored in tasks.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: Drain schedule.
 * - github.com/goccy/go-json: Task decoding.
 * - internal/config, internal/domain, pkg/downstream, pkg/rabbitmq.
 */
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/robfig/cron/v3"

	"github.com/financeplanner/aggregator-service/internal/config"
	"github.com/financeplanner/aggregator-service/internal/domain"
	"github.com/financeplanner/aggregator-service/pkg/downstream"
)

// Drainer pulls pending task payloads until the queue is empty.
type Drainer interface {
	Drain(exchange, queueName, routingKey string, handler func(body []byte) bool) (int, error)
}

// Worker drains and replays reconciliation tasks.
type Worker struct {
	source  Drainer
	finance *downstream.Client
	cfg     config.Config
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewWorker creates a reconciliation worker.
func NewWorker(source Drainer, finance *downstream.Client, cfg config.Config, logger *slog.Logger) *Worker {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Worker{
		source:  source,
		finance: finance,
		cfg:     cfg,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger))),
		logger:  logger,
	}
}

// Start registers the drain job and starts the schedule.
func (w *Worker) Start() error {
	if _, err := w.cron.AddFunc(w.cfg.ReconcilerSchedule, w.DrainOnce); err != nil {
		return fmt.Errorf("failed to schedule reconciliation drain: %w", err)
	}
	w.cron.Start()
	w.logger.Info("reconciliation worker started", "schedule", w.cfg.ReconcilerSchedule)
	return nil
}

// Stop stops the schedule and waits for a running drain to finish.
func (w *Worker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// DrainOnce drains the queue once, replaying every pending task.
func (w *Worker) DrainOnce() {
	processed, err := w.source.Drain(
		w.cfg.ReconcileExchange,
		w.cfg.ReconcileQueue,
		w.cfg.ReconcileRoutingKey,
		w.Process,
	)
	if err != nil {
		w.logger.Error("reconciliation drain failed", "processed", processed, "error", err)
		return
	}
	if processed > 0 {
		w.logger.Info("reconciliation drain complete", "processed", processed)
	}
}

// Process replays one task. It returns true when the task is reconciled and
// may be acknowledged, false to requeue it.
func (w *Worker) Process(body []byte) bool {
	var task domain.ReconciliationTask
	if err := json.Unmarshal(body, &task); err != nil {
		// An unreadable task can never succeed; drop it rather than requeue
		// it forever.
		w.logger.Error("dropping unreadable reconciliation task", "error", err)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if w.cfg.ReconcilerCredential != "" {
		ctx = downstream.WithCredential(ctx, w.cfg.ReconcilerCredential)
	}

	var err error
	switch task.Action {
	case domain.ReconcileSaveIncome:
		err = w.replaySaveIncome(ctx, task)
	case domain.ReconcileDeleteIncome:
		err = w.replayDeleteIncome(ctx, task)
	default:
		w.logger.Error("dropping reconciliation task with unknown action",
			"task_id", task.TaskID, "action", string(task.Action))
		return true
	}

	if err != nil {
		w.logger.Warn("reconciliation task still failing, requeueing",
			"task_id", task.TaskID, "action", string(task.Action),
			"attempts", task.Attempts+1, "error", err)
		return false
	}

	w.logger.Info("reconciliation task replayed",
		"task_id", task.TaskID, "action", string(task.Action))
	return true
}

func (w *Worker) replaySaveIncome(ctx context.Context, task domain.ReconciliationTask) error {
	if task.Income == nil {
		return fmt.Errorf("save task %s carries no income payload", task.TaskID)
	}

	path := w.cfg.FinanceSaveIncomePath
	if task.UserID != "" && task.IncomeID != nil {
		path = fmt.Sprintf("%s/%s/%d", w.cfg.FinanceUpdateIncomePath, task.UserID, *task.IncomeID)
	}

	_, err := downstream.Send[domain.IncomeInformationRequest, domain.IncomeInformation](
		ctx, w.finance, path, *task.Income)
	return err
}

func (w *Worker) replayDeleteIncome(ctx context.Context, task domain.ReconciliationTask) error {
	if task.IncomeID == nil {
		return fmt.Errorf("delete task %s carries no income id", task.TaskID)
	}

	path := fmt.Sprintf("%s/%s/%d", w.cfg.FinanceDeleteIncomePath, task.UserID, *task.IncomeID)
	deleted, err := w.finance.Remove(ctx, path)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("income record %d for user %s was not deleted", *task.IncomeID, task.UserID)
	}
	return nil
}
