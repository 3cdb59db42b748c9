/**
 * @description
 * Queue payloads for the reconciliation flow. When the second write of a
 * two-phase save or delete fails, the aggregator records one of these tasks
 * instead of rolling back; an out-of-band worker replays them until the two
 * finance records agree again.
 */
package domain

import "time"

// ReconcileAction names the second-phase write to replay.
type ReconcileAction string

const (
	// ReconcileSaveIncome replays a failed income create/update.
	ReconcileSaveIncome ReconcileAction = "income.save"
	// ReconcileDeleteIncome replays a failed income delete.
	ReconcileDeleteIncome ReconcileAction = "income.delete"
)

// ReconciliationTask is one pending second-phase write. Income is set for
// save tasks; IncomeID is set for update and delete tasks.
type ReconciliationTask struct {
	TaskID     string                    `json:"taskId"`
	Action     ReconcileAction           `json:"action"`
	UserID     string                    `json:"userId"`
	IncomeID   *int                      `json:"incomeId,omitempty"`
	Income     *IncomeInformationRequest `json:"income,omitempty"`
	Attempts   int                       `json:"attempts"`
	RecordedAt time.Time                 `json:"recordedAt"`
	Reason     string                    `json:"reason"`
}
