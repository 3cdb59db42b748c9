/**
 * @description
 * The finance aggregation service: the four user-facing operations over pay
 * and income information. Reads and deletes go straight to the finance
 * service; saves chain a pay write, a paycheck computation, and an income
 * write.
 *
 * The save and delete flows are deliberately best-effort and
 * non-transactional. When the second of the two dependent writes fails, no
 * compensation is attempted; the failure is handed to the reconciliation
 * recorder and the error still propagates to the caller. An out-of-band
 * worker owns repairing the records.
 *
 * @dependencies
 * - github.com/google/uuid: Reconciliation task identifiers.
 * - internal/config, internal/domain, internal/reconcile, pkg/downstream.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/financeplanner/aggregator-service/internal/apperr"
	"github.com/financeplanner/aggregator-service/internal/config"
	"github.com/financeplanner/aggregator-service/internal/domain"
	"github.com/financeplanner/aggregator-service/internal/reconcile"
	"github.com/financeplanner/aggregator-service/pkg/downstream"
)

// PayCheckComputer is the orchestrator dependency of the finance service.
type PayCheckComputer interface {
	ComputePayChecks(ctx context.Context, requests []domain.PayCheckRequest) ([]domain.PayCheckResult, error)
}

// FinanceService composes the finance client, the paycheck orchestrator,
// and the reconciliation recorder.
type FinanceService struct {
	finance   *downstream.Client
	paychecks PayCheckComputer
	recorder  reconcile.Recorder
	cfg       config.Config
	logger    *slog.Logger
}

// NewFinanceService creates the finance aggregation service.
func NewFinanceService(finance *downstream.Client, paychecks PayCheckComputer, recorder reconcile.Recorder, cfg config.Config, logger *slog.Logger) *FinanceService {
	return &FinanceService{
		finance:   finance,
		paychecks: paychecks,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
	}
}

// ListPay returns the user's pay records, optionally scoped to one record.
func (s *FinanceService) ListPay(ctx context.Context, userID string, payID *int) ([]domain.PayInformation, error) {
	path := fmt.Sprintf("%s/%s", s.cfg.FinanceGetPayPath, userID)
	if payID != nil {
		path = fmt.Sprintf("%s/%d", path, *payID)
	}
	return downstream.FetchList[domain.PayInformation](ctx, s.finance, path)
}

// ListIncome returns the user's income records, optionally scoped to one
// record.
func (s *FinanceService) ListIncome(ctx context.Context, userID string, incomeID *int) ([]domain.IncomeInformation, error) {
	path := fmt.Sprintf("%s/%s", s.cfg.FinanceGetIncomePath, userID)
	if incomeID != nil {
		path = fmt.Sprintf("%s/%d", path, *incomeID)
	}
	return downstream.FetchList[domain.IncomeInformation](ctx, s.finance, path)
}

// SavePay saves or updates a pay record, computes the paycheck it implies,
// and saves or updates the derived income record. The pay write targets the
// update endpoint only when both userID and payID are present; the income
// write targets its update endpoint only when both userID and incomeID are
// present.
func (s *FinanceService) SavePay(ctx context.Context, request domain.PayInformationRequest, userID string, payID, incomeID *int) (*domain.IncomeInformation, error) {
	payPath := s.cfg.FinanceSavePayPath
	if userID != "" && payID != nil {
		payPath = fmt.Sprintf("%s/%s/%d", s.cfg.FinanceUpdatePayPath, userID, *payID)
	}

	payInformation, err := downstream.Send[domain.PayInformationRequest, domain.PayInformation](
		ctx, s.finance, payPath, request)
	if err != nil {
		return nil, err
	}

	incomeRequest, err := s.deriveIncomeRequest(ctx, *payInformation)
	if err != nil {
		return nil, err
	}

	incomePath := s.cfg.FinanceSaveIncomePath
	if userID != "" && incomeID != nil {
		incomePath = fmt.Sprintf("%s/%s/%d", s.cfg.FinanceUpdateIncomePath, userID, *incomeID)
	}

	incomeInformation, err := downstream.Send[domain.IncomeInformationRequest, domain.IncomeInformation](
		ctx, s.finance, incomePath, *incomeRequest)
	if err != nil {
		// The pay record is saved but its income record is not: record the
		// pending write and let the original error propagate.
		s.recordPending(ctx, domain.ReconciliationTask{
			Action:   domain.ReconcileSaveIncome,
			UserID:   payInformation.UserID,
			IncomeID: incomeID,
			Income:   incomeRequest,
			Reason:   err.Error(),
		})
		return nil, err
	}

	return incomeInformation, nil
}

// DeletePay deletes the pay record and, only if that succeeded, the income
// record. A false from the pay delete stops the flow with the income record
// untouched. The pay delete is never rolled back when the income delete
// fails.
func (s *FinanceService) DeletePay(ctx context.Context, userID string, payID, incomeID int) (bool, error) {
	payPath := fmt.Sprintf("%s/%s/%d", s.cfg.FinanceDeletePayPath, userID, payID)
	deleted, err := s.finance.Remove(ctx, payPath)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	incomePath := fmt.Sprintf("%s/%s/%d", s.cfg.FinanceDeleteIncomePath, userID, incomeID)
	incomeDeleted, err := s.finance.Remove(ctx, incomePath)
	if err != nil || !incomeDeleted {
		reason := "income delete returned false"
		if err != nil {
			reason = err.Error()
		}
		s.recordPending(ctx, domain.ReconciliationTask{
			Action:   domain.ReconcileDeleteIncome,
			UserID:   userID,
			IncomeID: &incomeID,
			Reason:   reason,
		})
	}
	if err != nil {
		return false, err
	}
	return incomeDeleted, nil
}

// deriveIncomeRequest computes the income record implied by a saved pay
// record: it splits the bi-weekly hours into two weekly records at the same
// hourly rate, runs a single-element paycheck batch, and folds the result
// into an income write.
func (s *FinanceService) deriveIncomeRequest(ctx context.Context, payInformation domain.PayInformation) (*domain.IncomeInformationRequest, error) {
	weekly := weeklyHoursAndRate(payInformation.BiWeeklyHoursAndRate)

	payCheckRequests := []domain.PayCheckRequest{{
		EmployeeName:   payInformation.EmployeeName,
		TaxInformation: payInformation.TaxInformation,
		PreTaxDeductionRequest: domain.PreTaxDeductionRequest{
			PreTaxDeduction:    payInformation.PreTaxDeduction,
			WeeklyHoursAndRate: weekly,
		},
		PostTaxDeductionRequest: domain.PostTaxDeductionRequest{
			PostTaxDeduction: payInformation.PostTaxDeduction,
		},
	}}

	results, err := s.paychecks.ComputePayChecks(ctx, payCheckRequests)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.Internal("paycheck computation returned no result")
	}
	result := results[0]

	netPay := result.PreTaxDeductionResult.GrossPay -
		result.PreTaxDeductionResult.TotalPreTaxDeductionAmount -
		result.PostTaxDeductionResult.TotalPostTaxDeductionAmount -
		result.TaxWithheldResult.TaxWithheldInformation.TotalTaxesWithheldAmount

	return &domain.IncomeInformationRequest{
		EmployeeName:           result.EmployeeName,
		UserID:                 payInformation.UserID,
		PayInformationID:       payInformation.PayInformationID,
		GrossPay:               result.PreTaxDeductionResult.GrossPay,
		NetPay:                 netPay,
		PayRate:                weekly[0].HourlyRate,
		TotalHours:             weekly[0].TotalHours,
		TaxableWageInformation: result.TaxWithheldResult.TaxableWageInformation,
		TaxWithheldInformation: result.TaxWithheldResult.TaxWithheldInformation,
		TotalPreTaxDeductions:  result.PreTaxDeductionResult.TotalPreTaxDeductionAmount,
		TotalPostTaxDeductions: result.PostTaxDeductionResult.TotalPostTaxDeductionAmount,
	}, nil
}

// weeklyHoursAndRate splits a bi-weekly record into its two weeks, both at
// the stored hourly rate.
func weeklyHoursAndRate(biWeekly domain.BiWeeklyHoursAndRate) []domain.WeeklyHoursAndRate {
	return []domain.WeeklyHoursAndRate{
		{
			HourlyRate:   biWeekly.HourlyRate,
			TotalHours:   biWeekly.Week1TotalHours,
			TimeOffHours: biWeekly.Week1TimeOffHours,
		},
		{
			HourlyRate:   biWeekly.HourlyRate,
			TotalHours:   biWeekly.Week2TotalHours,
			TimeOffHours: biWeekly.Week2TimeOffHours,
		},
	}
}

// recordPending hands a task to the reconciliation recorder. Recording is
// best-effort: a recorder failure is logged and never surfaced, so the
// caller's original error is what the caller sees.
func (s *FinanceService) recordPending(ctx context.Context, task domain.ReconciliationTask) {
	task.TaskID = uuid.NewString()
	task.RecordedAt = time.Now().UTC()
	// Record against a fresh context so a cancelled request cannot also
	// cancel the recording.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(recordCtx, task); err != nil {
		s.logger.Error("failed to record reconciliation task",
			"task_id", task.TaskID, "action", string(task.Action), "error", err)
	}
}
