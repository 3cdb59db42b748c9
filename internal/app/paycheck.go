/**
 * @description
 * The paycheck orchestrator. For each request it runs a strict three-stage
 * pipeline against the wage and tax services and assembles the aggregate
 * result. Stage order is a correctness requirement: the withholding stage
 * consumes the taxable wages computed by the pre-tax stage, and the
 * post-tax stage consumes the same stage's gross pay.
 *
 * @dependencies
 * - internal/config: Per-operation downstream paths.
 * - internal/domain: Pipeline request/result models.
 * - pkg/downstream: Typed downstream calls.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/financeplanner/aggregator-service/internal/config"
	"github.com/financeplanner/aggregator-service/internal/domain"
	"github.com/financeplanner/aggregator-service/pkg/downstream"
)

// PayCheckService computes paychecks by chaining wage and tax service calls.
type PayCheckService struct {
	wage   *downstream.Client
	tax    *downstream.Client
	cfg    config.Config
	logger *slog.Logger
}

// NewPayCheckService creates the orchestrator.
func NewPayCheckService(wage, tax *downstream.Client, cfg config.Config, logger *slog.Logger) *PayCheckService {
	return &PayCheckService{wage: wage, tax: tax, cfg: cfg, logger: logger}
}

// ComputePayChecks processes a batch of paycheck requests sequentially, in
// input order. The batch is not partial-failure-tolerant: if any request
// fails at any stage, the whole batch fails and results already computed
// are discarded.
func (s *PayCheckService) ComputePayChecks(ctx context.Context, requests []domain.PayCheckRequest) ([]domain.PayCheckResult, error) {
	results := make([]domain.PayCheckResult, 0, len(requests))
	for _, request := range requests {
		result, err := s.computeOne(ctx, request)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *PayCheckService) computeOne(ctx context.Context, request domain.PayCheckRequest) (*domain.PayCheckResult, error) {
	// Stage 1: taxable wages and gross pay.
	preTax, err := downstream.Send[domain.PreTaxDeductionRequest, domain.PreTaxDeductionResult](
		ctx, s.wage, s.cfg.WageTaxableWagesPath, request.PreTaxDeductionRequest)
	if err != nil {
		return nil, err
	}

	// Stage 2: withholding, computed from the taxable wages just produced.
	withheldRequest := domain.CalculateTaxWithheldRequest{
		TaxInformation:         request.TaxInformation,
		TaxableWageInformation: preTax.TaxableWageInformation,
	}
	withheld, err := downstream.Send[domain.CalculateTaxWithheldRequest, domain.TaxWithheldResult](
		ctx, s.tax, s.cfg.TaxWithheldPath, withheldRequest)
	if err != nil {
		return nil, err
	}

	// Stage 3: post-tax deductions, against this request's gross pay.
	postTaxRequest := request.PostTaxDeductionRequest
	postTaxRequest.TotalGrossPay = preTax.GrossPay
	postTax, err := downstream.Send[domain.PostTaxDeductionRequest, domain.PostTaxDeductionResult](
		ctx, s.wage, s.cfg.WagePostTaxPath, postTaxRequest)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("paycheck computed",
		"employee", request.EmployeeName, "gross_pay", preTax.GrossPay)

	return &domain.PayCheckResult{
		EmployeeName:           request.EmployeeName,
		PreTaxDeductionResult:  *preTax,
		TaxWithheldResult:      *withheld,
		PostTaxDeductionResult: *postTax,
	}, nil
}
