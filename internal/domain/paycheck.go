/**
 * @description
 * Domain models for a single paycheck computation. These structs mirror the
 * wire payloads exchanged with the wage and tax services, so json tags follow
 * the camelCase convention those services use.
 */
package domain

// Deduction is one elected deduction line item.
type Deduction struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// WeeklyHoursAndRate records the hours worked in one week at one hourly rate.
type WeeklyHoursAndRate struct {
	HourlyRate   float64 `json:"hourlyRate"`
	TotalHours   float64 `json:"totalHours"`
	TimeOffHours float64 `json:"timeOffHours"`
}

// TaxInformation is the employee's withholding election, carried unchanged
// from the pay record into the withholding computation.
type TaxInformation struct {
	FilingStatus          string  `json:"filingStatus"`
	State                 string  `json:"state"`
	FederalAllowances     int     `json:"federalAllowances"`
	StateAllowances       int     `json:"stateAllowances"`
	AdditionalWithholding float64 `json:"additionalWithholding"`
}

// TaxableWageInformation is the taxable-wage breakdown produced by the
// pre-tax stage and consumed by the withholding stage.
type TaxableWageInformation struct {
	SocialAndMedicareTaxableWages float64 `json:"socialAndMedicareTaxableWages"`
	StateAndFederalTaxableWages   float64 `json:"stateAndFederalTaxableWages"`
}

// TaxWithheldInformation is the withholding breakdown produced by the tax
// service.
type TaxWithheldInformation struct {
	SocialSecurityTaxWithheld float64 `json:"socialSecurityTaxWithheld"`
	MedicareTaxWithheld       float64 `json:"medicareTaxWithheld"`
	StateTaxWithheld          float64 `json:"stateTaxWithheld"`
	FederalTaxWithheld        float64 `json:"federalTaxWithheld"`
	TotalTaxesWithheldAmount  float64 `json:"totalTaxesWithheldAmount"`
}

// PreTaxDeductionRequest is the input to the wage service's taxable-wages
// computation.
type PreTaxDeductionRequest struct {
	PreTaxDeduction    []Deduction          `json:"preTaxDeduction"`
	WeeklyHoursAndRate []WeeklyHoursAndRate `json:"weeklyHoursAndRate"`
}

// PreTaxDeductionResult is the wage service's taxable-wages response.
type PreTaxDeductionResult struct {
	GrossPay                   float64                `json:"grossPay"`
	TaxableWageInformation     TaxableWageInformation `json:"taxableWageInformation"`
	TotalPreTaxDeductionAmount float64                `json:"totalPreTaxDeductionAmount"`
}

// CalculateTaxWithheldRequest is the input to the tax service's withholding
// computation.
type CalculateTaxWithheldRequest struct {
	TaxInformation         TaxInformation         `json:"taxInformation"`
	TaxableWageInformation TaxableWageInformation `json:"taxableWageInformation"`
}

// TaxWithheldResult is the tax service's withholding response.
type TaxWithheldResult struct {
	TaxableWageInformation TaxableWageInformation `json:"taxableWageInformation"`
	TaxWithheldInformation TaxWithheldInformation `json:"taxWithheldInformation"`
}

// PostTaxDeductionRequest is the input to the wage service's post-tax
// computation. TotalGrossPay is filled by the orchestrator from the pre-tax
// stage's result before the call is made.
type PostTaxDeductionRequest struct {
	PostTaxDeduction []Deduction `json:"postTaxDeduction"`
	TotalGrossPay    float64     `json:"totalGrossPay"`
}

// PostTaxDeductionResult is the wage service's post-tax response.
type PostTaxDeductionResult struct {
	TotalPostTaxDeductionAmount float64 `json:"totalPostTaxDeductionAmount"`
}

// PayCheckRequest is one paycheck computation input. It is built once per
// computation and not persisted.
type PayCheckRequest struct {
	EmployeeName            string                  `json:"employeeName"`
	TaxInformation          TaxInformation          `json:"taxInformation"`
	PreTaxDeductionRequest  PreTaxDeductionRequest  `json:"preTaxDeductionRequest"`
	PostTaxDeductionRequest PostTaxDeductionRequest `json:"postTaxDeductionRequest"`
}

// PayCheckResult is the fully assembled output of one paycheck computation.
// It is never returned partially populated.
type PayCheckResult struct {
	EmployeeName           string                 `json:"employeeName"`
	PreTaxDeductionResult  PreTaxDeductionResult  `json:"preTaxDeductionResult"`
	TaxWithheldResult      TaxWithheldResult      `json:"taxWithheldResult"`
	PostTaxDeductionResult PostTaxDeductionResult `json:"postTaxDeductionResult"`
}
