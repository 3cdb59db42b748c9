/**
 * @description
 * Domain models for the finance service's two record types. PayInformation
 * is the source-of-truth record the finance service stores; IncomeInformation
 * is the derived record computed from a paycheck result. Neither is stored
 * here; the aggregator only reads and writes them through the finance
 * service.
 */
package domain

// BiWeeklyHoursAndRate is the stored pay period: two weeks of hours at a
// single hourly rate.
type BiWeeklyHoursAndRate struct {
	HourlyRate        float64 `json:"hourlyRate"`
	Week1TotalHours   float64 `json:"week1TotalHours"`
	Week1TimeOffHours float64 `json:"week1TimeOffHours"`
	Week2TotalHours   float64 `json:"week2TotalHours"`
	Week2TimeOffHours float64 `json:"week2TimeOffHours"`
}

// PayInformationRequest is the caller-supplied pay record to create or
// update.
type PayInformationRequest struct {
	EmployeeName         string               `json:"employeeName"`
	BiWeeklyHoursAndRate BiWeeklyHoursAndRate `json:"biWeeklyHoursAndRate"`
	PreTaxDeduction      []Deduction          `json:"preTaxDeduction"`
	PostTaxDeduction     []Deduction          `json:"postTaxDeduction"`
	TaxInformation       TaxInformation       `json:"taxInformation"`
}

// PayInformation is the saved pay record as returned by the finance service.
type PayInformation struct {
	PayInformationID     int                  `json:"payInformationId"`
	UserID               string               `json:"userId"`
	EmployeeName         string               `json:"employeeName"`
	BiWeeklyHoursAndRate BiWeeklyHoursAndRate `json:"biWeeklyHoursAndRate"`
	PreTaxDeduction      []Deduction          `json:"preTaxDeduction"`
	PostTaxDeduction     []Deduction          `json:"postTaxDeduction"`
	TaxInformation       TaxInformation       `json:"taxInformation"`
}

// IncomeInformationRequest is the derived income record sent to the finance
// service after a pay record is saved. It must always reference the saved
// PayInformation it derives from.
type IncomeInformationRequest struct {
	EmployeeName           string                 `json:"employeeName"`
	UserID                 string                 `json:"userId"`
	PayInformationID       int                    `json:"payInformationId"`
	GrossPay               float64                `json:"grossPay"`
	NetPay                 float64                `json:"netPay"`
	PayRate                float64                `json:"payRate"`
	TotalHours             float64                `json:"totalHours"`
	TaxableWageInformation TaxableWageInformation `json:"taxableWageInformation"`
	TaxWithheldInformation TaxWithheldInformation `json:"taxWithheldInformation"`
	TotalPreTaxDeductions  float64                `json:"totalPreTaxDeductions"`
	TotalPostTaxDeductions float64                `json:"totalPostTaxDeductions"`
}

// IncomeInformation is the saved income record as returned by the finance
// service.
type IncomeInformation struct {
	IncomeInformationID    int                    `json:"incomeInformationId"`
	EmployeeName           string                 `json:"employeeName"`
	UserID                 string                 `json:"userId"`
	PayInformationID       int                    `json:"payInformationId"`
	GrossPay               float64                `json:"grossPay"`
	NetPay                 float64                `json:"netPay"`
	PayRate                float64                `json:"payRate"`
	TotalHours             float64                `json:"totalHours"`
	TaxableWageInformation TaxableWageInformation `json:"taxableWageInformation"`
	TaxWithheldInformation TaxWithheldInformation `json:"taxWithheldInformation"`
	TotalPreTaxDeductions  float64                `json:"totalPreTaxDeductions"`
	TotalPostTaxDeductions float64                `json:"totalPostTaxDeductions"`
}
