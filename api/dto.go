/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS:
  Fees and coefficients travel as JSON strings ("0.5", "2000") via
  decimal.Decimal, so precision survives the wire.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/rowclub/membership-engine/membership"
)

// =============================================================================
// ATHLETE TYPES
// =============================================================================

// AthleteDTO represents an athlete in API responses.
type AthleteDTO struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"first_name"`
	SecondName   string          `json:"second_name,omitempty"`
	LastName     string          `json:"last_name"`
	FullName     string          `json:"full_name"`
	Created      string          `json:"created"`
	LastModified *string         `json:"last_modified,omitempty"`
	Payers       []PayerLinkDTO  `json:"payers"`
	Memberships  []MembershipDTO `json:"memberships"`
}

// CreateAthleteRequest is the request to register an athlete.
type CreateAthleteRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	LastName   string `json:"last_name"`
}

// RenameAthleteRequest updates an athlete's name.
type RenameAthleteRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	LastName   string `json:"last_name"`
}

// PayerLinkDTO is one payer link on an athlete.
type PayerLinkDTO struct {
	PayerID string `json:"payer_id"`
	Role    string `json:"role"`
}

// LinkPayerRequest links an existing payer to an athlete under a role.
type LinkPayerRequest struct {
	PayerID string `json:"payer_id"`
	Role    string `json:"role"`
}

// MembershipDTO is one monthly membership record.
type MembershipDTO struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

// SetMembershipRequest upserts a membership record for one month.
type SetMembershipRequest struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

// FeeDTO is one athlete's computed fee for one period.
type FeeDTO struct {
	AthleteID   string          `json:"athlete_id"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	BaseFee     decimal.Decimal `json:"base_fee"`
	Coefficient decimal.Decimal `json:"coefficient"`
	Fee         decimal.Decimal `json:"fee"`
}

// =============================================================================
// PAYER TYPES
// =============================================================================

// PayerDTO represents a payer in API responses.
type PayerDTO struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name,omitempty"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
}

// CreatePayerRequest is the request to register a payer.
type CreatePayerRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	LastName   string `json:"last_name"`
}

// RenamePayerRequest updates a payer's name.
type RenamePayerRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	LastName   string `json:"last_name"`
}

// =============================================================================
// PERIOD TYPES
// =============================================================================

// PeriodDTO represents one month of the fee schedule.
type PeriodDTO struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	BaseFee decimal.Decimal `json:"base_fee"`
}

// PeriodRangeRequest drives the bulk period operators: an inclusive month
// range and the base fee to apply across it.
type PeriodRangeRequest struct {
	BaseFee    decimal.Decimal `json:"base_fee"`
	StartMonth int             `json:"start_month"`
	StartYear  int             `json:"start_year"`
	EndMonth   int             `json:"end_month"`
	EndYear    int             `json:"end_year"`
}

func (r PeriodRangeRequest) params() membership.RangeParams {
	return membership.RangeParams{
		BaseFee:    r.BaseFee,
		StartMonth: r.StartMonth,
		StartYear:  r.StartYear,
		EndMonth:   r.EndMonth,
		EndYear:    r.EndYear,
	}
}

// FeeStatementDTO lists what every enrolled athlete owes for one month.
type FeeStatementDTO struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	BaseFee decimal.Decimal `json:"base_fee"`
	Lines   []FeeLineDTO    `json:"lines"`
	Total   decimal.Decimal `json:"total"`
}

// FeeLineDTO is one line of a fee statement.
type FeeLineDTO struct {
	AthleteID   string          `json:"athlete_id"`
	AthleteName string          `json:"athlete_name"`
	Coefficient decimal.Decimal `json:"coefficient"`
	Fee         decimal.Decimal `json:"fee"`
}

// =============================================================================
// SEED TYPES
// =============================================================================

// SeedAthleteRequest carries the full desired state for one athlete:
// the athlete itself, the payers to link, and the months to enroll.
type SeedAthleteRequest struct {
	FirstName   string                  `json:"first_name"`
	SecondName  string                  `json:"second_name"`
	LastName    string                  `json:"last_name"`
	Payers      []SeedPayerRequest      `json:"payers"`
	Memberships []SeedMembershipRequest `json:"memberships"`
}

// SeedPayerRequest names one payer to link, role as raw text.
type SeedPayerRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
}

// SeedMembershipRequest enrolls the athlete in one month.
type SeedMembershipRequest struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

func (r SeedAthleteRequest) input() membership.SeedAthleteInput {
	input := membership.SeedAthleteInput{
		FirstName:  r.FirstName,
		SecondName: r.SecondName,
		LastName:   r.LastName,
	}
	for _, p := range r.Payers {
		input.Payers = append(input.Payers, membership.SeedPayer{
			FirstName:  p.FirstName,
			SecondName: p.SecondName,
			LastName:   p.LastName,
			Role:       p.Role,
		})
	}
	for _, m := range r.Memberships {
		input.Memberships = append(input.Memberships, membership.SeedMembership{
			Year:        m.Year,
			Month:       m.Month,
			Coefficient: m.Coefficient,
		})
	}
	return input
}

// SeedResultDTO is the per-item audit of one seed command.
type SeedResultDTO struct {
	AthleteID string           `json:"athlete_id"`
	Outcomes  []SeedOutcomeDTO `json:"outcomes"`
}

// SeedOutcomeDTO reports the fate of one seed item.
type SeedOutcomeDTO struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// =============================================================================
// BANK IMPORT TYPES
// =============================================================================

// ImportResultDTO summarizes one import run.
type ImportResultDTO struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ImportID     string `json:"import_id,omitempty"`
	TotalRows    int    `json:"total_rows"`
	SuccessCount int    `json:"success_count"`
	SkippedCount int    `json:"skipped_count"`
	ErrorCount   int    `json:"error_count"`
}

// ImportDTO represents one processed statement file.
type ImportDTO struct {
	ID           string `json:"id"`
	FileName     string `json:"file_name"`
	FileHash     string `json:"file_hash"`
	ImportDate   string `json:"import_date"`
	TotalRows    int    `json:"total_rows"`
	SuccessCount int    `json:"success_count"`
	SkippedCount int    `json:"skipped_count"`
	ErrorCount   int    `json:"error_count"`
}

// ImportDetailDTO is the audit record for one statement row.
type ImportDetailDTO struct {
	RowNumber    int    `json:"row_number"`
	Outcome      string `json:"outcome"`
	RawData      string `json:"raw_data"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// BankTransactionDTO represents one imported bank operation.
type BankTransactionDTO struct {
	OperationDate   string           `json:"operation_date"`
	PaymentDate     string           `json:"payment_date"`
	CardLastDigits  string           `json:"card_last_digits,omitempty"`
	Status          string           `json:"status"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	Cashback        *decimal.Decimal `json:"cashback,omitempty"`
	Category        string           `json:"category"`
	MCCCode         string           `json:"mcc_code,omitempty"`
	Description     string           `json:"description"`
	Processed       bool             `json:"processed"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
