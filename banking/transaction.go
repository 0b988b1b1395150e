/*
Package banking imports bank-statement transactions from CSV exports.

PURPOSE:
  A separate, simpler batch pipeline next to the club domain: parse a
  statement file into transactions, skip what was already imported, and keep
  a per-row audit trail. Two levels of deduplication:

  1. Whole file: the SHA-256 of the file content. A re-uploaded statement is
     answered with the stats of the original import, nothing is re-processed.
  2. Per row: the (operation date, amount, currency) composite key. A row
     whose key already exists is recorded as skipped.

KEY TYPES:
  Transaction:  One bank operation, identified by its composite key
  Import:       One processed file with outcome counters
  ImportDetail: Per-row audit record (row number, raw text, outcome)

SEE ALSO:
  - csv.go:      Statement parsing
  - importer.go: The import pipeline
  - store.go:    Persistence contracts
*/
package banking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rowclub/membership-engine/club"
)

// Transaction is one bank operation from a statement export. Identity is the
// composite (operation date, amount, currency); there is no surrogate id.
type Transaction struct {
	OperationDate   time.Time
	PaymentDate     time.Time // date only, zero clock
	CardLastDigits  string
	Status          string
	Amount          decimal.Decimal
	Currency        string
	PaymentAmount   decimal.Decimal
	PaymentCurrency string
	Cashback        *decimal.Decimal
	Category        string
	MCCCode         string
	Description     string
	BonusAmount     decimal.Decimal
	RoundUpAmount   decimal.Decimal
	AmountWithRound decimal.Decimal
	Processed       bool
}

// Validate checks the invariants a statement row must satisfy before it is
// persisted. Rows more than a day in the future are rejected to catch
// date-format mixups.
func (t *Transaction) Validate() error {
	if t.OperationDate.After(time.Now().UTC().AddDate(0, 0, 1)) {
		return &club.ValidationError{Field: "operationDate", Message: "cannot be in the future"}
	}
	if t.Status == "" {
		return &club.ValidationError{Field: "status", Message: "is required"}
	}
	if t.Amount.IsZero() {
		return &club.ValidationError{Field: "amount", Message: "cannot be zero"}
	}
	if t.Currency == "" {
		return &club.ValidationError{Field: "currency", Message: "is required"}
	}
	if t.Category == "" {
		return &club.ValidationError{Field: "category", Message: "is required"}
	}
	if t.Description == "" {
		return &club.ValidationError{Field: "description", Message: "is required"}
	}
	return nil
}

// MarkProcessed flags the transaction as matched to a membership payment.
func (t *Transaction) MarkProcessed() { t.Processed = true }

// =============================================================================
// IMPORT AUDIT RECORDS
// =============================================================================

// RowOutcome classifies what happened to one statement row.
type RowOutcome string

const (
	RowSuccess RowOutcome = "success"
	RowSkipped RowOutcome = "skipped"
	RowError   RowOutcome = "error"
)

// Import records one processed statement file.
type Import struct {
	ID           string
	FileName     string
	FileHash     string
	ImportDate   time.Time
	TotalRows    int
	SuccessCount int
	SkippedCount int
	ErrorCount   int
}

func NewImport(fileName, fileHash string, totalRows int) (*Import, error) {
	if fileName == "" {
		return nil, &club.ValidationError{Field: "fileName", Message: "is required"}
	}
	if fileHash == "" {
		return nil, &club.ValidationError{Field: "fileHash", Message: "is required"}
	}
	return &Import{
		ID:         uuid.NewString(),
		FileName:   fileName,
		FileHash:   fileHash,
		ImportDate: time.Now().UTC(),
		TotalRows:  totalRows,
	}, nil
}

// UpdateStatistics overwrites the outcome counters once processing finishes.
func (i *Import) UpdateStatistics(success, skipped, errors int) {
	i.SuccessCount = success
	i.SkippedCount = skipped
	i.ErrorCount = errors
}

// ImportDetail is the audit record for a single statement row.
type ImportDetail struct {
	ID           string
	ImportID     string
	RowNumber    int
	Outcome      RowOutcome
	RawData      string
	ErrorMessage string
}

func NewImportDetail(importID string, rowNumber int, outcome RowOutcome, rawData, errorMessage string) *ImportDetail {
	return &ImportDetail{
		ID:           uuid.NewString(),
		ImportID:     importID,
		RowNumber:    rowNumber,
		Outcome:      outcome,
		RawData:      rawData,
		ErrorMessage: errorMessage,
	}
}
