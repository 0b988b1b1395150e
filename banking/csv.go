package banking

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement CSV layout (semicolon-delimited export, first row is a header):
//
//	0  operation date "02.01.2006 15:04:05"
//	1  payment date   "02.01.2006"
//	2  card number (masked)
//	3  status
//	4  operation amount (comma decimal separator)
//	5  operation currency
//	6  payment amount
//	7  payment currency
//	8  cashback (may be empty)
//	9  category
//	10 MCC code
//	11 description
//	12 bonus amount
//	13 round-up amount
//	14 operation amount with round-up
const statementColumns = 15

const (
	operationDateLayout = "02.01.2006 15:04:05"
	paymentDateLayout   = "02.01.2006"
)

// ParsedRow is one statement row after parsing. A malformed row carries Err
// instead of Tx; the importer records it as a row-level error and keeps
// going, so one bad row never aborts the file.
type ParsedRow struct {
	RowNumber int
	RawData   string
	Tx        *Transaction
	Err       error
}

// ParseStatement reads a semicolon-delimited bank statement. The header row
// is skipped; row numbers start at 1 for the first data row. Only a broken
// reader is a fatal error - per-row problems land in ParsedRow.Err.
func ParseStatement(r io.Reader) ([]ParsedRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	// Header
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading statement header: %w", err)
	}

	var rows []ParsedRow
	rowNumber := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		if err != nil {
			rows = append(rows, ParsedRow{RowNumber: rowNumber, Err: err})
			continue
		}

		raw := strings.Join(record, ";")
		tx, err := mapRecord(record)
		if err != nil {
			rows = append(rows, ParsedRow{RowNumber: rowNumber, RawData: raw, Err: err})
			continue
		}
		rows = append(rows, ParsedRow{RowNumber: rowNumber, RawData: raw, Tx: tx})
	}
	return rows, nil
}

func mapRecord(record []string) (*Transaction, error) {
	if len(record) < statementColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", statementColumns, len(record))
	}

	operationDate, err := time.ParseInLocation(operationDateLayout, strings.TrimSpace(record[0]), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("operation date: %w", err)
	}
	paymentDate, err := time.ParseInLocation(paymentDateLayout, strings.TrimSpace(record[1]), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("payment date: %w", err)
	}

	amount, err := parseStatementDecimal(record[4])
	if err != nil {
		return nil, fmt.Errorf("operation amount: %w", err)
	}
	paymentAmount, err := parseStatementDecimal(record[6])
	if err != nil {
		return nil, fmt.Errorf("payment amount: %w", err)
	}

	var cashback *decimal.Decimal
	if strings.TrimSpace(record[8]) != "" {
		cb, err := parseStatementDecimal(record[8])
		if err != nil {
			return nil, fmt.Errorf("cashback: %w", err)
		}
		cashback = &cb
	}

	bonus, err := parseStatementDecimal(record[12])
	if err != nil {
		return nil, fmt.Errorf("bonus amount: %w", err)
	}
	roundUp, err := parseStatementDecimal(record[13])
	if err != nil {
		return nil, fmt.Errorf("round-up amount: %w", err)
	}
	amountWithRound, err := parseStatementDecimal(record[14])
	if err != nil {
		return nil, fmt.Errorf("amount with round-up: %w", err)
	}

	tx := &Transaction{
		OperationDate:   operationDate,
		PaymentDate:     paymentDate,
		CardLastDigits:  cardLastDigits(record[2]),
		Status:          strings.TrimSpace(record[3]),
		Amount:          amount,
		Currency:        strings.TrimSpace(record[5]),
		PaymentAmount:   paymentAmount,
		PaymentCurrency: strings.TrimSpace(record[7]),
		Cashback:        cashback,
		Category:        strings.TrimSpace(record[9]),
		MCCCode:         strings.TrimSpace(record[10]),
		Description:     strings.TrimSpace(record[11]),
		BonusAmount:     bonus,
		RoundUpAmount:   roundUp,
		AmountWithRound: amountWithRound,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Statements use a comma as the decimal separator.
func parseStatementDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return decimal.NewFromString(s)
}

// cardLastDigits reduces a masked card number like "*1234" to its digits.
func cardLastDigits(s string) string {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "*")
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits
}
