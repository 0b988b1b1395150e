package club

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD KEY - Natural composite identity of a calendar month
// =============================================================================

// PeriodKey identifies one calendar month. Periods have no surrogate id:
// (year, month) is both the identity and the lookup key.
type PeriodKey struct {
	Year  int
	Month int
}

func (k PeriodKey) Before(other PeriodKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

func (k PeriodKey) After(other PeriodKey) bool { return other.Before(k) }

// Next returns the following calendar month.
func (k PeriodKey) Next() PeriodKey {
	if k.Month == 12 {
		return PeriodKey{Year: k.Year + 1, Month: 1}
	}
	return PeriodKey{Year: k.Year, Month: k.Month + 1}
}

// Compare orders keys chronologically: -1, 0, or +1.
func (k PeriodKey) Compare(other PeriodKey) int {
	switch {
	case k.Before(other):
		return -1
	case other.Before(k):
		return 1
	default:
		return 0
	}
}

func (k PeriodKey) String() string { return fmt.Sprintf("%04d-%02d", k.Year, k.Month) }

// =============================================================================
// MEMBERSHIP PERIOD - One calendar month's fee configuration
// =============================================================================

// Year bounds guard against typos like 202 or 20244 in admin input.
const (
	MinPeriodYear = 2020
	MaxPeriodYear = 2100
)

// MembershipPeriod holds the club-wide base fee for one calendar month.
// An athlete's fee for the month is BaseFee scaled by the athlete's
// participation coefficient.
type MembershipPeriod struct {
	Month   int
	Year    int
	BaseFee decimal.Decimal
}

// NewMembershipPeriod validates month, year and fee before constructing.
func NewMembershipPeriod(month, year int, baseFee decimal.Decimal) (*MembershipPeriod, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	if err := validateBaseFee(baseFee); err != nil {
		return nil, err
	}
	return &MembershipPeriod{Month: month, Year: year, BaseFee: baseFee}, nil
}

func (p *MembershipPeriod) Key() PeriodKey { return PeriodKey{Year: p.Year, Month: p.Month} }

// UpdateBaseFee overwrites the base fee after validation.
func (p *MembershipPeriod) UpdateBaseFee(newFee decimal.Decimal) error {
	if err := validateBaseFee(newFee); err != nil {
		return err
	}
	p.BaseFee = newFee
	return nil
}

// StartDate is the first day of the month (UTC midnight).
func (p *MembershipPeriod) StartDate() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// EndDate is the last day of the month.
func (p *MembershipPeriod) EndDate() time.Time {
	return p.StartDate().AddDate(0, 1, -1)
}

// ContainsDate reports whether d falls within the period, inclusive.
func (p *MembershipPeriod) ContainsDate(d time.Time) bool {
	return !d.Before(p.StartDate()) && !d.After(p.EndDate())
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}
	if year < MinPeriodYear || year > MaxPeriodYear {
		return &ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("must be between %d and %d", MinPeriodYear, MaxPeriodYear),
		}
	}
	return nil
}

func validateBaseFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return &ValidationError{Field: "baseFee", Message: "cannot be negative"}
	}
	return nil
}
