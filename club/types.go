/*
Package club provides the core membership domain for a rowing club.

PURPOSE:
  This package contains the entities and value types for tracking athletes,
  the people who pay their fees, monthly membership periods, and the
  participation coefficients that scale each athlete's monthly fee.

KEY CONCEPTS IN THIS FILE (types.go):
  - AthleteID/PayerID: Type-safe identifiers
  - PayerType: The role a payer holds toward an athlete (self, mother, ...)
  - Participation coefficients: Exact decimals restricted to {0, 0.5, 1}

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors in fees
  2. Type Safety: Strong typing for IDs prevents mixing athlete/payer IDs
  3. Aggregate ownership: Athlete owns its payer links and memberships;
     nothing outside the aggregate mutates those collections

SEE ALSO:
  - athlete.go: Athlete aggregate and its invariants
  - period.go:  MembershipPeriod and the (year, month) composite key
  - store.go:   Persistence contracts
*/
package club

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AthleteID string
type PayerID string

func NewAthleteID() AthleteID { return AthleteID(uuid.NewString()) }
func NewPayerID() PayerID     { return PayerID(uuid.NewString()) }

// =============================================================================
// PAYER TYPE - Role of a payer toward an athlete
// =============================================================================

type PayerType string

const (
	PayerSelf   PayerType = "self"
	PayerMother PayerType = "mother"
	PayerFather PayerType = "father"
	PayerUncle  PayerType = "uncle"
	PayerOther  PayerType = "other"
)

// ParsePayerType converts a role string into a PayerType.
// Matching is case-insensitive. Unknown roles are an error so bulk
// seeding can skip them with a warning instead of linking garbage.
func ParsePayerType(s string) (PayerType, error) {
	switch PayerType(strings.ToLower(strings.TrimSpace(s))) {
	case PayerSelf:
		return PayerSelf, nil
	case PayerMother:
		return PayerMother, nil
	case PayerFather:
		return PayerFather, nil
	case PayerUncle:
		return PayerUncle, nil
	case PayerOther:
		return PayerOther, nil
	}
	return "", fmt.Errorf("unknown payer role %q", s)
}

// =============================================================================
// PARTICIPATION COEFFICIENT - Multiplier applied to a period's base fee
// =============================================================================

// The only coefficients the club recognizes:
//   0   - athlete is suspended or on leave for the month
//   0.5 - nursery group, pays half the base fee
//   1   - regular athlete, pays the full base fee
var (
	CoefficientNone = decimal.Zero
	CoefficientHalf = decimal.New(5, -1)
	CoefficientFull = decimal.New(1, 0)
)

// ValidCoefficient reports whether c is one of the allowed values.
// Comparison is exact; 0.4999... never passes.
func ValidCoefficient(c decimal.Decimal) bool {
	return c.Equal(CoefficientNone) || c.Equal(CoefficientHalf) || c.Equal(CoefficientFull)
}
