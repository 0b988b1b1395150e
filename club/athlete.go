/*
athlete.go - The Athlete aggregate

PURPOSE:
  Athlete is the aggregate root for a club member. It owns two collections:
  links to the people who pay its fees (by role) and its month-by-month
  membership records. All mutation of those collections goes through the
  methods below, which also maintain the last-modified timestamp.

INVARIANTS:
  - First and last name non-blank, every name field at most 50 characters
  - No duplicate (payer, role) pair
  - At most one membership record per (year, month)
  - Participation coefficient restricted to {0, 0.5, 1}

TIMESTAMP SEMANTICS (matching observed behavior, see DESIGN.md):
  - Rename with identical values is a no-op and does NOT touch the timestamp
  - RemovePayer touches the timestamp even when nothing matched
  - RemoveMembership touches only when a record was actually removed
  - SetMembership touches only when a new record is appended

SEE ALSO:
  - payer.go:  The other side of the payer link
  - period.go: The fee configuration CalculateFee reads from
*/
package club

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxNameLength bounds every name field on athletes and payers.
const MaxNameLength = 50

// PayerLink associates the athlete with one payer under one role.
// The same payer may appear twice under different roles, never twice
// under the same role.
type PayerLink struct {
	PayerID PayerID
	Role    PayerType
}

// Membership records the athlete's participation for one calendar month.
type Membership struct {
	Period      PeriodKey
	Coefficient decimal.Decimal
}

// Athlete is a club member tracked for membership and fee purposes.
type Athlete struct {
	ID           AthleteID
	FirstName    string
	SecondName   string // patronymic or middle name, may be empty
	LastName     string
	Created      time.Time
	LastModified *time.Time

	Payers      []PayerLink
	Memberships []Membership
}

// NewAthlete validates the name and stamps the creation time.
func NewAthlete(firstName, secondName, lastName string) (*Athlete, error) {
	if err := validateName(firstName, "firstName"); err != nil {
		return nil, err
	}
	if err := validateName(lastName, "lastName"); err != nil {
		return nil, err
	}
	return &Athlete{
		ID:         NewAthleteID(),
		FirstName:  firstName,
		SecondName: secondName,
		LastName:   lastName,
		Created:    time.Now().UTC(),
	}, nil
}

// Rename re-validates and updates the name. Identical values are a no-op
// so repeated saves do not churn the last-modified timestamp.
func (a *Athlete) Rename(firstName, secondName, lastName string) error {
	if err := validateName(firstName, "firstName"); err != nil {
		return err
	}
	if err := validateName(lastName, "lastName"); err != nil {
		return err
	}
	if a.FirstName == firstName && a.SecondName == secondName && a.LastName == lastName {
		return nil
	}
	a.FirstName = firstName
	a.SecondName = secondName
	a.LastName = lastName
	a.touch()
	return nil
}

// FullName joins the name parts, skipping an empty middle name.
func (a *Athlete) FullName() string {
	return joinName(a.FirstName, a.SecondName, a.LastName)
}

// AddPayer links a payer under the given role.
func (a *Athlete) AddPayer(payerID PayerID, role PayerType) error {
	for _, link := range a.Payers {
		if link.PayerID == payerID && link.Role == role {
			return &DuplicateRelationError{AthleteID: a.ID, PayerID: payerID, Role: role}
		}
	}
	a.Payers = append(a.Payers, PayerLink{PayerID: payerID, Role: role})
	a.touch()
	return nil
}

// RemovePayer removes the matching link if present. A missing match is not
// an error; callers check existence first if absence should be one. The
// timestamp is refreshed either way.
func (a *Athlete) RemovePayer(payerID PayerID, role PayerType) {
	for i, link := range a.Payers {
		if link.PayerID == payerID && link.Role == role {
			a.Payers = append(a.Payers[:i], a.Payers[i+1:]...)
			break
		}
	}
	a.touch()
}

// HasPayer reports whether the (payer, role) link exists.
func (a *Athlete) HasPayer(payerID PayerID, role PayerType) bool {
	for _, link := range a.Payers {
		if link.PayerID == payerID && link.Role == role {
			return true
		}
	}
	return false
}

// SetMembership upserts the membership record for (month, year). An existing
// record gets its coefficient overwritten in place; otherwise a new record is
// appended. The referenced period must exist, but that is enforced at the
// command layer, not here.
func (a *Athlete) SetMembership(month, year int, coefficient decimal.Decimal) error {
	if !ValidCoefficient(coefficient) {
		return &ValidationError{
			Field:   "participationCoefficient",
			Message: "must be exactly 0, 0.5 or 1",
		}
	}
	key := PeriodKey{Year: year, Month: month}
	for i := range a.Memberships {
		if a.Memberships[i].Period == key {
			a.Memberships[i].Coefficient = coefficient
			return nil
		}
	}
	a.Memberships = append(a.Memberships, Membership{Period: key, Coefficient: coefficient})
	a.touch()
	return nil
}

// RemoveMembership removes the record for (month, year) if present.
func (a *Athlete) RemoveMembership(month, year int) {
	key := PeriodKey{Year: year, Month: month}
	for i := range a.Memberships {
		if a.Memberships[i].Period == key {
			a.Memberships = append(a.Memberships[:i], a.Memberships[i+1:]...)
			a.touch()
			return
		}
	}
}

// ParticipationCoefficient returns the coefficient recorded for the period,
// or false when no record exists.
func (a *Athlete) ParticipationCoefficient(key PeriodKey) (decimal.Decimal, bool) {
	for _, m := range a.Memberships {
		if m.Period == key {
			return m.Coefficient, true
		}
	}
	return decimal.Zero, false
}

// CalculateFee computes the athlete's fee for the period:
// base fee times participation coefficient. No membership record means
// zero, not an error.
func (a *Athlete) CalculateFee(period *MembershipPeriod) decimal.Decimal {
	coeff, ok := a.ParticipationCoefficient(period.Key())
	if !ok {
		return decimal.Zero
	}
	return period.BaseFee.Mul(coeff)
}

func (a *Athlete) touch() {
	now := time.Now().UTC()
	a.LastModified = &now
}

func validateName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: field, Message: "cannot be blank"}
	}
	if len([]rune(name)) > MaxNameLength {
		return &ValidationError{Field: field, Message: "cannot exceed 50 characters"}
	}
	return nil
}

func joinName(first, second, last string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{first, second, last} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
