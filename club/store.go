/*
store.go - Persistence contracts for the club domain

PURPOSE:
  Defines the interface between the domain logic and the database. The
  domain itself is synchronous and in-memory; these contracts are the only
  suspension points, so every method takes a context.

KEY INTERFACES:
  AthleteStore:    Athlete aggregates, saved and loaded whole (links and
                   memberships travel with the athlete)
  PayerStore:      Payer entities
  PeriodStore:     Membership periods, keyed by (year, month)
  MembershipStore: Read-side membership queries that cut across aggregates
  UnitOfWork:      One command = one transaction = one commit

NOT-FOUND CONTRACT:
  Lookup methods return an error wrapping ErrNotFound when nothing matches.
  The command layer decides whether that is a user-facing failure.

AGGREGATE CONTRACT:
  Athlete payer links and memberships are owned collections: Add/Update
  persist them together with the athlete, Delete removes them with it.
  MembershipStore exposes cross-aggregate reads only ("who was a member in
  March?"); mutation always goes through Athlete methods plus Update.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - club/store:   In-memory for testing
*/
package club

import "context"

// AthleteStore persists Athlete aggregates.
type AthleteStore interface {
	GetByID(ctx context.Context, id AthleteID) (*Athlete, error)
	GetByFullName(ctx context.Context, firstName, secondName, lastName string) (*Athlete, error)
	GetAll(ctx context.Context) ([]*Athlete, error)
	Add(ctx context.Context, a *Athlete) error
	Update(ctx context.Context, a *Athlete) error

	// Delete removes the athlete and cascades to its payer links and
	// membership records. Hard removal; there is no soft delete.
	Delete(ctx context.Context, id AthleteID) error

	IsNameUnique(ctx context.Context, firstName, secondName, lastName string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// PayerStore persists Payer entities.
type PayerStore interface {
	GetByID(ctx context.Context, id PayerID) (*Payer, error)
	GetByFullName(ctx context.Context, firstName, secondName, lastName string) (*Payer, error)
	GetAll(ctx context.Context) ([]*Payer, error)
	Add(ctx context.Context, p *Payer) error
	Update(ctx context.Context, p *Payer) error

	// Delete cascades to the payer's athlete links.
	Delete(ctx context.Context, id PayerID) error
}

// PeriodStore persists MembershipPeriods under their natural key.
type PeriodStore interface {
	GetByYearMonth(ctx context.Context, year, month int) (*MembershipPeriod, error)

	// GetAll returns every period sorted by (year, month).
	GetAll(ctx context.Context) ([]*MembershipPeriod, error)

	// GetRange returns periods with from <= key <= to, sorted by
	// (year, month). Comparison is month-granular.
	GetRange(ctx context.Context, from, to PeriodKey) ([]*MembershipPeriod, error)

	Add(ctx context.Context, p *MembershipPeriod) error
	Update(ctx context.Context, p *MembershipPeriod) error
	Delete(ctx context.Context, key PeriodKey) error
}

// MembershipStore answers membership queries that span athletes, such as
// "who was a member in March?". Read-only by design: membership mutation
// goes through Athlete methods plus AthleteStore.Update.
type MembershipStore interface {
	GetByAthleteID(ctx context.Context, id AthleteID) ([]Membership, error)
	GetByPeriod(ctx context.Context, key PeriodKey) ([]AthleteMembershipRow, error)
}

// AthleteMembershipRow pairs an athlete with its membership for one period.
type AthleteMembershipRow struct {
	AthleteID  AthleteID
	Membership Membership
}

// Stores bundles every store so commands can reach all of them through one
// transaction handle.
type Stores struct {
	Athletes    AthleteStore
	Payers      PayerStore
	Periods     PeriodStore
	Memberships MembershipStore
}

// UnitOfWork runs fn against a transactional view of the stores. If fn
// returns an error every write inside it is rolled back; otherwise the
// whole batch commits atomically.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(Stores) error) error
}
