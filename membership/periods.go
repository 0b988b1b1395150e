/*
Package membership contains the commands that orchestrate club aggregates
over the stores: the idempotent period range operators, the composite
athlete seeding command, and fee statement queries.

Every command runs in a single unit of work: one command, one transaction,
one commit. Domain validation happens before any write, so a failed command
leaves no partial state.
*/
package membership

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowclub/membership-engine/club"
)

// =============================================================================
// RANGE PARAMETERS - Shared by both period operators
// =============================================================================

// RangeParams describes an inclusive month range and the base fee to apply.
type RangeParams struct {
	BaseFee    decimal.Decimal
	StartMonth int
	StartYear  int
	EndMonth   int
	EndYear    int
}

// Validate checks months, range ordering and the fee. Unlike the entity,
// which allows a zero fee, applying a fee schedule with a non-positive fee
// is always a mistake.
func (p RangeParams) Validate() error {
	if p.StartMonth < 1 || p.StartMonth > 12 {
		return &club.ValidationError{Field: "startMonth", Message: "must be between 1 and 12"}
	}
	if p.EndMonth < 1 || p.EndMonth > 12 {
		return &club.ValidationError{Field: "endMonth", Message: "must be between 1 and 12"}
	}
	if p.End().Before(p.Start()) {
		return &club.ValidationError{Field: "range", Message: "start must not be after end"}
	}
	if !p.BaseFee.IsPositive() {
		return &club.ValidationError{Field: "baseFee", Message: "must be positive"}
	}
	return nil
}

func (p RangeParams) Start() club.PeriodKey {
	return club.PeriodKey{Year: p.StartYear, Month: p.StartMonth}
}

func (p RangeParams) End() club.PeriodKey {
	return club.PeriodKey{Year: p.EndYear, Month: p.EndMonth}
}

// =============================================================================
// PERIOD SERVICE - Idempotent range operations over MembershipPeriods
// =============================================================================

// PeriodService owns the fee schedule: seeding missing months and rolling
// fee changes over existing ones. The two operations are deliberately
// separate so an administrator can re-apply a schedule without resurrecting
// deleted months or silently overwriting months left alone on purpose.
type PeriodService struct {
	uow club.UnitOfWork
	log *slog.Logger
}

func NewPeriodService(uow club.UnitOfWork, log *slog.Logger) *PeriodService {
	if log == nil {
		log = slog.Default()
	}
	return &PeriodService{uow: uow, log: log}
}

// CreateMissingPeriods creates a period for every month in the range that
// does not exist yet, all with the given base fee. Existing months are left
// untouched and not reported; re-running the same range is a safe no-op.
// Returns only the newly created periods, in calendar order.
func (s *PeriodService) CreateMissingPeriods(ctx context.Context, params RangeParams) ([]*club.MembershipPeriod, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	created := []*club.MembershipPeriod{}
	err := s.uow.WithTx(ctx, func(stores club.Stores) error {
		existing, err := stores.Periods.GetRange(ctx, params.Start(), params.End())
		if err != nil {
			return err
		}
		present := make(map[club.PeriodKey]bool, len(existing))
		for _, p := range existing {
			present[p.Key()] = true
		}

		for key := params.Start(); !key.After(params.End()); key = key.Next() {
			if present[key] {
				continue
			}
			period, err := club.NewMembershipPeriod(key.Month, key.Year, params.BaseFee)
			if err != nil {
				return err
			}
			if err := stores.Periods.Add(ctx, period); err != nil {
				return err
			}
			created = append(created, period)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(created) == 0 {
		s.log.Info("periods_all_present",
			"from", params.Start().String(), "to", params.End().String())
	}
	return created, nil
}

// UpdateExistingPeriods applies the base fee to every existing period in the
// range. Periods already at the target fee are not rewritten. Returns every
// period that was in range, updated or not, sorted by (year, month); an
// empty range is not an error.
func (s *PeriodService) UpdateExistingPeriods(ctx context.Context, params RangeParams) ([]*club.MembershipPeriod, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	inRange := []*club.MembershipPeriod{}
	err := s.uow.WithTx(ctx, func(stores club.Stores) error {
		periods, err := stores.Periods.GetRange(ctx, params.Start(), params.End())
		if err != nil {
			return err
		}
		for _, p := range periods {
			if !p.BaseFee.Equal(params.BaseFee) {
				if err := p.UpdateBaseFee(params.BaseFee); err != nil {
					return err
				}
				if err := stores.Periods.Update(ctx, p); err != nil {
					return err
				}
			}
		}
		inRange = periods
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(inRange) == 0 {
		s.log.Warn("no_periods_in_range",
			"from", params.Start().String(), "to", params.End().String())
	}
	return inRange, nil
}

// Periods returns the whole fee schedule sorted by (year, month).
func (s *PeriodService) Periods(ctx context.Context) ([]*club.MembershipPeriod, error) {
	var all []*club.MembershipPeriod
	err := s.uow.WithTx(ctx, func(stores club.Stores) error {
		var err error
		all, err = stores.Periods.GetAll(ctx)
		return err
	})
	return all, err
}

// PeriodFor returns the period containing the given date, if seeded.
func (s *PeriodService) PeriodFor(ctx context.Context, d time.Time) (*club.MembershipPeriod, error) {
	var period *club.MembershipPeriod
	err := s.uow.WithTx(ctx, func(stores club.Stores) error {
		var err error
		period, err = stores.Periods.GetByYearMonth(ctx, d.Year(), int(d.Month()))
		return err
	})
	return period, err
}
