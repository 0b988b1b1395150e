package membership

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rowclub/membership-engine/club"
)

// FeeLine is one athlete's due amount for a period.
type FeeLine struct {
	AthleteID   club.AthleteID
	AthleteName string
	Coefficient decimal.Decimal
	Fee         decimal.Decimal
}

// FeeStatement lists what every enrolled athlete owes for one month.
type FeeStatement struct {
	Period  club.PeriodKey
	BaseFee decimal.Decimal
	Lines   []FeeLine
	Total   decimal.Decimal
}

// FeeStatement computes the statement for (year, month). Only athletes with
// a membership record for the period appear; a zero coefficient still
// produces a line, with a zero fee.
func (s *PeriodService) FeeStatement(ctx context.Context, year, month int) (*FeeStatement, error) {
	var statement *FeeStatement
	err := s.uow.WithTx(ctx, func(stores club.Stores) error {
		period, err := stores.Periods.GetByYearMonth(ctx, year, month)
		if err != nil {
			return err
		}

		rows, err := stores.Memberships.GetByPeriod(ctx, period.Key())
		if err != nil {
			return err
		}

		statement = &FeeStatement{
			Period:  period.Key(),
			BaseFee: period.BaseFee,
			Total:   decimal.Zero,
		}
		for _, row := range rows {
			athlete, err := stores.Athletes.GetByID(ctx, row.AthleteID)
			if err != nil {
				// The membership row outlived its athlete; skip rather
				// than fail the whole statement.
				if errors.Is(err, club.ErrNotFound) {
					continue
				}
				return err
			}
			fee := athlete.CalculateFee(period)
			statement.Lines = append(statement.Lines, FeeLine{
				AthleteID:   athlete.ID,
				AthleteName: athlete.FullName(),
				Coefficient: row.Membership.Coefficient,
				Fee:         fee,
			})
			statement.Total = statement.Total.Add(fee)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}
