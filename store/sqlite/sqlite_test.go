package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowclub/membership-engine/banking"
	"github.com/rowclub/membership-engine/club"
	"github.com/rowclub/membership-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newStoredAthlete(t *testing.T, s *sqlite.Store) *club.Athlete {
	t.Helper()
	a, err := club.NewAthlete("Ivan", "Petrovich", "Sidorov")
	require.NoError(t, err)
	require.NoError(t, s.Stores().Athletes.Add(context.Background(), a))
	return a
}

// =============================================================================
// ATHLETE AGGREGATE
// =============================================================================

func TestAthleteAggregate_RoundTrip(t *testing.T) {
	// The athlete is saved whole: links and memberships travel with it.

	s := newTestStore(t)
	ctx := context.Background()

	payer, err := club.NewPayer("Olga", "", "Sidorova")
	require.NoError(t, err)
	require.NoError(t, s.Stores().Payers.Add(ctx, payer))

	a, err := club.NewAthlete("Ivan", "Petrovich", "Sidorov")
	require.NoError(t, err)
	require.NoError(t, a.AddPayer(payer.ID, club.PayerMother))
	require.NoError(t, a.SetMembership(3, 2025, club.CoefficientHalf))
	require.NoError(t, s.Stores().Athletes.Add(ctx, a))

	got, err := s.Stores().Athletes.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrovich Sidorov", got.FullName())
	require.Len(t, got.Payers, 1)
	assert.Equal(t, payer.ID, got.Payers[0].PayerID)
	assert.Equal(t, club.PayerMother, got.Payers[0].Role)
	require.Len(t, got.Memberships, 1)
	assert.True(t, got.Memberships[0].Coefficient.Equal(club.CoefficientHalf))
	require.NotNil(t, got.LastModified)
	assert.False(t, got.Created.IsZero())
}

func TestAthleteAggregate_UpdateReplacesCollections(t *testing.T) {
	// GIVEN: A stored athlete with one membership
	// WHEN: Removing it and adding a different month, then Update
	// THEN: The reloaded aggregate reflects exactly the new state

	s := newTestStore(t)
	ctx := context.Background()
	a := newStoredAthlete(t, s)

	require.NoError(t, a.SetMembership(3, 2025, club.CoefficientFull))
	require.NoError(t, s.Stores().Athletes.Update(ctx, a))

	a.RemoveMembership(3, 2025)
	require.NoError(t, a.SetMembership(4, 2025, club.CoefficientHalf))
	require.NoError(t, s.Stores().Athletes.Update(ctx, a))

	got, err := s.Stores().Athletes.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Memberships, 1)
	assert.Equal(t, club.PeriodKey{Year: 2025, Month: 4}, got.Memberships[0].Period)
}

func TestAthleteAggregate_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newStoredAthlete(t, s)

	require.NoError(t, a.SetMembership(3, 2025, club.CoefficientFull))
	require.NoError(t, s.Stores().Athletes.Update(ctx, a))

	require.NoError(t, s.Stores().Athletes.Delete(ctx, a.ID))

	_, err := s.Stores().Athletes.GetByID(ctx, a.ID)
	assert.True(t, club.IsNotFound(err))

	rows, err := s.Stores().Memberships.GetByPeriod(ctx, club.PeriodKey{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.Empty(t, rows, "membership rows deleted with the athlete")
}

func TestAthleteStore_GetByFullNameAndUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newStoredAthlete(t, s)

	got, err := s.Stores().Athletes.GetByFullName(ctx, "Ivan", "Petrovich", "Sidorov")
	require.NoError(t, err)
	assert.Equal(t, "Sidorov", got.LastName)

	unique, err := s.Stores().Athletes.IsNameUnique(ctx, "Ivan", "Petrovich", "Sidorov")
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = s.Stores().Athletes.IsNameUnique(ctx, "Petr", "", "Sidorov")
	require.NoError(t, err)
	assert.True(t, unique)

	_, err = s.Stores().Athletes.GetByFullName(ctx, "Nobody", "", "Here")
	assert.True(t, club.IsNotFound(err))
}

func TestAthleteStore_UpdateMissingAthlete(t *testing.T) {
	s := newTestStore(t)
	a, err := club.NewAthlete("Ivan", "", "Sidorov")
	require.NoError(t, err)
	err = s.Stores().Athletes.Update(context.Background(), a)
	assert.True(t, club.IsNotFound(err))
}

// =============================================================================
// PAYERS
// =============================================================================

func TestPayerStore_DeleteCascadesLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newStoredAthlete(t, s)

	payer, err := club.NewPayer("Olga", "", "Sidorova")
	require.NoError(t, err)
	require.NoError(t, s.Stores().Payers.Add(ctx, payer))
	require.NoError(t, a.AddPayer(payer.ID, club.PayerMother))
	require.NoError(t, s.Stores().Athletes.Update(ctx, a))

	require.NoError(t, s.Stores().Payers.Delete(ctx, payer.ID))

	got, err := s.Stores().Athletes.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Payers, "link removed with the payer")
}

// =============================================================================
// PERIODS
// =============================================================================

func TestPeriodStore_NaturalKeyAndRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ym := range [][2]int{{2024, 12}, {2025, 1}, {2025, 3}} {
		p, err := club.NewMembershipPeriod(ym[1], ym[0], decimal.New(2000, 0))
		require.NoError(t, err)
		require.NoError(t, s.Stores().Periods.Add(ctx, p))
	}

	got, err := s.Stores().Periods.GetByYearMonth(ctx, 2025, 1)
	require.NoError(t, err)
	assert.True(t, got.BaseFee.Equal(decimal.New(2000, 0)))

	// Range crosses a year boundary and is inclusive on both ends
	in, err := s.Stores().Periods.GetRange(ctx,
		club.PeriodKey{Year: 2024, Month: 12},
		club.PeriodKey{Year: 2025, Month: 1})
	require.NoError(t, err)
	require.Len(t, in, 2)
	assert.Equal(t, club.PeriodKey{Year: 2024, Month: 12}, in[0].Key())
	assert.Equal(t, club.PeriodKey{Year: 2025, Month: 1}, in[1].Key())

	_, err = s.Stores().Periods.GetByYearMonth(ctx, 2025, 2)
	assert.True(t, club.IsNotFound(err))

	require.NoError(t, s.Stores().Periods.Delete(ctx, club.PeriodKey{Year: 2025, Month: 3}))
	all, err := s.Stores().Periods.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPeriodStore_UpdatePersistsFee(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := club.NewMembershipPeriod(3, 2025, decimal.New(2000, 0))
	require.NoError(t, err)
	require.NoError(t, s.Stores().Periods.Add(ctx, p))

	require.NoError(t, p.UpdateBaseFee(decimal.New(3000, 0)))
	require.NoError(t, s.Stores().Periods.Update(ctx, p))

	got, err := s.Stores().Periods.GetByYearMonth(ctx, 2025, 3)
	require.NoError(t, err)
	assert.True(t, got.BaseFee.Equal(decimal.New(3000, 0)))
}

// =============================================================================
// UNIT OF WORK
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: A transaction adds an athlete and a period, then fails
	// THEN: Neither write survives

	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(stores club.Stores) error {
		a, err := club.NewAthlete("Ivan", "", "Sidorov")
		if err != nil {
			return err
		}
		if err := stores.Athletes.Add(ctx, a); err != nil {
			return err
		}
		p, err := club.NewMembershipPeriod(3, 2025, decimal.New(2000, 0))
		if err != nil {
			return err
		}
		if err := stores.Periods.Add(ctx, p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := s.Stores().Athletes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	all, err := s.Stores().Periods.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWithTx_CommitPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(stores club.Stores) error {
		a, err := club.NewAthlete("Ivan", "", "Sidorov")
		if err != nil {
			return err
		}
		return stores.Athletes.Add(ctx, a)
	})
	require.NoError(t, err)

	count, err := s.Stores().Athletes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// BANK STORES
// =============================================================================

func bankTx(day int, amount string, currency string) *banking.Transaction {
	amt, _ := decimal.NewFromString(amount)
	return &banking.Transaction{
		OperationDate:   time.Date(2025, time.March, day, 10, 30, 0, 0, time.UTC),
		PaymentDate:     time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
		CardLastDigits:  "1234",
		Status:          "OK",
		Amount:          amt,
		Currency:        currency,
		PaymentAmount:   amt,
		PaymentCurrency: currency,
		Category:        "Transfers",
		Description:     "Membership fee",
		BonusAmount:     decimal.Zero,
		RoundUpAmount:   decimal.Zero,
		AmountWithRound: amt,
	}
}

func TestBankTransactionStore_ExistsComparesDecimals(t *testing.T) {
	// "2000" and "2000.00" are the same amount; the dedup must agree.

	s := newTestStore(t)
	ctx := context.Background()

	tx := bankTx(1, "2000", "RUB")
	require.NoError(t, s.Transactions().Add(ctx, tx))

	other, _ := decimal.NewFromString("2000.00")
	exists, err := s.Transactions().Exists(ctx, tx.OperationDate, other, "RUB")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Transactions().Exists(ctx, tx.OperationDate, other, "EUR")
	require.NoError(t, err)
	assert.False(t, exists, "currency is part of the key")

	exists, err = s.Transactions().Exists(ctx, tx.OperationDate.Add(time.Second), other, "RUB")
	require.NoError(t, err)
	assert.False(t, exists, "date is part of the key")
}

func TestBankTransactionStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cb, _ := decimal.NewFromString("15.5")
	tx := bankTx(1, "2000.5", "RUB")
	tx.Cashback = &cb
	require.NoError(t, s.Transactions().Add(ctx, tx))
	require.NoError(t, s.Transactions().Add(ctx, bankTx(2, "1000", "RUB")))

	got, err := s.Transactions().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first
	assert.Equal(t, 2, got[0].OperationDate.Day())
	assert.Equal(t, "2000.5", got[1].Amount.String())
	require.NotNil(t, got[1].Cashback)
	assert.Equal(t, "15.5", got[1].Cashback.String())
	assert.False(t, got[1].Processed)
}

func TestImportStore_RoundTripWithDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	imp, err := banking.NewImport("march.csv", "abc123", 2)
	require.NoError(t, err)
	require.NoError(t, s.Imports().Add(ctx, imp))

	imp.UpdateStatistics(1, 0, 1)
	require.NoError(t, s.Imports().Update(ctx, imp))

	require.NoError(t, s.Imports().AddDetail(ctx,
		banking.NewImportDetail(imp.ID, 1, banking.RowSuccess, "raw;data", "")))
	require.NoError(t, s.Imports().AddDetail(ctx,
		banking.NewImportDetail(imp.ID, 2, banking.RowError, "bad;data", "boom")))

	got, err := s.Imports().GetByFileHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, imp.ID, got.ID)
	assert.Equal(t, 1, got.SuccessCount)
	assert.Equal(t, 1, got.ErrorCount)

	_, err = s.Imports().GetByFileHash(ctx, "missing")
	assert.True(t, club.IsNotFound(err))

	details, err := s.Imports().GetDetails(ctx, imp.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, banking.RowSuccess, details[0].Outcome)
	assert.Empty(t, details[0].ErrorMessage)
	assert.Equal(t, "boom", details[1].ErrorMessage)
}
