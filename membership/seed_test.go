package membership_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowclub/membership-engine/club"
	"github.com/rowclub/membership-engine/club/store"
	"github.com/rowclub/membership-engine/membership"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestSeeder(t *testing.T) (*membership.Seeder, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	return membership.NewSeeder(m, nil), m
}

func seedMarch(t *testing.T, m *store.Memory) {
	t.Helper()
	svc := membership.NewPeriodService(m, nil)
	_, err := svc.CreateMissingPeriods(context.Background(), rangeParams(2000, 2025, 3, 2025, 3))
	require.NoError(t, err)
}

func fullInput() membership.SeedAthleteInput {
	return membership.SeedAthleteInput{
		FirstName: "Ivan",
		LastName:  "Sidorov",
		Payers: []membership.SeedPayer{
			{FirstName: "Olga", LastName: "Sidorova", Role: "mother"},
		},
		Memberships: []membership.SeedMembership{
			{Year: 2025, Month: 3, Coefficient: club.CoefficientHalf},
		},
	}
}

func outcomes(r *membership.SeedResult, kind string) []membership.Outcome {
	var got []membership.Outcome
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			got = append(got, o)
		}
	}
	return got
}

// =============================================================================
// COMPOSITE SEEDING
// =============================================================================

func TestSeedAthlete_CreatesAthletePayerAndMembership(t *testing.T) {
	// GIVEN: An empty club with the March period seeded
	// WHEN: Seeding an athlete with one payer and one membership
	// THEN: Everything exists and the outcomes report created/linked/set

	seeder, m := newTestSeeder(t)
	ctx := context.Background()
	seedMarch(t, m)

	result, err := seeder.SeedAthlete(ctx, fullInput())
	require.NoError(t, err)
	require.NotEmpty(t, result.AthleteID)

	athlete, err := m.Stores().Athletes.GetByID(ctx, result.AthleteID)
	require.NoError(t, err)
	assert.Len(t, athlete.Payers, 1)
	assert.Equal(t, club.PayerMother, athlete.Payers[0].Role)

	coeff, ok := athlete.ParticipationCoefficient(club.PeriodKey{Year: 2025, Month: 3})
	require.True(t, ok)
	assert.True(t, coeff.Equal(club.CoefficientHalf))

	payer, err := m.Stores().Payers.GetByFullName(ctx, "Olga", "", "Sidorova")
	require.NoError(t, err)
	assert.Equal(t, athlete.Payers[0].PayerID, payer.ID)

	require.Len(t, outcomes(result, "athlete"), 1)
	assert.Equal(t, membership.OutcomeCreated, outcomes(result, "athlete")[0].Status)
	assert.Equal(t, membership.OutcomeLinked, outcomes(result, "link")[0].Status)
	assert.Equal(t, membership.OutcomeSet, outcomes(result, "membership")[0].Status)
}

func TestSeedAthlete_RerunReusesAndSkips(t *testing.T) {
	// GIVEN: A previously seeded athlete
	// WHEN: Seeding the identical input again
	// THEN: Athlete and payer are reused, the link is skipped, nothing doubles

	seeder, m := newTestSeeder(t)
	ctx := context.Background()
	seedMarch(t, m)

	_, err := seeder.SeedAthlete(ctx, fullInput())
	require.NoError(t, err)

	result, err := seeder.SeedAthlete(ctx, fullInput())
	require.NoError(t, err)

	assert.Equal(t, membership.OutcomeReused, outcomes(result, "athlete")[0].Status)
	assert.Equal(t, membership.OutcomeReused, outcomes(result, "payer")[0].Status)
	assert.Equal(t, membership.OutcomeSkipped, outcomes(result, "link")[0].Status)

	count, err := m.Stores().Athletes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same full name must resolve to the same athlete")

	athlete, err := m.Stores().Athletes.GetByID(ctx, result.AthleteID)
	require.NoError(t, err)
	assert.Len(t, athlete.Payers, 1, "no duplicate links")
	assert.Len(t, athlete.Memberships, 1, "membership upserted, not doubled")
}

func TestSeedAthlete_InvalidRoleWarnsAndContinues(t *testing.T) {
	// GIVEN: Input with one valid and one garbage payer role
	// WHEN: Seeding
	// THEN: The bad payer is dropped with a warning; the rest commits

	seeder, m := newTestSeeder(t)
	ctx := context.Background()
	seedMarch(t, m)

	input := fullInput()
	input.Payers = append(input.Payers, membership.SeedPayer{
		FirstName: "Boris", LastName: "Sidorov", Role: "grandparent",
	})

	result, err := seeder.SeedAthlete(ctx, input)
	require.NoError(t, err)

	links := outcomes(result, "link")
	require.Len(t, links, 2)
	statuses := []membership.OutcomeStatus{links[0].Status, links[1].Status}
	assert.Contains(t, statuses, membership.OutcomeLinked)
	assert.Contains(t, statuses, membership.OutcomeWarned)

	athlete, err := m.Stores().Athletes.GetByID(ctx, result.AthleteID)
	require.NoError(t, err)
	assert.Len(t, athlete.Payers, 1, "only the valid payer is linked")

	// The dropped payer was never created
	_, err = m.Stores().Payers.GetByFullName(ctx, "Boris", "", "Sidorov")
	assert.True(t, club.IsNotFound(err))
}

func TestSeedAthlete_MissingPeriodAbortsAndRollsBack(t *testing.T) {
	// GIVEN: No periods seeded at all
	// WHEN: Seeding an athlete with a membership
	// THEN: The command fails and not even the athlete is persisted

	seeder, m := newTestSeeder(t)
	ctx := context.Background()

	_, err := seeder.SeedAthlete(ctx, fullInput())
	require.Error(t, err)
	assert.True(t, club.IsClientError(err))
	assert.Contains(t, err.Error(), "2025-03")

	count, err := m.Stores().Athletes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "whole command rolls back")

	_, err = m.Stores().Payers.GetByFullName(ctx, "Olga", "", "Sidorova")
	assert.True(t, club.IsNotFound(err), "payer creation rolls back too")
}

func TestSeedAthlete_NoPayersNoMemberships(t *testing.T) {
	seeder, m := newTestSeeder(t)
	ctx := context.Background()

	result, err := seeder.SeedAthlete(ctx, membership.SeedAthleteInput{
		FirstName: "Ivan", LastName: "Sidorov",
	})
	require.NoError(t, err)

	athlete, err := m.Stores().Athletes.GetByID(ctx, result.AthleteID)
	require.NoError(t, err)
	assert.Empty(t, athlete.Payers)
	assert.Empty(t, athlete.Memberships)
}

func TestSeedAthlete_InvalidNameFails(t *testing.T) {
	seeder, _ := newTestSeeder(t)
	_, err := seeder.SeedAthlete(context.Background(), membership.SeedAthleteInput{
		FirstName: "", LastName: "Sidorov",
	})
	require.Error(t, err)
	assert.True(t, club.IsClientError(err))
}
