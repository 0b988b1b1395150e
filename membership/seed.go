package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rowclub/membership-engine/club"
)

// =============================================================================
// COMPOSITE SEEDING - athlete + payers + memberships in one transaction
// =============================================================================

// SeedPayer names one payer to link, with the role as a raw string so bulk
// input (spreadsheets, fixtures) can carry it verbatim.
type SeedPayer struct {
	FirstName  string
	SecondName string
	LastName   string
	Role       string
}

// SeedMembership assigns the athlete to one month. The period must already
// be seeded; membership cannot reference a fee schedule that does not exist.
type SeedMembership struct {
	Month       int
	Year        int
	Coefficient decimal.Decimal
}

// SeedAthleteInput is the full desired state for one athlete.
type SeedAthleteInput struct {
	FirstName   string
	SecondName  string
	LastName    string
	Payers      []SeedPayer
	Memberships []SeedMembership
}

// OutcomeStatus classifies what happened to one seed item.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created" // entity did not exist, was created
	OutcomeReused  OutcomeStatus = "reused"  // entity existed, reused as-is
	OutcomeLinked  OutcomeStatus = "linked"  // payer link added
	OutcomeSkipped OutcomeStatus = "skipped" // link already present
	OutcomeWarned  OutcomeStatus = "warned"  // item dropped, see Detail
	OutcomeSet     OutcomeStatus = "set"     // membership upserted
)

// Outcome reports the fate of a single item in the seed batch. The
// tolerate-vs-abort policy is explicit in data rather than buried in logs:
// warned items were dropped but the batch went on; anything fatal surfaces
// as the command's error instead.
type Outcome struct {
	Kind   string // "athlete", "payer", "link", "membership"
	Name   string
	Status OutcomeStatus
	Detail string
}

// SeedResult is the per-item audit of one composite seed command.
type SeedResult struct {
	AthleteID club.AthleteID
	Outcomes  []Outcome
}

func (r *SeedResult) add(kind, name string, status OutcomeStatus, detail string) {
	r.Outcomes = append(r.Outcomes, Outcome{Kind: kind, Name: name, Status: status, Detail: detail})
}

// Seeder runs the composite seed command.
type Seeder struct {
	uow club.UnitOfWork
	log *slog.Logger
}

func NewSeeder(uow club.UnitOfWork, log *slog.Logger) *Seeder {
	if log == nil {
		log = slog.Default()
	}
	return &Seeder{uow: uow, log: log}
}

// SeedAthlete brings one athlete to the desired state in a single
// transaction:
//
//  1. Look up the athlete by exact full name; create if absent.
//  2. For each payer: look up by full name, create if absent, link under the
//     parsed role. Unparseable roles are skipped with a warning, duplicate
//     links with a skip - neither is fatal.
//  3. For each membership: the referenced period MUST exist; a missing
//     period aborts and rolls back the whole command.
//
// Either the whole desired state commits or none of it does.
func (s *Seeder) SeedAthlete(ctx context.Context, input SeedAthleteInput) (*SeedResult, error) {
	result := &SeedResult{}

	err := s.uow.WithTx(ctx, func(stores club.Stores) error {
		athlete, err := s.findOrCreateAthlete(ctx, stores, input, result)
		if err != nil {
			return err
		}

		for _, sp := range input.Payers {
			if err := s.linkPayer(ctx, stores, athlete, sp, result); err != nil {
				return err
			}
		}

		for _, sm := range input.Memberships {
			key := club.PeriodKey{Year: sm.Year, Month: sm.Month}
			if _, err := stores.Periods.GetByYearMonth(ctx, sm.Year, sm.Month); err != nil {
				if errors.Is(err, club.ErrNotFound) {
					return &club.DomainError{
						Message: fmt.Sprintf("membership period %s does not exist; seed the fee schedule first", key),
					}
				}
				return err
			}
			if err := athlete.SetMembership(sm.Month, sm.Year, sm.Coefficient); err != nil {
				return err
			}
			result.add("membership", key.String(), OutcomeSet, "")
		}

		if err := stores.Athletes.Update(ctx, athlete); err != nil {
			return err
		}
		result.AthleteID = athlete.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("athlete_seeded",
		"athlete_id", string(result.AthleteID),
		"items", len(result.Outcomes),
	)
	return result, nil
}

func (s *Seeder) findOrCreateAthlete(ctx context.Context, stores club.Stores, input SeedAthleteInput, result *SeedResult) (*club.Athlete, error) {
	athlete, err := stores.Athletes.GetByFullName(ctx, input.FirstName, input.SecondName, input.LastName)
	if err == nil {
		result.add("athlete", athlete.FullName(), OutcomeReused, "")
		return athlete, nil
	}
	if !errors.Is(err, club.ErrNotFound) {
		return nil, err
	}

	athlete, err = club.NewAthlete(input.FirstName, input.SecondName, input.LastName)
	if err != nil {
		return nil, err
	}
	if err := stores.Athletes.Add(ctx, athlete); err != nil {
		return nil, err
	}
	result.add("athlete", athlete.FullName(), OutcomeCreated, "")
	return athlete, nil
}

func (s *Seeder) linkPayer(ctx context.Context, stores club.Stores, athlete *club.Athlete, sp SeedPayer, result *SeedResult) error {
	name := sp.FirstName + " " + sp.LastName

	role, err := club.ParsePayerType(sp.Role)
	if err != nil {
		// Tolerated: one bad role in a large batch should not sink it.
		s.log.Warn("seed_payer_role_invalid", "payer", name, "role", sp.Role)
		result.add("link", name, OutcomeWarned, err.Error())
		return nil
	}

	payer, err := stores.Payers.GetByFullName(ctx, sp.FirstName, sp.SecondName, sp.LastName)
	if errors.Is(err, club.ErrNotFound) {
		payer, err = club.NewPayer(sp.FirstName, sp.SecondName, sp.LastName)
		if err != nil {
			return err
		}
		if err := stores.Payers.Add(ctx, payer); err != nil {
			return err
		}
		result.add("payer", payer.FullName(), OutcomeCreated, "")
	} else if err != nil {
		return err
	} else {
		result.add("payer", payer.FullName(), OutcomeReused, "")
	}

	if athlete.HasPayer(payer.ID, role) {
		result.add("link", name, OutcomeSkipped, "already linked as "+string(role))
		return nil
	}
	if err := athlete.AddPayer(payer.ID, role); err != nil {
		return err
	}
	result.add("link", name, OutcomeLinked, string(role))
	return nil
}
