// Package store provides in-memory Store implementations for testing/dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rowclub/membership-engine/club"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds every entity behind one mutex so WithTx can snapshot and
// restore the whole state on rollback.
type Memory struct {
	mu       sync.RWMutex
	athletes map[club.AthleteID]club.Athlete
	payers   map[club.PayerID]club.Payer
	periods  map[club.PeriodKey]club.MembershipPeriod
}

func NewMemory() *Memory {
	return &Memory{
		athletes: make(map[club.AthleteID]club.Athlete),
		payers:   make(map[club.PayerID]club.Payer),
		periods:  make(map[club.PeriodKey]club.MembershipPeriod),
	}
}

// Stores returns the store set backed by this memory instance.
func (m *Memory) Stores() club.Stores {
	return club.Stores{
		Athletes:    &memAthletes{m},
		Payers:      &memPayers{m},
		Periods:     &memPeriods{m},
		Memberships: &memMemberships{m},
	}
}

// WithTx executes fn against the stores. For the memory store this is
// simulated with a snapshot + rollback on error.
func (m *Memory) WithTx(_ context.Context, fn func(club.Stores) error) error {
	m.mu.Lock()
	snapshot := m.snapshot()
	m.mu.Unlock()

	if err := fn(m.Stores()); err != nil {
		m.mu.Lock()
		m.restore(snapshot)
		m.mu.Unlock()
		return err
	}
	return nil
}

type memorySnapshot struct {
	athletes map[club.AthleteID]club.Athlete
	payers   map[club.PayerID]club.Payer
	periods  map[club.PeriodKey]club.MembershipPeriod
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		athletes: make(map[club.AthleteID]club.Athlete, len(m.athletes)),
		payers:   make(map[club.PayerID]club.Payer, len(m.payers)),
		periods:  make(map[club.PeriodKey]club.MembershipPeriod, len(m.periods)),
	}
	for k, v := range m.athletes {
		s.athletes[k] = cloneAthlete(v)
	}
	for k, v := range m.payers {
		s.payers[k] = v
	}
	for k, v := range m.periods {
		s.periods[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.athletes = s.athletes
	m.payers = s.payers
	m.periods = s.periods
}

// Athletes hold slices, so a shallow map copy is not enough for rollback.
func cloneAthlete(a club.Athlete) club.Athlete {
	c := a
	c.Payers = append([]club.PayerLink(nil), a.Payers...)
	c.Memberships = append([]club.Membership(nil), a.Memberships...)
	return c
}

// =============================================================================
// ATHLETE STORE
// =============================================================================

type memAthletes struct{ m *Memory }

func (s *memAthletes) GetByID(_ context.Context, id club.AthleteID) (*club.Athlete, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.athletes[id]
	if !ok {
		return nil, &club.NotFoundError{Kind: "athlete", Key: string(id)}
	}
	a = cloneAthlete(a)
	return &a, nil
}

func (s *memAthletes) GetByFullName(_ context.Context, first, second, last string) (*club.Athlete, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, a := range s.m.athletes {
		if a.FirstName == first && a.SecondName == second && a.LastName == last {
			a = cloneAthlete(a)
			return &a, nil
		}
	}
	return nil, &club.NotFoundError{Kind: "athlete", Key: first + " " + last}
}

func (s *memAthletes) GetAll(_ context.Context) ([]*club.Athlete, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	result := make([]*club.Athlete, 0, len(s.m.athletes))
	for _, a := range s.m.athletes {
		a := cloneAthlete(a)
		result = append(result, &a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastName < result[j].LastName
	})
	return result, nil
}

func (s *memAthletes) Add(_ context.Context, a *club.Athlete) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.athletes[a.ID] = cloneAthlete(*a)
	return nil
}

func (s *memAthletes) Update(_ context.Context, a *club.Athlete) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.athletes[a.ID]; !ok {
		return &club.NotFoundError{Kind: "athlete", Key: string(a.ID)}
	}
	s.m.athletes[a.ID] = cloneAthlete(*a)
	return nil
}

func (s *memAthletes) Delete(_ context.Context, id club.AthleteID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.athletes, id)
	return nil
}

func (s *memAthletes) IsNameUnique(_ context.Context, first, second, last string) (bool, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, a := range s.m.athletes {
		if a.FirstName == first && a.SecondName == second && a.LastName == last {
			return false, nil
		}
	}
	return true, nil
}

func (s *memAthletes) Count(_ context.Context) (int, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return len(s.m.athletes), nil
}

// =============================================================================
// PAYER STORE
// =============================================================================

type memPayers struct{ m *Memory }

func (s *memPayers) GetByID(_ context.Context, id club.PayerID) (*club.Payer, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.payers[id]
	if !ok {
		return nil, &club.NotFoundError{Kind: "payer", Key: string(id)}
	}
	return &p, nil
}

func (s *memPayers) GetByFullName(_ context.Context, first, second, last string) (*club.Payer, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, p := range s.m.payers {
		if p.FirstName == first && p.SecondName == second && p.LastName == last {
			p := p
			return &p, nil
		}
	}
	return nil, &club.NotFoundError{Kind: "payer", Key: first + " " + last}
}

func (s *memPayers) GetAll(_ context.Context) ([]*club.Payer, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	result := make([]*club.Payer, 0, len(s.m.payers))
	for _, p := range s.m.payers {
		p := p
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastName < result[j].LastName
	})
	return result, nil
}

func (s *memPayers) Add(_ context.Context, p *club.Payer) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.payers[p.ID] = *p
	return nil
}

func (s *memPayers) Update(_ context.Context, p *club.Payer) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.payers[p.ID]; !ok {
		return &club.NotFoundError{Kind: "payer", Key: string(p.ID)}
	}
	s.m.payers[p.ID] = *p
	return nil
}

func (s *memPayers) Delete(_ context.Context, id club.PayerID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.payers, id)
	// Cascade: drop the payer's links from every athlete.
	for aid, a := range s.m.athletes {
		kept := a.Payers[:0]
		for _, link := range a.Payers {
			if link.PayerID != id {
				kept = append(kept, link)
			}
		}
		a.Payers = kept
		s.m.athletes[aid] = a
	}
	return nil
}

// =============================================================================
// PERIOD STORE
// =============================================================================

type memPeriods struct{ m *Memory }

func (s *memPeriods) GetByYearMonth(_ context.Context, year, month int) (*club.MembershipPeriod, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.periods[club.PeriodKey{Year: year, Month: month}]
	if !ok {
		return nil, &club.NotFoundError{Kind: "period", Key: club.PeriodKey{Year: year, Month: month}.String()}
	}
	return &p, nil
}

func (s *memPeriods) GetAll(ctx context.Context) ([]*club.MembershipPeriod, error) {
	from := club.PeriodKey{Year: club.MinPeriodYear, Month: 1}
	to := club.PeriodKey{Year: club.MaxPeriodYear, Month: 12}
	return s.GetRange(ctx, from, to)
}

func (s *memPeriods) GetRange(_ context.Context, from, to club.PeriodKey) ([]*club.MembershipPeriod, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var result []*club.MembershipPeriod
	for k, p := range s.m.periods {
		if !k.Before(from) && !k.After(to) {
			p := p
			result = append(result, &p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key().Before(result[j].Key())
	})
	return result, nil
}

func (s *memPeriods) Add(_ context.Context, p *club.MembershipPeriod) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.periods[p.Key()] = *p
	return nil
}

func (s *memPeriods) Update(_ context.Context, p *club.MembershipPeriod) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.periods[p.Key()]; !ok {
		return &club.NotFoundError{Kind: "period", Key: p.Key().String()}
	}
	s.m.periods[p.Key()] = *p
	return nil
}

func (s *memPeriods) Delete(_ context.Context, key club.PeriodKey) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.periods, key)
	return nil
}

// =============================================================================
// MEMBERSHIP QUERIES
// =============================================================================

type memMemberships struct{ m *Memory }

func (s *memMemberships) GetByAthleteID(_ context.Context, id club.AthleteID) ([]club.Membership, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.athletes[id]
	if !ok {
		return nil, &club.NotFoundError{Kind: "athlete", Key: string(id)}
	}
	result := append([]club.Membership(nil), a.Memberships...)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period.Before(result[j].Period)
	})
	return result, nil
}

func (s *memMemberships) GetByPeriod(_ context.Context, key club.PeriodKey) ([]club.AthleteMembershipRow, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var result []club.AthleteMembershipRow
	for _, a := range s.m.athletes {
		for _, m := range a.Memberships {
			if m.Period == key {
				result = append(result, club.AthleteMembershipRow{AthleteID: a.ID, Membership: m})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AthleteID < result[j].AthleteID
	})
	return result, nil
}
