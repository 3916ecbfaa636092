// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// package mock is a programmable [pedigree.Source] for testing.
//
// Families and persons are added with simple constructors, fetches can be delayed or made to fail,
// and the source records the number of calls and the peak number of concurrent calls.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/pedigree/pedigree/pkg/pedigree"
)

var _ pedigree.Source = &Source{}

// Source is a mock data source. Configure it before use, it is safe for concurrent fetches.
//
// Delays, failures, hooks and call counts are keyed by id alone: families and persons share one namespace,
// so a family and a person with the same id are configured and counted together.
// Tests should use distinct ids for families and persons.
type Source struct {
	// Delay applied to every fetch.
	Delay time.Duration

	families map[pedigree.FamilyID]*pedigree.Family
	persons  map[pedigree.PersonID]*pedigree.Person
	delays   map[string]time.Duration
	fail     map[string]error
	hooks    map[string]func()

	m           sync.Mutex
	calls       map[string]int // GUARDED_BY(m)
	inFlight    int            // GUARDED_BY(m)
	maxInFlight int            // GUARDED_BY(m)
}

func NewSource() *Source {
	return &Source{
		families: map[pedigree.FamilyID]*pedigree.Family{},
		persons:  map[pedigree.PersonID]*pedigree.Person{},
		delays:   map[string]time.Duration{},
		fail:     map[string]error{},
		hooks:    map[string]func(){},
		calls:    map[string]int{},
	}
}

// AddFamily adds a family, husband and wife may be empty.
func (s *Source) AddFamily(id, husband, wife string, children ...string) *Source {
	f := &pedigree.Family{ID: pedigree.FamilyID(id), Husband: pedigree.PersonID(husband), Wife: pedigree.PersonID(wife)}
	for _, c := range children {
		f.Children = append(f.Children, pedigree.PersonID(c))
	}
	s.families[f.ID] = f
	return s
}

// AddPerson adds a person, parent may be empty.
func (s *Source) AddPerson(id, parent string) *Source {
	s.persons[pedigree.PersonID(id)] = &pedigree.Person{ID: pedigree.PersonID(id), ParentFamily: pedigree.FamilyID(parent)}
	return s
}

// DelayOn delays fetches of a family or person id.
func (s *Source) DelayOn(id string, d time.Duration) *Source { s.delays[id] = d; return s }

// FailOn makes fetches of a family or person id return err.
func (s *Source) FailOn(id string, err error) *Source { s.fail[id] = err; return s }

// HookOn calls f at the start of every fetch of id, before any delay.
func (s *Source) HookOn(id string, f func()) *Source { s.hooks[id] = f; return s }

func (s *Source) Family(ctx context.Context, id pedigree.FamilyID) (*pedigree.Family, error) {
	if err := s.call(ctx, string(id)); err != nil {
		return nil, err
	}
	if f, ok := s.families[id]; ok {
		return f, nil
	}
	return nil, pedigree.FamilyNotFound(id)
}

func (s *Source) Person(ctx context.Context, id pedigree.PersonID) (*pedigree.Person, error) {
	if err := s.call(ctx, string(id)); err != nil {
		return nil, err
	}
	if p, ok := s.persons[id]; ok {
		return p, nil
	}
	return nil, pedigree.PersonNotFound(id)
}

// Calls is the number of fetches of id.
func (s *Source) Calls(id string) int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.calls[id]
}

// TotalCalls is the number of fetches of any id.
func (s *Source) TotalCalls() (n int) {
	s.m.Lock()
	defer s.m.Unlock()
	for _, c := range s.calls {
		n += c
	}
	return n
}

// MaxInFlight is the peak number of concurrent fetches.
func (s *Source) MaxInFlight() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.maxInFlight
}

func (s *Source) call(ctx context.Context, id string) error {
	s.m.Lock()
	s.calls[id]++
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)
	s.m.Unlock()
	defer func() {
		s.m.Lock()
		s.inFlight--
		s.m.Unlock()
	}()

	if f := s.hooks[id]; f != nil {
		f()
	}
	if d := s.Delay + s.delays[id]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fail[id]
}
