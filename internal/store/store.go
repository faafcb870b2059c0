// SPDX-License-Identifier: MPL-2.0

package store

import (
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/invowk/medkit/pkg/medicine"
)

type (
	// Store holds packages keyed by ID together with the last assigned ID.
	// Invariants: every stored ID is positive and unique, and lastID never
	// decreases, so removed IDs are never reused.
	Store struct {
		mu       sync.RWMutex
		packages map[int]medicine.Package
		lastID   int
	}

	// AddFailure reports one package AddMany could not store.
	AddFailure struct {
		Package medicine.Package
		Err     error
	}
)

// New returns an empty store with the counter at zero.
func New() *Store {
	return &Store{packages: make(map[int]medicine.Package)}
}

// Add stores a copy of p and returns that copy. An unassigned package (ID 0)
// receives lastID+1. A package that already carries an ID is being restored:
// it keeps its ID and the counter advances to at least that value. Adding an
// ID that is already present fails with KindConflict.
func (s *Store) Add(p medicine.Package) (medicine.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(p)
}

func (s *Store) add(p medicine.Package) (medicine.Package, error) {
	// The zero Package has no dosage form and was never built by a Factory.
	if err := p.Variant().Validate(); err != nil {
		return medicine.Package{}, err
	}
	if id := p.ID(); id != 0 {
		if _, exists := s.packages[id]; exists {
			return medicine.Package{}, &medicine.Error{Op: "add", Field: "id", Kind: medicine.KindConflict, Value: id,
				Reason: "package " + strconv.Itoa(id) + " already exists"}
		}
		s.lastID = max(s.lastID, id)
	} else {
		if err := p.AssignID(s.lastID + 1); err != nil {
			return medicine.Package{}, err
		}
		s.lastID = p.ID()
	}
	s.packages[p.ID()] = p
	return p, nil
}

// AddMany adds each package independently. Failures do not roll back earlier
// successes; they are returned in input order.
func (s *Store) AddMany(packages []medicine.Package) []AddFailure {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failures []AddFailure
	for _, p := range packages {
		if _, err := s.add(p); err != nil {
			failures = append(failures, AddFailure{Package: p, Err: err})
		}
	}
	return failures
}

// Remove deletes the package with the given ID. The ID is not reused.
func (s *Store) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packages[id]; !ok {
		return notFound("remove", id)
	}
	delete(s.packages, id)
	return nil
}

// Update replaces the stored copy of p wholesale.
func (s *Store) Update(p medicine.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packages[p.ID()]; !ok {
		return notFound("update", p.ID())
	}
	s.packages[p.ID()] = p
	return nil
}

// Lookup returns a copy of the package with the given ID.
func (s *Store) Lookup(id int) (medicine.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.packages[id]
	if !ok {
		return medicine.Package{}, notFound("lookup", id)
	}
	return p, nil
}

// Get returns copies of all packages matching f, sorted by ID ascending.
// A filter with an ID is answered by a single direct lookup.
func (s *Store) Get(f Filter) []medicine.Package {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.ID != nil {
		p, ok := s.packages[*f.ID]
		if !ok || !f.Matches(p) {
			return []medicine.Package{}
		}
		return []medicine.Package{p}
	}

	all := f.IsZero()
	out := make([]medicine.Package, 0, len(s.packages))
	for _, id := range slices.Sorted(maps.Keys(s.packages)) {
		if p := s.packages[id]; all || f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// GetExpired returns copies of every expired package, sorted by ID.
func (s *Store) GetExpired() []medicine.Package {
	all := s.Get(Filter{})
	return slices.DeleteFunc(all, func(p medicine.Package) bool { return !p.IsExpired() })
}

// Count returns the number of stored packages.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.packages)
}

// AdvanceLastID raises the counter to at least id. It never lowers it, so a
// restored counter keeps IDs of packages removed in earlier runs retired.
func (s *Store) AdvanceLastID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID = max(s.lastID, id)
}

// LastID returns the highest ID ever assigned or restored.
func (s *Store) LastID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID
}

func notFound(op string, id int) error {
	return &medicine.Error{Op: op, Field: "id", Kind: medicine.KindNotFound, Value: id,
		Reason: "package " + strconv.Itoa(id) + " does not exist"}
}
