// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/invowk/medkit/internal/store"
	"github.com/invowk/medkit/pkg/medicine"
)

type (
	// Manager coordinates the factory and the store for one inventory.
	Manager struct {
		store   *store.Store
		factory medicine.Factory
		logger  *log.Logger
	}

	// AddRequest holds the raw fields of a new package. A nil
	// CurrentQuantity means a full package.
	AddRequest struct {
		Variant         medicine.Variant
		Title           string
		ExpirationDate  time.Time
		Capacity        float64
		CurrentQuantity *float64
	}

	// EditRequest lists the fields to change. Nil fields keep their current
	// value. A Variant different from the current one rebuilds the package as
	// the new variant under the same ID.
	EditRequest struct {
		Variant         *medicine.Variant
		Title           *string
		ExpirationDate  *time.Time
		Capacity        *float64
		CurrentQuantity *float64
	}
)

// New returns a Manager over s. A nil logger discards all output.
func New(s *store.Store, factory medicine.Factory, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{store: s, factory: factory, logger: logger}
}

// Factory returns the factory packages are built with.
func (m *Manager) Factory() medicine.Factory { return m.factory }

// Add builds a package from req and stores it under a fresh ID.
func (m *Manager) Add(req AddRequest) (medicine.Package, error) {
	p, err := m.build(req)
	if err != nil {
		return medicine.Package{}, err
	}
	stored, err := m.store.Add(p)
	if err != nil {
		return medicine.Package{}, err
	}
	m.logger.Debug("package added", "id", stored.ID(), "variant", stored.Variant(), "title", stored.Title())
	return stored, nil
}

// Duplicates validates req and returns the stored packages whose variant and
// field values are identical to it. Duplicates are allowed; callers decide
// whether to warn or refuse.
func (m *Manager) Duplicates(req AddRequest) ([]medicine.Package, error) {
	p, err := m.build(req)
	if err != nil {
		return nil, err
	}
	return m.store.Get(store.SameAs(p)), nil
}

// Remove deletes the package with the given ID.
func (m *Manager) Remove(id int) error {
	if err := m.store.Remove(id); err != nil {
		return err
	}
	m.logger.Debug("package removed", "id", id)
	return nil
}

// Edit applies req to the package with the given ID and writes it back.
// On any failure the stored package is left as it was.
func (m *Manager) Edit(id int, req EditRequest) (medicine.Package, error) {
	current, err := m.store.Lookup(id)
	if err != nil {
		return medicine.Package{}, err
	}

	var next medicine.Package
	if req.Variant != nil && *req.Variant != current.Variant() {
		next, err = m.convert(current, *req.Variant, req)
		if err != nil {
			return medicine.Package{}, err
		}
		m.logger.Debug("package variant changed", "id", id, "from", current.Variant(), "to", next.Variant())
	} else {
		next = current
		if err := next.Update(medicine.Patch{
			Title:           req.Title,
			ExpirationDate:  req.ExpirationDate,
			Capacity:        req.Capacity,
			CurrentQuantity: req.CurrentQuantity,
		}); err != nil {
			return medicine.Package{}, err
		}
	}

	if err := m.store.Update(next); err != nil {
		return medicine.Package{}, err
	}
	m.logger.Debug("package edited", "id", id)
	return next, nil
}

// convert rebuilds current as variant v, taking each field from req when set
// and from current otherwise, and restores the original ID.
func (m *Manager) convert(current medicine.Package, v medicine.Variant, req EditRequest) (medicine.Package, error) {
	title := current.Title()
	if req.Title != nil {
		title = *req.Title
	}
	exp := current.ExpirationDate()
	if req.ExpirationDate != nil {
		exp = *req.ExpirationDate
	}
	capacity := current.Capacity()
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	qty := current.CurrentQuantity()
	if req.CurrentQuantity != nil {
		qty = *req.CurrentQuantity
	}

	next, err := m.factory.Create(v, title, exp, capacity, &qty)
	if err != nil {
		return medicine.Package{}, err
	}
	if err := next.AssignID(current.ID()); err != nil {
		return medicine.Package{}, err
	}
	return next, nil
}

// Consume takes units from the package with the given ID. It reports whether
// anything was taken; a refused request (expired, empty or not enough left)
// is not an error and leaves the package unchanged.
func (m *Manager) Consume(id int, units float64) (medicine.Package, bool, error) {
	p, err := m.store.Lookup(id)
	if err != nil {
		return medicine.Package{}, false, err
	}
	if !p.ConsumeUnits(units) {
		m.logger.Debug("consumption refused", "id", id, "units", units,
			"expired", p.IsExpired(), "empty", p.IsEmpty(), "left", p.CurrentQuantity())
		return p, false, nil
	}
	if err := m.store.Update(p); err != nil {
		return medicine.Package{}, false, err
	}
	m.logger.Debug("units consumed", "id", id, "units", units, "left", p.CurrentQuantity())
	return p, true, nil
}

// Query returns the packages matching f, sorted by ID. A title filter is
// normalized the same way stored titles are.
func (m *Manager) Query(f store.Filter) []medicine.Package {
	if f.Title != nil {
		title := medicine.NormalizeTitle(*f.Title)
		f.Title = &title
	}
	if f.ExpirationDate != nil {
		date := medicine.DateOf(*f.ExpirationDate)
		f.ExpirationDate = &date
	}
	return m.store.Get(f)
}

// Packages returns the whole inventory sorted by ID.
func (m *Manager) Packages() []medicine.Package {
	return m.Query(store.Filter{})
}

// Expired returns every package whose expiration date is today or earlier.
func (m *Manager) Expired() []medicine.Package {
	return m.store.GetExpired()
}

// Count returns the number of stored packages.
func (m *Manager) Count() int {
	return m.store.Count()
}

// LastID returns the highest ID the inventory has handed out.
func (m *Manager) LastID() int {
	return m.store.LastID()
}

// Select resolves ref to packages: a positive integer is looked up as an ID,
// anything else is matched against titles. No match fails with KindNotFound.
func (m *Manager) Select(ref string) ([]medicine.Package, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		p, err := m.store.Lookup(id)
		if err != nil {
			return nil, err
		}
		return []medicine.Package{p}, nil
	}

	matches := m.Query(store.Filter{Title: &ref})
	if len(matches) == 0 {
		return nil, &medicine.Error{Op: "select", Field: "title", Kind: medicine.KindNotFound, Value: ref,
			Reason: "no package has this title"}
	}
	return matches, nil
}

// Seed adds previously persisted packages, keeping their IDs. Failures are
// logged and returned; the rest of the batch is still stored.
func (m *Manager) Seed(packages []medicine.Package) []store.AddFailure {
	failures := m.store.AddMany(packages)
	for _, f := range failures {
		m.logger.Warn("package not restored", "id", f.Package.ID(), "title", f.Package.Title(), "error", f.Err)
	}
	m.logger.Debug("inventory seeded", "requested", len(packages), "failed", len(failures))
	return failures
}

// RestoreLastID advances the ID counter to a previously persisted value.
func (m *Manager) RestoreLastID(id int) {
	m.store.AdvanceLastID(id)
	m.logger.Debug("id counter restored", "lastId", m.store.LastID())
}

func (m *Manager) build(req AddRequest) (medicine.Package, error) {
	return m.factory.Create(req.Variant, req.Title, req.ExpirationDate, req.Capacity, req.CurrentQuantity)
}
