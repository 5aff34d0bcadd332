package gradle

import (
	"sync"

	"github.com/snapsam/gradle/module"
)

// ConstraintStore accumulates version constraints per module identity.
//
// Every entry is attributed to the coordinate that contributed it, so that
// constraints published by a module version can be withdrawn when that
// version loses conflict resolution. Entries keep stable discovery order,
// which gives resolution its deterministic tie-breaking. Semantically
// conflicting entries are kept side by side; conflicts are detected at
// selection time, not on record. When several require-strength constraints
// (for example from multiple imported BOMs) disagree, the highest version
// wins, consistent with general conflict resolution.
type ConstraintStore struct {
	mu   sync.Mutex
	byID map[module.ID][]record
}

// record is one stored constraint with its contributing coordinate. An empty
// contributor marks root-level entries (declared, lockfile), which are never
// retracted.
type record struct {
	constraint  module.Constraint
	contributor string
}

// NewConstraintStore creates an empty constraint store.
func NewConstraintStore() *ConstraintStore {
	return &ConstraintStore{
		byID: make(map[module.ID][]record),
	}
}

// Record adds a root-level constraint. Duplicates are kept; order is
// preserved.
func (s *ConstraintStore) Record(c module.Constraint) {
	s.RecordFrom("", c)
}

// RecordFrom adds a constraint attributed to the contributing coordinate.
func (s *ConstraintStore) RecordFrom(contributor string, c module.Constraint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.ID()
	s.byID[id] = append(s.byID[id], record{constraint: c, contributor: contributor})
}

// RecordAll adds a batch of root-level constraints in order.
func (s *ConstraintStore) RecordAll(cs []module.Constraint) {
	for _, c := range cs {
		s.RecordFrom("", c)
	}
}

// RecordAllFrom adds a batch of constraints from one contributor in order.
func (s *ConstraintStore) RecordAllFrom(contributor string, cs []module.Constraint) {
	for _, c := range cs {
		s.RecordFrom(contributor, c)
	}
}

// Retract removes every constraint contributed by the given coordinate and
// returns the identities whose constraint set changed.
func (s *ConstraintStore) Retract(contributor string) []module.ID {
	if contributor == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []module.ID
	for id, records := range s.byID {
		kept := records[:0]
		for _, rec := range records {
			if rec.contributor == contributor {
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) != len(records) {
			s.byID[id] = kept
			changed = append(changed, id)
		}
	}
	return changed
}

// For returns the constraints recorded for a module, in discovery order.
// The returned slice is a copy.
func (s *ConstraintStore) For(id module.ID) []module.Constraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.byID[id]
	if len(records) == 0 {
		return nil
	}
	out := make([]module.Constraint, len(records))
	for i, rec := range records {
		out[i] = rec.constraint
	}
	return out
}

// Strict returns the strict constraints for a module, in discovery order.
func (s *ConstraintStore) Strict(id module.ID) []module.Constraint {
	var out []module.Constraint
	for _, c := range s.For(id) {
		if c.Strength == module.StrengthStrict {
			out = append(out, c)
		}
	}
	return out
}
