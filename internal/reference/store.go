package reference

import (
	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/tariff"
)

// Store exposes read-only override lookup across jurisdictions. It is built
// once and never mutated, so any number of goroutines may query it.
type Store struct {
	tables map[model.Origin]*Table
}

// NewStore builds a store from tables. A later table for the same origin
// replaces an earlier one.
func NewStore(tables ...*Table) *Store {
	s := &Store{tables: make(map[model.Origin]*Table, len(tables))}
	for _, t := range tables {
		if t != nil {
			s.tables[t.origin] = t
		}
	}
	return s
}

// LookupOverride returns the override for (origin, code, industry). It
// reports false when the code is malformed, no row matches, the table is
// empty or missing, or the matching row's flag is indeterminate.
func (s *Store) LookupOverride(origin model.Origin, code, industryName string) (model.OverrideRecord, bool) {
	if s == nil {
		return model.OverrideRecord{}, false
	}
	t, ok := s.tables[origin]
	if !ok {
		return model.OverrideRecord{}, false
	}
	normalized, valid := tariff.Normalize(origin, code)
	if !valid {
		return model.OverrideRecord{}, false
	}
	rec, ok := t.Lookup(normalized, industryName)
	if !ok || rec.RequiresNotice == nil {
		return model.OverrideRecord{}, false
	}
	return rec, true
}

// Available reports whether origin has a non-empty table.
func (s *Store) Available(origin model.Origin) bool {
	if s == nil {
		return false
	}
	return s.tables[origin].Available()
}

// Table returns the table for origin, or nil.
func (s *Store) Table(origin model.Origin) *Table {
	if s == nil {
		return nil
	}
	return s.tables[origin]
}

// Stats returns per-jurisdiction statistics in model.Origins order.
// Jurisdictions without a table are reported as unavailable.
func (s *Store) Stats() []TableStats {
	out := make([]TableStats, 0, len(model.Origins))
	for _, o := range model.Origins {
		if t := s.Table(o); t != nil {
			out = append(out, t.Stats())
			continue
		}
		out = append(out, TableStats{Origin: o, Schedule: o.Schedule(), Reason: "not loaded"})
	}
	return out
}
