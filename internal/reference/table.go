package reference

import (
	"strings"
	"time"

	"github.com/northcross/aviso/internal/industry"
	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/tariff"
)

// Table is one jurisdiction's override table. It is immutable after Load.
type Table struct {
	origin        model.Origin
	source        string
	reason        string
	loadedAt      time.Time
	records       []model.OverrideRecord
	index         map[string]int
	indeterminate int
	skipped       int
}

// TableStats summarizes a loaded table.
type TableStats struct {
	Origin        model.Origin `json:"origin"`
	Schedule      string       `json:"schedule"`
	Source        string       `json:"source,omitempty"`
	Available     bool         `json:"available"`
	Reason        string       `json:"reason,omitempty"`
	Rows          int          `json:"rows"`
	Indeterminate int          `json:"indeterminate"`
	Skipped       int          `json:"skipped"`
	LoadedAt      time.Time    `json:"loaded_at"`
}

// Load builds a table from rows. Codes are normalized for origin and
// industries canonicalized with canon (which may be nil). The first row for a
// given (code, industry) pair wins; rows whose flag cannot be parsed are kept
// with a nil flag.
func Load(origin model.Origin, source string, rows []Row, canon *industry.Canonicalizer) *Table {
	t := &Table{
		origin:   origin,
		source:   source,
		loadedAt: time.Now().UTC(),
		records:  make([]model.OverrideRecord, 0, len(rows)),
		index:    make(map[string]int, len(rows)),
	}

	for _, r := range rows {
		code, ok := tariff.Normalize(origin, r.Code)
		if !ok {
			t.skipped++
			continue
		}
		rec := model.OverrideRecord{
			Code:           code,
			Industry:       canon.Canonical(r.Industry),
			RequiresNotice: ParseFlag(r.Flag),
			Description:    strings.TrimSpace(r.Description),
		}
		if rec.RequiresNotice == nil {
			t.indeterminate++
		}
		k := key(rec.Code, rec.Industry)
		if _, dup := t.index[k]; !dup {
			t.index[k] = len(t.records)
		}
		t.records = append(t.records, rec)
	}

	if len(t.records) == 0 {
		t.reason = "no rows"
	}
	return t
}

// Unavailable returns an empty table recording why its source could not be loaded.
func Unavailable(origin model.Origin, source, reason string) *Table {
	return &Table{
		origin:   origin,
		source:   source,
		reason:   reason,
		loadedAt: time.Now().UTC(),
		index:    map[string]int{},
	}
}

// Origin returns the table's jurisdiction.
func (t *Table) Origin() model.Origin { return t.origin }

// Len returns the number of records held.
func (t *Table) Len() int { return len(t.records) }

// Available reports whether the table holds any records.
func (t *Table) Available() bool { return t != nil && len(t.records) > 0 }

// Lookup returns the authoritative record for (code, industry). code must
// already be normalized.
func (t *Table) Lookup(code, industryName string) (model.OverrideRecord, bool) {
	if t == nil {
		return model.OverrideRecord{}, false
	}
	i, ok := t.index[key(code, strings.TrimSpace(industryName))]
	if !ok {
		return model.OverrideRecord{}, false
	}
	return t.records[i], true
}

// Stats reports the table's size and availability.
func (t *Table) Stats() TableStats {
	return TableStats{
		Origin:        t.origin,
		Schedule:      t.origin.Schedule(),
		Source:        t.source,
		Available:     t.Available(),
		Reason:        t.reason,
		Rows:          len(t.records),
		Indeterminate: t.indeterminate,
		Skipped:       t.skipped,
		LoadedAt:      t.loadedAt,
	}
}

func key(code, industryName string) string {
	return code + "\x00" + strings.ToLower(industryName)
}
