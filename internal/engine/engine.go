// Package engine decides whether an automatic notice applies to a tariff code.
package engine

import (
	"github.com/rotisserie/eris"

	"github.com/northcross/aviso/internal/industry"
	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/reference"
	"github.com/northcross/aviso/internal/rules"
	"github.com/northcross/aviso/internal/tariff"
)

// ErrDatasetUnavailable signals that a jurisdiction's reference table is
// empty. Resolve never returns it; callers that refuse to answer from the
// chapter rules alone report it themselves.
var ErrDatasetUnavailable = eris.New("reference dataset unavailable")

// Engine resolves (origin, industry, code) queries against an immutable
// reference store. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	store *reference.Store
	canon *industry.Canonicalizer
}

// New returns an Engine. A nil store behaves as one with no tables.
func New(store *reference.Store, canon *industry.Canonicalizer) *Engine {
	if canon == nil {
		canon = industry.Default()
	}
	return &Engine{store: store, canon: canon}
}

// Resolve returns the decision for a query. The only error is
// model.ErrInvalidOrigin; every other malformed input yields a decision with
// no determination.
func (e *Engine) Resolve(origin, industryName, code string) (model.Decision, error) {
	o, err := model.ParseOrigin(origin)
	if err != nil {
		return model.Decision{}, err
	}

	canonical := e.canon.Canonical(industryName)
	normalized, valid := tariff.Normalize(o, code)

	d := model.Decision{
		Origin:      o,
		Industry:    canonical,
		Code:        normalized,
		MatchSource: model.MatchSourceRuleChapter,
	}

	chapter, hasChapter := tariff.Chapter(o, normalized)
	if hasChapter {
		d.Chapter = model.Int(chapter)
	}

	// Malformed codes never match a reference row.
	if valid {
		if rec, ok := e.store.LookupOverride(o, normalized, canonical); ok {
			d.RequiresNotice = rec.RequiresNotice
			d.MatchSource = model.MatchSourceOverride
			d.Description = rec.Description
			return d, nil
		}
	}

	if hasChapter {
		d.RequiresNotice = rules.Evaluate(chapter, canonical)
	}
	return d, nil
}

// Available reports whether origin has a loaded reference table.
func (e *Engine) Available(origin model.Origin) bool {
	return e.store.Available(origin)
}

// Store returns the engine's reference store.
func (e *Engine) Store() *reference.Store {
	return e.store
}

// Industries returns the canonical industry names.
func (e *Engine) Industries() []string {
	return e.canon.Names()
}
