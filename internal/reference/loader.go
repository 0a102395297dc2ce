package reference

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/northcross/aviso/internal/industry"
	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/source"
)

// Opener reads a tabular source.
type Opener interface {
	Open(ctx context.Context, spec source.Spec) (*source.Tabular, error)
}

// Loader builds tables from configured sources. A source that is missing,
// unreadable or malformed produces an unavailable table, never an error.
type Loader struct {
	opener Opener
	canon  *industry.Canonicalizer
}

// NewLoader returns a Loader reading through opener.
func NewLoader(opener Opener, canon *industry.Canonicalizer) *Loader {
	return &Loader{opener: opener, canon: canon}
}

// LoadTable reads and indexes one jurisdiction's table.
func (l *Loader) LoadTable(ctx context.Context, origin model.Origin, spec source.Spec) *Table {
	log := zap.L().With(zap.String("origin", string(origin)), zap.String("schedule", origin.Schedule()))

	if strings.TrimSpace(spec.Path) == "" {
		log.Warn("reference source not configured")
		return Unavailable(origin, "", "no source configured")
	}

	tab, err := l.opener.Open(ctx, spec)
	if err != nil {
		reason := "source unreadable"
		if errors.Is(err, source.ErrNotFound) {
			reason = "source not found"
		}
		log.Warn("reference table not loaded", zap.String("source", spec.Path), zap.Error(err))
		return Unavailable(origin, spec.Path, reason)
	}

	rows, err := Rows(origin, tab.Header, tab.Records)
	if err != nil {
		log.Warn("reference table has unexpected shape", zap.String("source", tab.Source), zap.Error(err))
		return Unavailable(origin, tab.Source, err.Error())
	}

	t := Load(origin, tab.Source, rows, l.canon)
	st := t.Stats()
	log.Info("reference table loaded",
		zap.String("source", st.Source),
		zap.Int("rows", st.Rows),
		zap.Int("indeterminate", st.Indeterminate),
		zap.Int("skipped", st.Skipped),
	)
	return t
}

// LoadStore loads every jurisdiction in specs concurrently and returns the
// resulting immutable store. It only fails if ctx is cancelled.
func (l *Loader) LoadStore(ctx context.Context, specs map[model.Origin]source.Spec) (*Store, error) {
	tables := make([]*Table, len(model.Origins))
	g, gctx := errgroup.WithContext(ctx)
	for i, o := range model.Origins {
		spec, ok := specs[o]
		if !ok {
			continue
		}
		g.Go(func() error {
			tables[i] = l.LoadTable(gctx, o, spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewStore(tables...), nil
}
