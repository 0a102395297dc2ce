package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/northcross/aviso/internal/config"
	"github.com/northcross/aviso/internal/engine"
	"github.com/northcross/aviso/internal/industry"
	"github.com/northcross/aviso/internal/reference"
	"github.com/northcross/aviso/internal/resilience"
	"github.com/northcross/aviso/internal/source"
)

// loadCanonicalizer returns the default canonicalizer, merged with the
// configured aliases file when one is set.
func loadCanonicalizer(c *config.Config) (*industry.Canonicalizer, error) {
	if c.Industry.AliasesFile == "" {
		return industry.Default(), nil
	}
	canon, err := industry.LoadAliases(c.Industry.AliasesFile)
	if err != nil {
		return nil, eris.Wrap(err, "load industry aliases")
	}
	return canon, nil
}

// newOpener builds the reference source opener from config.
func newOpener(c *config.Config) *source.Opener {
	retry := resilience.DefaultRetryConfig()
	if c.Reference.FetchRetries > 0 {
		retry.MaxAttempts = c.Reference.FetchRetries
	}
	fetcher := source.NewHTTPFetcher(source.HTTPOptions{
		Timeout: time.Duration(c.Reference.FetchTimeoutSecs) * time.Second,
		Retry:   retry,
	})
	return source.NewOpener(fetcher, nil)
}

// buildEngine loads the reference tables once and returns the engine that
// serves every query for the life of the process.
func buildEngine(ctx context.Context, c *config.Config) (*engine.Engine, error) {
	canon, err := loadCanonicalizer(c)
	if err != nil {
		return nil, err
	}

	loader := reference.NewLoader(newOpener(c), canon)
	store, err := loader.LoadStore(ctx, c.Reference.Specs())
	if err != nil {
		return nil, eris.Wrap(err, "load reference tables")
	}

	for _, st := range store.Stats() {
		if !st.Available {
			zap.L().Warn("reference table unavailable",
				zap.String("origin", string(st.Origin)),
				zap.String("reason", st.Reason),
				zap.String("policy", c.Reference.UnavailablePolicy),
			)
		}
	}

	return engine.New(store, canon), nil
}
