package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northcross/aviso/internal/industry"
	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/reference"
)

func emptyEngine() *Engine {
	return New(reference.NewStore(), industry.Default())
}

func overrideEngine() *Engine {
	mx := reference.Load(model.OriginMX, "tigie.csv", []reference.Row{
		{Code: "7208.10.00", Industry: "Siderurgicos", Flag: "false", Description: "Laminados planos"},
		{Code: "6402.99.99", Industry: "Calzado", Flag: "desconocido"},
		{Code: "9503.00.01", Industry: "Juguetes", Flag: "si"},
	}, industry.Default())
	us := reference.Load(model.OriginUS, "hts.csv", []reference.Row{
		{Code: "7601.10.30.00", Industry: "aluminum", Flag: "no"},
	}, industry.Default())
	return New(reference.NewStore(mx, us), industry.Default())
}

func TestResolve_RuleChapterMX(t *testing.T) {
	d, err := emptyEngine().Resolve("mx", "siderurgicos", "7208.10.00")
	require.NoError(t, err)

	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
	assert.Equal(t, model.MatchSourceRuleChapter, d.MatchSource)
	require.NotNil(t, d.Chapter)
	assert.Equal(t, 72, *d.Chapter)
	assert.Equal(t, model.OriginMX, d.Origin)
	assert.Equal(t, industry.Siderurgicos, d.Industry)
	assert.Equal(t, "7208.10.00", d.Code)
}

func TestResolve_RuleChapterUS(t *testing.T) {
	d, err := emptyEngine().Resolve("us", "textil y confeccion", "6109100010")
	require.NoError(t, err)

	require.NotNil(t, d.Chapter)
	assert.Equal(t, 61, *d.Chapter)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
	assert.Equal(t, "6109100010", d.Code)
	assert.Equal(t, industry.Textil, d.Industry)
}

func TestResolve_InvalidOrigin(t *testing.T) {
	for _, origin := range []string{"eu", "", "mexico"} {
		_, err := overrideEngine().Resolve(origin, "siderurgicos", "7208.10.00")
		require.Error(t, err, origin)
		assert.True(t, errors.Is(err, model.ErrInvalidOrigin), origin)
	}
}

func TestResolve_OriginCaseInsensitive(t *testing.T) {
	d, err := emptyEngine().Resolve(" MX ", "calzado", "6403.99.01")
	require.NoError(t, err)
	assert.Equal(t, model.OriginMX, d.Origin)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
}

func TestResolve_OverrideBeatsRule(t *testing.T) {
	d, err := overrideEngine().Resolve("mx", "siderurgicos", "7208.10.00")
	require.NoError(t, err)

	require.NotNil(t, d.RequiresNotice)
	assert.False(t, *d.RequiresNotice)
	assert.Equal(t, model.MatchSourceOverride, d.MatchSource)
	require.NotNil(t, d.Chapter)
	assert.Equal(t, 72, *d.Chapter)
	assert.Equal(t, "Laminados planos", d.Description)
}

func TestResolve_OverrideUnnormalizedQuery(t *testing.T) {
	d, err := overrideEngine().Resolve("us", "Aluminio", "7601.10.30.00")
	require.NoError(t, err)
	assert.Equal(t, model.MatchSourceOverride, d.MatchSource)
	assert.Equal(t, "7601103000", d.Code)
	require.NotNil(t, d.RequiresNotice)
	assert.False(t, *d.RequiresNotice)
}

func TestResolve_IndeterminateOverrideFallsBackToRule(t *testing.T) {
	d, err := overrideEngine().Resolve("mx", "calzado", "6402.99.99")
	require.NoError(t, err)
	assert.Equal(t, model.MatchSourceRuleChapter, d.MatchSource)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
}

func TestResolve_MalformedMXCode(t *testing.T) {
	d, err := overrideEngine().Resolve("mx", "siderurgicos", "12")
	require.NoError(t, err)
	assert.Nil(t, d.Chapter)
	assert.Nil(t, d.RequiresNotice)
	assert.Equal(t, model.MatchSourceRuleChapter, d.MatchSource)
	assert.Equal(t, "12", d.Code)
	assert.False(t, d.Determined())
}

func TestResolve_MalformedCodeNeverMatchesTableRow(t *testing.T) {
	mx := reference.Load(model.OriginMX, "tigie.csv", []reference.Row{
		{Code: "12", Industry: "Siderurgicos", Flag: "true"},
		{Code: "7208.10", Industry: "Siderurgicos", Flag: "false"},
	}, industry.Default())
	e := New(reference.NewStore(mx), industry.Default())

	d, err := e.Resolve("mx", "siderurgicos", "12")
	require.NoError(t, err)
	assert.Equal(t, model.MatchSourceRuleChapter, d.MatchSource)
	assert.Nil(t, d.RequiresNotice)
	assert.Nil(t, d.Chapter)

	d, err = e.Resolve("mx", "siderurgicos", "7208.10")
	require.NoError(t, err)
	assert.Equal(t, model.MatchSourceRuleChapter, d.MatchSource)
	require.NotNil(t, d.Chapter)
	assert.Equal(t, 72, *d.Chapter)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice, "chapter rule, not the table row")

	assert.Equal(t, 2, mx.Stats().Skipped)
	assert.False(t, e.Available(model.OriginMX))
}

func TestResolve_ShortMXCodeKeepsHeadingChapter(t *testing.T) {
	d, err := emptyEngine().Resolve("mx", "siderurgicos", "7208.10")
	require.NoError(t, err)
	assert.Equal(t, "7208.10", d.Code)
	require.NotNil(t, d.Chapter)
	assert.Equal(t, 72, *d.Chapter)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
}

func TestResolve_UnknownIndustry(t *testing.T) {
	e := overrideEngine()

	d, err := e.Resolve("mx", "  Electronica  ", "7208.10.00")
	require.NoError(t, err)
	assert.Equal(t, "Electronica", d.Industry)
	assert.Nil(t, d.RequiresNotice)
	assert.Equal(t, model.MatchSourceRuleChapter, d.MatchSource)

	d, err = e.Resolve("mx", "juguetes", "9503.00.01")
	require.NoError(t, err)
	assert.Equal(t, model.MatchSourceOverride, d.MatchSource)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
}

func TestResolve_NoRuleForChapter(t *testing.T) {
	d, err := emptyEngine().Resolve("us", "siderurgicos", "8471300100")
	require.NoError(t, err)
	require.NotNil(t, d.Chapter)
	assert.Equal(t, 84, *d.Chapter)
	assert.Nil(t, d.RequiresNotice)
}

func TestResolve_NilStore(t *testing.T) {
	e := New(nil, nil)
	d, err := e.Resolve("mx", "aluminio", "7601.10.01")
	require.NoError(t, err)
	require.NotNil(t, d.RequiresNotice)
	assert.True(t, *d.RequiresNotice)
	assert.False(t, e.Available(model.OriginMX))
}

func TestResolve_OverridePrecedenceAcrossTable(t *testing.T) {
	// Every override in the table wins over whatever the rules would say.
	rows := []reference.Row{
		{Code: "7208.10.00", Industry: industry.Siderurgicos, Flag: "0"},
		{Code: "5208.11.01", Industry: industry.Textil, Flag: "0"},
		{Code: "6403.99.01", Industry: industry.Calzado, Flag: "0"},
		{Code: "7601.10.01", Industry: industry.Aluminio, Flag: "0"},
		{Code: "8471.30.01", Industry: industry.Siderurgicos, Flag: "1"},
	}
	e := New(reference.NewStore(reference.Load(model.OriginMX, "t", rows, nil)), industry.Default())

	for _, r := range rows {
		d, err := e.Resolve("mx", r.Industry, r.Code)
		require.NoError(t, err)
		assert.Equal(t, model.MatchSourceOverride, d.MatchSource, r.Code)
		require.NotNil(t, d.RequiresNotice, r.Code)
		assert.Equal(t, r.Flag == "1", *d.RequiresNotice, r.Code)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	e := overrideEngine()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			origin := "mx"
			if i%2 == 1 {
				origin = "us"
			}
			_, err := e.Resolve(origin, "siderurgicos", "7208.10.00")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestEngine_Accessors(t *testing.T) {
	e := overrideEngine()
	assert.True(t, e.Available(model.OriginMX))
	assert.True(t, e.Available(model.OriginUS))
	assert.NotNil(t, e.Store())
	assert.Contains(t, e.Industries(), industry.Calzado)
	assert.False(t, emptyEngine().Available(model.OriginMX))
}
