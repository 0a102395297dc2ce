package reference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northcross/aviso/internal/industry"
	"github.com/northcross/aviso/internal/model"
)

func TestParseFlag(t *testing.T) {
	t.Parallel()

	truthy := []string{"1", "true", "TRUE", "sí", "Sí", "si", "SI", "yes", " Yes "}
	falsy := []string{"0", "false", "False", "no", "NO", "", "   "}
	unknown := []string{"maybe", "2", "y", "n", "verdadero", "x"}

	for _, s := range truthy {
		got := ParseFlag(s)
		require.NotNil(t, got, s)
		assert.True(t, *got, s)
	}
	for _, s := range falsy {
		got := ParseFlag(s)
		require.NotNil(t, got, s)
		assert.False(t, *got, s)
	}
	for _, s := range unknown {
		assert.Nil(t, ParseFlag(s), s)
	}
}

func TestRows_ResolvesColumns(t *testing.T) {
	t.Parallel()

	header := []string{" Fraccion ", "Descripcion", "INDUSTRIA", "aviso_automatico", "requiere"}
	records := [][]string{
		{"7208.10.00", "Laminados", "Siderurgicos", "si", "0"},
		{"6109.10.01"},
	}

	rows, err := Rows(model.OriginMX, header, records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Code: "7208.10.00", Industry: "Siderurgicos", Flag: "si", Description: "Laminados"}, rows[0])
	assert.Equal(t, Row{Code: "6109.10.01"}, rows[1])
}

func TestRows_CodeColumnPerOrigin(t *testing.T) {
	t.Parallel()

	header := []string{"htsus", "codigo", "industria", "requiere"}
	records := [][]string{{"6109100010", "X", "Textil", "1"}}

	us, err := Rows(model.OriginUS, header, records)
	require.NoError(t, err)
	assert.Equal(t, "6109100010", us[0].Code)

	mx, err := Rows(model.OriginMX, header, records)
	require.NoError(t, err)
	assert.Equal(t, "X", mx[0].Code)
}

func TestRows_MissingColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []string
		msg    string
	}{
		{"no code", []string{"industria", "requiere"}, "code"},
		{"no industry", []string{"fraccion", "requiere"}, "industry"},
		{"no flag", []string{"fraccion", "industria"}, "notice flag"},
		{"empty header", nil, "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Rows(model.OriginMX, tt.header, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumn))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_NormalizesAndIndexes(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Code: "72081000", Industry: "siderurgicos", Flag: "0", Description: "Laminados"},
		{Code: "7208.10.00", Industry: "Siderurgicos", Flag: "1"},
		{Code: "6109.10.01", Industry: "textil", Flag: "quizas"},
		{Code: "", Industry: "Calzado", Flag: "1"},
		{Code: "12", Industry: "Calzado", Flag: "yes"},
	}
	tbl := Load(model.OriginMX, "tigie.csv", rows, industry.Default())

	st := tbl.Stats()
	assert.Equal(t, model.OriginMX, st.Origin)
	assert.Equal(t, "TIGIE", st.Schedule)
	assert.Equal(t, "tigie.csv", st.Source)
	assert.True(t, st.Available)
	assert.Equal(t, 3, st.Rows)
	assert.Equal(t, 1, st.Indeterminate)
	assert.Equal(t, 2, st.Skipped)
	assert.False(t, st.LoadedAt.IsZero())

	rec, ok := tbl.Lookup("7208.10.00", "SIDERURGICOS")
	require.True(t, ok)
	assert.Equal(t, industry.Siderurgicos, rec.Industry)
	require.NotNil(t, rec.RequiresNotice)
	assert.False(t, *rec.RequiresNotice, "first row wins")
	assert.Equal(t, "Laminados", rec.Description)

	rec, ok = tbl.Lookup("6109.10.01", industry.Textil)
	require.True(t, ok)
	assert.Nil(t, rec.RequiresNotice)

	_, ok = tbl.Lookup("12", "Calzado")
	assert.False(t, ok, "malformed codes are not indexed")
}

func TestLoad_SkipsMalformedCodes(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Code: "12", Industry: "Siderurgicos", Flag: "true"},
		{Code: "7208.10", Industry: "Siderurgicos", Flag: "false"},
		{Code: "7208.10.0A", Industry: "Siderurgicos", Flag: "1"},
		{Code: "7208-10-00", Industry: "Siderurgicos", Flag: "0"},
	}
	tbl := Load(model.OriginMX, "tigie.csv", rows, industry.Default())

	st := tbl.Stats()
	assert.Equal(t, 1, st.Rows)
	assert.Equal(t, 3, st.Skipped)

	rec, ok := tbl.Lookup("7208.10.00", industry.Siderurgicos)
	require.True(t, ok)
	require.NotNil(t, rec.RequiresNotice)
	assert.False(t, *rec.RequiresNotice)

	us := Load(model.OriginUS, "hts.csv", []Row{{Code: "n/a", Industry: "Textil", Flag: "1"}}, industry.Default())
	assert.Equal(t, 1, us.Stats().Skipped)
	assert.False(t, us.Available())
}

func TestLoad_Empty(t *testing.T) {
	t.Parallel()

	tbl := Load(model.OriginUS, "hts.csv", nil, nil)
	assert.False(t, tbl.Available())
	assert.Equal(t, "no rows", tbl.Stats().Reason)
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	tbl := Unavailable(model.OriginMX, "missing.csv", "source not found")
	st := tbl.Stats()
	assert.False(t, st.Available)
	assert.Equal(t, "source not found", st.Reason)
	assert.Equal(t, 0, tbl.Len())
	_, ok := tbl.Lookup("7208.10.00", "Siderurgicos")
	assert.False(t, ok)
}

func testStore() *Store {
	mx := Load(model.OriginMX, "tigie.csv", []Row{
		{Code: "7208.10.00", Industry: "Siderurgicos", Flag: "false"},
		{Code: "6109.10.01", Industry: "Textil y Confeccion", Flag: "n/a"},
		{Code: "9503.00.01", Industry: "Juguetes Raros", Flag: "si"},
	}, industry.Default())
	us := Load(model.OriginUS, "hts.csv", []Row{
		{Code: "6109.10.00.10", Industry: "textil", Flag: "yes"},
	}, industry.Default())
	return NewStore(mx, us)
}

func TestStore_LookupOverride(t *testing.T) {
	t.Parallel()

	s := testStore()

	rec, ok := s.LookupOverride(model.OriginMX, "7208.10.00", "siderurgicos")
	require.True(t, ok)
	assert.False(t, *rec.RequiresNotice)

	rec, ok = s.LookupOverride(model.OriginMX, "72081000", "Siderurgicos")
	require.True(t, ok, "query code is normalized")
	assert.Equal(t, "7208.10.00", rec.Code)

	rec, ok = s.LookupOverride(model.OriginUS, "6109100010", "Textil y Confeccion")
	require.True(t, ok)
	assert.True(t, *rec.RequiresNotice)

	_, ok = s.LookupOverride(model.OriginMX, "6109.10.01", "Textil y Confeccion")
	assert.False(t, ok, "indeterminate flag is no override")

	_, ok = s.LookupOverride(model.OriginMX, "7208.10.00", "Aluminio")
	assert.False(t, ok, "industry must match")

	_, ok = s.LookupOverride(model.OriginUS, "7208.10.00", "Siderurgicos")
	assert.False(t, ok, "tables are per jurisdiction")

	_, ok = s.LookupOverride(model.Origin("eu"), "7208.10.00", "Siderurgicos")
	assert.False(t, ok)

	rec, ok = s.LookupOverride(model.OriginMX, "9503.00.01", "juguetes raros")
	require.True(t, ok, "unknown industries match their literal name")
	assert.True(t, *rec.RequiresNotice)
}

func TestStore_NilAndEmpty(t *testing.T) {
	t.Parallel()

	var s *Store
	_, ok := s.LookupOverride(model.OriginMX, "7208.10.00", "Siderurgicos")
	assert.False(t, ok)
	assert.False(t, s.Available(model.OriginMX))

	empty := NewStore()
	assert.False(t, empty.Available(model.OriginUS))
	_, ok = empty.LookupOverride(model.OriginUS, "6109100010", "Textil y Confeccion")
	assert.False(t, ok)
}

func TestStore_Stats(t *testing.T) {
	t.Parallel()

	s := NewStore(Unavailable(model.OriginUS, "hts.csv", "source not found"))
	stats := s.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, model.OriginMX, stats[0].Origin)
	assert.Equal(t, "not loaded", stats[0].Reason)
	assert.Equal(t, model.OriginUS, stats[1].Origin)
	assert.Equal(t, "source not found", stats[1].Reason)
	assert.False(t, s.Available(model.OriginUS))

	assert.True(t, testStore().Available(model.OriginMX))
}
