// Package reference holds the per-jurisdiction override tables.
package reference

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/northcross/aviso/internal/model"
)

// ErrMissingColumn is returned when a tabular source lacks a required column.
var ErrMissingColumn = eris.New("reference: missing required column")

// Row is the fixed record shape every reference source is resolved into.
type Row struct {
	Code        string
	Industry    string
	Flag        string
	Description string
}

// Accepted header names, in priority order.
var (
	codeColumns = map[model.Origin][]string{
		model.OriginMX: {"fraccion", "codigo", "code"},
		model.OriginUS: {"htsus", "codigo", "code"},
	}
	industryColumns    = []string{"industria", "industry", "sector"}
	flagColumns        = []string{"requiere_aviso_automatico", "aviso_automatico", "requiere_aviso", "requiere", "requiere_aviso_boolean"}
	descriptionColumns = []string{"descripcion", "description"}
)

// ParseFlag interprets a notice flag. It returns nil for values outside the
// accepted vocabulary.
func ParseFlag(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "sí", "si", "yes":
		return model.Bool(true)
	case "0", "false", "no", "":
		return model.Bool(false)
	default:
		return nil
	}
}

// Rows resolves header once and maps every record into a Row.
func Rows(origin model.Origin, header []string, records [][]string) ([]Row, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	codeIdx, ok := firstColumn(cols, codeColumns[origin])
	if !ok {
		return nil, eris.Wrapf(ErrMissingColumn, "%s code (one of %s)", origin, strings.Join(codeColumns[origin], ", "))
	}
	industryIdx, ok := firstColumn(cols, industryColumns)
	if !ok {
		return nil, eris.Wrapf(ErrMissingColumn, "industry (one of %s)", strings.Join(industryColumns, ", "))
	}
	flagIdx, ok := firstColumn(cols, flagColumns)
	if !ok {
		return nil, eris.Wrapf(ErrMissingColumn, "notice flag (one of %s)", strings.Join(flagColumns, ", "))
	}
	descIdx, hasDesc := firstColumn(cols, descriptionColumns)

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		r := Row{
			Code:     field(rec, codeIdx),
			Industry: field(rec, industryIdx),
			Flag:     field(rec, flagIdx),
		}
		if hasDesc {
			r.Description = field(rec, descIdx)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func firstColumn(cols map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// field tolerates short records.
func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
