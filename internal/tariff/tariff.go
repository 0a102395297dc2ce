// Package tariff normalizes TIGIE and HTSUS codes and derives their HS chapter.
package tariff

import (
	"strconv"
	"strings"

	"github.com/northcross/aviso/internal/model"
)

const (
	// FractionDigits is the length of a TIGIE fraction (DDDD.DD.DD).
	FractionDigits = 8
	// HTSDigits is the maximum length of an HTSUS statistical reporting number.
	HTSDigits = 10
)

// Normalize returns the canonical form of code for the given origin and
// whether that form may match a reference row.
//
// TIGIE fractions are reformatted as DDDD.DD.DD from their first eight
// digits; a code with fewer than eight digits is returned trimmed but
// otherwise untouched and reported invalid. HTSUS codes are reduced to at
// most ten bare digits and are invalid only when no digit remains.
func Normalize(origin model.Origin, code string) (string, bool) {
	code = strings.TrimSpace(code)
	switch origin {
	case model.OriginMX:
		d := digits(code)
		if len(d) < FractionDigits {
			return code, false
		}
		return d[:4] + "." + d[4:6] + "." + d[6:8], true
	case model.OriginUS:
		d := digits(code)
		if len(d) > HTSDigits {
			d = d[:HTSDigits]
		}
		return d, d != ""
	default:
		return code, false
	}
}

// Chapter returns the two-digit HS chapter of an already normalized code.
// MX needs a complete four-digit heading; US needs two digits.
func Chapter(origin model.Origin, normalized string) (int, bool) {
	d := digits(normalized)
	var need int
	switch origin {
	case model.OriginMX:
		need = 4
	case model.OriginUS:
		need = 2
	default:
		return 0, false
	}
	if len(d) < need {
		return 0, false
	}
	ch, err := strconv.Atoi(d[:2])
	if err != nil || ch < 1 {
		return 0, false
	}
	return ch, true
}

func digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
