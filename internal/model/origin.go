package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidOrigin is returned when an origin is neither mx nor us.
var ErrInvalidOrigin = eris.New("invalid origin: must be mx or us")

// Origin identifies the jurisdiction whose tariff schedule a code belongs to.
type Origin string

const (
	OriginMX Origin = "mx" // TIGIE fraction
	OriginUS Origin = "us" // HTSUS code
)

// Origins lists every supported jurisdiction in display order.
var Origins = []Origin{OriginMX, OriginUS}

// ParseOrigin validates s case-insensitively.
func ParseOrigin(s string) (Origin, error) {
	switch o := Origin(strings.ToLower(strings.TrimSpace(s))); o {
	case OriginMX, OriginUS:
		return o, nil
	default:
		return "", eris.Wrapf(ErrInvalidOrigin, "origin %q", s)
	}
}

// Schedule returns the name of the tariff schedule for the origin.
func (o Origin) Schedule() string {
	switch o {
	case OriginMX:
		return "TIGIE"
	case OriginUS:
		return "HTSUS"
	default:
		return strings.ToUpper(string(o))
	}
}
