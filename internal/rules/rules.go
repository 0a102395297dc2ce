// Package rules holds the static chapter-range sensitivity bands.
package rules

import (
	"strings"

	"github.com/northcross/aviso/internal/industry"
)

// ChapterRule marks chapters From..To (inclusive) as requiring a notice for Industry.
type ChapterRule struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	Industry string `json:"industria"`
	Result   bool   `json:"requiere_aviso_automatico"`
}

var table = []ChapterRule{
	{From: 72, To: 73, Industry: industry.Siderurgicos, Result: true},
	{From: 50, To: 63, Industry: industry.Textil, Result: true},
	{From: 64, To: 64, Industry: industry.Calzado, Result: true},
	{From: 76, To: 76, Industry: industry.Aluminio, Result: true},
}

// Rules returns a copy of the rule table.
func Rules() []ChapterRule {
	out := make([]ChapterRule, len(table))
	copy(out, table)
	return out
}

// Evaluate returns the rule result for a chapter and canonical industry name,
// or nil when no rule covers the combination.
func Evaluate(chapter int, industryName string) *bool {
	name := strings.ToLower(strings.TrimSpace(industryName))
	for _, r := range table {
		if chapter >= r.From && chapter <= r.To && strings.ToLower(r.Industry) == name {
			v := r.Result
			return &v
		}
	}
	return nil
}
