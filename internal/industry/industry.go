// Package industry canonicalizes free-text industry names.
package industry

import (
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Canonical industry names used by the chapter rules.
const (
	Siderurgicos = "Siderurgicos"
	Textil       = "Textil y Confeccion"
	Calzado      = "Calzado"
	Aluminio     = "Aluminio"
)

var defaultAliases = map[string][]string{
	Siderurgicos: {"siderurgico", "siderurgia", "acero", "hierro y acero", "steel", "iron and steel"},
	Textil:       {"textil", "textiles", "confeccion", "textil y confeccion", "textile", "textiles and apparel", "apparel"},
	Calzado:      {"zapatos", "footwear", "shoes"},
	Aluminio:     {"aluminum", "aluminium"},
}

// Canonicalizer maps lowercase aliases to canonical industry names.
// It is immutable once built and safe for concurrent use.
type Canonicalizer struct {
	aliases map[string]string
	names   []string
}

// Default returns the canonicalizer with the compiled-in aliases.
func Default() *Canonicalizer {
	return build(defaultAliases, nil)
}

// New returns a canonicalizer built from the defaults plus extra, where extra
// maps a canonical name to its aliases. Extra entries win on conflict.
func New(extra map[string][]string) *Canonicalizer {
	return build(defaultAliases, extra)
}

// LoadAliases reads a YAML alias file and merges it over the defaults.
//
//	Plasticos:
//	  - plastico
//	  - resinas
func LoadAliases(path string) (*Canonicalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "industry: read aliases %s", path)
	}

	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrapf(err, "industry: parse aliases %s", path)
	}

	return New(extra), nil
}

func build(sets ...map[string][]string) *Canonicalizer {
	c := &Canonicalizer{aliases: make(map[string]string)}
	seen := make(map[string]bool)
	for _, set := range sets {
		for canonical, aliases := range set {
			canonical = strings.TrimSpace(canonical)
			if canonical == "" {
				continue
			}
			if !seen[canonical] {
				seen[canonical] = true
				c.names = append(c.names, canonical)
			}
			c.add(canonical, canonical)
			for _, a := range aliases {
				c.add(a, canonical)
			}
		}
	}
	sort.Strings(c.names)
	return c
}

func (c *Canonicalizer) add(alias, canonical string) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if key == "" {
		return
	}
	c.aliases[key] = canonical
	c.aliases[fold(key)] = canonical
}

// Canonical returns the canonical name for name. Unknown names are returned
// trimmed but otherwise unchanged.
func (c *Canonicalizer) Canonical(name string) string {
	trimmed := strings.TrimSpace(name)
	if c == nil {
		return trimmed
	}
	key := strings.ToLower(trimmed)
	if v, ok := c.aliases[key]; ok {
		return v
	}
	if v, ok := c.aliases[fold(key)]; ok {
		return v
	}
	return trimmed
}

// Known reports whether name resolves to a canonical industry.
func (c *Canonicalizer) Known(name string) bool {
	if c == nil {
		return false
	}
	key := strings.ToLower(strings.TrimSpace(name))
	_, ok := c.aliases[key]
	if !ok {
		_, ok = c.aliases[fold(key)]
	}
	return ok
}

// Names returns the canonical industry names in sorted order.
func (c *Canonicalizer) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// fold strips diacritics so "siderúrgicos" and "siderurgicos" share a key.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
