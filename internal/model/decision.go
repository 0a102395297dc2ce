package model

// MatchSource names the stage of the decision procedure that produced a result.
type MatchSource string

const (
	MatchSourceOverride    MatchSource = "override"     // exact reference table row
	MatchSourceRuleChapter MatchSource = "rule_chapter" // static chapter-range rule
)

// OverrideRecord is one row of a jurisdiction's reference table after load.
// RequiresNotice is nil when the source flag could not be interpreted.
type OverrideRecord struct {
	Code           string `json:"code"`
	Industry       string `json:"industria"`
	RequiresNotice *bool  `json:"requiere_aviso_automatico"`
	Description    string `json:"descripcion,omitempty"`
}

// Decision is the outcome of resolving an (origin, industry, code) query.
// A nil RequiresNotice means no determination could be made.
type Decision struct {
	Origin         Origin      `json:"origin"`
	Industry       string      `json:"industria"`
	Code           string      `json:"code"`
	RequiresNotice *bool       `json:"requiere_aviso_automatico"`
	MatchSource    MatchSource `json:"match_source"`
	Chapter        *int        `json:"chapter"`
	Description    string      `json:"descripcion,omitempty"`
}

// Determined reports whether the decision carries a yes/no answer.
func (d Decision) Determined() bool {
	return d.RequiresNotice != nil
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
