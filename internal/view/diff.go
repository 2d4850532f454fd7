package view

import "sort"

// Region names a part of the page that is re-rendered as a unit. Region
// values double as the DOM id of the element they replace.
type Region string

const (
	RegionHeader  Region = "site-header"
	RegionModal   Region = "project-modal"
	RegionContact Region = "contact-body"
)

// ErrorRegion is the inline message slot under a form field.
func ErrorRegion(f Field) Region { return Region("error-" + string(f)) }

// SkillRegion is a single skill bar.
func SkillRegion(target string) Region { return Region(target) }

// Diff lists the regions that render differently in next than in prev.
// Typed field values are not regions: the browser already shows them.
func Diff(prev, next Snapshot) []Region {
	var out []Region

	if prev.Scrolled != next.Scrolled || prev.MenuOpen != next.MenuOpen || prev.Theme != next.Theme {
		out = append(out, RegionHeader)
	}

	var revealed []string
	for t := range next.Revealed {
		if !prev.Revealed[t] {
			revealed = append(revealed, t)
		}
	}
	sort.Strings(revealed)
	for _, t := range revealed {
		out = append(out, SkillRegion(t))
	}

	if prev.selectedID() != next.selectedID() {
		out = append(out, RegionModal)
	}

	if prev.Submitted != next.Submitted {
		out = append(out, RegionContact)
		return out
	}
	for _, f := range Fields {
		if prev.Errors[f] != next.Errors[f] {
			out = append(out, ErrorRegion(f))
		}
	}
	return out
}
