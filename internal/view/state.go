package view

import (
	"time"

	"github.com/Zachkp/portfolio/internal/content"
)

const (
	// ScrollThreshold is the offset past which the header is elevated.
	ScrollThreshold = 10.0
	// RevealThreshold is the visible fraction that reveals a skill bar.
	RevealThreshold = 0.5
	// SubmittedTimeout is how long the contact confirmation stays up.
	SubmittedTimeout = 5 * time.Second
	// ReloadDelay lets the scroll-to-top animation settle before reloading.
	ReloadDelay = 700 * time.Millisecond

	// PreferenceKey is the stored display preference key.
	PreferenceKey = "theme"
	// ContactSection is where "hire me" scrolls to.
	ContactSection = "contact"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts the two stored preference values.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	}
	return "", false
}

type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields is the contact form's fields in display order.
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// ParseField maps an input id onto a form field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Errors maps a field to its validation message.
type Errors map[Field]string

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

type Form struct {
	Name    string
	Email   string
	Message string
}

func (f Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	}
	return ""
}

func (f *Form) set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldMessage:
		f.Message = value
	}
}

// Snapshot is an immutable copy of the controller state that regions
// render from.
type Snapshot struct {
	Theme     Theme
	MenuOpen  bool
	Scrolled  bool
	Selected  *content.Project
	Form      Form
	Errors    Errors
	Submitted bool
	Revealed  map[string]bool
}

func (s Snapshot) Dark() bool { return s.Theme == Dark }

func (s Snapshot) Error(f Field) string { return s.Errors[f] }

func (s Snapshot) IsRevealed(target string) bool { return s.Revealed[target] }

func (s Snapshot) selectedID() int {
	if s.Selected == nil {
		return 0
	}
	return s.Selected.ID
}
