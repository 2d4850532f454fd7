package session

import "github.com/Zachkp/portfolio/internal/view"

// Inbound event types sent by the page.
const (
	EventScroll     = "scroll"
	EventVisibility = "visibility"
	EventNavigate   = "navigate"
	EventMenu       = "menu"
	EventHireMe     = "hire"
	EventBrand      = "brand"
	EventSelect     = "select"
	EventClose      = "close"
	EventInput      = "input"
	EventSubmit     = "submit"
	EventTheme      = "theme"
)

// Event is one stimulus relayed from the browser.
type Event struct {
	Type    string                 `json:"type"`
	OffsetY float64                `json:"offsetY,omitempty"`
	Entries []view.VisibilityEntry `json:"entries,omitempty"`
	Href    string                 `json:"href,omitempty"`
	ID      int                    `json:"id,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Value   string                 `json:"value,omitempty"`
}

// Outbound message types applied by the page.
const (
	MessagePatch  = "patch"
	MessageScroll = "scroll"
	MessageTop    = "top"
	MessageTheme  = "theme"
	MessageReload = "reload"
	MessageError  = "error"
)

// Message is one instruction for the browser.
type Message struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	HTML   string `json:"html,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Error  string `json:"error,omitempty"`
}
