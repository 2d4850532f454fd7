package view

import "time"

// ScrollSource delivers the page's vertical scroll offset on every scroll.
type ScrollSource interface {
	OnScroll(fn func(offsetY float64)) (detach func())
}

// VisibilityEntry reports how much of one observed element is in view.
type VisibilityEntry struct {
	Target       string  `json:"target"`
	Ratio        float64 `json:"ratio"`
	Intersecting bool    `json:"intersecting"`
}

// VisibilityObserver reports intersection changes for a set of elements.
type VisibilityObserver interface {
	Observe(targets []string, threshold float64, fn func([]VisibilityEntry)) (disconnect func())
}

// PreferenceStore persists small string values across page loads.
type PreferenceStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Viewport is the document the controller scrolls, themes and reloads.
type Viewport interface {
	Has(id string) bool
	ScrollIntoView(id string)
	ScrollToTop()
	ApplyTheme(t Theme)
	Reload()
}

// Scheduler runs fn after d on the same thread that drives the controller.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}
