// Package view owns every piece of interactive page state: the elevated
// header, the mobile menu, skill bar reveals, the project modal, the
// contact form and the display preference. Regions render from Snapshot;
// all browser facilities are reached through the capability interfaces.
//
// A Controller is not safe for concurrent use. The host drives it from a
// single goroutine and schedules timer callbacks onto that same goroutine.
package view

import (
	"log"
	"strings"

	"github.com/Zachkp/portfolio/internal/content"
)

type Options struct {
	Site       *content.Site
	Scroll     ScrollSource
	Visibility VisibilityObserver
	Store      PreferenceStore
	Viewport   Viewport
	Scheduler  Scheduler

	// PrefersDark is the ambient color scheme the host reported at load.
	PrefersDark bool
}

type Controller struct {
	site       *content.Site
	scroll     ScrollSource
	visibility VisibilityObserver
	store      PreferenceStore
	viewport   Viewport
	scheduler  Scheduler
	ambient    Theme

	targets  map[string]bool
	mounted  bool
	detach   func()
	observed func()

	theme     Theme
	menuOpen  bool
	scrolled  bool
	selected  *content.Project
	form      Form
	errors    Errors
	submitted bool
	revealed  map[string]bool

	cancelRevert func()
	cancelReload func()
}

func New(opts Options) *Controller {
	ambient := Light
	if opts.PrefersDark {
		ambient = Dark
	}

	targets := make(map[string]bool)
	for _, t := range opts.Site.SkillTargets() {
		targets[t] = true
	}

	return &Controller{
		site:       opts.Site,
		scroll:     opts.Scroll,
		visibility: opts.Visibility,
		store:      opts.Store,
		viewport:   opts.Viewport,
		scheduler:  opts.Scheduler,
		ambient:    ambient,
		targets:    targets,
		theme:      ambient,
		errors:     Errors{},
		revealed:   make(map[string]bool),
	}
}

// Mount resolves the display preference and attaches the scroll listener
// and the visibility observer. Calling it twice is a no-op.
func (c *Controller) Mount() {
	if c.mounted {
		return
	}
	c.mounted = true

	c.SetTheme(c.initialTheme())

	c.detach = c.scroll.OnScroll(c.onScroll)
	c.observed = c.visibility.Observe(c.site.SkillTargets(), RevealThreshold, c.onVisibility)
}

// Teardown detaches listeners and cancels pending timers. Timer callbacks
// that were already queued check the mounted flag and do nothing.
func (c *Controller) Teardown() {
	if !c.mounted {
		return
	}
	c.mounted = false

	if c.detach != nil {
		c.detach()
		c.detach = nil
	}
	if c.observed != nil {
		c.observed()
		c.observed = nil
	}
	if c.cancelRevert != nil {
		c.cancelRevert()
		c.cancelRevert = nil
	}
	if c.cancelReload != nil {
		c.cancelReload()
		c.cancelReload = nil
	}
}

func (c *Controller) Mounted() bool { return c.mounted }

func (c *Controller) initialTheme() Theme {
	v, ok, err := c.store.Get(PreferenceKey)
	if err != nil {
		log.Printf("view: reading display preference: %v", err)
		return c.ambient
	}
	if !ok {
		return c.ambient
	}
	if t, valid := ParseTheme(v); valid {
		return t
	}
	return c.ambient
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Theme:     c.theme,
		MenuOpen:  c.menuOpen,
		Scrolled:  c.scrolled,
		Form:      c.form,
		Errors:    c.errors.clone(),
		Submitted: c.submitted,
		Revealed:  make(map[string]bool, len(c.revealed)),
	}
	if c.selected != nil {
		p := *c.selected
		p.Tags = append([]string(nil), c.selected.Tags...)
		s.Selected = &p
	}
	for k := range c.revealed {
		s.Revealed[k] = true
	}
	return s
}

func (c *Controller) onScroll(offsetY float64) {
	c.scrolled = offsetY > ScrollThreshold
}

// Reveal markers are only ever added.
func (c *Controller) onVisibility(entries []VisibilityEntry) {
	for _, e := range entries {
		if !c.targets[e.Target] {
			continue
		}
		if e.Intersecting && e.Ratio >= RevealThreshold {
			c.revealed[e.Target] = true
		}
	}
}

func (c *Controller) ToggleMenu() {
	c.menuOpen = !c.menuOpen
}

// Navigate handles a click on a link. It reports whether the click was an
// in-page anchor, in which case default navigation must be suppressed.
// Anchors pointing at missing elements are swallowed without effect.
func (c *Controller) Navigate(href string) bool {
	if !strings.HasPrefix(href, "#") {
		return false
	}
	id := strings.TrimPrefix(href, "#")
	if id == "" || !c.viewport.Has(id) {
		return true
	}
	c.viewport.ScrollIntoView(id)
	c.menuOpen = false
	return true
}

func (c *Controller) HireMe() {
	if c.viewport.Has(ContactSection) {
		c.viewport.ScrollIntoView(ContactSection)
	}
	c.menuOpen = false
}

// Brand scrolls to the top and reloads the page once the scroll settles.
func (c *Controller) Brand() {
	c.viewport.ScrollToTop()
	if c.cancelReload != nil {
		c.cancelReload()
	}
	c.cancelReload = c.scheduler.AfterFunc(ReloadDelay, func() {
		c.cancelReload = nil
		if !c.mounted {
			return
		}
		c.viewport.Reload()
	})
}

// SelectProject opens the modal for the project with id. Unknown ids leave
// the selection untouched.
func (c *Controller) SelectProject(id int) bool {
	p, ok := c.site.Project(id)
	if !ok {
		return false
	}
	c.selected = &p
	return true
}

func (c *Controller) CloseProject() {
	c.selected = nil
}

// Input records an edit to field and drops that field's error, if any.
func (c *Controller) Input(field Field, value string) {
	c.form.set(field, value)
	delete(c.errors, field)
}

// Submit validates the form. On success the fields are cleared and the
// confirmation shows until SubmittedTimeout elapses.
func (c *Controller) Submit() bool {
	errs := Validate(c.form)
	if len(errs) > 0 {
		c.errors = errs
		return false
	}

	c.form = Form{}
	c.errors = Errors{}
	c.submitted = true

	if c.cancelRevert != nil {
		c.cancelRevert()
	}
	c.cancelRevert = c.scheduler.AfterFunc(SubmittedTimeout, func() {
		c.cancelRevert = nil
		if !c.mounted || !c.submitted {
			return
		}
		c.submitted = false
	})
	return true
}

// SetTheme stores the preference and applies it to the document in one
// step so the two never disagree.
func (c *Controller) SetTheme(t Theme) {
	c.theme = t
	if err := c.store.Set(PreferenceKey, string(t)); err != nil {
		log.Printf("view: saving display preference: %v", err)
	}
	c.viewport.ApplyTheme(t)
}

func (c *Controller) ToggleTheme() {
	if c.theme == Dark {
		c.SetTheme(Light)
		return
	}
	c.SetTheme(Dark)
}
