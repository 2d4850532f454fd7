package view

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/stretchr/testify/require"
)

type fakeScroll struct {
	fn       func(float64)
	detached bool
}

func (s *fakeScroll) OnScroll(fn func(float64)) func() {
	s.fn = fn
	return func() { s.detached = true; s.fn = nil }
}

func (s *fakeScroll) emit(y float64) {
	if s.fn != nil {
		s.fn(y)
	}
}

type fakeObserver struct {
	targets      []string
	threshold    float64
	fn           func([]VisibilityEntry)
	disconnected bool
}

func (o *fakeObserver) Observe(targets []string, threshold float64, fn func([]VisibilityEntry)) func() {
	o.targets, o.threshold, o.fn = targets, threshold, fn
	return func() { o.disconnected = true; o.fn = nil }
}

func (o *fakeObserver) emit(entries ...VisibilityEntry) {
	if o.fn != nil {
		o.fn(entries)
	}
}

type memStore struct {
	values map[string]string
	failOn bool
	writes int
}

func (m *memStore) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.writes++
	if m.failOn {
		return errors.New("disk full")
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

type fakeViewport struct {
	ids      map[string]bool
	scrolled []string
	tops     int
	themes   []Theme
	reloads  int
}

func (v *fakeViewport) Has(id string) bool       { return v.ids[id] }
func (v *fakeViewport) ScrollIntoView(id string) { v.scrolled = append(v.scrolled, id) }
func (v *fakeViewport) ScrollToTop()             { v.tops++ }
func (v *fakeViewport) ApplyTheme(t Theme)       { v.themes = append(v.themes, t) }
func (v *fakeViewport) Reload()                  { v.reloads++ }

// fakeScheduler runs callbacks only when the test advances its clock.
type fakeScheduler struct {
	now   time.Duration
	tasks []*fakeTask
}

type fakeTask struct {
	at        time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := &fakeTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() { t.cancelled = true }
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.now += d
	sort.SliceStable(s.tasks, func(i, j int) bool { return s.tasks[i].at < s.tasks[j].at })
	for _, t := range s.tasks {
		if t.fired || t.cancelled || t.at > s.now {
			continue
		}
		t.fired = true
		t.fn()
	}
}

// fireAll runs every task even if cancelled, to simulate a callback that
// was already queued when teardown happened.
func (s *fakeScheduler) fireAll() {
	for _, t := range s.tasks {
		if !t.fired {
			t.fired = true
			t.fn()
		}
	}
}

type harness struct {
	ctrl     *Controller
	scroll   *fakeScroll
	observer *fakeObserver
	store    *memStore
	viewport *fakeViewport
	sched    *fakeScheduler
	site     *content.Site
}

func newHarness(t *testing.T, prefersDark bool) *harness {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, s := range site.Sections() {
		ids[s] = true
	}

	h := &harness{
		scroll:   &fakeScroll{},
		observer: &fakeObserver{},
		store:    &memStore{},
		viewport: &fakeViewport{ids: ids},
		sched:    &fakeScheduler{},
		site:     site,
	}
	h.ctrl = New(Options{
		Site:        site,
		Scroll:      h.scroll,
		Visibility:  h.observer,
		Store:       h.store,
		Viewport:    h.viewport,
		Scheduler:   h.sched,
		PrefersDark: prefersDark,
	})
	return h
}

func (h *harness) mount() *harness {
	h.ctrl.Mount()
	return h
}
