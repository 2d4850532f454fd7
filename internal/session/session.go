// Package session runs one view controller per page load. Every stimulus
// and timer callback for a session executes on that session's own loop
// goroutine, one at a time, in arrival order.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/view"
)

var ErrClosed = errors.New("session closed")

// Renderer turns a region of a snapshot into HTML.
type Renderer interface {
	Render(region view.Region, snap view.Snapshot) (string, error)
}

type Session struct {
	ID string

	ctrl    *view.Controller
	render  Renderer
	ids     map[string]bool
	initial view.Snapshot
	prev    view.Snapshot

	onScroll     func(float64)
	onVisibility func([]view.VisibilityEntry)

	inbox chan func()
	out   chan Message

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	attached atomic.Bool
}

type config struct {
	id          string
	site        *content.Site
	anchors     []string
	store       view.PreferenceStore
	render      Renderer
	prefersDark bool
	outbox      int
}

func newSession(parent context.Context, cfg config) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:     cfg.id,
		render: cfg.render,
		ids:    make(map[string]bool),
		inbox:  make(chan func()),
		out:    make(chan Message, cfg.outbox),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, id := range cfg.site.Sections() {
		s.ids[id] = true
	}
	for _, id := range cfg.anchors {
		s.ids[id] = true
	}

	s.ctrl = view.New(view.Options{
		Site:        cfg.site,
		Scroll:      scrollFeed{s},
		Visibility:  visibilityFeed{s},
		Store:       cfg.store,
		Viewport:    viewport{s},
		Scheduler:   loopScheduler{s},
		PrefersDark: cfg.prefersDark,
	})

	// Nothing else can reach the controller until run starts.
	s.ctrl.Mount()
	s.initial = s.ctrl.Snapshot()
	s.prev = s.initial

	go s.run()
	return s
}

// Initial is the state the page was first rendered from.
func (s *Session) Initial() view.Snapshot { return s.initial }

// Outbox yields messages for the browser. It is closed when the session
// ends.
func (s *Session) Outbox() <-chan Message { return s.out }

// Done is closed once the session has torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Dispatch queues ev for the loop.
func (s *Session) Dispatch(ev Event) error {
	return s.post(func() { s.handle(ev) })
}

// Reject reports a malformed message back to the browser.
func (s *Session) Reject(reason string) error {
	return s.post(func() { s.fail(reason) })
}

// Snapshot reads the current state through the loop.
func (s *Session) Snapshot() (view.Snapshot, error) {
	ch := make(chan view.Snapshot, 1)
	if err := s.post(func() { ch <- s.ctrl.Snapshot() }); err != nil {
		return view.Snapshot{}, err
	}
	select {
	case snap := <-ch:
		return snap, nil
	case <-s.done:
		return view.Snapshot{}, ErrClosed
	}
}

func (s *Session) close() {
	s.cancel()
	<-s.done
}

func (s *Session) post(fn func()) error {
	select {
	case s.inbox <- fn:
		return nil
	case <-s.ctx.Done():
		return ErrClosed
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer close(s.out)

	for {
		select {
		case fn := <-s.inbox:
			fn()
			s.flush()
		case <-s.ctx.Done():
			s.ctrl.Teardown()
			return
		}
	}
}

func (s *Session) handle(ev Event) {
	switch ev.Type {
	case EventScroll:
		if s.onScroll != nil {
			s.onScroll(ev.OffsetY)
		}
	case EventVisibility:
		if s.onVisibility != nil {
			s.onVisibility(ev.Entries)
		}
	case EventNavigate:
		s.ctrl.Navigate(ev.Href)
	case EventMenu:
		s.ctrl.ToggleMenu()
	case EventHireMe:
		s.ctrl.HireMe()
	case EventBrand:
		s.ctrl.Brand()
	case EventSelect:
		if !s.ctrl.SelectProject(ev.ID) {
			s.fail(fmt.Sprintf("unknown project %d", ev.ID))
		}
	case EventClose:
		s.ctrl.CloseProject()
	case EventInput:
		field, ok := view.ParseField(ev.Field)
		if !ok {
			s.fail(fmt.Sprintf("unknown field %q", ev.Field))
			return
		}
		s.ctrl.Input(field, ev.Value)
	case EventSubmit:
		s.ctrl.Submit()
	case EventTheme:
		s.ctrl.ToggleTheme()
	default:
		s.fail(fmt.Sprintf("unknown event type %q", ev.Type))
	}
}

// flush pushes every region that renders differently since the last flush.
func (s *Session) flush() {
	next := s.ctrl.Snapshot()
	for _, region := range view.Diff(s.prev, next) {
		html, err := s.render.Render(region, next)
		if err != nil {
			log.Printf("session %s: rendering %s: %v", s.ID, region, err)
			continue
		}
		s.send(Message{Type: MessagePatch, Target: string(region), HTML: html})
	}
	s.prev = next
}

func (s *Session) fail(msg string) {
	s.send(Message{Type: MessageError, Error: msg})
}

// send never blocks the loop; a browser that stops reading loses messages.
func (s *Session) send(m Message) {
	select {
	case s.out <- m:
	default:
		log.Printf("session %s: outbox full, dropping %s message", s.ID, m.Type)
	}
}

type scrollFeed struct{ s *Session }

func (f scrollFeed) OnScroll(fn func(float64)) func() {
	f.s.onScroll = fn
	return func() { f.s.onScroll = nil }
}

type visibilityFeed struct{ s *Session }

// The browser observes with the same threshold; the controller checks
// each entry's ratio itself.
func (f visibilityFeed) Observe(_ []string, _ float64, fn func([]view.VisibilityEntry)) func() {
	f.s.onVisibility = fn
	return func() { f.s.onVisibility = nil }
}

type viewport struct{ s *Session }

func (v viewport) Has(id string) bool { return v.s.ids[id] }

func (v viewport) ScrollIntoView(id string) {
	v.s.send(Message{Type: MessageScroll, Target: id})
}

func (v viewport) ScrollToTop() { v.s.send(Message{Type: MessageTop}) }

func (v viewport) ApplyTheme(t view.Theme) {
	v.s.send(Message{Type: MessageTheme, Theme: string(t)})
}

func (v viewport) Reload() { v.s.send(Message{Type: MessageReload}) }

type loopScheduler struct{ s *Session }

// AfterFunc runs fn on the session loop. Stopping the returned cancel
// after the timer fired but before the loop ran fn does not stop fn; the
// controller guards its callbacks for that case.
func (l loopScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		if err := l.s.post(fn); err != nil && !errors.Is(err, ErrClosed) {
			log.Printf("session %s: scheduling: %v", l.s.ID, err)
		}
	})
	return func() { t.Stop() }
}
