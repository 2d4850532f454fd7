package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/view"
)

var (
	ErrUnknown  = errors.New("unknown session")
	ErrAttached = errors.New("session already attached")
)

// StoreFunc returns the preference store for a visitor cookie id.
type StoreFunc func(visitorID string) view.PreferenceStore

type HubOptions struct {
	Site     *content.Site
	Stores   StoreFunc
	Renderer Renderer
	// Anchors are element ids on the page that in-page links may target,
	// in addition to the site's sections.
	Anchors []string

	// AttachTimeout closes sessions whose page never opened a socket.
	AttachTimeout time.Duration
	// Outbox is the per-session outbound message buffer.
	Outbox int
}

// Hub tracks the live sessions.
type Hub struct {
	opts HubOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHub(opts HubOptions) *Hub {
	if opts.AttachTimeout <= 0 {
		opts.AttachTimeout = 30 * time.Second
	}
	if opts.Outbox <= 0 {
		opts.Outbox = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Open starts a mounted session for one page load.
func (h *Hub) Open(visitorID string, prefersDark bool) (*Session, error) {
	if err := h.ctx.Err(); err != nil {
		return nil, ErrClosed
	}

	s := newSession(h.ctx, config{
		id:          uuid.NewString(),
		site:        h.opts.Site,
		anchors:     h.opts.Anchors,
		store:       h.opts.Stores(visitorID),
		render:      h.opts.Renderer,
		prefersDark: prefersDark,
		outbox:      h.opts.Outbox,
	})

	h.mu.Lock()
	if h.ctx.Err() != nil {
		h.mu.Unlock()
		s.close()
		return nil, ErrClosed
	}
	h.sessions[s.ID] = s
	h.mu.Unlock()

	time.AfterFunc(h.opts.AttachTimeout, func() {
		if !s.attached.Load() {
			h.Close(s.ID)
		}
	})
	return s, nil
}

func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Attach claims a session for a socket. A session attaches at most once.
func (h *Hub) Attach(id string) (*Session, error) {
	s, ok := h.Get(id)
	if !ok {
		return nil, ErrUnknown
	}
	if !s.attached.CompareAndSwap(false, true) {
		return nil, ErrAttached
	}
	return s, nil
}

// Close tears a session down and forgets it.
func (h *Hub) Close(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		s.close()
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown tears every session down and refuses new ones.
func (h *Hub) Shutdown() {
	h.cancel()

	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		<-s.done
	}
	log.Printf("session: shut down %d sessions", len(sessions))
}
