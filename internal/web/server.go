// Package web serves the portfolio page and relays browser stimuli to the
// page's session over a WebSocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/session"
)

//go:embed static
var staticFS embed.FS

const (
	visitorCookie = "visitor"
	schemeHint    = "Sec-CH-Prefers-Color-Scheme"
	writeWait     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type Options struct {
	Hub      *session.Hub
	Renderer *Renderer
	Version  string

	// EventRate and EventBurst throttle inbound socket messages.
	EventRate  float64
	EventBurst int
}

type Server struct {
	opts Options
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(opts Options) *gin.Engine {
	if opts.EventRate <= 0 {
		opts.EventRate = 60
	}
	if opts.EventBurst <= 0 {
		opts.EventBurst = 30
	}
	s := &Server{opts: opts}

	r := gin.Default()
	r.SetHTMLTemplate(opts.Renderer.tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatal("Failed to load static assets:", err)
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.index)
	r.GET("/ws", s.socket)
	r.GET("/health", s.health)
	r.GET("/healthz", s.health)
	return r
}

// index opens a session for this page load and renders it.
func (s *Server) index(c *gin.Context) {
	visitor, err := c.Cookie(visitorCookie)
	if err != nil || uuid.Validate(visitor) != nil {
		visitor = uuid.NewString()
	}
	c.SetCookie(visitorCookie, visitor, 3600*24*365, "/", "", false, true)

	c.Header("Accept-CH", schemeHint)
	c.Header("Vary", schemeHint)
	prefersDark := c.GetHeader(schemeHint) == "dark"

	sess, err := s.opts.Hub.Open(visitor, prefersDark)
	if err != nil {
		log.Printf("web: opening session: %v", err)
		c.String(http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	c.HTML(http.StatusOK, "index.html", s.opts.Renderer.page(sess.ID, sess.Initial()))
}

// socket binds a WebSocket to an open session. Inbound frames are events;
// the session's outbox is written back until either side goes away.
func (s *Server) socket(c *gin.Context) {
	sess, err := s.opts.Hub.Attach(c.Query("session"))
	switch {
	case errors.Is(err, session.ErrUnknown):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	case errors.Is(err, session.ErrAttached):
		c.JSON(http.StatusConflict, gin.H{"error": "session already attached"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		s.opts.Hub.Close(sess.ID)
		return
	}
	defer conn.Close()

	written := make(chan struct{})
	go func() {
		defer close(written)
		for m := range sess.Outbox() {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				log.Printf("web: websocket write: %v", err)
				return
			}
		}
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
	}()

	s.readEvents(conn, sess)

	s.opts.Hub.Close(sess.ID)
	<-written
}

func (s *Server) readEvents(conn *websocket.Conn, sess *session.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-sess.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(s.opts.EventRate), s.opts.EventBurst)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket read: %v", err)
			}
			return
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		var ev session.Event
		if jsonErr := json.Unmarshal(msg, &ev); jsonErr != nil {
			err = sess.Reject("invalid message format")
		} else {
			err = sess.Dispatch(ev)
		}
		if err != nil {
			return
		}
	}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Sessions  int       `json:"sessions"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.opts.Version,
		Sessions:  s.opts.Hub.Len(),
	})
}
