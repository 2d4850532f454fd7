package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/janitor"
	"github.com/Zachkp/portfolio/internal/prefs"
	"github.com/Zachkp/portfolio/internal/session"
	"github.com/Zachkp/portfolio/internal/view"
	"github.com/Zachkp/portfolio/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	site, err := content.Load(cfg.Site.ContentPath)
	if err != nil {
		log.Fatalf("Failed to load site content: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := prefs.Open(ctx, prefs.Options{
		Backend:         cfg.Prefs.Backend,
		SQLitePath:      cfg.Prefs.SQLitePath,
		RedisAddr:       cfg.Prefs.RedisAddr,
		Salt:            cfg.Prefs.Salt,
		RetentionMonths: cfg.Prefs.RetentionMonths,
	})
	if err != nil {
		log.Fatalf("Failed to open preference store: %v", err)
	}
	defer store.Close()

	// Clean up stale preferences on startup, then on schedule
	jan, err := janitor.New(cfg.Prefs.CleanupCron, store)
	if err != nil {
		log.Fatalf("Failed to schedule cleanup: %v", err)
	}
	jan.Run()
	jan.Start()
	defer jan.Stop()

	renderer, err := web.NewRenderer(site, cfg.Site.ThemeToggle)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	hub := session.NewHub(session.HubOptions{
		Site:          site,
		Stores:        func(visitorID string) view.PreferenceStore { return store.ForVisitor(visitorID) },
		Renderer:      renderer,
		Anchors:       renderer.Anchors(),
		AttachTimeout: cfg.Session.AttachTimeout,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: web.NewRouter(web.Options{
			Hub:        hub,
			Renderer:   renderer,
			Version:    cfg.Server.Version,
			EventRate:  cfg.Session.EventRate,
			EventBurst: cfg.Session.EventBurst,
		}),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Shutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Portfolio server starting on port %s (%s, prefs: %s)", cfg.Server.Port, cfg.Server.Environment, cfg.Prefs.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	<-shutdownDone
	log.Println("Server stopped")
}
