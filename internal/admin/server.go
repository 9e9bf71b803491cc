// Package admin exposes the operator HTTP surface: health, the audit
// query API, runtime metrics, and a live websocket feed of table
// events. It is optional; the server runs headless without it.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/arl/statsviz"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hearts-lite/internal/audit"
)

type Server struct {
	addr   string
	hub    *Hub
	srv    *http.Server
	logger *log.Logger
}

// New assembles the admin server on addr. The hub is shared with the
// game loop's watch feed.
func New(addr string, sink audit.Sink, hub *Hub) (*Server, error) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Mount("/api/audit", audit.NewHTTPHandler(sink))
	r.Get("/watch", hub.HandleWatch)

	stats, err := statsviz.NewServer()
	if err != nil {
		return nil, err
	}
	r.Get("/debug/statsviz/ws", stats.Ws())
	r.Get("/debug/statsviz", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/debug/statsviz/", http.StatusMovedPermanently)
	})
	r.Handle("/debug/statsviz/*", stats.Index())

	return &Server{
		addr:   addr,
		hub:    hub,
		srv:    &http.Server{Addr: addr, Handler: r},
		logger: log.WithPrefix("admin"),
	}, nil
}

// Hub returns the watch-feed hub.
func (s *Server) Hub() *Hub { return s.hub }

// Serve runs until the context ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
