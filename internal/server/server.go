// Package server provides HTTP server initialization and lifecycle management
// for the qualgraph web viewer.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/qualgraph/qualgraph/internal/config"
	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/session"
	"github.com/qualgraph/qualgraph/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start builds the route table and starts the HTTP server. It returns the
// actual listen address (useful for tests binding port 0) and the WebSocket
// hub, so the caller can wire graph-change broadcasts into it. sessions may
// be nil. The server shuts down when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, eng *engine.Engine, sessions *session.Manager) (string, *handlers.WebSocketHub, error) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub(cfg.Server.Host, cfg.Server.Port)
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(cfg.Web.RateLimitPerSec, cfg.Web.RateLimitBurst)
	graphHandlers := handlers.NewGraphHandlers(eng, sessions)

	// Read-only API routes. All mutation goes through the MCP server; the
	// viewer only observes.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/graph", graphHandlers.GetGraph)
	apiMux.HandleFunc("GET /api/search", graphHandlers.Search)
	apiMux.HandleFunc("GET /api/overview", graphHandlers.GetOverview)
	apiMux.HandleFunc("GET /api/entities", graphHandlers.GetEntity)
	apiMux.HandleFunc("GET /api/sessions", graphHandlers.ListSessions)
	apiMux.HandleFunc("GET /api/sessions/{id}", graphHandlers.GetSession)

	// Health endpoint — no auth required, used for monitoring.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	// API routes require auth in production mode.
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint — origin validation handles access control.
	mux.Handle("/ws", wsHub)

	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		wsHub.Stop()
		return "", nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	log.Printf("qualgraph-web listening on %s", actualAddr)
	return actualAddr, wsHub, nil
}
