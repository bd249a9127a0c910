// cmd/qualgraph-mcp is the entry point for the qualgraph MCP (Model Context
// Protocol) server.
//
// Startup sequence:
//  1. Load configuration from environment variables.
//  2. Open the configured graph store (jsonfile, sqlite, or postgres).
//  3. Seed the status/priority side tables if absent.
//  4. Serve JSON-RPC 2.0 requests from stdin, writing responses to stdout.
//
// CRITICAL: ALL logging MUST go to stderr.  Any bytes written to stdout that
// are not valid JSON-RPC 2.0 response frames will corrupt the protocol.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/qualgraph/qualgraph/internal/api/mcp"
	"github.com/qualgraph/qualgraph/internal/config"
	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/session"
	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/internal/storage/jsonfile"
	"github.com/qualgraph/qualgraph/internal/storage/postgres"
	"github.com/qualgraph/qualgraph/internal/storage/sqlite"
)

// openGraphStore builds the store selected by the config, optionally wrapped
// in the circuit breaker.
func openGraphStore(cfg *config.Config) (storage.GraphStore, error) {
	var store storage.GraphStore
	var err error

	switch cfg.Storage.Engine {
	case config.EngineSQLite:
		store, err = sqlite.NewGraphStore(cfg.SQLitePath())
	case config.EnginePostgres:
		store, err = postgres.NewGraphStore(cfg.Storage.PostgresDSN)
	default:
		store, err = jsonfile.NewGraphStore(cfg.GraphPath())
	}
	if err != nil {
		return nil, err
	}

	if cfg.Storage.BreakerEnabled {
		store = storage.NewBreakerStore(store)
	}
	return store, nil
}

func main() {
	// Redirect the default logger to stderr so that any incidental log calls
	// (e.g. from imported packages) never pollute the stdout JSON-RPC stream.
	log.SetOutput(os.Stderr)
	log.SetPrefix("qualgraph-mcp: ")
	log.SetFlags(log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Engine != config.EnginePostgres {
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
			log.Fatalf("failed to create data directory %q: %v", cfg.Storage.DataPath, err)
		}
	}

	store, err := openGraphStore(cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Storage.Engine, err)
	}
	defer func() { _ = store.Close() }()

	sessionStore, err := jsonfile.NewSessionStore(cfg.SessionPath())
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer func() { _ = sessionStore.Close() }()

	// Root context cancelled on SIGINT / SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("received shutdown signal")
		cancel()
	}()

	eng := engine.NewEngine(store)
	if err := eng.InitializeStatusAndPriority(ctx); err != nil {
		log.Fatalf("failed to seed status and priority entities: %v", err)
	}

	srv := mcp.NewServer(eng, session.NewManager(sessionStore))
	transport := mcp.NewStdioTransport(srv, os.Stdin, os.Stdout)

	log.Printf("serving MCP on stdio (engine=%s)", cfg.Storage.Engine)
	if err := transport.Serve(ctx); err != nil && err != context.Canceled {
		log.Fatalf("transport error: %v", err)
	}
}
