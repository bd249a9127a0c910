// cmd/qualgraph-web serves the read-only web viewer over the same graph the
// MCP server writes. With the jsonfile engine it also watches the graph file
// and pushes change notifications to connected WebSocket clients.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qualgraph/qualgraph/internal/config"
	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/notify"
	"github.com/qualgraph/qualgraph/internal/server"
	"github.com/qualgraph/qualgraph/internal/session"
	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/internal/storage/jsonfile"
	"github.com/qualgraph/qualgraph/internal/storage/postgres"
	"github.com/qualgraph/qualgraph/internal/storage/sqlite"
	"github.com/qualgraph/qualgraph/web/handlers"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewEngine(store)
	sessions := session.NewManager(sessionStore)

	addr, wsHub, err := server.Start(ctx, cfg, eng, sessions)
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	log.Printf("qualgraph viewer running at http://%s", addr)

	// The MCP process owns writes. With the jsonfile engine we can observe
	// its saves directly and tell viewers to refresh.
	if cfg.Storage.Engine == config.EngineJSONFile {
		watcher := notify.NewGraphWatcher(cfg.GraphPath(), func() {
			wsHub.Broadcast(handlers.NewGraphChangedMessage())
		})
		if err := watcher.Start(); err != nil {
			log.Printf("graph watcher disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down")
	cancel()
	time.Sleep(time.Second) // let in-flight connections close
}
