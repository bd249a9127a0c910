package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualgraph/qualgraph/internal/config"
	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/server"
	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// startTestServer starts a viewer server on a random port over an in-memory
// store and returns its base URL.
func startTestServer(t *testing.T, cfg *config.Config) (string, *engine.Engine) {
	t.Helper()

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0 // random port
	if cfg.Web.RateLimitPerSec == 0 {
		cfg.Web.RateLimitPerSec = 100
		cfg.Web.RateLimitBurst = 100
	}

	eng := engine.NewEngine(storage.NewMemStore())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	addr, _, err := server.Start(ctx, cfg, eng, nil)
	require.NoError(t, err)

	// Wait for the listener to accept.
	baseURL := "http://" + addr
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/health")
		if err == nil {
			_ = resp.Body.Close()
			return baseURL, eng
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not start within timeout")
	return "", nil
}

func TestHealthEndpoint(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.SecurityMode = "development"
	baseURL, _ := startTestServer(t, cfg)

	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0"}`, string(body))
}

func TestGraphEndpointDevelopmentMode(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.SecurityMode = "development"
	baseURL, eng := startTestServer(t, cfg)

	_, err := eng.CreateEntities(context.Background(), []types.Entity{
		{Name: "Study A", EntityType: types.EntityTypeProject},
	})
	require.NoError(t, err)

	resp, err := http.Get(baseURL + "/api/graph")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var graph types.KnowledgeGraph
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&graph))
	assert.Len(t, graph.Entities, 1)
}

func TestGraphEndpointProductionAuth(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.SecurityMode = "production"
	cfg.Security.APIToken = "viewer-token"
	baseURL, _ := startTestServer(t, cfg)

	// No token: rejected.
	resp, err := http.Get(baseURL + "/api/graph")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health stays open.
	resp, err = http.Get(baseURL + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Correct token: accepted.
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/graph", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer viewer-token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMutationVerbsNotRouted(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.SecurityMode = "development"
	baseURL, _ := startTestServer(t, cfg)

	resp, err := http.Post(baseURL+"/api/graph", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode,
		fmt.Sprintf("POST should not be routed, got %d", resp.StatusCode))
}

func TestRateLimitIsEnforced(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.SecurityMode = "development"
	cfg.Web.RateLimitPerSec = 1
	cfg.Web.RateLimitBurst = 2
	baseURL, _ := startTestServer(t, cfg)

	// The startup health probe consumed part of the burst; hammer until we
	// observe a 429.
	limited := false
	for i := 0; i < 10; i++ {
		resp, err := http.Get(baseURL + "/api/health")
		require.NoError(t, err)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected a 429 within the burst window")
}
