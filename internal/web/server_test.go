package web_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"projdex/internal/inventory"
	"projdex/internal/logging"
	"projdex/internal/web"
)

func newBareServer(t *testing.T, port int) *web.Server {
	t.Helper()
	lm := logging.NewTestLogManager(10)
	t.Cleanup(func() { _ = lm.Close() })
	engine := inventory.NewEngine(inventory.NewStore(t.TempDir()))
	return web.New(web.Config{Bind: "127.0.0.1", Port: port}, engine, nil, lm)
}

func TestHandleHealth(t *testing.T) {
	s := newBareServer(t, 0)

	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ln)
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		<-done
	})

	baseURL := "http://" + s.Addr()

	t.Run("returns 200 with JSON body", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("reading body error = %v", err)
		}
		want := `{"status":"ok"}`
		if string(body) != want {
			t.Errorf("body = %q, want %q", string(body), want)
		}
	})

	t.Run("content-type is application/json", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want %q", ct, "application/json")
		}
	})

	t.Run("metrics disabled without a gatherer", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics error = %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestServer_AddrBeforeListen(t *testing.T) {
	s := newBareServer(t, 8765)
	if addr := s.Addr(); addr != "127.0.0.1:8765" {
		t.Errorf("Addr() before Listen() = %q, want %q", addr, "127.0.0.1:8765")
	}
}

// After Shutdown the server no longer accepts new connections.
func TestServer_GracefulShutdown(t *testing.T) {
	s := newBareServer(t, 0)

	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ln)
	}()
	addr := s.Addr()

	resp, err := http.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("pre-shutdown GET: %v", err)
	}
	_ = resp.Body.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("Serve() returned unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Error("server did not stop after Shutdown()")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	if _, err := client.Get("http://" + addr + "/api/health"); err == nil {
		t.Error("expected connection refused after Shutdown(), but GET succeeded")
	}
}

// Start returns an error when the configured port is already in use.
func TestServer_BindFailure(t *testing.T) {
	occupier, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("could not open occupier listener: %v", err)
	}
	defer func() { _ = occupier.Close() }()

	occupiedAddr := occupier.Addr().String()
	portStr := occupiedAddr[strings.LastIndex(occupiedAddr, ":")+1:]
	port := 0
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		t.Fatalf("parse port from %q: %v", occupiedAddr, err)
	}

	bindErr := newBareServer(t, port).Start()
	if bindErr == nil {
		t.Fatal("Start() returned nil error, expected bind error")
	}
	if !strings.Contains(bindErr.Error(), "listen") {
		t.Errorf("Start() error = %q; expected a listen error", bindErr)
	}
}
