// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"projdex/internal/events"
	"projdex/internal/inventory"
	"projdex/internal/launcher"
	"projdex/internal/logging"
	"projdex/internal/metrics"
	"projdex/internal/project"
)

// Server serves the catalog API, the progress stream and metrics.
type Server struct {
	httpServer *http.Server
	engine     *inventory.Engine
	notify     func(any)
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker
	settings   func() Settings
}

// Settings are the configuration values handlers read on every request, so a
// reloaded config takes effect without a restart.
type Settings struct {
	Scan      project.ScanConfig
	SortBy    project.SortBy
	Launchers *launcher.Registry
}

// Config holds web server configuration.
type Config struct {
	Bind     string
	Port     int
	Settings func() Settings
	Gatherer prometheus.Gatherer // serves /metrics when set
	Metrics  *metrics.Metrics
}

// New creates a web server over engine.
// notify, when non-nil, receives events.* messages after mutations and
// during batch classification.
// logProvider must implement logging.LoggerProvider (both *logging.Manager and
// *logging.TestLogManager satisfy this interface).
func New(cfg Config, engine *inventory.Engine, notify func(any), logProvider logging.LoggerProvider) *Server {
	logger := logProvider.For("web")
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	settings := cfg.Settings
	if settings == nil {
		settings = func() Settings {
			return Settings{SortBy: project.SortByHits, Launchers: launcher.NewRegistry(nil)}
		}
	}
	if notify == nil {
		notify = func(any) {}
	}

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine:   engine,
		notify:   notify,
		logger:   logger,
		addr:     addr,
		events:   newEventBroker(cfg.Metrics.AddSubscribers),
		settings: settings,
	}
	engine.SetOnUpdate(s.catalogUpdated)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/projects", s.handleGetProjects)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("POST /api/detect", s.handleDetect)
	mux.HandleFunc("POST /api/projects/custom", s.handleAddCustom)
	mux.HandleFunc("DELETE /api/projects/custom", s.handleRemoveCustom)
	mux.HandleFunc("POST /api/projects/open", s.handleOpen)
	mux.HandleFunc("POST /api/projects/top", s.handleSetTop)
	mux.HandleFunc("POST /api/projects/alias", s.handleSetAlias)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// catalogUpdated runs after every catalog write.
func (s *Server) catalogUpdated(projects []project.Project) {
	s.events.Publish(Event{Type: EventCatalogUpdated})
	s.notify(events.CatalogUpdatedMsg{Projects: projects})
}

// Handler returns the request router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the server to its configured address and returns the listener.
// Call Serve() after Listen() to start accepting connections.
// This two-step approach allows callers to obtain the actual bound address
// (useful for ephemeral port 0 in tests) before the server blocks on Serve().
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server stops.
// Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	s.notify(events.WebListenURLMsg{URL: "http://" + ln.Addr().String()})
	return s.httpServer.Serve(ln)
}

// Start is a convenience that calls Listen() then Serve(). Blocks until the server stops.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the address the server is listening on.
// Only valid after Listen() or Start() has been called.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
