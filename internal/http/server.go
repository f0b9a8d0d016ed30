package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kkuyev/elevator-cabin/internal/constants"
	"github.com/kkuyev/elevator-cabin/internal/controller"
	"github.com/kkuyev/elevator-cabin/internal/infra/config"
	"github.com/kkuyev/elevator-cabin/internal/infra/health"
	"github.com/kkuyev/elevator-cabin/internal/infra/logging"
	"github.com/kkuyev/elevator-cabin/internal/infra/observability"
	"github.com/kkuyev/elevator-cabin/internal/resilience"
)

// Server represents the HTTP server fronting a single cabin Controller.
type Server struct {
	controller    *controller.Controller
	breaker       *resilience.CircuitBreaker
	httpServer    *http.Server
	cfg           *config.Config
	logger        *slog.Logger
	healthService *health.HealthService
	metrics       *observability.Metrics

	connections map[*websocket.Conn]context.CancelFunc
	connMu      sync.Mutex
}

// wsUpgrader upgrades HTTP connections to WebSocket connections for status push.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
	Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		http.Error(w, reason.Error(), status)
	},
}

// NewServer creates a new instance of Server wiring the versioned API,
// middleware chain, Prometheus exposition, and the status WebSocket
// onto a single mux in front of the given Controller.
func NewServer(cfg *config.Config, port int, ctrl *controller.Controller, breaker *resilience.CircuitBreaker, metrics *observability.Metrics) *Server {
	s := &Server{
		controller:    ctrl,
		breaker:       breaker,
		cfg:           cfg,
		logger:        slog.With(slog.String("component", constants.ComponentHTTPServer)),
		healthService: health.NewHealthService(30 * time.Second),
		metrics:       metrics,
		connections:   make(map[*websocket.Conn]context.CancelFunc),
	}

	s.setupHealthChecks()

	addr := fmt.Sprintf(":%d", port)

	v1Handlers := NewV1Handlers(ctrl, breaker, cfg, s.logger)

	rateLimiter := NewRateLimitMiddleware(cfg.RateLimitRPM, s.logger)

	middlewareChain := ChainMiddleware(
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger, metrics),
		RecoveryMiddleware(s.logger, metrics),
		CORSMiddleware(),
		SecurityHeadersMiddleware(),
		rateLimiter.Handler(),
	)

	mux := http.NewServeMux()

	// === V1 API ROUTES ===
	mux.HandleFunc("/v1", v1Handlers.APIInfoHandler)
	mux.HandleFunc("/v1/hall-call", v1Handlers.HallCallHandler)
	mux.HandleFunc("/v1/cabin-call", v1Handlers.CabinCallHandler)
	mux.HandleFunc("/v1/status", v1Handlers.StatusHandler)
	mux.HandleFunc("/v1/health", v1Handlers.HealthHandler)

	// Enhanced health endpoints
	mux.HandleFunc("/v1/health/live", s.livenessHandler)
	mux.HandleFunc("/v1/health/ready", s.readinessHandler)
	mux.HandleFunc("/v1/health/detailed", s.detailedHealthHandler)

	// === MONITORING ROUTES ===
	mux.Handle("/metrics", metrics.Handler())

	// === WEBSOCKET ROUTE ===
	mux.HandleFunc("/ws/status", s.statusWebSocketHandler)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      middlewareChain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// setupHealthChecks initializes and registers health check components
func (s *Server) setupHealthChecks() {
	s.healthService.Register(health.NewSystemResourceChecker(85.0, 1000))
	s.healthService.Register(health.NewLivenessChecker())

	cabinChecker := health.NewComponentHealthChecker("cabin_controller", func(ctx context.Context) (bool, string, map[string]interface{}) {
		status := s.controller.Status()
		details := map[string]interface{}{
			"current_floor":      status.CurrentFloor,
			"direction":          status.Direction.String(),
			"doors_closed":       status.DoorsClosed,
			"pending_passengers": status.PendingPassengers,
			"pending_callers":    status.PendingCallers,
		}
		return true, "cabin controller is responding", details
	})
	s.healthService.Register(cabinChecker)

	breakerChecker := health.NewComponentHealthChecker("circuit_breaker", func(ctx context.Context) (bool, string, map[string]interface{}) {
		state, failures, successes := s.breaker.Metrics()
		details := map[string]interface{}{
			"state":    state.String(),
			"failures": failures,
			"success":  successes,
		}

		if state == resilience.StateOpen {
			return false, "hardware circuit breaker is open", details
		}
		return true, "hardware circuit breaker is closed or recovering", details
	})
	s.healthService.Register(breakerChecker)

	readinessChecker := health.NewReadinessChecker(cabinChecker, breakerChecker)
	s.healthService.Register(readinessChecker)

	s.logger.Info("health checks initialized", slog.Int("registered_checkers", 5))
}

// livenessHandler handles liveness probe requests
func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.healthService.Check(r.Context(), "liveness")
	if err != nil {
		http.Error(w, "Liveness check failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// readinessHandler handles readiness probe requests
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.healthService.Check(r.Context(), "readiness")
	if err != nil {
		http.Error(w, "Readiness check failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// detailedHealthHandler provides comprehensive health status
func (s *Server) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	overallStatus, results := s.healthService.GetOverallStatus(r.Context())

	response := map[string]interface{}{
		"status":    string(overallStatus),
		"timestamp": time.Now(),
		"checks":    results,
		"summary": map[string]interface{}{
			"total_checks":     len(results),
			"healthy_checks":   countChecksWithStatus(results, health.StatusHealthy),
			"degraded_checks":  countChecksWithStatus(results, health.StatusDegraded),
			"unhealthy_checks": countChecksWithStatus(results, health.StatusUnhealthy),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	var statusCode int
	switch overallStatus {
	case health.StatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
	case health.StatusDegraded:
		statusCode = http.StatusOK
	default:
		statusCode = http.StatusOK
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// countChecksWithStatus counts health checks with a specific status
func countChecksWithStatus(results map[string]health.CheckResult, status health.Status) int {
	count := 0
	for _, result := range results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// GetHandler returns the HTTP handler for testing purposes
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server and closes any open
// WebSocket connections.
func (s *Server) Shutdown() error {
	s.closeAllConnections()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) addConnection(conn *websocket.Conn, cancel context.CancelFunc) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.connections[conn] = cancel
}

func (s *Server) removeConnection(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.connections, conn)
}

func (s *Server) closeAllConnections() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for conn, cancel := range s.connections {
		cancel()
		_ = conn.Close()
	}
	s.connections = make(map[*websocket.Conn]context.CancelFunc)
}

// wsStatusResult is a helper struct for handling status updates with timeouts.
type wsStatusResult struct {
	status controller.Status
}

// statusWebSocketHandler handles WebSocket connections for elevator status
// updates. It periodically pushes the cabin's current status to the
// connected client.
func (s *Server) statusWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logging.NewContextWithCorrelation(r.Context())

	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upgrade connection to WebSocket",
			slog.String("error", err.Error()))
		return
	}

	wsCtx, cancel := context.WithCancel(ctx)
	s.addConnection(ws, cancel)
	defer func() {
		cancel()
		s.removeConnection(ws)
		if errOnClose := ws.Close(); errOnClose != nil {
			s.logger.ErrorContext(ctx, "failed to close WebSocket connection",
				slog.String("error", errOnClose.Error()))
		}
	}()

	s.logger.InfoContext(ctx, "WebSocket connection established")

	if err := ws.WriteJSON(statusToResponse(s.controller.Status())); err != nil {
		s.logger.ErrorContext(ctx, "failed to send initial status via WebSocket",
			slog.String("error", err.Error()))
		return
	}

	statusTicker := time.NewTicker(s.cfg.StatusUpdateInterval)
	defer statusTicker.Stop()

	pingTicker := time.NewTicker(s.cfg.WebSocketPingInterval)
	defer pingTicker.Stop()

	if err := ws.SetReadDeadline(time.Now().Add(s.cfg.WebSocketReadTimeout)); err != nil {
		s.logger.ErrorContext(ctx, "failed to set read deadline",
			slog.String("error", err.Error()))
		return
	}
	ws.SetPongHandler(func(string) error {
		if err := ws.SetReadDeadline(time.Now().Add(s.cfg.WebSocketReadTimeout)); err != nil {
			s.logger.ErrorContext(ctx, "failed to set read deadline in pong handler",
				slog.String("error", err.Error()))
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.logger.WarnContext(ctx, "WebSocket connection closed unexpectedly",
						slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			s.logger.InfoContext(ctx, "WebSocket connection closed by client")
			return

		case <-wsCtx.Done():
			s.logger.InfoContext(ctx, "WebSocket connection context cancelled")
			if err := ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutdown"), time.Now().Add(s.cfg.WebSocketWriteTimeout)); err != nil {
				s.logger.ErrorContext(ctx, "failed to send close message",
					slog.String("error", err.Error()))
			}
			return

		case <-pingTicker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(s.cfg.WebSocketWriteTimeout)); err != nil {
				s.logger.ErrorContext(ctx, "failed to set write deadline for ping",
					slog.String("error", err.Error()))
				return
			}
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.ErrorContext(ctx, "failed to send ping message",
					slog.String("error", err.Error()))
				return
			}

		case <-statusTicker.C:
			updateCtx, updateCancel := context.WithTimeout(wsCtx, s.cfg.StatusUpdateTimeout)

			resultCh := make(chan wsStatusResult, 1)
			go func() {
				resultCh <- wsStatusResult{status: s.controller.Status()}
			}()

			var result wsStatusResult
			select {
			case <-updateCtx.Done():
				s.logger.WarnContext(ctx, "status update timed out")
				updateCancel()
				continue
			case result = <-resultCh:
			}
			updateCancel()

			if err := ws.SetWriteDeadline(time.Now().Add(s.cfg.WebSocketWriteTimeout)); err != nil {
				s.logger.ErrorContext(ctx, "failed to set write deadline for status update",
					slog.String("error", err.Error()))
				return
			}
			if err := ws.WriteJSON(statusToResponse(result.status)); err != nil {
				s.logger.ErrorContext(ctx, "failed to send status update via WebSocket",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
