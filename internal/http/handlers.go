package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kkuyev/elevator-cabin/internal/controller"
	"github.com/kkuyev/elevator-cabin/internal/domain"
	"github.com/kkuyev/elevator-cabin/internal/infra/config"
	"github.com/kkuyev/elevator-cabin/internal/resilience"
)

// V1Handlers implements the /v1 API surface over a single cabin
// Controller and the circuit breaker guarding its hardware driver.
type V1Handlers struct {
	controller *controller.Controller
	breaker    *resilience.CircuitBreaker
	cfg        *config.Config
	logger     *slog.Logger
}

// NewV1Handlers constructs the /v1 handler set.
func NewV1Handlers(ctrl *controller.Controller, breaker *resilience.CircuitBreaker, cfg *config.Config, logger *slog.Logger) *V1Handlers {
	return &V1Handlers{controller: ctrl, breaker: breaker, cfg: cfg, logger: logger}
}

// HallCallRequest is the body of POST /v1/hall-call.
type HallCallRequest struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// HallCallResponse acknowledges a registered hall call.
type HallCallResponse struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
	Message   string `json:"message"`
}

// CabinCallRequest is the body of POST /v1/cabin-call.
type CabinCallRequest struct {
	Floor int `json:"floor"`
}

// CabinCallResponse acknowledges a registered cabin call.
type CabinCallResponse struct {
	Floor   int    `json:"floor"`
	Message string `json:"message"`
}

// StatusResponse mirrors controller.Status in a JSON-friendly shape.
type StatusResponse struct {
	CurrentFloor      int    `json:"current_floor"`
	Direction         string `json:"direction"`
	DoorsClosed       bool   `json:"doors_closed"`
	MinFloor          int    `json:"min_floor"`
	MaxFloor          int    `json:"max_floor"`
	PendingPassengers int    `json:"pending_passengers"`
	PendingCallers    int    `json:"pending_callers"`
}

// HealthResponse reports overall system health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]interface{} `json:"checks"`
}

// APIInfoResponse describes the API surface.
type APIInfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

func statusToResponse(s controller.Status) StatusResponse {
	return StatusResponse{
		CurrentFloor:      s.CurrentFloor,
		Direction:         s.Direction.String(),
		DoorsClosed:       s.DoorsClosed,
		MinFloor:          s.MinFloor,
		MaxFloor:          s.MaxFloor,
		PendingPassengers: s.PendingPassengers,
		PendingCallers:    s.PendingCallers,
	}
}

// APIInfoHandler serves GET /v1.
func (h *V1Handlers) APIInfoHandler(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	rw := NewResponseWriter(w, h.logger, requestID)

	response := APIInfoResponse{
		Name:        "Elevator Cabin Control API",
		Version:     "v1",
		Description: "RESTful API for a single-cabin elevator controller",
		Endpoints: map[string]string{
			"hall_call":  "POST /v1/hall-call",
			"cabin_call": "POST /v1/cabin-call",
			"status":     "GET /v1/status",
			"health":     "GET /v1/health",
			"metrics":    "GET /metrics",
			"ws_status":  "WS /ws/status",
		},
	}

	rw.WriteJSON(http.StatusOK, response)
}

// HallCallHandler serves POST /v1/hall-call: a passenger pressing an
// up/down button at a floor, waiting for the cabin.
func (h *V1Handlers) HallCallHandler(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only POST method is supported")
		return
	}

	var body HallCallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON", "Request body contains invalid JSON")
		return
	}

	direction := domain.Direction(body.Direction)
	if !direction.IsValid() || direction == domain.DirectionNone {
		rw.WriteDomainError(domain.NewValidationError("direction must be \"up\" or \"down\"", nil))
		return
	}

	status := h.controller.Status()
	if body.Floor < status.MinFloor || body.Floor > status.MaxFloor {
		rw.WriteDomainError(domain.ErrFloorsOutOfRange)
		return
	}

	h.controller.FloorButtonPressed(body.Floor, direction)

	rw.WriteJSON(http.StatusOK, HallCallResponse{
		Floor:     body.Floor,
		Direction: direction.String(),
		Message:   "hall call registered",
	})
}

// CabinCallHandler serves POST /v1/cabin-call: a passenger inside the
// cabin pressing a destination-floor button.
func (h *V1Handlers) CabinCallHandler(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only POST method is supported")
		return
	}

	var body CabinCallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON", "Request body contains invalid JSON")
		return
	}

	status := h.controller.Status()
	if body.Floor < status.MinFloor || body.Floor > status.MaxFloor {
		rw.WriteDomainError(domain.ErrFloorsOutOfRange)
		return
	}

	h.controller.CabinButtonPressed(body.Floor)

	rw.WriteJSON(http.StatusOK, CabinCallResponse{
		Floor:   body.Floor,
		Message: "cabin destination registered",
	})
}

// StatusHandler serves GET /v1/status.
func (h *V1Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	rw := NewResponseWriter(w, h.logger, requestID)

	rw.WriteJSON(http.StatusOK, statusToResponse(h.controller.Status()))
}

// HealthHandler serves GET /v1/health: healthy unless the hardware
// circuit breaker has tripped open.
func (h *V1Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	rw := NewResponseWriter(w, h.logger, requestID)

	state, failures, successes := h.breaker.Metrics()
	healthy := state != resilience.StateOpen

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks: map[string]interface{}{
			"circuit_breaker_state":     state.String(),
			"circuit_breaker_failures":  failures,
			"circuit_breaker_successes": successes,
			"cabin_status":              statusToResponse(h.controller.Status()),
		},
	}

	rw.WriteJSON(statusCode, response)
}
