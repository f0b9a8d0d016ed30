// Package resilience guards the hardware driver's command dispatch
// against cascading failures. It sits between the Controller and the
// HardwareElevator implementation it drives — the Controller's own
// decision methods never signal errors and never see this package.
package resilience

// circuit_breaker.go implements the Circuit Breaker pattern for
// hardware dispatch.
//
// The breaker operates in three states:
//
// 1. CLOSED (normal operation): every request is allowed through,
//    failures are counted, successes reset the counter. Transitions
//    to OPEN once the failure count reaches the threshold.
//
// 2. OPEN (failure protection): requests are rejected immediately
//    without being attempted. After resetTimeout elapses, the breaker
//    transitions to HALF_OPEN to test recovery.
//
// 3. HALF_OPEN (recovery testing): a limited number of requests are
//    let through. Enough successes close the breaker; any failure
//    sends it back to OPEN.
//
// In this system it wraps the hardware simulator's per-floor motion
// dispatch, protecting against stuck sensors, jammed doors, or any
// other fault a physical driver could surface.

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the state of a CircuitBreaker.
type State int

const (
	// StateClosed means the circuit breaker is closed and allowing requests
	StateClosed State = iota
	// StateOpen means the circuit breaker is open and rejecting requests
	StateOpen
	// StateHalfOpen means the circuit breaker is allowing limited requests to test recovery
	StateHalfOpen
)

// String renders the state for logging.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker implements a circuit breaker pattern for hardware
// command dispatch.
type CircuitBreaker struct {
	mu           sync.RWMutex
	state        State
	failureCount int
	successCount int
	lastFailTime time.Time
	nextRetry    time.Time

	// Configuration
	maxFailures   int
	resetTimeout  time.Duration
	halfOpenLimit int
}

// NewCircuitBreaker creates a new circuit breaker with configurable settings
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenLimit int) *CircuitBreaker {
	return &CircuitBreaker{
		state:         StateClosed,
		maxFailures:   maxFailures,
		resetTimeout:  resetTimeout,
		halfOpenLimit: halfOpenLimit,
	}
}

// Execute executes operation with circuit breaker protection
func (cb *CircuitBreaker) Execute(ctx context.Context, operation func() error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("circuit breaker is open - request rejected")
	}

	err := operation()

	if err != nil {
		cb.recordFailure()
		return err
	}

	cb.recordSuccess()
	return nil
}

// allowRequest determines if a request should be allowed based on circuit breaker state
func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().After(cb.nextRetry) {
			cb.state = StateHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	case StateHalfOpen:
		return cb.successCount < cb.halfOpenLimit
	default:
		return false
	}
}

// recordSuccess records a successful operation
func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0

	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.halfOpenLimit {
			cb.state = StateClosed
		}
	}
}

// recordFailure records a failed operation
func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailTime = time.Now()

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
	} else if cb.failureCount >= cb.maxFailures {
		cb.state = StateOpen
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Metrics returns the current failure/success counters alongside the state.
func (cb *CircuitBreaker) Metrics() (state State, failures int, successes int) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state, cb.failureCount, cb.successCount
}
