// Package hardware provides a simulated HardwareElevator: a single
// stepper that moves one floor at a time and reports back to the
// Controller through the two callbacks it registered. It carries no
// scheduling intelligence of its own — every dispatch decision belongs
// to the controller package.
package hardware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kkuyev/elevator-cabin/internal/constants"
	"github.com/kkuyev/elevator-cabin/internal/controller"
	"github.com/kkuyev/elevator-cabin/internal/domain"
	"github.com/kkuyev/elevator-cabin/internal/resilience"
)

// Simulator implements controller.HardwareElevator over a timed
// stepping loop: eachFloorDuration between floors, openDoorDuration
// once stopped. Each per-floor arrival dispatch runs through a circuit
// breaker; the breaker calls the handler synchronously and does not
// time it out, so a handler that blocks also blocks the stepping loop.
type Simulator struct {
	mu sync.Mutex

	floor     domain.Floor
	direction domain.Direction
	minFloor  domain.Floor
	maxFloor  domain.Floor

	eachFloorDuration time.Duration
	openDoorDuration  time.Duration
	operationTimeout  time.Duration

	beforeFloor controller.BeforeFloorFunc
	doorsClosed controller.DoorsClosedFunc

	running bool
	stop    chan struct{}

	breaker *resilience.CircuitBreaker
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSimulator constructs a Simulator at startFloor within
// [minFloor, maxFloor].
func NewSimulator(
	minFloor, maxFloor, startFloor int,
	eachFloorDuration, openDoorDuration, operationTimeout time.Duration,
	breaker *resilience.CircuitBreaker,
	logger *slog.Logger,
) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentHardware))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Simulator{
		floor:             domain.NewFloor(startFloor),
		direction:         domain.DirectionNone,
		minFloor:          domain.NewFloor(minFloor),
		maxFloor:          domain.NewFloor(maxFloor),
		eachFloorDuration: eachFloorDuration,
		openDoorDuration:  openDoorDuration,
		operationTimeout:  operationTimeout,
		breaker:           breaker,
		logger:            logger,
		ctx:               ctx,
		cancel:            cancel,
	}

	logger.Info("hardware simulator created",
		slog.Int("min_floor", minFloor),
		slog.Int("max_floor", maxFloor),
		slog.Int("start_floor", startFloor))

	return s
}

// Close stops any in-flight stepping goroutine. Not part of the
// HardwareElevator interface — owned by whoever constructs the
// simulator.
func (s *Simulator) Close() {
	s.cancel()
}

// CurrentFloor returns the cabin's current floor.
func (s *Simulator) CurrentFloor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.floor.Value()
}

// CurrentDirection returns the cabin's current direction of travel.
func (s *Simulator) CurrentDirection() domain.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direction
}

// SetBeforeFloorHandler registers the Controller's arrival handler.
func (s *Simulator) SetBeforeFloorHandler(f controller.BeforeFloorFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeFloor = f
}

// SetDoorsClosedHandler registers the Controller's doors-closed handler.
func (s *Simulator) SetDoorsClosedHandler(f controller.DoorsClosedFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doorsClosed = f
}

// ClearHandlers unsubscribes both handlers.
func (s *Simulator) ClearHandlers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeFloor = nil
	s.doorsClosed = nil
}

// MoveUp starts the cabin stepping upward, one floor at a time, until
// stopped or until it reaches maxFloor.
func (s *Simulator) MoveUp() {
	s.startStepping(domain.DirectionUp)
}

// MoveDown starts the cabin stepping downward, one floor at a time,
// until stopped or until it reaches minFloor.
func (s *Simulator) MoveDown() {
	s.startStepping(domain.DirectionDown)
}

func (s *Simulator) startStepping(direction domain.Direction) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.direction = direction
	stopCh := make(chan struct{})
	s.stop = stopCh
	s.mu.Unlock()

	s.logger.Info("motion started", slog.String("direction", direction.String()))

	go s.step(direction, stopCh)
}

// step is the per-floor loop. Each arrival's handler dispatch runs
// through the circuit breaker; a rejected dispatch is logged and
// skipped rather than crashing the simulator.
func (s *Simulator) step(direction domain.Direction, stopCh chan struct{}) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-stopCh:
			return
		case <-time.After(s.eachFloorDuration):
		}

		s.mu.Lock()
		next := s.floor.Value()
		if direction == domain.DirectionUp {
			next++
		} else {
			next--
		}
		s.floor = domain.NewFloor(next)
		atBound := next <= s.minFloor.Value() || next >= s.maxFloor.Value()
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(s.ctx, s.operationTimeout)
		err := s.breaker.Execute(ctx, func() error {
			s.dispatchBeforeFloor(next, direction)
			return nil
		})
		cancel()
		if err != nil {
			s.logger.Warn("before-floor dispatch rejected by circuit breaker",
				slog.Int("floor", next),
				slog.String("error", err.Error()))
		}

		select {
		case <-stopCh:
			return
		default:
		}

		if atBound {
			s.StopAndOpenDoors()
			return
		}
	}
}

func (s *Simulator) dispatchBeforeFloor(floor int, direction domain.Direction) {
	s.mu.Lock()
	handler := s.beforeFloor
	s.mu.Unlock()
	if handler != nil {
		handler(floor, direction)
	}
}

// StopAndOpenDoors halts any in-flight motion and opens the doors.
// Idempotent: calling it when the cabin is already stopped is a no-op.
func (s *Simulator) StopAndOpenDoors() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.direction = domain.DirectionNone
	stopCh := s.stop
	floor := s.floor.Value()
	s.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}

	s.logger.Info("doors opening", slog.Int("floor", floor))

	go func() {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.openDoorDuration):
		}

		s.logger.Info("doors closed", slog.Int("floor", floor))

		s.mu.Lock()
		handler := s.doorsClosed
		s.mu.Unlock()
		if handler != nil {
			handler(floor)
		}
	}()
}
