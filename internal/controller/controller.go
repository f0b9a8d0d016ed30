// Package controller implements the single-cabin dispatch core: a
// SCAN-style elevator algorithm refined by a caller-directional hint
// and a fairness counter for idle-system requests. The Controller
// owns the two pending-request queues and reacts synchronously to
// button presses and hardware events; it never blocks and never
// issues more than one motion command per event.
package controller

import (
	"log/slog"
	"sync"

	"github.com/kkuyev/elevator-cabin/internal/constants"
	"github.com/kkuyev/elevator-cabin/internal/domain"
	"github.com/kkuyev/elevator-cabin/internal/queue"
)

// Status is a read-only snapshot of the cabin's current state, used
// by the HTTP/WebSocket layer — it is not part of the dispatch FSM.
type Status struct {
	CurrentFloor      int
	Direction         domain.Direction
	DoorsClosed       bool
	MinFloor          int
	MaxFloor          int
	PendingPassengers int
	PendingCallers    int
}

// Controller is the scheduling/dispatch state machine for one cabin.
// All mutable state (the two queues, doorsClosed, lastDirection) is
// owned exclusively by the Controller; the hardware handle is
// borrowed for the Controller's lifetime.
type Controller struct {
	mu sync.Mutex

	minFloor domain.Floor
	maxFloor domain.Floor
	hw       HardwareElevator

	passengers *queue.Passengers
	callers    *queue.Callers

	doorsClosed   bool
	lastDirection domain.Direction

	logger *slog.Logger
}

// New constructs a Controller over [minFloor, maxFloor] and subscribes
// to hw's beforeFloor/doorsClosed events. Initial state: both queues
// empty, doors closed, no last direction.
func New(minFloor, maxFloor int, hw HardwareElevator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentController))

	c := &Controller{
		minFloor:      domain.NewFloor(minFloor),
		maxFloor:      domain.NewFloor(maxFloor),
		hw:            hw,
		passengers:    queue.NewPassengers(),
		callers:       queue.NewCallers(),
		doorsClosed:   true,
		lastDirection: domain.DirectionNone,
		logger:        logger,
	}

	hw.SetBeforeFloorHandler(c.onBeforeFloor)
	hw.SetDoorsClosedHandler(c.onDoorsClosed)

	c.logger.Info("controller constructed",
		slog.Int("min_floor", minFloor),
		slog.Int("max_floor", maxFloor))

	return c
}

// Destroy unsubscribes the Controller from hardware events. Not
// required to be idempotent.
func (c *Controller) Destroy() {
	c.hw.ClearHandlers()
	c.logger.Info("controller destroyed")
}

// Status returns a snapshot of the cabin's current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		CurrentFloor:      c.hw.CurrentFloor(),
		Direction:         c.lastDirection,
		DoorsClosed:       c.doorsClosed,
		MinFloor:          c.minFloor.Value(),
		MaxFloor:          c.maxFloor.Value(),
		PendingPassengers: c.passengers.Len(),
		PendingCallers:    c.callers.Len(),
	}
}

// moveUp issues the move-up command and records the direction.
func (c *Controller) moveUp() {
	c.hw.MoveUp()
	c.lastDirection = domain.DirectionUp
	c.logger.Info("motion command issued", slog.String("command", "move_up"))
}

// moveDown issues the move-down command and records the direction.
func (c *Controller) moveDown() {
	c.hw.MoveDown()
	c.lastDirection = domain.DirectionDown
	c.logger.Info("motion command issued", slog.String("command", "move_down"))
}

// stop issues stop-and-open-doors, guarded so a second stop for the
// same opening (e.g. a passenger and a same-direction caller served at
// one floor) is a no-op.
func (c *Controller) stop() {
	if !c.doorsClosed {
		return
	}
	c.doorsClosed = false
	c.hw.StopAndOpenDoors()
	c.logger.Info("motion command issued", slog.String("command", "stop_and_open_doors"))
}

// moveNext is the dispatch decision, consulted after doors have just
// closed or when a new request arrives while the cabin is idle with
// doors closed. The first matching clause wins and commits at most one
// motion command.
func (c *Controller) moveNext(from int) {
	switch {
	case c.lastDirection == domain.DirectionUp && c.passengers.HasUp(from):
		c.moveUp()
		return
	case c.lastDirection == domain.DirectionDown && c.passengers.HasDown(from):
		c.moveDown()
		return
	case c.passengers.HasUp(from):
		c.moveUp()
		return
	case c.passengers.HasDown(from):
		c.moveDown()
		return
	}

	if c.callers.Empty() {
		return
	}

	if c.lastDirection == domain.DirectionNone {
		oldest, _ := c.callers.GetFirst()
		if oldest < from {
			c.moveDown()
		} else {
			c.moveUp()
		}
		return
	}

	type candidate struct {
		wants bool
		run   func()
	}

	aboveUp := candidate{c.callers.HasAbove(from, domain.DirectionUp), c.moveUp}
	aboveDown := candidate{c.callers.HasAbove(from, domain.DirectionDown), c.moveUp}
	belowUp := candidate{c.callers.HasBelow(from, domain.DirectionUp), c.moveDown}
	belowDown := candidate{c.callers.HasBelow(from, domain.DirectionDown), c.moveDown}

	var priority []candidate
	if c.lastDirection == domain.DirectionUp {
		priority = []candidate{aboveUp, aboveDown, belowUp, belowDown}
	} else {
		priority = []candidate{belowDown, belowUp, aboveUp, aboveDown}
	}

	for _, p := range priority {
		if p.wants {
			p.run()
			return
		}
	}

	c.lastDirection = domain.DirectionNone
}

// onBeforeFloor is the arrival policy: drop off a passenger destined
// for floor, and/or pick up a caller waiting at floor whose hint
// matches the direction the cabin is travelling. A caller whose hint
// opposes direction is left queued for the return sweep.
func (c *Controller) onBeforeFloor(floor int, direction domain.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.passengers.Contains(floor) {
		c.passengers.Remove(floor)
		c.stop()
	}

	if c.callers.GetFloorDirection(floor) == direction {
		c.callers.Remove(floor)
		c.stop()
	}
}

// onDoorsClosed is the doors-closed policy: mark doors closed and
// make the next dispatch decision from floor.
func (c *Controller) onDoorsClosed(floor int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doorsClosed = true
	c.moveNext(floor)
}

// FloorButtonPressed handles an external hall call.
func (c *Controller) FloorButtonPressed(floor int, direction domain.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Boundary correction: down at the bottom or up at the top is
	// physically impossible, so the hint is rewritten.
	if (floor == c.minFloor.Value() && direction == domain.DirectionDown) ||
		(floor == c.maxFloor.Value() && direction == domain.DirectionUp) {
		direction = direction.Negate()
	}

	hadEntry := c.callers.Contains(floor)
	if hadEntry {
		if c.callers.GetFloorDirection(floor) != direction {
			c.callers.ChangeDirection(floor, direction)
		}
	}

	currentDirection := c.hw.CurrentDirection()
	currentFloor := c.hw.CurrentFloor()

	if floor == currentFloor && (direction == currentDirection || currentDirection == domain.DirectionNone) {
		// Cabin is already here, stationary or heading the caller's way.
		c.stop()
		return
	}

	// An entry already existed and was revised in place above; appending
	// here would create a second entry for the same floor.
	if !hadEntry {
		c.callers.Append(floor, direction)
	}

	if c.doorsClosed && currentDirection == domain.DirectionNone {
		c.moveNext(currentFloor)
	}

	c.logger.Info("hall call received",
		slog.Int("floor", floor),
		slog.String("direction", direction.String()))
}

// CabinButtonPressed handles an in-cabin destination selection. A
// press for a floor already queued cancels it.
func (c *Controller) CabinButtonPressed(floor int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if floor < c.minFloor.Value() || floor > c.maxFloor.Value() {
		return
	}

	if c.passengers.Contains(floor) {
		c.passengers.Remove(floor)
		return
	}

	currentFloor := c.hw.CurrentFloor()
	if floor == currentFloor {
		c.stop()
		return
	}

	c.passengers.Insert(floor)

	if c.doorsClosed && c.hw.CurrentDirection() == domain.DirectionNone {
		c.moveNext(currentFloor)
	}

	c.logger.Info("cabin destination selected", slog.Int("floor", floor))
}
