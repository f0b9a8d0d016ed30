package controller

import "github.com/kkuyev/elevator-cabin/internal/domain"

// BeforeFloorFunc is invoked by the hardware shortly before the cabin
// arrives at floor while moving in direction.
type BeforeFloorFunc func(floor int, direction domain.Direction)

// DoorsClosedFunc is invoked by the hardware once the doors have
// finished closing after a stop at floor.
type DoorsClosedFunc func(floor int)

// HardwareElevator is the actuator/sensor façade the Controller drives.
// It is the sole external collaborator specified in this package: the
// Controller is its only client, and all physical motion, door timing
// and floor sensing belong to the implementation, not to the
// Controller. See the hardware package for a simulated implementation.
type HardwareElevator interface {
	MoveUp()
	MoveDown()
	StopAndOpenDoors()

	CurrentFloor() int
	CurrentDirection() domain.Direction

	// SetBeforeFloorHandler and SetDoorsClosedHandler register the
	// Controller's two event handlers. The Controller is the hardware's
	// sole client, so a single typed slot per event (rather than a
	// string-keyed pub/sub registry) is enough.
	SetBeforeFloorHandler(BeforeFloorFunc)
	SetDoorsClosedHandler(DoorsClosedFunc)

	// ClearHandlers unsubscribes both handlers.
	ClearHandlers()
}
