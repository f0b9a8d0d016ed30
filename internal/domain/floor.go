package domain

import (
	"fmt"

	"github.com/kkuyev/elevator-cabin/internal/constants"
)

// Floor represents a floor number in the building served by the cabin.
type Floor int

// NewFloor creates a Floor without range validation, for internal use
// where the value has already been trusted (hardware queries, stored
// request state).
func NewFloor(value int) Floor {
	return Floor(value)
}

// NewFloorWithValidation creates a Floor with strict validation, for
// untrusted client input arriving over the HTTP boundary.
func NewFloorWithValidation(value int) (Floor, error) {
	if value < constants.MinAllowedFloor || value > constants.MaxAllowedFloor {
		return Floor(0), NewValidationError(
			fmt.Sprintf("floor value %d is outside allowed range [%d, %d]",
				value, constants.MinAllowedFloor, constants.MaxAllowedFloor), nil).
			WithContext("floor", value).
			WithContext("min_allowed", constants.MinAllowedFloor).
			WithContext("max_allowed", constants.MaxAllowedFloor)
	}
	return Floor(value), nil
}

// Value returns the integer value of the floor.
func (f Floor) Value() int {
	return int(f)
}

// IsValid reports whether f lies within [minFloor, maxFloor].
func (f Floor) IsValid(minFloor, maxFloor Floor) bool {
	return f >= minFloor && f <= maxFloor
}

// Distance returns the absolute difference between two floors.
func (f Floor) Distance(other Floor) int {
	diff := int(f) - int(other)
	if diff < 0 {
		return -diff
	}
	return diff
}

// String returns the string representation of the floor.
func (f Floor) String() string {
	return fmt.Sprintf("%d", int(f))
}

// IsAbove reports whether f is strictly greater than other.
func (f Floor) IsAbove(other Floor) bool {
	return f > other
}

// IsBelow reports whether f is strictly less than other.
func (f Floor) IsBelow(other Floor) bool {
	return f < other
}

// IsEqual reports whether f equals other.
func (f Floor) IsEqual(other Floor) bool {
	return f == other
}
