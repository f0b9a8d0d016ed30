package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassengers_InsertContainsRemove(t *testing.T) {
	p := NewPassengers()
	assert.True(t, p.Empty())

	p.Insert(5)
	assert.True(t, p.Contains(5))
	assert.False(t, p.Empty())
	assert.Equal(t, 1, p.Len())

	p.Insert(5) // duplicate insert is a no-op
	assert.Equal(t, 1, p.Len())

	p.Remove(5)
	assert.False(t, p.Contains(5))
	assert.True(t, p.Empty())
}

func TestPassengers_HasUpHasDown(t *testing.T) {
	p := NewPassengers()
	p.Insert(2)
	p.Insert(8)

	assert.True(t, p.HasUp(5))
	assert.True(t, p.HasDown(5))
	assert.False(t, p.HasUp(8))
	assert.False(t, p.HasDown(2))
}
