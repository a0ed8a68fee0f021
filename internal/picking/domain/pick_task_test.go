package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickTaskCompleteExact(t *testing.T) {
	task := NewPickTask("PT-1", "W1", "SO-1", "A1", "AL-1", "A-01-02", 8)

	require.NoError(t, task.Complete(8, time.Now()))
	assert.Equal(t, PickTaskStatusCompleted, task.Status)
	assert.Zero(t, task.Shortfall())
}

func TestPickTaskCompleteShort(t *testing.T) {
	task := NewPickTask("PT-1", "W1", "SO-1", "A1", "AL-1", "A-01-02", 8)

	require.NoError(t, task.Complete(6, time.Now()))
	assert.Equal(t, PickTaskStatusException, task.Status)
	assert.Equal(t, 2, task.Shortfall())
}

func TestPickTaskRejectsOverPick(t *testing.T) {
	task := NewPickTask("PT-1", "W1", "SO-1", "A1", "AL-1", "A-01-02", 8)

	assert.ErrorIs(t, task.Complete(9, time.Now()), ErrOverPick)
	assert.Equal(t, PickTaskStatusPending, task.Status)
}

func TestPickTaskCannotCompleteTwice(t *testing.T) {
	task := NewPickTask("PT-1", "W1", "SO-1", "A1", "AL-1", "A-01-02", 8)

	require.NoError(t, task.Complete(8, time.Now()))
	assert.ErrorIs(t, task.Complete(8, time.Now()), ErrInvalidTransition)
}

func TestZonePrefix(t *testing.T) {
	task := NewPickTask("PT-1", "W1", "SO-1", "A1", "AL-1", "A-01-02", 8)
	assert.Equal(t, "A", task.ZonePrefix())

	task.LocationCode = "RECEIVING"
	assert.Equal(t, "RECEIVING", task.ZonePrefix())
}
