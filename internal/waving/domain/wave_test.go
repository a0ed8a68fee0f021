package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveLifecycle(t *testing.T) {
	wave, err := NewWave("W1", StrategyStandard)
	require.NoError(t, err)
	assert.Equal(t, WaveStatusPlanning, wave.Status)

	require.NoError(t, wave.AssignOrders([]string{"SO-1"}, Metrics{Orders: 1}))

	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, wave.Release(now))
	assert.Equal(t, WaveStatusReleased, wave.Status)
	require.NotNil(t, wave.ReleasedAt)
	assert.Equal(t, now, *wave.ReleasedAt)

	require.NoError(t, wave.StartPicking())
	require.NoError(t, wave.Complete(now.Add(time.Hour)))
	assert.Equal(t, WaveStatusCompleted, wave.Status)
}

func TestWaveReleaseWithoutOrders(t *testing.T) {
	wave, err := NewWave("W1", StrategyStandard)
	require.NoError(t, err)

	assert.ErrorIs(t, wave.Release(time.Now()), ErrEmptyWave)
}

func TestWaveCancelAfterPickingRejected(t *testing.T) {
	wave, err := NewWave("W1", StrategyStandard)
	require.NoError(t, err)
	require.NoError(t, wave.AssignOrders([]string{"SO-1"}, Metrics{Orders: 1}))
	require.NoError(t, wave.Release(time.Now()))
	require.NoError(t, wave.StartPicking())

	assert.ErrorIs(t, wave.Cancel(), ErrInvalidTransition)
}

func TestNewWaveRejectsUnknownStrategy(t *testing.T) {
	_, err := NewWave("W1", Strategy("chaotic"))
	assert.Error(t, err)
}
