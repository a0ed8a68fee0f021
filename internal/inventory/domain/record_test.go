package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertInvariant(t *testing.T, r *InventoryRecord) {
	t.Helper()
	assert.Equal(t, r.Quantity-r.Allocated-r.OnHold, r.Available)
	assert.GreaterOrEqual(t, r.Quantity, 0)
	assert.GreaterOrEqual(t, r.Allocated, 0)
	assert.GreaterOrEqual(t, r.OnHold, 0)
	assert.GreaterOrEqual(t, r.Available, 0)
}

func TestNewInventoryRecord(t *testing.T) {
	record, err := NewInventoryRecord("SKU-001", "A-01-01", 25)
	require.NoError(t, err)

	assert.Equal(t, 25, record.Quantity)
	assert.Equal(t, 25, record.Available)
	assert.Equal(t, 0, record.Allocated)
	assert.Equal(t, 0, record.OnHold)
	assertInvariant(t, record)

	_, err = NewInventoryRecord("SKU-001", "A-01-01", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAdjustClampsAtZero(t *testing.T) {
	record, err := NewInventoryRecord("SKU-001", "A-01-01", 5)
	require.NoError(t, err)

	previous, current := record.Adjust(-8)
	assert.Equal(t, 5, previous)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, record.Quantity)
	assertInvariant(t, record)
}

func TestAdjustRebalancesHoldsBeforeAllocations(t *testing.T) {
	record, err := NewInventoryRecord("SKU-001", "A-01-01", 10)
	require.NoError(t, err)
	require.NoError(t, record.Allocate(4))
	require.NoError(t, record.Hold(3))

	// On-hand drops below allocated+onHold; holds are shed first
	record.Adjust(-5)

	assert.Equal(t, 5, record.Quantity)
	assert.Equal(t, 4, record.Allocated)
	assert.Equal(t, 1, record.OnHold)
	assert.Equal(t, 0, record.Available)
	assertInvariant(t, record)

	// Dropping further sheds into allocations too
	record.Adjust(-3)
	assert.Equal(t, 2, record.Quantity)
	assert.Equal(t, 2, record.Allocated)
	assert.Equal(t, 0, record.OnHold)
	assertInvariant(t, record)
}

func TestAllocateAndRelease(t *testing.T) {
	record, err := NewInventoryRecord("SKU-001", "A-01-01", 10)
	require.NoError(t, err)

	require.NoError(t, record.Allocate(6))
	assert.Equal(t, 6, record.Allocated)
	assert.Equal(t, 4, record.Available)
	assertInvariant(t, record)

	err = record.Allocate(5)
	assert.ErrorIs(t, err, ErrInsufficientAvailable)

	require.NoError(t, record.ReleaseAllocation(2))
	assert.Equal(t, 4, record.Allocated)
	assert.Equal(t, 6, record.Available)
	assertInvariant(t, record)

	err = record.ReleaseAllocation(10)
	assert.ErrorIs(t, err, ErrInsufficientAllocated)
}

func TestConsumeAllocation(t *testing.T) {
	record, err := NewInventoryRecord("SKU-001", "A-01-01", 10)
	require.NoError(t, err)
	require.NoError(t, record.Allocate(6))

	require.NoError(t, record.ConsumeAllocation(6))
	assert.Equal(t, 4, record.Quantity)
	assert.Equal(t, 0, record.Allocated)
	assert.Equal(t, 4, record.Available)
	assertInvariant(t, record)
}

func TestHoldAndRelease(t *testing.T) {
	record, err := NewInventoryRecord("SKU-001", "A-01-01", 10)
	require.NoError(t, err)

	require.NoError(t, record.Hold(4))
	assert.Equal(t, 4, record.OnHold)
	assert.Equal(t, 6, record.Available)
	assertInvariant(t, record)

	require.NoError(t, record.ReleaseHold(4))
	assert.Equal(t, 0, record.OnHold)
	assert.Equal(t, 10, record.Available)
	assertInvariant(t, record)

	assert.ErrorIs(t, record.ReleaseHold(1), ErrInsufficientHold)
}

func TestLotQualityTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      LotQualityStatus
		to        LotQualityStatus
		expectErr bool
	}{
		{"pending to approved", LotQualityPending, LotQualityApproved, false},
		{"pending to rejected", LotQualityPending, LotQualityRejected, false},
		{"pending to quarantine", LotQualityPending, LotQualityQuarantine, false},
		{"quarantine to approved", LotQualityQuarantine, LotQualityApproved, false},
		{"quarantine to rejected", LotQualityQuarantine, LotQualityRejected, false},
		{"quarantine to pending", LotQualityQuarantine, LotQualityPending, true},
		{"approved is terminal", LotQualityApproved, LotQualityRejected, true},
		{"rejected is terminal", LotQualityRejected, LotQualityApproved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := &Lot{LotNumber: "LOT-1", SKU: "SKU-001", Quantity: 10, QualityStatus: tt.from}
			err := lot.SetQuality(tt.to)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidLotTransition)
				assert.Equal(t, tt.from, lot.QualityStatus)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.to, lot.QualityStatus)
			}
		})
	}
}
