package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockMovement(t *testing.T) {
	target := NewProductTarget(uuid.New())

	t.Run("creates movement with valid inputs", func(t *testing.T) {
		movement, err := NewStockMovement(target, MovementTypeIn, 10, 0, 10, "receiving")
		require.NoError(t, err)

		assert.Equal(t, MovementTypeIn, movement.Type)
		assert.Equal(t, int64(10), movement.Quantity)
		assert.Equal(t, int64(10), movement.QuantityChange())
		assert.NotEmpty(t, movement.ID)
	})

	t.Run("attaches a reference", func(t *testing.T) {
		movement, err := NewStockMovement(target, MovementTypeReservation, 3, 0, 3, "Stock reserved")
		require.NoError(t, err)
		movement.WithReference("ORD-2026-00001")
		assert.Equal(t, "ORD-2026-00001", movement.Reference)
	})

	t.Run("fails with invalid type", func(t *testing.T) {
		_, err := NewStockMovement(target, MovementType("bogus"), 10, 0, 10, "x")
		require.Error(t, err)
	})

	t.Run("fails with negative quantity", func(t *testing.T) {
		_, err := NewStockMovement(target, MovementTypeIn, -1, 0, 0, "x")
		require.Error(t, err)
	})

	t.Run("allows a zero-quantity entry for clamped adjustments", func(t *testing.T) {
		m, err := NewStockMovement(target, MovementTypeAdjustment, 0, 5, 5, "damage")
		require.NoError(t, err)
		assert.Equal(t, int64(0), m.QuantityChange())
	})

	t.Run("fails with negative counter values", func(t *testing.T) {
		_, err := NewStockMovement(target, MovementTypeOut, 5, -1, 4, "x")
		require.Error(t, err)
	})
}

func TestMovementType(t *testing.T) {
	t.Run("valid types", func(t *testing.T) {
		for _, mt := range []MovementType{
			MovementTypeIn, MovementTypeOut, MovementTypeAdjustment,
			MovementTypeReservation, MovementTypeRelease,
		} {
			assert.True(t, mt.IsValid(), mt.String())
		}
		assert.False(t, MovementType("unknown").IsValid())
	})

	t.Run("reservation and release track the reserved counter", func(t *testing.T) {
		assert.True(t, MovementTypeReservation.TracksReserved())
		assert.True(t, MovementTypeRelease.TracksReserved())
		assert.False(t, MovementTypeIn.TracksReserved())
		assert.False(t, MovementTypeOut.TracksReserved())
	})
}
