package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementType_Valid(t *testing.T) {
	assert.True(t, MovementIn.Valid())
	assert.True(t, MovementOut.Valid())
	assert.True(t, MovementAdjust.Valid())
	assert.False(t, MovementType("TRANSFER").Valid())
	assert.False(t, MovementType("").Valid())
	assert.False(t, MovementType("in").Valid(), "types are case sensitive")
}

func TestStockMovement_Delta(t *testing.T) {
	assert.Equal(t, int64(10), StockMovement{Type: MovementIn, Qty: 10}.Delta())
	assert.Equal(t, int64(-10), StockMovement{Type: MovementOut, Qty: 10}.Delta())
	assert.Equal(t, int64(-3), StockMovement{Type: MovementAdjust, Qty: -3}.Delta())
	assert.Equal(t, int64(3), StockMovement{Type: MovementAdjust, Qty: 3}.Delta())
}

func TestMetadata_NilHandling(t *testing.T) {
	var m Metadata
	v, err := m.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "nil metadata stores NULL, not the empty object")

	var scanned Metadata
	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)

	require.NoError(t, scanned.Scan(`{"source":"api","count":2}`))
	assert.Equal(t, "api", scanned["source"])
	assert.Equal(t, float64(2), scanned["count"])

	assert.Error(t, scanned.Scan(42))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrConflict))
	assert.False(t, IsRetryable(ErrInsufficientStock))
	assert.False(t, IsRetryable(ErrStorage))
	assert.False(t, IsRetryable(nil))
}
