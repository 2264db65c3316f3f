package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/backend/pkg/apperr"
)

func TestRemainingAccounting(t *testing.T) {
	capacity := 100
	consumed := 0

	require.NoError(t, checkReserve(capacity, consumed, 10))
	consumed += 10
	assert.Equal(t, 90, remainingCount(capacity, consumed))

	require.NoError(t, checkReserve(capacity, consumed, 10))
	consumed += 10
	assert.Equal(t, 80, remainingCount(capacity, consumed))

	// Releasing 4 from one reservation restores availability.
	require.NoError(t, checkRelease(10, 0, 4))
	consumed -= 4
	assert.Equal(t, 84, remainingCount(capacity, consumed))

	// One more than remaining fails, exactly remaining drains to zero.
	err := checkReserve(capacity, consumed, 85)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, checkReserve(capacity, consumed, 84))
	consumed += 84
	assert.Equal(t, 0, remainingCount(capacity, consumed))

	err = checkReserve(capacity, consumed, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCheckReserveSerializedWriters(t *testing.T) {
	// Two writers racing for 60 of 100: whoever commits first wins, the
	// other sees the updated consumed total under the row lock and fails.
	capacity, consumed := 100, 0

	require.NoError(t, checkReserve(capacity, consumed, 60))
	consumed += 60

	err := checkReserve(capacity, consumed, 60)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCheckReserveRejectsNonPositive(t *testing.T) {
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(checkReserve(100, 0, 0)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(checkReserve(100, 0, -5)))
}

func TestCheckReleaseBounds(t *testing.T) {
	// 10 reserved, 4 already released: up to 6 more may be released.
	require.NoError(t, checkRelease(10, 4, 6))

	err := checkRelease(10, 4, 7)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(checkRelease(10, 0, 0)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(checkRelease(10, 0, -1)))
}

func TestZeroCapacityType(t *testing.T) {
	err := checkReserve(0, 0, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 0, remainingCount(0, 0))
}
