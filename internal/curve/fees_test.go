package curve

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitConservation(t *testing.T) {
	// Awkward gross values that exercise truncation in both divisions.
	grosses := []uint64{1, 3, 9999, 10000, 10001, 1_000_000_007, 987_654_321_123}

	for _, g := range grosses {
		gross := uint256.NewInt(g)
		split, err := Split(gross, 100, 25) // 1% platform, 0.25% creator
		require.NoError(t, err)

		sum := new(uint256.Int).Add(split.Net, split.PlatformFee)
		sum.Add(sum, split.CreatorFee)
		assert.True(t, sum.Eq(gross),
			"split parts must sum to gross: %s + %s + %s != %d",
			split.Net.Dec(), split.PlatformFee.Dec(), split.CreatorFee.Dec(), g)
	}
}

func TestSplitExactPercent(t *testing.T) {
	split, err := Split(uint256.NewInt(10_000), 100, 25)
	require.NoError(t, err)

	assert.Equal(t, uint64(100), split.PlatformFee.Uint64())
	assert.Equal(t, uint64(25), split.CreatorFee.Uint64())
	assert.Equal(t, uint64(9_875), split.Net.Uint64())
}

func TestSplitDustStaysInNet(t *testing.T) {
	// 1 unit gross: both fees truncate to zero, net keeps everything.
	split, err := Split(uint256.NewInt(1), 100, 25)
	require.NoError(t, err)

	assert.True(t, split.PlatformFee.IsZero())
	assert.True(t, split.CreatorFee.IsZero())
	assert.Equal(t, uint64(1), split.Net.Uint64())
}

func TestSplitRatesBounded(t *testing.T) {
	_, err := Split(uint256.NewInt(100), 9000, 1001)
	assert.ErrorIs(t, err, ErrFeeRates)
}

func TestSplitFullFee(t *testing.T) {
	split, err := Split(uint256.NewInt(10_000), 9000, 1000)
	require.NoError(t, err)
	assert.True(t, split.Net.IsZero())
}
