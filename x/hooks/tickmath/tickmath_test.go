package tickmath_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/crestdex/hooks/x/hooks/tickmath"
)

func TestGetSqrtRatioAtTickKnownValues(t *testing.T) {
	tests := []struct {
		name string
		tick int32
		want string
	}{
		{"zero tick is exactly Q96", 0, "79228162514264337593543950336"},
		{"one tick up", 1, "79232123823359799118286999568"},
		{"one tick down", -1, "79224201403219477170569942574"},
		{"min tick", tickmath.MinTick, "4295128739"},
		{"max tick", tickmath.MaxTick, "1461446703485210103287273052203988822378723970342"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tickmath.GetSqrtRatioAtTick(tc.tick)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestGetSqrtRatioAtTickOutOfBounds(t *testing.T) {
	_, err := tickmath.GetSqrtRatioAtTick(tickmath.MinTick - 1)
	require.ErrorIs(t, err, tickmath.ErrTickOutOfBounds)

	_, err = tickmath.GetSqrtRatioAtTick(tickmath.MaxTick + 1)
	require.ErrorIs(t, err, tickmath.ErrTickOutOfBounds)
}

func TestGetTickAtSqrtRatioRoundTrip(t *testing.T) {
	for _, tick := range []int32{-887272, -500000, -60, -1, 0, 1, 60, 2940, 500000, 887271} {
		ratio, err := tickmath.GetSqrtRatioAtTick(tick)
		require.NoError(t, err)

		got, err := tickmath.GetTickAtSqrtRatio(ratio)
		require.NoError(t, err)
		require.Equal(t, tick, got, "tick %d", tick)
	}
}

func TestGetTickAtSqrtRatioIsGreatestAtMost(t *testing.T) {
	// A price between two adjacent ratios resolves to the lower tick
	lower, err := tickmath.GetSqrtRatioAtTick(100)
	require.NoError(t, err)
	upper, err := tickmath.GetSqrtRatioAtTick(101)
	require.NoError(t, err)

	mid := lower.Add(upper).QuoRaw(2)
	tick, err := tickmath.GetTickAtSqrtRatio(mid)
	require.NoError(t, err)
	require.Equal(t, int32(100), tick)
}

func TestGetTickAtSqrtRatioBounds(t *testing.T) {
	_, err := tickmath.GetTickAtSqrtRatio(tickmath.MinSqrtRatio.SubRaw(1))
	require.ErrorIs(t, err, tickmath.ErrSqrtPriceOutOfBounds)

	_, err = tickmath.GetTickAtSqrtRatio(tickmath.MaxSqrtRatio)
	require.ErrorIs(t, err, tickmath.ErrSqrtPriceOutOfBounds)
}

func TestAlignTick(t *testing.T) {
	tests := []struct {
		tick, spacing, want int32
	}{
		{0, 60, 0},
		{59, 60, 0},
		{60, 60, 60},
		{65, 60, 60},
		{-1, 60, -60},
		{-60, 60, -60},
		{-61, 60, -120},
		{2500, 60, 2460},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, tickmath.AlignTick(tc.tick, tc.spacing),
			"align %d spacing %d", tc.tick, tc.spacing)
	}
}

func TestUsableTicks(t *testing.T) {
	require.Equal(t, int32(-887220), tickmath.MinUsableTick(60))
	require.Equal(t, int32(887220), tickmath.MaxUsableTick(60))
	require.Equal(t, int32(-887272), tickmath.MinUsableTick(1))
	require.Equal(t, int32(887272), tickmath.MaxUsableTick(1))
}

func TestSqrtPriceFromAmounts(t *testing.T) {
	// Equal reserves imply price one, i.e. exactly Q96
	q96 := math.NewIntFromBigInt(tickmath.Q96)
	got, err := tickmath.SqrtPriceFromAmounts(math.NewInt(1_000_000), math.NewInt(1_000_000))
	require.NoError(t, err)
	require.Equal(t, q96, got)

	// Four times more token1 than token0 doubles the sqrt price
	got, err = tickmath.SqrtPriceFromAmounts(math.NewInt(4_000_000), math.NewInt(1_000_000))
	require.NoError(t, err)
	require.Equal(t, q96.MulRaw(2), got)

	_, err = tickmath.SqrtPriceFromAmounts(math.NewInt(1), math.ZeroInt())
	require.Error(t, err)
}

func TestValueConversionsInvertEachOther(t *testing.T) {
	q96 := math.NewIntFromBigInt(tickmath.Q96)

	// At price one both conversions are the identity
	amount := math.NewInt(123_456_789)
	require.Equal(t, amount, tickmath.Amount0ValueInToken1(amount, q96))
	require.Equal(t, amount, tickmath.Amount1ValueInToken0(amount, q96))

	// At sqrt price 2 (price 4), token0 is worth 4x in token1
	require.Equal(t, amount.MulRaw(4), tickmath.Amount0ValueInToken1(amount, q96.MulRaw(2)))
	require.Equal(t, amount.QuoRaw(4), tickmath.Amount1ValueInToken0(amount, q96.MulRaw(2)))
}
