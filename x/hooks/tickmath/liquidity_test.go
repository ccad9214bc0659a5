package tickmath_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/crestdex/hooks/x/hooks/tickmath"
)

func TestGetLiquidityForAmountsRoundTrip(t *testing.T) {
	price := math.NewIntFromBigInt(tickmath.Q96)
	sqrtLower, err := tickmath.GetSqrtRatioAtTick(-600)
	require.NoError(t, err)
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(600)
	require.NoError(t, err)

	amount0 := math.NewInt(1_000_000_000)
	amount1 := math.NewInt(1_000_000_000)
	liquidity := tickmath.GetLiquidityForAmounts(price, sqrtLower, sqrtUpper, amount0, amount1)
	require.True(t, liquidity.IsPositive())

	// Redeeming the computed liquidity never returns more than was
	// quoted for it
	back0, back1 := tickmath.GetAmountsForLiquidity(price, sqrtLower, sqrtUpper, liquidity)
	require.True(t, back0.LTE(amount0))
	require.True(t, back1.LTE(amount1))
	require.True(t, back0.IsPositive())
	require.True(t, back1.IsPositive())
}

func TestGetLiquidityForAmountsOneSided(t *testing.T) {
	sqrtLower, err := tickmath.GetSqrtRatioAtTick(1200)
	require.NoError(t, err)
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(2400)
	require.NoError(t, err)

	amount0 := math.NewInt(5_000_000)
	amount1 := math.NewInt(5_000_000)

	// Price below the range: only token0 matters
	below := math.NewIntFromBigInt(tickmath.Q96)
	withBoth := tickmath.GetLiquidityForAmounts(below, sqrtLower, sqrtUpper, amount0, amount1)
	withZero := tickmath.GetLiquidityForAmounts(below, sqrtLower, sqrtUpper, amount0, math.ZeroInt())
	require.Equal(t, withZero, withBoth)

	// Price above the range: only token1 matters
	above, err := tickmath.GetSqrtRatioAtTick(3000)
	require.NoError(t, err)
	withBoth = tickmath.GetLiquidityForAmounts(above, sqrtLower, sqrtUpper, amount0, amount1)
	withZero = tickmath.GetLiquidityForAmounts(above, sqrtLower, sqrtUpper, math.ZeroInt(), amount1)
	require.Equal(t, withZero, withBoth)
}

func TestAmountDeltasExactValues(t *testing.T) {
	q96 := math.NewIntFromBigInt(tickmath.Q96)
	sqrtA := q96
	sqrtB := q96.MulRaw(2)
	liquidity := math.NewInt(1000)

	// amount1 = L * (B - A) / Q96
	require.Equal(t, math.NewInt(1000), tickmath.GetAmount1Delta(sqrtA, sqrtB, liquidity, false))
	require.Equal(t, math.NewInt(1000), tickmath.GetAmount1Delta(sqrtA, sqrtB, liquidity, true))

	// amount0 = L << 96 * (B - A) / (B * A)
	require.Equal(t, math.NewInt(500), tickmath.GetAmount0Delta(sqrtA, sqrtB, liquidity, false))
	require.Equal(t, math.NewInt(500), tickmath.GetAmount0Delta(sqrtA, sqrtB, liquidity, true))
}

func TestGetNextSqrtPriceFromInputDirection(t *testing.T) {
	price := math.NewIntFromBigInt(tickmath.Q96)
	liquidity := math.NewIntWithDecimal(1, 18)
	amountIn := math.NewIntWithDecimal(1, 16)

	// Selling token0 pushes the price down
	down, err := tickmath.GetNextSqrtPriceFromInput(price, liquidity, amountIn, true)
	require.NoError(t, err)
	require.True(t, down.LT(price))

	// Selling token1 pushes it up, and the consumed token1 matches the
	// input to within rounding
	up, err := tickmath.GetNextSqrtPriceFromInput(price, liquidity, amountIn, false)
	require.NoError(t, err)
	require.True(t, up.GT(price))

	consumed := tickmath.GetAmount1Delta(price, up, liquidity, false)
	diff := amountIn.Sub(consumed).Abs()
	require.True(t, diff.LTE(math.OneInt()), "consumed %s vs input %s", consumed, amountIn)
}

func TestGetNextSqrtPriceFromInputRejectsZeroInputs(t *testing.T) {
	price := math.NewIntFromBigInt(tickmath.Q96)

	_, err := tickmath.GetNextSqrtPriceFromInput(price, math.ZeroInt(), math.NewInt(1), true)
	require.ErrorIs(t, err, tickmath.ErrLiquidityZero)

	_, err = tickmath.GetNextSqrtPriceFromInput(math.ZeroInt(), math.NewInt(1), math.NewInt(1), true)
	require.ErrorIs(t, err, tickmath.ErrSqrtPriceZero)
}
