package tickmath

import (
	"math/big"

	"cosmossdk.io/math"
)

// mulDiv returns floor(a * b / denom) over arbitrary-width intermediates.
func mulDiv(a, b, denom *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Div(p, denom)
}

// mulDivRoundingUp returns ceil(a * b / denom).
func mulDivRoundingUp(a, b, denom *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(p, denom, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func sortRatios(a, b *big.Int) (*big.Int, *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// getLiquidityForAmount0 computes liquidity for a given amount of
// token0 between two sqrt prices.
func getLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) *big.Int {
	lo, hi := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	intermediate := mulDiv(lo, hi, Q96)
	return mulDiv(amount0, intermediate, new(big.Int).Sub(hi, lo))
}

// getLiquidityForAmount1 computes liquidity for a given amount of
// token1 between two sqrt prices.
func getLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *big.Int) *big.Int {
	lo, hi := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	return mulDiv(amount1, Q96, new(big.Int).Sub(hi, lo))
}

// GetLiquidityForAmounts computes the maximum liquidity deliverable
// from the given token amounts at the current price, within the range
// [sqrtRatioAX96, sqrtRatioBX96].
func GetLiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 math.Int) math.Int {
	p := sqrtRatioX96.BigInt()
	lo, hi := sortRatios(sqrtRatioAX96.BigInt(), sqrtRatioBX96.BigInt())
	a0, a1 := amount0.BigInt(), amount1.BigInt()

	var liquidity *big.Int
	switch {
	case p.Cmp(lo) <= 0:
		liquidity = getLiquidityForAmount0(lo, hi, a0)
	case p.Cmp(hi) < 0:
		l0 := getLiquidityForAmount0(p, hi, a0)
		l1 := getLiquidityForAmount1(lo, p, a1)
		if l0.Cmp(l1) < 0 {
			liquidity = l0
		} else {
			liquidity = l1
		}
	default:
		liquidity = getLiquidityForAmount1(lo, hi, a1)
	}
	return math.NewIntFromBigInt(liquidity)
}

func getAmount0ForLiquidity(lo, hi, liquidity *big.Int) *big.Int {
	numerator := new(big.Int).Lsh(liquidity, 96)
	diff := new(big.Int).Sub(hi, lo)
	t := mulDiv(numerator, diff, hi)
	return t.Div(t, lo)
}

func getAmount1ForLiquidity(lo, hi, liquidity *big.Int) *big.Int {
	diff := new(big.Int).Sub(hi, lo)
	return mulDiv(liquidity, diff, Q96)
}

// GetAmountsForLiquidity computes the token amounts represented by a
// liquidity value at the current price within the given range.
func GetAmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity math.Int) (math.Int, math.Int) {
	p := sqrtRatioX96.BigInt()
	lo, hi := sortRatios(sqrtRatioAX96.BigInt(), sqrtRatioBX96.BigInt())
	l := liquidity.BigInt()

	amount0, amount1 := new(big.Int), new(big.Int)
	switch {
	case p.Cmp(lo) <= 0:
		amount0 = getAmount0ForLiquidity(lo, hi, l)
	case p.Cmp(hi) < 0:
		amount0 = getAmount0ForLiquidity(p, hi, l)
		amount1 = getAmount1ForLiquidity(lo, p, l)
	default:
		amount1 = getAmount1ForLiquidity(lo, hi, l)
	}
	return math.NewIntFromBigInt(amount0), math.NewIntFromBigInt(amount1)
}

// SqrtPriceFromAmounts derives the sqrt price implied by a token
// balance ratio: sqrt(amount1/amount0) in Q64.96.
func SqrtPriceFromAmounts(amount1, amount0 math.Int) (math.Int, error) {
	if amount0.IsZero() {
		return math.Int{}, ErrSqrtPriceZero
	}
	// sqrt((amount1 << 192) / amount0) == sqrt(amount1/amount0) << 96
	n := new(big.Int).Lsh(amount1.BigInt(), 192)
	n.Div(n, amount0.BigInt())
	return math.NewIntFromBigInt(n.Sqrt(n)), nil
}

// Amount0ValueInToken1 converts a token0 notional into token1 units at
// the given price: amount0 * sqrtP^2 / 2^192.
func Amount0ValueInToken1(amount0, sqrtPriceX96 math.Int) math.Int {
	p := sqrtPriceX96.BigInt()
	v := mulDiv(amount0.BigInt(), p, Q96)
	v = mulDiv(v, p, Q96)
	return math.NewIntFromBigInt(v)
}

// Amount1ValueInToken0 converts a token1 notional into token0 units at
// the given price.
func Amount1ValueInToken0(amount1, sqrtPriceX96 math.Int) math.Int {
	p := sqrtPriceX96.BigInt()
	v := mulDiv(amount1.BigInt(), Q96, p)
	v = mulDiv(v, Q96, p)
	return math.NewIntFromBigInt(v)
}
