package tickmath

import (
	"math/big"

	"cosmossdk.io/math"
)

// Single-step swap price math, used by the test engine and by callers
// that need to predict a swap's end price. No tick crossing: the whole
// step executes against one liquidity value.

func getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *big.Int) *big.Int {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPX96)
	}
	numerator1 := new(big.Int).Lsh(liquidity, 96)
	product := new(big.Int).Mul(amount, sqrtPX96)
	denominator := new(big.Int).Add(numerator1, product)
	return mulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

func getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *big.Int) *big.Int {
	quotient := mulDiv(amount, Q96, liquidity)
	return new(big.Int).Add(sqrtPX96, quotient)
}

// GetNextSqrtPriceFromInput returns the price after swapping amountIn
// of the input token against the given liquidity.
func GetNextSqrtPriceFromInput(sqrtPriceX96, liquidity, amountIn math.Int, zeroForOne bool) (math.Int, error) {
	if !sqrtPriceX96.IsPositive() {
		return math.Int{}, ErrSqrtPriceZero
	}
	if !liquidity.IsPositive() {
		return math.Int{}, ErrLiquidityZero
	}

	var next *big.Int
	if zeroForOne {
		next = getNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX96.BigInt(), liquidity.BigInt(), amountIn.BigInt())
	} else {
		next = getNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX96.BigInt(), liquidity.BigInt(), amountIn.BigInt())
	}
	return math.NewIntFromBigInt(next), nil
}

// GetAmount0Delta returns the token0 amount bridging two sqrt prices at
// the given liquidity.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity math.Int, roundUp bool) math.Int {
	lo, hi := sortRatios(sqrtRatioAX96.BigInt(), sqrtRatioBX96.BigInt())
	numerator1 := new(big.Int).Lsh(liquidity.BigInt(), 96)
	numerator2 := new(big.Int).Sub(hi, lo)

	var out *big.Int
	if roundUp {
		t := mulDivRoundingUp(numerator1, numerator2, hi)
		q, r := new(big.Int).QuoRem(t, lo, new(big.Int))
		if r.Sign() > 0 {
			q.Add(q, big.NewInt(1))
		}
		out = q
	} else {
		t := mulDiv(numerator1, numerator2, hi)
		out = t.Div(t, lo)
	}
	return math.NewIntFromBigInt(out)
}

// GetAmount1Delta returns the token1 amount bridging two sqrt prices at
// the given liquidity.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity math.Int, roundUp bool) math.Int {
	lo, hi := sortRatios(sqrtRatioAX96.BigInt(), sqrtRatioBX96.BigInt())
	diff := new(big.Int).Sub(hi, lo)

	var out *big.Int
	if roundUp {
		out = mulDivRoundingUp(liquidity.BigInt(), diff, Q96)
	} else {
		out = mulDiv(liquidity.BigInt(), diff, Q96)
	}
	return math.NewIntFromBigInt(out)
}
