package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/types"
)

// SafeSub subtracts b from a, failing on underflow instead of going
// negative. Share arithmetic must never wrap.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrOverflow.Wrapf("cannot subtract %s from %s", b, a)
	}
	return a.Sub(b), nil
}

// SafeMulDiv computes floor(a * b / denom) over arbitrary-width
// intermediates, failing on zero denominator.
func SafeMulDiv(a, b, denom math.Int) (math.Int, error) {
	if denom.IsZero() {
		return math.Int{}, types.ErrOverflow.Wrap("division by zero")
	}
	p := new(big.Int).Mul(a.BigInt(), b.BigInt())
	p.Quo(p, denom.BigInt())
	return math.NewIntFromBigInt(p), nil
}
