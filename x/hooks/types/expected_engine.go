package types

import (
	"cosmossdk.io/math"
)

// PoolEngine is the host AMM engine as seen by the hook layer. The
// engine owns swap math, tick crossing and position storage; the hook
// layer only reads its state and requests operations against it.
//
// Settlement is synchronous: every mutating call returns the structured
// BalanceDelta the hook owes (positive) or is owed (negative), settled
// by the engine before the call returns.
type PoolEngine interface {
	// GetSlot0 returns the current sqrt price and tick.
	GetSlot0(id PoolID) (Slot0, error)

	// GetLiquidity returns the pool's total in-range liquidity.
	GetLiquidity(id PoolID) (math.Int, error)

	// GetPosition returns the liquidity of one position.
	GetPosition(id PoolID, owner string, tickLower, tickUpper int32) (math.Int, error)

	// ModifyPosition changes a position's liquidity. A zero delta
	// collects the position's accrued fees without moving principal.
	ModifyPosition(ctx *Context, key PoolKey, tickLower, tickUpper int32, liquidityDelta math.Int) (BalanceDelta, error)

	// Swap executes a swap up to the given price limit.
	Swap(ctx *Context, key PoolKey, zeroForOne bool, amountSpecified math.Int, sqrtPriceLimitX96 math.Int) (BalanceDelta, error)

	// Donate credits assets to current in-range liquidity providers as
	// if they were collected trading fees.
	Donate(ctx *Context, key PoolKey, amount0, amount1 math.Int) error
}
