package types

import (
	"cosmossdk.io/math"
)

// LifecycleHooks is the callback surface the host engine invokes
// synchronously around pool lifecycle events. A non-nil error from any
// callback aborts the enclosing operation.
type LifecycleHooks interface {
	// BeforeInitialize is called once at pool creation with the opaque
	// policy initialization payload.
	BeforeInitialize(ctx *Context, key PoolKey, sqrtPriceX96 math.Int, initData []byte) error

	// BeforeSwap is called immediately before a swap executes.
	BeforeSwap(ctx *Context, key PoolKey, params SwapParams) error

	// AfterSwap is called after a swap with the executed delta.
	AfterSwap(ctx *Context, key PoolKey, params SwapParams, delta BalanceDelta) error

	// AfterModifyLiquidity is called after an external liquidity change.
	AfterModifyLiquidity(ctx *Context, key PoolKey, delta BalanceDelta) error
}
