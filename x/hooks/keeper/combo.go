package keeper

import (
	"encoding/json"
	"time"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/types"
)

// ComboHook composes the locking engine with the volume fee controller
// on one pool. Composition is explicit: every callback names the exact
// sub-policy sequence it runs, and liquidity removal disables the
// volume mismatch guard for its nested operations.
type ComboHook struct {
	k *Keeper
}

// NewComboHook returns the combined callback surface.
func NewComboHook(k *Keeper) ComboHook { return ComboHook{k: k} }

var _ types.LifecycleHooks = ComboHook{}

// BeforeInitialize decodes the combined payload and initializes the
// locking engine first, then the fee controller.
func (h ComboHook) BeforeInitialize(ctx *types.Context, key types.PoolKey, _ math.Int, initData []byte) error {
	payload := types.ComboInitPayload{
		Locking:   types.DefaultLockingParams(),
		VolumeFee: types.DefaultVolumeFeeParams(),
	}
	if len(initData) > 0 {
		if err := json.Unmarshal(initData, &payload); err != nil {
			return types.ErrInvalidInitPayload.Wrap(err.Error())
		}
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	if err := h.k.InitLocking(ctx, key, payload.Locking); err != nil {
		return err
	}
	return h.k.InitVolumeFee(ctx, key, payload.VolumeFee)
}

func (h ComboHook) BeforeSwap(ctx *types.Context, key types.PoolKey, params types.SwapParams) error {
	return h.k.BeforeSwapVolumeFee(ctx, key, params)
}

func (h ComboHook) AfterSwap(ctx *types.Context, key types.PoolKey, params types.SwapParams, delta types.BalanceDelta) error {
	if err := h.k.AfterSwapVolumeFee(ctx, key, params, delta); err != nil {
		return err
	}
	return h.k.AfterSwapLocking(ctx, key)
}

func (h ComboHook) AfterModifyLiquidity(*types.Context, types.PoolKey, types.BalanceDelta) error {
	return nil
}

// AddLiquidity forwards to the locking engine unchanged; deposits never
// swap, so no guard handling is needed.
func (h ComboHook) AddLiquidity(
	ctx *types.Context,
	key types.PoolKey,
	amount0Desired, amount1Desired math.Int,
	amount0Min, amount1Min math.Int,
	deadline, lockedUntil time.Time,
) (math.Int, error) {
	return h.k.AddLockedLiquidity(ctx, key, amount0Desired, amount1Desired, amount0Min, amount1Min, deadline, lockedUntil)
}

// RemoveLiquidity runs the locking engine's withdrawal with the volume
// mismatch guard suppressed: the internal fee-folding rebalance swaps
// against the pool, and those swaps must not trip the controller.
func (h ComboHook) RemoveLiquidity(
	ctx *types.Context,
	key types.PoolKey,
	shareAmount math.Int,
	deadline time.Time,
) (types.BalanceDelta, error) {
	return h.k.RemoveLockedLiquidity(ctx.WithVolumeGuardSuppressed(), key, shareAmount, deadline)
}
