package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/types"
)

// Each policy is exposed to the host engine as its own LifecycleHooks
// implementation. Callbacks a policy has no behavior for return nil.

// VolumeFeeHook drives the dynamic fee from observed swap volume.
type VolumeFeeHook struct {
	k *Keeper
}

// NewVolumeFeeHook returns the volume fee controller's callback surface.
func NewVolumeFeeHook(k *Keeper) VolumeFeeHook { return VolumeFeeHook{k: k} }

var _ types.LifecycleHooks = VolumeFeeHook{}

func (h VolumeFeeHook) BeforeInitialize(ctx *types.Context, key types.PoolKey, _ math.Int, initData []byte) error {
	params := types.DefaultVolumeFeeParams()
	if len(initData) > 0 {
		if err := json.Unmarshal(initData, &params); err != nil {
			return types.ErrInvalidInitPayload.Wrap(err.Error())
		}
	}
	return h.k.InitVolumeFee(ctx, key, params)
}

func (h VolumeFeeHook) BeforeSwap(ctx *types.Context, key types.PoolKey, params types.SwapParams) error {
	return h.k.BeforeSwapVolumeFee(ctx, key, params)
}

func (h VolumeFeeHook) AfterSwap(ctx *types.Context, key types.PoolKey, params types.SwapParams, delta types.BalanceDelta) error {
	return h.k.AfterSwapVolumeFee(ctx, key, params, delta)
}

func (h VolumeFeeHook) AfterModifyLiquidity(*types.Context, types.PoolKey, types.BalanceDelta) error {
	return nil
}

// LockingHook attaches the liquidity locking engine. External liquidity
// goes through AddLockedLiquidity/RemoveLockedLiquidity; swaps only
// mark fee accrual.
type LockingHook struct {
	k *Keeper
}

// NewLockingHook returns the locking engine's callback surface.
func NewLockingHook(k *Keeper) LockingHook { return LockingHook{k: k} }

var _ types.LifecycleHooks = LockingHook{}

func (h LockingHook) BeforeInitialize(ctx *types.Context, key types.PoolKey, _ math.Int, initData []byte) error {
	params := types.DefaultLockingParams()
	if len(initData) > 0 {
		if err := json.Unmarshal(initData, &params); err != nil {
			return types.ErrInvalidInitPayload.Wrap(err.Error())
		}
	}
	return h.k.InitLocking(ctx, key, params)
}

func (h LockingHook) BeforeSwap(*types.Context, types.PoolKey, types.SwapParams) error {
	return nil
}

func (h LockingHook) AfterSwap(ctx *types.Context, key types.PoolKey, _ types.SwapParams, _ types.BalanceDelta) error {
	return h.k.AfterSwapLocking(ctx, key)
}

func (h LockingHook) AfterModifyLiquidity(*types.Context, types.PoolKey, types.BalanceDelta) error {
	return nil
}

// RebalancerHook attaches the range rebalancer vault.
type RebalancerHook struct {
	k *Keeper
}

// NewRebalancerHook returns the rebalancer's callback surface.
func NewRebalancerHook(k *Keeper) RebalancerHook { return RebalancerHook{k: k} }

var _ types.LifecycleHooks = RebalancerHook{}

func (h RebalancerHook) BeforeInitialize(ctx *types.Context, key types.PoolKey, _ math.Int, initData []byte) error {
	params := types.DefaultRebalancerParams()
	if len(initData) > 0 {
		if err := json.Unmarshal(initData, &params); err != nil {
			return types.ErrInvalidInitPayload.Wrap(err.Error())
		}
	}
	return h.k.InitRebalancer(ctx, key, params)
}

func (h RebalancerHook) BeforeSwap(*types.Context, types.PoolKey, types.SwapParams) error {
	return nil
}

func (h RebalancerHook) AfterSwap(ctx *types.Context, key types.PoolKey, _ types.SwapParams, _ types.BalanceDelta) error {
	return h.k.AfterSwapRebalancer(ctx, key)
}

func (h RebalancerHook) AfterModifyLiquidity(*types.Context, types.PoolKey, types.BalanceDelta) error {
	return nil
}
