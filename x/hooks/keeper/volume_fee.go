package keeper

import (
	"time"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

// InitVolumeFee creates the volume fee state for a pool. Called from
// the engine's before-initialize callback, exactly once per pool.
func (k *Keeper) InitVolumeFee(ctx *types.Context, key types.PoolKey, params types.VolumeFeeParams) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	id := key.ID()
	if _, ok := k.volumeFees[id]; ok {
		return types.ErrPoolAlreadyInitialized.Wrapf("volume fee pool %s", id)
	}

	k.registerPoolKey(key)
	k.volumeFees[id] = &types.VolumeFeePoolInfo{
		FeeIncreasePerVolumeUnit: params.FeeIncreasePerVolumeUnit,
		FeeDecreasePerTimeUnit:   params.FeeDecreasePerTimeUnit,
		AggregatedVolume:         math.ZeroInt(),
		LastDecayTime:            ctx.BlockTime(),
		CurrentFee:               params.InitialFee,
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypePoolInitialized,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyPolicy, "volume_fee"),
		types.NewAttribute(types.AttributeKeyFee, params.InitialFee.String()),
	))
	k.logger.Info("volume fee pool initialized", "pool_id", id.String(), "initial_fee", params.InitialFee.String())
	return nil
}

// BeforeSwapVolumeFee updates the fee state ahead of a swap: elapsed
// time decays the fee, accumulated volume raises it. Both conversions
// work in whole units with carried remainders, so N small swaps move
// the fee exactly as far as one swap of the same total volume.
func (k *Keeper) BeforeSwapVolumeFee(ctx *types.Context, key types.PoolKey, params types.SwapParams) error {
	// Hook-internal swaps are not trading volume.
	if ctx.VolumeGuardSuppressed() {
		return nil
	}

	id := key.ID()
	info, err := k.GetVolumeFeeInfo(id)
	if err != nil {
		return err
	}

	timeUnits := int64(ctx.BlockTime().Sub(info.LastDecayTime) / types.FeeTimeUnit)
	if timeUnits < 0 {
		timeUnits = 0
	}
	decrease := info.FeeDecreasePerTimeUnit.MulRaw(timeUnits)

	volume, err := k.swapVolumeInToken1(id, params)
	if err != nil {
		return err
	}
	info.AggregatedVolume = info.AggregatedVolume.Add(volume)

	volumeUnits := info.AggregatedVolume.Quo(types.Token1VolumeUnit)
	increase := volumeUnits.Mul(info.FeeIncreasePerVolumeUnit)

	netChange := increase.Sub(decrease)
	if netChange.Abs().LTE(math.NewInt(types.MinimumFeeThreshold)) {
		// Volume stays accumulated; the decay clock does not advance,
		// so the unapplied decrease is not lost.
		return nil
	}

	// Consume exactly the whole units converted above, carrying the
	// remainders forward.
	info.LastDecayTime = info.LastDecayTime.Add(time.Duration(timeUnits) * types.FeeTimeUnit)
	info.AggregatedVolume = info.AggregatedVolume.Sub(volumeUnits.Mul(types.Token1VolumeUnit))

	newFee := clampFee(info.CurrentFee.Add(netChange))
	if newFee.Equal(info.CurrentFee) {
		return nil
	}

	previousFee := info.CurrentFee
	info.CurrentFee = newFee

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeFeeUpdated,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyPreviousFee, previousFee.String()),
		types.NewAttribute(types.AttributeKeyFee, newFee.String()),
	))
	if k.metrics != nil {
		direction := "up"
		if newFee.LT(previousFee) {
			direction = "down"
		}
		k.metrics.FeeAdjustments.WithLabelValues(id.String(), direction).Inc()
		k.metrics.CurrentFee.WithLabelValues(id.String()).Set(float64(newFee.Int64()))
	}
	k.logger.Debug("fee updated",
		"pool_id", id.String(),
		"previous_fee", previousFee.String(),
		"fee", newFee.String(),
	)
	return nil
}

// AfterSwapVolumeFee verifies the swap actually moved what it claimed.
// A swap capped by a tight price limit executes a fraction of its
// specified amount; accepting it would let an attacker inflate the
// volume accumulator for free. Suppressed for hook-internal swaps.
func (k *Keeper) AfterSwapVolumeFee(ctx *types.Context, key types.PoolKey, params types.SwapParams, delta types.BalanceDelta) error {
	if ctx.VolumeGuardSuppressed() {
		return nil
	}

	id := key.ID()
	if _, err := k.GetVolumeFeeInfo(id); err != nil {
		return err
	}

	specified := params.AmountSpecified.Abs()
	executed := delta.AmountOf(swapSpecifiesToken0(params)).Abs()
	if executed.MulRaw(100).LT(specified.MulRaw(types.SwapMismatchThresholdPct)) {
		return types.ErrSwapAmountMismatch.Wrapf("executed %s of specified %s", executed, specified)
	}

	if k.metrics != nil {
		k.metrics.SwapsObserved.WithLabelValues(id.String(), "volume_fee").Inc()
	}
	return nil
}

// GetFee returns the live fee for a pool.
func (k *Keeper) GetFee(id types.PoolID) (math.Int, error) {
	info, err := k.GetVolumeFeeInfo(id)
	if err != nil {
		return math.Int{}, err
	}
	return info.CurrentFee, nil
}

// SetVolumeFeeParams adjusts the policy constants. Authority only.
func (k *Keeper) SetVolumeFeeParams(ctx *types.Context, key types.PoolKey, increasePerUnit, decreasePerUnit math.Int) error {
	if ctx.Sender() != k.authority {
		return types.ErrUnauthorized.Wrapf("sender %s is not the policy authority", ctx.Sender())
	}
	if increasePerUnit.IsNegative() || decreasePerUnit.IsNegative() {
		return types.ErrInvalidParams.Wrap("fee deltas must be non-negative")
	}

	info, err := k.GetVolumeFeeInfo(key.ID())
	if err != nil {
		return err
	}
	info.FeeIncreasePerVolumeUnit = increasePerUnit
	info.FeeDecreasePerTimeUnit = decreasePerUnit
	return nil
}

// swapVolumeInToken1 converts a swap's specified notional into the
// reference asset (token1) at the current price.
func (k *Keeper) swapVolumeInToken1(id types.PoolID, params types.SwapParams) (math.Int, error) {
	amount := params.AmountSpecified.Abs()
	if !swapSpecifiesToken0(params) {
		return amount, nil
	}
	slot0, err := k.engine.GetSlot0(id)
	if err != nil {
		return math.Int{}, err
	}
	return tickmath.Amount0ValueInToken1(amount, slot0.SqrtPriceX96), nil
}

// swapSpecifiesToken0 reports whether a swap's specified amount is
// denominated in token0. Positive amounts are exact-input.
func swapSpecifiesToken0(params types.SwapParams) bool {
	return params.ZeroForOne == params.AmountSpecified.IsPositive()
}

func clampFee(fee math.Int) math.Int {
	minFee := math.NewInt(types.MinimumFee)
	maxFee := math.NewInt(types.MaximumFee)
	if fee.LT(minFee) {
		return minFee
	}
	if fee.GT(maxFee) {
		return maxFee
	}
	return fee
}
