package keeper

import (
	"strconv"
	"time"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

// InitRebalancer creates the vault state for a pool: a narrow range
// centered on the current tick plus a full-range backstop, tracked
// through a single vault share token.
func (k *Keeper) InitRebalancer(ctx *types.Context, key types.PoolKey, params types.RebalancerParams) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	id := key.ID()
	if _, ok := k.rebalPools[id]; ok {
		return types.ErrPoolAlreadyInitialized.Wrapf("rebalancer pool %s", id)
	}

	slot0, err := k.engine.GetSlot0(id)
	if err != nil {
		return err
	}

	k.registerPoolKey(key)
	k.rebalPools[id] = &types.RebalancerPoolInfo{
		CenterTick:              tickmath.AlignTick(slot0.Tick, key.TickSpacing),
		HalfRangeWidth:          params.HalfRangeWidth,
		HalfRangeRebalanceWidth: params.HalfRangeRebalanceWidth,
		NarrowToFullRatio:       params.NarrowToFullRatio,
		Token0Balance:           math.ZeroInt(),
		Token1Balance:           math.ZeroInt(),
		VaultTokenDenom:         VaultTokenDenom(id),
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypePoolInitialized,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyPolicy, "rebalancer"),
	))
	k.logger.Info("rebalancer pool initialized",
		"pool_id", id.String(),
		"center_tick", k.rebalPools[id].CenterTick,
	)
	return nil
}

// AddVaultLiquidity deposits into the vault and mints shares. The
// first deposit must be exactly InitialRebalancerLiquidity and is split
// between the narrow and full ranges by NarrowToFullRatio; later
// deposits scale both positions and the uninvested balances
// proportionally to the shares minted. Returns the amounts owed by the
// depositor.
func (k *Keeper) AddVaultLiquidity(
	ctx *types.Context,
	key types.PoolKey,
	shares math.Int,
	deadline time.Time,
) (types.BalanceDelta, error) {
	if ctx.BlockTime().After(deadline) {
		return types.BalanceDelta{}, types.ErrExpired.Wrapf("deadline %s is in the past", deadline)
	}
	if !shares.IsPositive() {
		return types.BalanceDelta{}, types.ErrInvalidAmount.Wrap("share amount must be positive")
	}

	id := key.ID()
	info, err := k.GetRebalancerInfo(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	if err := k.collectVaultFees(ctx, key, info); err != nil {
		return types.BalanceDelta{}, err
	}

	narrowLower, narrowUpper := narrowRangeTicks(key, info)
	fullLower, fullUpper := fullRangeTicks(key)

	supply := k.tokens.TotalSupply(info.VaultTokenDenom)
	total := types.ZeroBalanceDelta()

	if supply.IsZero() {
		if !shares.Equal(types.InitialRebalancerLiquidity) {
			return types.BalanceDelta{}, types.ErrInvalidAmount.Wrapf(
				"first vault deposit must be exactly %s, got %s", types.InitialRebalancerLiquidity, shares)
		}
		// narrow = ratio * full, narrow + full = initial
		fullLiquidity := math.LegacyNewDecFromInt(shares).
			Quo(info.NarrowToFullRatio.Add(math.LegacyOneDec())).
			TruncateInt()
		narrowLiquidity := shares.Sub(fullLiquidity)

		delta, err := k.engine.ModifyPosition(ctx, key, narrowLower, narrowUpper, narrowLiquidity)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		total = total.Add(delta)
		delta, err = k.engine.ModifyPosition(ctx, key, fullLower, fullUpper, fullLiquidity)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		total = total.Add(delta)
	} else {
		narrowLiquidity, err := k.engine.GetPosition(id, k.hookAddr, narrowLower, narrowUpper)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		fullLiquidity, err := k.engine.GetPosition(id, k.hookAddr, fullLower, fullUpper)
		if err != nil {
			return types.BalanceDelta{}, err
		}

		narrowAdd, err := SafeMulDiv(shares, narrowLiquidity, supply)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		fullAdd, err := SafeMulDiv(shares, fullLiquidity, supply)
		if err != nil {
			return types.BalanceDelta{}, err
		}

		if narrowAdd.IsPositive() {
			delta, err := k.engine.ModifyPosition(ctx, key, narrowLower, narrowUpper, narrowAdd)
			if err != nil {
				return types.BalanceDelta{}, err
			}
			total = total.Add(delta)
		}
		if fullAdd.IsPositive() {
			delta, err := k.engine.ModifyPosition(ctx, key, fullLower, fullUpper, fullAdd)
			if err != nil {
				return types.BalanceDelta{}, err
			}
			total = total.Add(delta)
		}

		// Depositors also fund their pro-rata slice of the uninvested
		// balances so existing holders are not diluted.
		owed0, err := SafeMulDiv(shares, info.Token0Balance, supply)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		owed1, err := SafeMulDiv(shares, info.Token1Balance, supply)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		info.Token0Balance = info.Token0Balance.Add(owed0)
		info.Token1Balance = info.Token1Balance.Add(owed1)
		total = total.Add(types.BalanceDelta{Amount0: owed0, Amount1: owed1})
	}

	if err := k.tokens.Mint(info.VaultTokenDenom, ctx.Sender(), shares); err != nil {
		return types.BalanceDelta{}, err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeLiquidityLocked,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyPolicy, "rebalancer"),
		types.NewAttribute(types.AttributeKeyOwner, ctx.Sender()),
		types.NewAttribute(types.AttributeKeyShares, shares.String()),
	))
	return total, nil
}

// RemoveVaultLiquidity burns shares and pays out the proportional slice
// of both positions and the uninvested balances. Returns the net delta
// (negative amounts are paid to the caller).
func (k *Keeper) RemoveVaultLiquidity(
	ctx *types.Context,
	key types.PoolKey,
	shares math.Int,
	deadline time.Time,
) (types.BalanceDelta, error) {
	if ctx.BlockTime().After(deadline) {
		return types.BalanceDelta{}, types.ErrExpired.Wrapf("deadline %s is in the past", deadline)
	}
	if !shares.IsPositive() {
		return types.BalanceDelta{}, types.ErrInvalidAmount.Wrap("share amount must be positive")
	}

	id := key.ID()
	info, err := k.GetRebalancerInfo(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	if err := k.collectVaultFees(ctx, key, info); err != nil {
		return types.BalanceDelta{}, err
	}

	supply := k.tokens.TotalSupply(info.VaultTokenDenom)
	if shares.GT(k.tokens.BalanceOf(info.VaultTokenDenom, ctx.Sender())) {
		return types.BalanceDelta{}, types.ErrInsufficientShares.Wrapf(
			"burn %s exceeds vault balance", shares)
	}

	narrowLower, narrowUpper := narrowRangeTicks(key, info)
	fullLower, fullUpper := fullRangeTicks(key)

	narrowLiquidity, err := k.engine.GetPosition(id, k.hookAddr, narrowLower, narrowUpper)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	fullLiquidity, err := k.engine.GetPosition(id, k.hookAddr, fullLower, fullUpper)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	narrowOut, err := SafeMulDiv(shares, narrowLiquidity, supply)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	fullOut, err := SafeMulDiv(shares, fullLiquidity, supply)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	out0, err := SafeMulDiv(shares, info.Token0Balance, supply)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	out1, err := SafeMulDiv(shares, info.Token1Balance, supply)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	total := types.ZeroBalanceDelta()
	if narrowOut.IsPositive() {
		delta, err := k.engine.ModifyPosition(ctx, key, narrowLower, narrowUpper, narrowOut.Neg())
		if err != nil {
			return types.BalanceDelta{}, err
		}
		total = total.Add(delta)
	}
	if fullOut.IsPositive() {
		delta, err := k.engine.ModifyPosition(ctx, key, fullLower, fullUpper, fullOut.Neg())
		if err != nil {
			return types.BalanceDelta{}, err
		}
		total = total.Add(delta)
	}

	info.Token0Balance = info.Token0Balance.Sub(out0)
	info.Token1Balance = info.Token1Balance.Sub(out1)
	total = total.Add(types.BalanceDelta{Amount0: out0.Neg(), Amount1: out1.Neg()})

	if err := k.tokens.Burn(info.VaultTokenDenom, ctx.Sender(), shares); err != nil {
		return types.BalanceDelta{}, err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeLiquidityUnlocked,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyPolicy, "rebalancer"),
		types.NewAttribute(types.AttributeKeyOwner, ctx.Sender()),
		types.NewAttribute(types.AttributeKeyShares, shares.String()),
		types.NewAttribute(types.AttributeKeyAmount0, total.Amount0.Neg().String()),
		types.NewAttribute(types.AttributeKeyAmount1, total.Amount1.Neg().String()),
	))
	return total, nil
}

// AfterSwapRebalancer marks accrued fees and re-centers the narrow
// range when price has drifted past the rebalance threshold.
func (k *Keeper) AfterSwapRebalancer(ctx *types.Context, key types.PoolKey) error {
	info, err := k.GetRebalancerInfo(key.ID())
	if err != nil {
		return err
	}
	info.HasAccruedFees = true
	if k.metrics != nil {
		k.metrics.SwapsObserved.WithLabelValues(key.ID().String(), "rebalancer").Inc()
	}
	_, err = k.RebalanceIfNecessary(ctx, key, false)
	return err
}

// IsRebalanceNecessary reports whether the current tick warrants a
// rebalance. Nested calls during a running rebalance never trigger.
func (k *Keeper) IsRebalanceNecessary(ctx *types.Context, key types.PoolKey, info *types.RebalancerPoolInfo, currentTick int32, force bool) bool {
	if ctx.RebalanceInProgress() {
		return false
	}
	if force {
		return true
	}
	drift := currentTick - info.CenterTick
	if drift < 0 {
		drift = -drift
	}
	return drift > info.HalfRangeRebalanceWidth*key.TickSpacing
}

// RebalanceIfNecessary withdraws the narrow position, roughly equalizes
// the freed balances with a single swap, and redeploys around the new
// tick. force requires the authority. Returns whether a rebalance ran.
func (k *Keeper) RebalanceIfNecessary(ctx *types.Context, key types.PoolKey, force bool) (bool, error) {
	id := key.ID()
	info, err := k.GetRebalancerInfo(id)
	if err != nil {
		return false, err
	}
	if force && ctx.Sender() != k.authority {
		return false, types.ErrUnauthorized.Wrapf("force rebalance requires authority %s", k.authority)
	}

	slot0, err := k.engine.GetSlot0(id)
	if err != nil {
		return false, err
	}
	if !k.IsRebalanceNecessary(ctx, key, info, slot0.Tick, force) {
		return false, nil
	}
	triggerTick := slot0.Tick

	ctx = ctx.WithRebalanceInProgress().WithVolumeGuardSuppressed()
	if err := k.collectVaultFees(ctx, key, info); err != nil {
		return false, err
	}

	narrowLower, narrowUpper := narrowRangeTicks(key, info)
	narrowLiquidity, err := k.engine.GetPosition(id, k.hookAddr, narrowLower, narrowUpper)
	if err != nil {
		return false, err
	}
	if narrowLiquidity.IsPositive() {
		delta, err := k.engine.ModifyPosition(ctx, key, narrowLower, narrowUpper, narrowLiquidity.Neg())
		if err != nil {
			return false, err
		}
		info.Token0Balance = info.Token0Balance.Sub(delta.Amount0)
		info.Token1Balance = info.Token1Balance.Sub(delta.Amount1)
	}

	if err := k.equalizeBalances(ctx, key, info); err != nil {
		return false, err
	}

	slot0, err = k.engine.GetSlot0(id)
	if err != nil {
		return false, err
	}
	oldCenter := info.CenterTick
	info.CenterTick = tickmath.AlignTick(slot0.Tick, key.TickSpacing)

	narrowLower, narrowUpper = narrowRangeTicks(key, info)
	sqrtLower, err := tickmath.GetSqrtRatioAtTick(narrowLower)
	if err != nil {
		return false, err
	}
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(narrowUpper)
	if err != nil {
		return false, err
	}
	deploy := tickmath.GetLiquidityForAmounts(slot0.SqrtPriceX96, sqrtLower, sqrtUpper,
		maxZero(info.Token0Balance), maxZero(info.Token1Balance))
	if deploy.IsPositive() {
		delta, err := k.engine.ModifyPosition(ctx, key, narrowLower, narrowUpper, deploy)
		if err != nil {
			return false, err
		}
		info.Token0Balance = info.Token0Balance.Sub(delta.Amount0)
		info.Token1Balance = info.Token1Balance.Sub(delta.Amount1)
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeRebalanceExecuted,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyNewCenterTick, strconv.FormatInt(int64(info.CenterTick), 10)),
		types.NewAttribute(types.AttributeKeyOldCenterTick, strconv.FormatInt(int64(oldCenter), 10)),
		types.NewAttribute(types.AttributeKeyTriggerTick, strconv.FormatInt(int64(triggerTick), 10)),
	))
	if k.metrics != nil {
		k.metrics.Rebalances.WithLabelValues(id.String()).Inc()
	}
	k.logger.Info("rebalance executed",
		"pool_id", id.String(),
		"old_center_tick", oldCenter,
		"new_center_tick", info.CenterTick,
		"trigger_tick", triggerTick,
	)
	return true, nil
}

// equalizeBalances performs the single crude swap that brings the
// uninvested balances close to the 50/50 value split a centered range
// wants. The swap's own price impact is deliberately ignored.
func (k *Keeper) equalizeBalances(ctx *types.Context, key types.PoolKey, info *types.RebalancerPoolInfo) error {
	bal0 := info.Token0Balance
	bal1 := info.Token1Balance

	var zeroForOne bool
	var amountIn math.Int

	switch {
	case bal0.IsPositive() && bal1.IsZero():
		zeroForOne = true
		amountIn = bal0.QuoRaw(2)
	case bal1.IsPositive() && bal0.IsZero():
		zeroForOne = false
		amountIn = bal1.QuoRaw(2)
	case bal0.IsPositive() && bal1.IsPositive():
		slot0, err := k.engine.GetSlot0(key.ID())
		if err != nil {
			return err
		}
		value0In1 := tickmath.Amount0ValueInToken1(bal0, slot0.SqrtPriceX96)
		if value0In1.GT(bal1) {
			zeroForOne = true
			excess1 := value0In1.Sub(bal1).QuoRaw(2)
			amountIn = tickmath.Amount1ValueInToken0(excess1, slot0.SqrtPriceX96)
		} else {
			zeroForOne = false
			amountIn = bal1.Sub(value0In1).QuoRaw(2)
		}
	default:
		return nil
	}

	if !amountIn.IsPositive() {
		return nil
	}

	limit := tickmath.MaxSqrtRatio.SubRaw(1)
	if zeroForOne {
		limit = tickmath.MinSqrtRatio.AddRaw(1)
	}
	delta, err := k.engine.Swap(ctx, key, zeroForOne, amountIn, limit)
	if err != nil {
		return err
	}
	info.Token0Balance = info.Token0Balance.Sub(delta.Amount0)
	info.Token1Balance = info.Token1Balance.Sub(delta.Amount1)
	return nil
}

// collectVaultFees pulls accrued position fees into the uninvested
// balances through zero-delta position touches.
func (k *Keeper) collectVaultFees(ctx *types.Context, key types.PoolKey, info *types.RebalancerPoolInfo) error {
	if !info.HasAccruedFees {
		return nil
	}
	id := key.ID()

	collected0 := math.ZeroInt()
	collected1 := math.ZeroInt()
	ranges := [][2]int32{}
	narrowLower, narrowUpper := narrowRangeTicks(key, info)
	fullLower, fullUpper := fullRangeTicks(key)
	ranges = append(ranges, [2]int32{narrowLower, narrowUpper}, [2]int32{fullLower, fullUpper})

	for _, r := range ranges {
		liquidity, err := k.engine.GetPosition(id, k.hookAddr, r[0], r[1])
		if err != nil {
			return err
		}
		if liquidity.IsZero() {
			continue
		}
		delta, err := k.engine.ModifyPosition(ctx, key, r[0], r[1], math.ZeroInt())
		if err != nil {
			return err
		}
		collected0 = collected0.Add(delta.Amount0.Neg())
		collected1 = collected1.Add(delta.Amount1.Neg())
	}

	info.Token0Balance = info.Token0Balance.Add(collected0)
	info.Token1Balance = info.Token1Balance.Add(collected1)
	info.HasAccruedFees = false

	if collected0.IsPositive() || collected1.IsPositive() {
		ctx.EventManager().EmitEvent(types.NewEvent(
			types.EventTypeFeesCollected,
			types.NewAttribute(types.AttributeKeyPoolID, id.String()),
			types.NewAttribute(types.AttributeKeyAmount0, collected0.String()),
			types.NewAttribute(types.AttributeKeyAmount1, collected1.String()),
		))
	}
	return nil
}

func narrowRangeTicks(key types.PoolKey, info *types.RebalancerPoolInfo) (int32, int32) {
	halfWidth := info.HalfRangeWidth * key.TickSpacing
	return info.CenterTick - halfWidth, info.CenterTick + halfWidth
}
