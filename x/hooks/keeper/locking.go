package keeper

import (
	"time"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

// InitLocking creates the locking engine state for a pool. The engine
// only supports its fixed tick spacing; its position always spans the
// full usable range.
func (k *Keeper) InitLocking(ctx *types.Context, key types.PoolKey, params types.LockingParams) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if key.TickSpacing != types.LockingTickSpacing {
		return types.ErrInvalidTickSpacing.Wrapf("locking engine requires tick spacing %d, got %d",
			types.LockingTickSpacing, key.TickSpacing)
	}

	id := key.ID()
	if _, ok := k.lockPools[id]; ok {
		return types.ErrPoolAlreadyInitialized.Wrapf("locking pool %s", id)
	}

	k.registerPoolKey(key)
	k.lockPools[id] = &types.LockingPoolInfo{
		RewardTokenDenom:       RewardTokenDenom(id),
		RewardGenerationRate:   params.RewardGenerationRate,
		TotalLiquidityShares:   math.ZeroInt(),
		EarlyWithdrawalPenalty: params.EarlyWithdrawalPenalty,
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypePoolInitialized,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyPolicy, "locking"),
	))
	k.logger.Info("locking pool initialized", "pool_id", id.String())
	return nil
}

// AddLockedLiquidity deposits liquidity into the pool's full range and
// locks the caller's resulting share until lockedUntil. Returns the
// liquidity credited to the caller.
func (k *Keeper) AddLockedLiquidity(
	ctx *types.Context,
	key types.PoolKey,
	amount0Desired, amount1Desired math.Int,
	amount0Min, amount1Min math.Int,
	deadline, lockedUntil time.Time,
) (math.Int, error) {
	if ctx.BlockTime().After(deadline) {
		return math.Int{}, types.ErrExpired.Wrapf("deadline %s is in the past", deadline)
	}
	if !lockedUntil.After(ctx.BlockTime()) {
		return math.Int{}, types.ErrExpiredLockWindow.Wrapf("lockedUntil %s is not in the future", lockedUntil)
	}

	id := key.ID()
	info, err := k.GetLockingPoolInfo(id)
	if err != nil {
		return math.Int{}, err
	}

	slot0, err := k.engine.GetSlot0(id)
	if err != nil {
		return math.Int{}, err
	}
	sqrtLower, sqrtUpper, err := fullRangeRatios(key)
	if err != nil {
		return math.Int{}, err
	}
	liquidity := tickmath.GetLiquidityForAmounts(slot0.SqrtPriceX96, sqrtLower, sqrtUpper, amount0Desired, amount1Desired)
	if !liquidity.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("desired amounts yield no liquidity")
	}

	poolLiquidity, err := k.engine.GetLiquidity(id)
	if err != nil {
		return math.Int{}, err
	}
	firstDeposit := poolLiquidity.IsZero()
	if firstDeposit && liquidity.LTE(types.MinimumLiquidity) {
		return math.Int{}, types.ErrBelowMinimumLiquidity.Wrapf(
			"first deposit %s must exceed %s", liquidity, types.MinimumLiquidity)
	}

	owner := ctx.Sender()
	lock, hasLock := k.GetLockingInfo(id, owner)
	if hasLock && lockedUntil.Before(lock.LockedUntil) {
		return math.Int{}, types.ErrShorteningLockedUntil.Wrapf(
			"existing lock runs until %s, got %s", lock.LockedUntil, lockedUntil)
	}

	tickLower, tickUpper := fullRangeTicks(key)
	delta, err := k.engine.ModifyPosition(ctx, key, tickLower, tickUpper, liquidity)
	if err != nil {
		return math.Int{}, err
	}
	if delta.Amount0.LT(amount0Min) || delta.Amount1.LT(amount1Min) {
		return math.Int{}, types.ErrTooMuchSlippage.Wrapf(
			"delivered %s/%s below minimums %s/%s", delta.Amount0, delta.Amount1, amount0Min, amount1Min)
	}

	// Realize rewards earned under the previous share amount before the
	// share changes.
	if hasLock {
		if err := k.mintElapsedRewards(ctx, id, info, owner, lock); err != nil {
			return math.Int{}, err
		}
	}

	credited := liquidity
	if firstDeposit {
		// The permanently locked floor comes out of the first
		// depositor's credited share, keeping total shares equal to the
		// deposited liquidity.
		credited = liquidity.Sub(types.MinimumLiquidity)
		k.setLockingInfo(id, types.SentinelLockAddress, &types.LockingInfo{
			LockingTime:    ctx.BlockTime(),
			LockedUntil:    types.MaxLockTime,
			LiquidityShare: types.MinimumLiquidity,
		})
		info.TotalLiquidityShares = info.TotalLiquidityShares.Add(types.MinimumLiquidity)
	}

	if !hasLock {
		lock = &types.LockingInfo{LiquidityShare: math.ZeroInt()}
		k.setLockingInfo(id, owner, lock)
	}
	lock.LockingTime = ctx.BlockTime()
	lock.LockedUntil = lockedUntil
	lock.LiquidityShare = lock.LiquidityShare.Add(credited)
	info.TotalLiquidityShares = info.TotalLiquidityShares.Add(credited)

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeLiquidityLocked,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyOwner, owner),
		types.NewAttribute(types.AttributeKeyShares, credited.String()),
		types.NewAttribute(types.AttributeKeyLockedUntil, lockedUntil.UTC().Format(time.RFC3339)),
	))
	if k.metrics != nil {
		k.metrics.LockedShares.WithLabelValues(id.String()).Set(float64(info.TotalLiquidityShares.Int64()))
	}
	k.logger.Info("liquidity locked",
		"pool_id", id.String(),
		"owner", owner,
		"shares", credited.String(),
		"locked_until", lockedUntil.UTC().Format(time.RFC3339),
	)
	return credited, nil
}

// RemoveLockedLiquidity withdraws shareAmount of the caller's locked
// shares. Withdrawals before the lock expires pay the early penalty,
// donated back to the pool for the remaining depositors. Returns the
// net balance delta (negative amounts are paid to the caller).
func (k *Keeper) RemoveLockedLiquidity(
	ctx *types.Context,
	key types.PoolKey,
	shareAmount math.Int,
	deadline time.Time,
) (types.BalanceDelta, error) {
	if ctx.BlockTime().After(deadline) {
		return types.BalanceDelta{}, types.ErrExpired.Wrapf("deadline %s is in the past", deadline)
	}
	if !shareAmount.IsPositive() {
		return types.BalanceDelta{}, types.ErrInvalidAmount.Wrap("share amount must be positive")
	}

	id := key.ID()
	info, err := k.GetLockingPoolInfo(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	owner := ctx.Sender()
	lock, hasLock := k.GetLockingInfo(id, owner)
	if !hasLock {
		return types.BalanceDelta{}, types.ErrInsufficientShares.Wrapf("no lock for %s", owner)
	}
	remainingShare, err := SafeSub(lock.LiquidityShare, shareAmount)
	if err != nil {
		return types.BalanceDelta{}, types.ErrInsufficientShares.Wrapf(
			"withdraw %s exceeds locked share %s", shareAmount, lock.LiquidityShare)
	}

	// Fold uncollected trading fees into the position, so share value
	// reflects everything earned. Runs only after every precondition has
	// passed: a rejected withdrawal must leave the pool untouched.
	if info.HasAccruedFees {
		if err := k.rebalanceLockedPosition(ctx, key, info); err != nil {
			return types.BalanceDelta{}, err
		}
	}

	poolLiquidity, err := k.engine.GetLiquidity(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	// Shares are nominal; fee-driven drift means pool liquidity and the
	// share total diverge, so redemption goes through the ratio.
	actualLiquidity, err := SafeMulDiv(shareAmount, poolLiquidity, info.TotalLiquidityShares)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	tickLower, tickUpper := fullRangeTicks(key)
	delta, err := k.engine.ModifyPosition(ctx, key, tickLower, tickUpper, actualLiquidity.Neg())
	if err != nil {
		return types.BalanceDelta{}, err
	}
	withdrawn0 := delta.Amount0.Neg()
	withdrawn1 := delta.Amount1.Neg()

	if ctx.BlockTime().Before(lock.LockedUntil) {
		penalty0 := info.EarlyWithdrawalPenalty.MulInt(withdrawn0).TruncateInt()
		penalty1 := info.EarlyWithdrawalPenalty.MulInt(withdrawn1).TruncateInt()
		if penalty0.IsPositive() || penalty1.IsPositive() {
			if err := k.engine.Donate(ctx, key, penalty0, penalty1); err != nil {
				return types.BalanceDelta{}, err
			}
			withdrawn0 = withdrawn0.Sub(penalty0)
			withdrawn1 = withdrawn1.Sub(penalty1)
			info.HasAccruedFees = true

			ctx.EventManager().EmitEvent(types.NewEvent(
				types.EventTypePenaltyCollected,
				types.NewAttribute(types.AttributeKeyPoolID, id.String()),
				types.NewAttribute(types.AttributeKeyOwner, owner),
				types.NewAttribute(types.AttributeKeyAmount0, penalty0.String()),
				types.NewAttribute(types.AttributeKeyAmount1, penalty1.String()),
			))
			if k.metrics != nil {
				k.metrics.PenaltiesCollected.WithLabelValues(id.String(), key.Token0).Add(float64(penalty0.Int64()))
				k.metrics.PenaltiesCollected.WithLabelValues(id.String(), key.Token1).Add(float64(penalty1.Int64()))
			}
		}
	}

	// Rewards for the elapsed interval use the pre-withdrawal share.
	if err := k.mintElapsedRewards(ctx, id, info, owner, lock); err != nil {
		return types.BalanceDelta{}, err
	}

	if remainingShare.IsZero() {
		k.deleteLockingInfo(id, owner)
	} else {
		lock.LiquidityShare = remainingShare
		// Once a lock has expired, partial withdrawals must not keep
		// accruing rewards from the old locking time.
		lock.LockingTime = minTime(ctx.BlockTime(), lock.LockedUntil)
	}
	info.TotalLiquidityShares = info.TotalLiquidityShares.Sub(shareAmount)

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeLiquidityUnlocked,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyOwner, owner),
		types.NewAttribute(types.AttributeKeyShares, shareAmount.String()),
		types.NewAttribute(types.AttributeKeyAmount0, withdrawn0.String()),
		types.NewAttribute(types.AttributeKeyAmount1, withdrawn1.String()),
	))
	if k.metrics != nil {
		k.metrics.LockedShares.WithLabelValues(id.String()).Set(float64(info.TotalLiquidityShares.Int64()))
	}
	return types.BalanceDelta{Amount0: withdrawn0.Neg(), Amount1: withdrawn1.Neg()}, nil
}

// AfterSwapLocking marks trading fees as accrued so the next
// withdrawal folds them in.
func (k *Keeper) AfterSwapLocking(_ *types.Context, key types.PoolKey) error {
	info, err := k.GetLockingPoolInfo(key.ID())
	if err != nil {
		return err
	}
	info.HasAccruedFees = true
	if k.metrics != nil {
		k.metrics.SwapsObserved.WithLabelValues(key.ID().String(), "locking").Inc()
	}
	return nil
}

// rebalanceLockedPosition converts collected trading fees into
// redeployed principal: withdraw everything, swap to the price implied
// by the returned balance ratio, redeposit the maximum and donate the
// remainder as dust.
func (k *Keeper) rebalanceLockedPosition(ctx *types.Context, key types.PoolKey, info *types.LockingPoolInfo) error {
	ctx = ctx.WithRebalanceInProgress().WithVolumeGuardSuppressed()
	id := key.ID()

	poolLiquidity, err := k.engine.GetLiquidity(id)
	if err != nil {
		return err
	}
	if poolLiquidity.IsZero() {
		info.HasAccruedFees = false
		return nil
	}

	tickLower, tickUpper := fullRangeTicks(key)
	delta, err := k.engine.ModifyPosition(ctx, key, tickLower, tickUpper, poolLiquidity.Neg())
	if err != nil {
		return err
	}
	balance0 := delta.Amount0.Neg()
	balance1 := delta.Amount1.Neg()

	if balance0.IsPositive() && balance1.IsPositive() {
		target, err := tickmath.SqrtPriceFromAmounts(balance1, balance0)
		if err != nil {
			return err
		}
		slot0, err := k.engine.GetSlot0(id)
		if err != nil {
			return err
		}
		if !target.Equal(slot0.SqrtPriceX96) {
			zeroForOne := slot0.SqrtPriceX96.GT(target)
			maxIn := balance1
			if zeroForOne {
				maxIn = balance0
			}
			swapDelta, err := k.engine.Swap(ctx, key, zeroForOne, maxIn, target)
			if err != nil {
				return err
			}
			balance0 = balance0.Sub(swapDelta.Amount0)
			balance1 = balance1.Sub(swapDelta.Amount1)
		}
	}

	slot0, err := k.engine.GetSlot0(id)
	if err != nil {
		return err
	}
	sqrtLower, sqrtUpper, err := fullRangeRatios(key)
	if err != nil {
		return err
	}
	redeploy := tickmath.GetLiquidityForAmounts(slot0.SqrtPriceX96, sqrtLower, sqrtUpper, balance0, balance1)
	if redeploy.IsPositive() {
		used, err := k.engine.ModifyPosition(ctx, key, tickLower, tickUpper, redeploy)
		if err != nil {
			return err
		}
		balance0 = balance0.Sub(used.Amount0)
		balance1 = balance1.Sub(used.Amount1)
	}

	dust0 := maxZero(balance0)
	dust1 := maxZero(balance1)
	if dust0.IsPositive() || dust1.IsPositive() {
		if err := k.engine.Donate(ctx, key, dust0, dust1); err != nil {
			return err
		}
	}

	info.HasAccruedFees = false
	k.logger.Debug("locked position rebalanced",
		"pool_id", id.String(),
		"redeployed", redeploy.String(),
		"dust0", dust0.String(),
		"dust1", dust1.String(),
	)
	return nil
}

// mintElapsedRewards mints reward tokens for the interval
// [LockingTime, min(now, LockedUntil)] at the pool's generation rate,
// proportional to the lock's current share.
func (k *Keeper) mintElapsedRewards(ctx *types.Context, id types.PoolID, info *types.LockingPoolInfo, owner string, lock *types.LockingInfo) error {
	end := minTime(ctx.BlockTime(), lock.LockedUntil)
	if !end.After(lock.LockingTime) || !lock.LiquidityShare.IsPositive() {
		return nil
	}
	seconds := int64(end.Sub(lock.LockingTime) / time.Second)
	reward := info.RewardGenerationRate.
		Mul(lock.LiquidityShare).
		MulRaw(seconds).
		QuoRaw(types.FixedPointScale)
	if !reward.IsPositive() {
		return nil
	}

	if err := k.tokens.Mint(info.RewardTokenDenom, owner, reward); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeRewardMinted,
		types.NewAttribute(types.AttributeKeyPoolID, id.String()),
		types.NewAttribute(types.AttributeKeyOwner, owner),
		types.NewAttribute(types.AttributeKeyAmount, reward.String()),
	))
	if k.metrics != nil {
		k.metrics.RewardsMinted.WithLabelValues(id.String()).Add(float64(reward.Int64()))
	}
	return nil
}

func fullRangeTicks(key types.PoolKey) (int32, int32) {
	return tickmath.MinUsableTick(key.TickSpacing), tickmath.MaxUsableTick(key.TickSpacing)
}

func fullRangeRatios(key types.PoolKey) (math.Int, math.Int, error) {
	tickLower, tickUpper := fullRangeTicks(key)
	sqrtLower, err := tickmath.GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return sqrtLower, sqrtUpper, nil
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxZero(v math.Int) math.Int {
	if v.IsNegative() {
		return math.ZeroInt()
	}
	return v
}
