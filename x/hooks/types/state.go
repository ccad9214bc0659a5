package types

import (
	"time"

	"cosmossdk.io/math"
)

// VolumeFeePoolInfo is the per-pool state of the volume fee controller.
type VolumeFeePoolInfo struct {
	// Policy constants, mutable only by the authority.
	FeeIncreasePerVolumeUnit math.Int
	FeeDecreasePerTimeUnit   math.Int

	// AggregatedVolume is traded token1 notional not yet converted into
	// a fee increase. Remainders below Token1VolumeUnit carry forward.
	AggregatedVolume math.Int

	// LastDecayTime is the timestamp up to which fee decay has been
	// applied. Advanced only by whole FeeTimeUnit steps.
	LastDecayTime time.Time

	// CurrentFee is the live swap fee, always within
	// [MinimumFee, MaximumFee].
	CurrentFee math.Int
}

// LockingPoolInfo is the per-pool state of the liquidity locking engine.
type LockingPoolInfo struct {
	RewardTokenDenom     string
	RewardGenerationRate math.Int

	// TotalLiquidityShares equals the sum of all non-zero LockingInfo
	// shares for this pool, sentinel included.
	TotalLiquidityShares math.Int

	EarlyWithdrawalPenalty math.LegacyDec

	// HasAccruedFees marks uncollected trading fees since the last
	// rebalance; withdrawals trigger a lazy rebalance when set.
	HasAccruedFees bool
}

// LockingInfo is one user's lock in one pool.
type LockingInfo struct {
	// LockingTime is the point from which unrewarded liquidity-time is
	// measured.
	LockingTime time.Time

	// LockedUntil bounds the penalty window. Only ever extended.
	LockedUntil time.Time

	// LiquidityShare is the user's proportional claim, redeemed as
	// share * poolLiquidity / TotalLiquidityShares.
	LiquidityShare math.Int
}

// RebalancerPoolInfo is the per-pool state of the range rebalancer.
type RebalancerPoolInfo struct {
	// CenterTick is the tick the narrow range is symmetric around.
	CenterTick int32

	// Widths are expressed in tick-spacing multiples.
	HalfRangeWidth          int32
	HalfRangeRebalanceWidth int32

	// NarrowToFullRatio is enforced only at the first deposit.
	NarrowToFullRatio math.LegacyDec

	// Uninvested balances held by the hook, shared pro-rata by vault
	// shareholders.
	Token0Balance math.Int
	Token1Balance math.Int

	VaultTokenDenom string

	// HasAccruedFees marks uncollected position fees to be pulled into
	// the uninvested balances.
	HasAccruedFees bool
}
