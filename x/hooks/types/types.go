package types

import (
	"time"

	"cosmossdk.io/math"
)

const (
	// ModuleName defines the module name
	ModuleName = "hooks"

	// FixedPointScale scales reward rates and share ratios.
	FixedPointScale = 1_000_000

	// Fee values are expressed in hundredths of a basis point
	// (1_000_000 = 100%).
	MinimumFee = 100     // 0.01%
	MaximumFee = 100_000 // 10%

	// MinimumFeeThreshold is the smallest net fee change worth a state
	// write. Changes at or below it only accumulate volume.
	MinimumFeeThreshold = 10

	// SwapMismatchThresholdPct is the minimum executed-to-specified swap
	// ratio accepted by the volume guard.
	SwapMismatchThresholdPct = 99

	// LockingTickSpacing is the only tick spacing the locking engine
	// accepts; its position always spans the full usable range.
	LockingTickSpacing = int32(60)

	// SentinelLockAddress holds the permanently locked liquidity floor.
	SentinelLockAddress = "locked_forever"
)

var (
	// FeeTimeUnit is the interval after which one fee decrease applies.
	FeeTimeUnit = time.Hour

	// Token1VolumeUnit is the traded token1 notional that produces one
	// fee increase.
	Token1VolumeUnit = math.NewIntWithDecimal(1, 16)

	// MinimumLiquidity is the share floor assigned to the sentinel
	// account at a pool's first deposit.
	MinimumLiquidity = math.NewInt(1000)

	// InitialRebalancerLiquidity is the mandated size of the first
	// vault deposit.
	InitialRebalancerLiquidity = math.NewInt(1_000_000_000)

	// MaxLockTime marks a lock that never expires.
	MaxLockTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// Event types emitted by the hooks module
const (
	EventTypePoolInitialized   = "hooks_pool_initialized"
	EventTypeFeeUpdated        = "fee_updated"
	EventTypeLiquidityLocked   = "liquidity_locked"
	EventTypeLiquidityUnlocked = "liquidity_unlocked"
	EventTypeRewardMinted      = "reward_minted"
	EventTypePenaltyCollected  = "penalty_collected"
	EventTypeRebalanceExecuted = "rebalance_executed"
	EventTypeFeesCollected     = "fees_collected"
)

// Event attribute keys
const (
	AttributeKeyPoolID        = "pool_id"
	AttributeKeyPolicy        = "policy"
	AttributeKeyOwner         = "owner"
	AttributeKeyFee           = "fee"
	AttributeKeyPreviousFee   = "previous_fee"
	AttributeKeyShares        = "shares"
	AttributeKeyLiquidity     = "liquidity"
	AttributeKeyLockedUntil   = "locked_until"
	AttributeKeyAmount        = "amount"
	AttributeKeyAmount0       = "amount0"
	AttributeKeyAmount1       = "amount1"
	AttributeKeyNewCenterTick = "new_center_tick"
	AttributeKeyOldCenterTick = "old_center_tick"
	AttributeKeyTriggerTick   = "trigger_tick"
)
