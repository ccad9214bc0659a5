package types

import (
	"cosmossdk.io/math"
)

// VolumeFeeParams is the initialization payload for the volume fee
// controller.
type VolumeFeeParams struct {
	FeeIncreasePerVolumeUnit math.Int `json:"fee_increase_per_volume_unit"`
	FeeDecreasePerTimeUnit   math.Int `json:"fee_decrease_per_time_unit"`
	InitialFee               math.Int `json:"initial_fee"`
}

// DefaultVolumeFeeParams returns the reference policy configuration.
func DefaultVolumeFeeParams() VolumeFeeParams {
	return VolumeFeeParams{
		FeeIncreasePerVolumeUnit: math.NewInt(5),
		FeeDecreasePerTimeUnit:   math.NewInt(30),
		InitialFee:               math.NewInt(2000), // 0.2%
	}
}

// Validate checks the payload for structural validity.
func (p VolumeFeeParams) Validate() error {
	if p.FeeIncreasePerVolumeUnit.IsNil() || p.FeeIncreasePerVolumeUnit.IsNegative() {
		return ErrInvalidParams.Wrap("fee increase per volume unit must be non-negative")
	}
	if p.FeeDecreasePerTimeUnit.IsNil() || p.FeeDecreasePerTimeUnit.IsNegative() {
		return ErrInvalidParams.Wrap("fee decrease per time unit must be non-negative")
	}
	if p.InitialFee.IsNil() || p.InitialFee.LT(math.NewInt(MinimumFee)) || p.InitialFee.GT(math.NewInt(MaximumFee)) {
		return ErrInvalidParams.Wrapf("initial fee must be within [%d, %d]", MinimumFee, MaximumFee)
	}
	return nil
}

// LockingParams is the initialization payload for the liquidity locking
// engine.
type LockingParams struct {
	// RewardGenerationRate is scaled by FixedPointScale; rewards minted
	// per unit liquidity-second.
	RewardGenerationRate math.Int `json:"reward_generation_rate"`

	// EarlyWithdrawalPenalty is the fraction of withdrawn amounts
	// retained on early withdrawal.
	EarlyWithdrawalPenalty math.LegacyDec `json:"early_withdrawal_penalty"`
}

// DefaultLockingParams returns the reference policy configuration.
func DefaultLockingParams() LockingParams {
	return LockingParams{
		RewardGenerationRate:   math.NewInt(100),
		EarlyWithdrawalPenalty: math.LegacyNewDecWithPrec(10, 2), // 10%
	}
}

// Validate checks the payload for structural validity.
func (p LockingParams) Validate() error {
	if p.RewardGenerationRate.IsNil() || p.RewardGenerationRate.IsNegative() {
		return ErrInvalidParams.Wrap("reward generation rate must be non-negative")
	}
	if p.EarlyWithdrawalPenalty.IsNil() || p.EarlyWithdrawalPenalty.IsNegative() || p.EarlyWithdrawalPenalty.GTE(math.LegacyOneDec()) {
		return ErrInvalidParams.Wrap("early withdrawal penalty must be within [0, 1)")
	}
	return nil
}

// RebalancerParams is the initialization payload for the range
// rebalancer.
type RebalancerParams struct {
	HalfRangeWidth          int32          `json:"half_range_width"`
	HalfRangeRebalanceWidth int32          `json:"half_range_rebalance_width"`
	NarrowToFullRatio       math.LegacyDec `json:"narrow_to_full_ratio"`
}

// DefaultRebalancerParams returns the reference policy configuration.
func DefaultRebalancerParams() RebalancerParams {
	return RebalancerParams{
		HalfRangeWidth:          49,
		HalfRangeRebalanceWidth: 33,
		NarrowToFullRatio:       math.LegacyNewDec(4),
	}
}

// Validate checks the payload for structural validity.
func (p RebalancerParams) Validate() error {
	if p.HalfRangeWidth <= 0 {
		return ErrInvalidParams.Wrap("half range width must be positive")
	}
	if p.HalfRangeRebalanceWidth <= 0 {
		return ErrInvalidParams.Wrap("half range rebalance width must be positive")
	}
	if p.NarrowToFullRatio.IsNil() || !p.NarrowToFullRatio.IsPositive() {
		return ErrInvalidParams.Wrap("narrow to full ratio must be positive")
	}
	return nil
}

// ComboInitPayload is the combined initialization payload decoded by
// the combo coordinator into its two sub-payloads.
type ComboInitPayload struct {
	Locking   LockingParams   `json:"locking"`
	VolumeFee VolumeFeeParams `json:"volume_fee"`
}

// Validate checks both sub-payloads.
func (p ComboInitPayload) Validate() error {
	if err := p.Locking.Validate(); err != nil {
		return err
	}
	return p.VolumeFee.Validate()
}
