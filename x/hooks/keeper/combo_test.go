package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/crestdex/hooks/testutil/engine"
	"github.com/crestdex/hooks/x/hooks/keeper"
	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

const comboPayload = `{
	"locking": {
		"reward_generation_rate": "200",
		"early_withdrawal_penalty": "0.050000000000000000"
	},
	"volume_fee": {
		"fee_increase_per_volume_unit": "50",
		"fee_decrease_per_time_unit": "30",
		"initial_fee": "2000"
	}
}`

func setupComboPool(t *testing.T, payload []byte) (*keeper.Keeper, keeper.ComboHook, *engineWithKey) {
	t.Helper()
	eng := engine.New()
	k := keeper.NewKeeper(eng, nopLogger(), authority, hookAddr)
	hook := keeper.NewComboHook(k)
	eng.SetHooks(hook)

	key := testPoolKey(types.LockingTickSpacing)
	err := eng.CreatePool(ctxAt(baseTime, alice), key, priceAtTickZero(), payload)
	require.NoError(t, err)
	return k, hook, &engineWithKey{Engine: eng, key: key}
}

func TestComboInitDecodesPayload(t *testing.T) {
	k, _, e := setupComboPool(t, []byte(comboPayload))
	id := e.key.ID()

	// Both sub-policies came up with the payload's parameters
	fee, err := k.GetFee(id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(2000), fee)

	vfInfo, err := k.GetVolumeFeeInfo(id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(50), vfInfo.FeeIncreasePerVolumeUnit)

	lockInfo, err := k.GetLockingPoolInfo(id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(200), lockInfo.RewardGenerationRate)
	require.Equal(t, math.LegacyNewDecWithPrec(5, 2), lockInfo.EarlyWithdrawalPenalty)
}

func TestComboInitDefaultsAndMalformedPayload(t *testing.T) {
	// Empty payload falls back to defaults
	k, _, e := setupComboPool(t, nil)
	fee, err := k.GetFee(e.key.ID())
	require.NoError(t, err)
	require.Equal(t, types.DefaultVolumeFeeParams().InitialFee, fee)

	// Malformed payload aborts pool creation
	eng := engine.New()
	k2 := keeper.NewKeeper(eng, nopLogger(), authority, hookAddr)
	eng.SetHooks(keeper.NewComboHook(k2))

	err = eng.CreatePool(ctxAt(baseTime, alice), testPoolKey(types.LockingTickSpacing),
		priceAtTickZero(), []byte(`{"locking": 12}`))
	require.ErrorIs(t, err, types.ErrInvalidInitPayload)
}

func TestComboSwapAdjustsFeeAndMarksAccrual(t *testing.T) {
	k, hook, e := setupComboPool(t, []byte(comboPayload))
	id := e.key.ID()

	big := math.NewIntWithDecimal(1, 18)
	_, err := hook.AddLiquidity(ctxAt(baseTime, alice), e.key,
		big, big, math.ZeroInt(), math.ZeroInt(),
		baseTime.Add(time.Minute), baseTime.Add(time.Hour))
	require.NoError(t, err)

	// 2.5 volume units of token1 in, executed in full
	amountIn := types.Token1VolumeUnit.MulRaw(5).QuoRaw(2)
	_, err = e.Swap(ctxAt(baseTime, bob), e.key, false, amountIn,
		tickmath.MaxSqrtRatio.SubRaw(1))
	require.NoError(t, err)

	// 2 whole units at 50 per unit
	fee, err := k.GetFee(id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(2100), fee)

	lockInfo, err := k.GetLockingPoolInfo(id)
	require.NoError(t, err)
	require.True(t, lockInfo.HasAccruedFees)
	requireInvariantsHold(t, k)
}

func TestComboPartialSwapRejected(t *testing.T) {
	_, hook, e := setupComboPool(t, []byte(comboPayload))

	big := math.NewIntWithDecimal(1, 18)
	_, err := hook.AddLiquidity(ctxAt(baseTime, alice), e.key,
		big, big, math.ZeroInt(), math.ZeroInt(),
		baseTime.Add(time.Minute), baseTime.Add(time.Hour))
	require.NoError(t, err)

	// A price limit just below spot caps the swap at a sliver of its
	// specified amount; the guard must reject it
	slot0, err := e.GetSlot0(e.key.ID())
	require.NoError(t, err)
	limit := slot0.SqrtPriceX96.Sub(slot0.SqrtPriceX96.QuoRaw(1_000_000))

	_, err = e.Swap(ctxAt(baseTime, bob), e.key, true,
		math.NewIntWithDecimal(1, 15), limit)
	require.ErrorIs(t, err, types.ErrSwapAmountMismatch)
}

func TestComboRemoveLiquiditySuppressesGuard(t *testing.T) {
	k, hook, e := setupComboPool(t, []byte(comboPayload))
	id := e.key.ID()

	big := math.NewIntWithDecimal(1, 18)
	credited, err := hook.AddLiquidity(ctxAt(baseTime, alice), e.key,
		big, big, math.ZeroInt(), math.ZeroInt(),
		baseTime.Add(time.Minute), baseTime.Add(time.Hour))
	require.NoError(t, err)

	// Accrued fees force the removal through the internal rebalance
	lower := tickmath.MinUsableTick(e.key.TickSpacing)
	upper := tickmath.MaxUsableTick(e.key.TickSpacing)
	require.NoError(t, e.CreditFees(id, hookAddr, lower, upper,
		math.NewInt(1_000_000), math.NewInt(1_000_000)))
	require.NoError(t, k.AfterSwapLocking(ctxAt(baseTime, alice), e.key))

	withdrawTime := baseTime.Add(2 * time.Hour)
	delta, err := hook.RemoveLiquidity(ctxAt(withdrawTime, alice), e.key,
		credited.QuoRaw(2), withdrawTime.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, delta.Amount0.IsNegative())
	require.True(t, delta.Amount1.IsNegative())

	lockInfo, err := k.GetLockingPoolInfo(id)
	require.NoError(t, err)
	require.False(t, lockInfo.HasAccruedFees)
	requireInvariantsHold(t, k)
}
