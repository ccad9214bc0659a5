package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/crestdex/hooks/x/hooks/keeper"
	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

func setupRebalancerPool(t *testing.T) (*keeper.Keeper, *engineWithKey) {
	t.Helper()
	k, eng := setupKeeper(t)
	key := testPoolKey(60)
	createPool(t, eng, key)
	require.NoError(t, k.InitRebalancer(ctxAt(baseTime, alice), key, types.DefaultRebalancerParams()))
	return k, &engineWithKey{Engine: eng, key: key}
}

func TestRebalancerInitCentersOnCurrentTick(t *testing.T) {
	k, e := setupRebalancerPool(t)

	info, err := k.GetRebalancerInfo(e.key.ID())
	require.NoError(t, err)
	require.Equal(t, int32(0), info.CenterTick)
	require.Equal(t, keeper.VaultTokenDenom(e.key.ID()), info.VaultTokenDenom)
}

func TestRebalancerFirstDepositSplitsByRatio(t *testing.T) {
	k, e := setupRebalancerPool(t)
	id := e.key.ID()

	// The first deposit is fixed in size
	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		math.NewInt(123), baseTime.Add(time.Minute))
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	delta, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, delta.Amount0.IsPositive())
	require.True(t, delta.Amount1.IsPositive())

	// ratio 4 means narrow gets 4/5 and full range 1/5
	narrow, err := e.GetPosition(id, hookAddr, -2940, 2940)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(800_000_000), narrow)

	full, err := e.GetPosition(id, hookAddr,
		tickmath.MinUsableTick(60), tickmath.MaxUsableTick(60))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(200_000_000), full)

	require.Equal(t, types.InitialRebalancerLiquidity,
		k.Tokens().BalanceOf(keeper.VaultTokenDenom(id), alice))
	requireInvariantsHold(t, k)
}

func TestRebalancerProportionalDepositAndWithdrawal(t *testing.T) {
	k, e := setupRebalancerPool(t)
	id := e.key.ID()

	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// bob enters with half the initial share count
	_, err = k.AddVaultLiquidity(ctxAt(baseTime, bob), e.key,
		math.NewInt(500_000_000), baseTime.Add(time.Minute))
	require.NoError(t, err)

	narrow, err := e.GetPosition(id, hookAddr, -2940, 2940)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_200_000_000), narrow)

	full, err := e.GetPosition(id, hookAddr,
		tickmath.MinUsableTick(60), tickmath.MaxUsableTick(60))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(300_000_000), full)

	// bob exits fully; positions return to alice's share alone
	delta, err := k.RemoveVaultLiquidity(ctxAt(baseTime, bob), e.key,
		math.NewInt(500_000_000), baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, delta.Amount0.IsNegative())
	require.True(t, delta.Amount1.IsNegative())

	narrow, err = e.GetPosition(id, hookAddr, -2940, 2940)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(800_000_000), narrow)
	require.True(t, k.Tokens().BalanceOf(keeper.VaultTokenDenom(id), bob).IsZero())

	// bob cannot withdraw what he no longer holds
	_, err = k.RemoveVaultLiquidity(ctxAt(baseTime, bob), e.key,
		math.NewInt(1), baseTime.Add(time.Minute))
	require.ErrorIs(t, err, types.ErrInsufficientShares)
	requireInvariantsHold(t, k)
}

func TestRebalancerNoOpWithinThreshold(t *testing.T) {
	k, e := setupRebalancerPool(t)
	id := e.key.ID()

	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// Drift of 1000 ticks is inside the 33 * 60 = 1980 threshold
	price, err := tickmath.GetSqrtRatioAtTick(1000)
	require.NoError(t, err)
	require.NoError(t, e.SetPrice(id, price))

	ran, err := k.RebalanceIfNecessary(ctxAt(baseTime, alice), e.key, false)
	require.NoError(t, err)
	require.False(t, ran)

	info, err := k.GetRebalancerInfo(id)
	require.NoError(t, err)
	require.Equal(t, int32(0), info.CenterTick)
}

func TestRebalancerRecentersBeyondThreshold(t *testing.T) {
	k, e := setupRebalancerPool(t)
	id := e.key.ID()

	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)

	price, err := tickmath.GetSqrtRatioAtTick(2500)
	require.NoError(t, err)
	require.NoError(t, e.SetPrice(id, price))

	ran, err := k.RebalanceIfNecessary(ctxAt(baseTime, alice), e.key, false)
	require.NoError(t, err)
	require.True(t, ran)

	// The new center is the post-swap tick aligned to the grid, and the
	// narrow position now lives around it
	slot0, err := e.GetSlot0(id)
	require.NoError(t, err)
	info, err := k.GetRebalancerInfo(id)
	require.NoError(t, err)
	require.Equal(t, tickmath.AlignTick(slot0.Tick, 60), info.CenterTick)

	halfWidth := info.HalfRangeWidth * 60
	narrow, err := e.GetPosition(id, hookAddr,
		info.CenterTick-halfWidth, info.CenterTick+halfWidth)
	require.NoError(t, err)
	require.True(t, narrow.IsPositive())
	requireInvariantsHold(t, k)
}

func TestRebalancerForceRequiresAuthority(t *testing.T) {
	k, e := setupRebalancerPool(t)

	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)

	_, err = k.RebalanceIfNecessary(ctxAt(baseTime, alice), e.key, true)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	// The authority can force a rebalance with zero drift
	ran, err := k.RebalanceIfNecessary(ctxAt(baseTime, authority), e.key, true)
	require.NoError(t, err)
	require.True(t, ran)
}

func TestRebalancerNestedRebalanceSuppressed(t *testing.T) {
	k, e := setupRebalancerPool(t)

	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// Even a forced rebalance never runs inside another rebalance
	nested := ctxAt(baseTime, authority).WithRebalanceInProgress()
	ran, err := k.RebalanceIfNecessary(nested, e.key, true)
	require.NoError(t, err)
	require.False(t, ran)
}

func TestRebalancerFeeCollection(t *testing.T) {
	k, e := setupRebalancerPool(t)
	id := e.key.ID()

	_, err := k.AddVaultLiquidity(ctxAt(baseTime, alice), e.key,
		types.InitialRebalancerLiquidity, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// Credit trading fees to the narrow position and mark accrual
	require.NoError(t, e.CreditFees(id, hookAddr, -2940, 2940,
		math.NewInt(7000), math.NewInt(9000)))
	info, err := k.GetRebalancerInfo(id)
	require.NoError(t, err)
	info.HasAccruedFees = true

	// The next deposit first pulls fees into the uninvested balances,
	// then charges the depositor their pro-rata slice of them
	delta, err := k.AddVaultLiquidity(ctxAt(baseTime, bob), e.key,
		math.NewInt(500_000_000), baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, info.HasAccruedFees)

	// balances hold the collected fees plus bob's matching half
	require.Equal(t, math.NewInt(10_500), info.Token0Balance)
	require.Equal(t, math.NewInt(13_500), info.Token1Balance)
	require.True(t, delta.Amount0.IsPositive())
	requireInvariantsHold(t, k)
}
