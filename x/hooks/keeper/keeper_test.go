package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/crestdex/hooks/testutil/engine"
	"github.com/crestdex/hooks/x/hooks/keeper"
	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

const (
	authority = "authority"
	hookAddr  = "hook1"
	alice     = "alice"
	bob       = "bob"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func nopLogger() log.Logger {
	return log.NewNopLogger()
}

func setupKeeper(t *testing.T) (*keeper.Keeper, *engine.Engine) {
	t.Helper()
	eng := engine.New()
	k := keeper.NewKeeper(eng, nopLogger(), authority, hookAddr)
	return k, eng
}

// engineWithKey bundles the engine with the pool key a test operates
// on, so helpers can reach both through one fixture value.
type engineWithKey struct {
	*engine.Engine
	key types.PoolKey
}

func testPoolKey(spacing int32) types.PoolKey {
	return types.PoolKey{
		Token0:      "uatom",
		Token1:      "uusdc",
		Fee:         0,
		TickSpacing: spacing,
		HookAddr:    hookAddr,
	}
}

func ctxAt(blockTime time.Time, sender string) *types.Context {
	return types.NewContext(blockTime, sender)
}

func priceAtTickZero() math.Int {
	return math.NewIntFromBigInt(tickmath.Q96)
}

// createPool registers a pool in the engine at the tick-zero price
// without running any hook callbacks.
func createPool(t *testing.T, eng *engine.Engine, key types.PoolKey) {
	t.Helper()
	err := eng.CreatePool(ctxAt(baseTime, alice), key, priceAtTickZero(), nil)
	require.NoError(t, err)
}

func requireInvariantsHold(t *testing.T, k *keeper.Keeper) {
	t.Helper()
	msg, broken := keeper.AllInvariants(k)
	require.False(t, broken, msg)
}
