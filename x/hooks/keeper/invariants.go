package keeper

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/types"
)

// Invariant checks one structural property of the keeper state. It
// returns a description and whether the invariant is broken.
type Invariant func(k *Keeper) (string, bool)

// AllInvariants runs every registered invariant and stops at the first
// broken one.
func AllInvariants(k *Keeper) (string, bool) {
	for _, inv := range []Invariant{
		ShareConservationInvariant,
		FeeBoundsInvariant,
		VaultBalanceInvariant,
	} {
		if msg, broken := inv(k); broken {
			return msg, true
		}
	}
	return "all hooks invariants hold", false
}

// ShareConservationInvariant checks that each locking pool's share
// total equals the sum of its individual locks, sentinel included.
func ShareConservationInvariant(k *Keeper) (string, bool) {
	for id, info := range k.lockPools {
		sum := math.ZeroInt()
		for _, lock := range k.LocksForPool(id) {
			if lock.LiquidityShare.IsNegative() {
				return fmt.Sprintf("pool %s holds a negative liquidity share", id), true
			}
			sum = sum.Add(lock.LiquidityShare)
		}
		if !sum.Equal(info.TotalLiquidityShares) {
			return fmt.Sprintf("pool %s share total %s != lock sum %s",
				id, info.TotalLiquidityShares, sum), true
		}
	}
	return "locking shares conserved", false
}

// FeeBoundsInvariant checks that every live fee sits inside
// [MinimumFee, MaximumFee] and that carried volume never goes negative.
func FeeBoundsInvariant(k *Keeper) (string, bool) {
	minFee := math.NewInt(types.MinimumFee)
	maxFee := math.NewInt(types.MaximumFee)
	for id, info := range k.volumeFees {
		if info.CurrentFee.LT(minFee) || info.CurrentFee.GT(maxFee) {
			return fmt.Sprintf("pool %s fee %s outside [%s, %s]",
				id, info.CurrentFee, minFee, maxFee), true
		}
		if info.AggregatedVolume.IsNegative() {
			return fmt.Sprintf("pool %s carries negative aggregated volume %s",
				id, info.AggregatedVolume), true
		}
	}
	return "fees within bounds", false
}

// VaultBalanceInvariant checks that rebalancer vaults never track
// negative uninvested balances and that vault token supply never goes
// negative.
func VaultBalanceInvariant(k *Keeper) (string, bool) {
	for id, info := range k.rebalPools {
		if info.Token0Balance.IsNegative() || info.Token1Balance.IsNegative() {
			return fmt.Sprintf("pool %s holds negative vault balances %s/%s",
				id, info.Token0Balance, info.Token1Balance), true
		}
		if k.tokens.TotalSupply(info.VaultTokenDenom).IsNegative() {
			return fmt.Sprintf("pool %s vault token supply is negative", id), true
		}
	}
	return "vault balances non-negative", false
}
