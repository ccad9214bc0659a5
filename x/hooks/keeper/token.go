package keeper

import (
	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/types"
)

// TokenLedger is a mint/burn ledger for the accounting tokens
// the policies issue: one reward token per locking pool and one vault
// share token per rebalancer pool.
type TokenLedger struct {
	supplies map[string]math.Int
	balances map[string]map[string]math.Int
}

// NewTokenLedger returns an empty ledger.
func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		supplies: make(map[string]math.Int),
		balances: make(map[string]map[string]math.Int),
	}
}

// RewardTokenDenom returns the reward token denom for a pool.
func RewardTokenDenom(id types.PoolID) string {
	return "reward/" + id.String()
}

// VaultTokenDenom returns the vault share denom for a pool.
func VaultTokenDenom(id types.PoolID) string {
	return "vault/" + id.String()
}

// Mint credits amount of denom to addr.
func (l *TokenLedger) Mint(denom, addr string, amount math.Int) error {
	if amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("cannot mint negative amount %s", amount)
	}
	bals, ok := l.balances[denom]
	if !ok {
		bals = make(map[string]math.Int)
		l.balances[denom] = bals
	}
	bals[addr] = l.BalanceOf(denom, addr).Add(amount)
	l.supplies[denom] = l.TotalSupply(denom).Add(amount)
	return nil
}

// Burn removes amount of denom from addr, failing on insufficient
// balance.
func (l *TokenLedger) Burn(denom, addr string, amount math.Int) error {
	if amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("cannot burn negative amount %s", amount)
	}
	bal := l.BalanceOf(denom, addr)
	newBal, err := SafeSub(bal, amount)
	if err != nil {
		return types.ErrInsufficientShares.Wrapf("burn %s exceeds balance %s", amount, bal)
	}
	l.balances[denom][addr] = newBal
	l.supplies[denom] = l.TotalSupply(denom).Sub(amount)
	return nil
}

// BalanceOf returns addr's balance of denom.
func (l *TokenLedger) BalanceOf(denom, addr string) math.Int {
	if bals, ok := l.balances[denom]; ok {
		if b, ok := bals[addr]; ok {
			return b
		}
	}
	return math.ZeroInt()
}

// TotalSupply returns the outstanding supply of denom.
func (l *TokenLedger) TotalSupply(denom string) math.Int {
	if s, ok := l.supplies[denom]; ok {
		return s
	}
	return math.ZeroInt()
}
