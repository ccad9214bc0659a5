// Package engine provides an in-memory PoolEngine for exercising hook
// policies in tests. It models a single liquidity regime per pool: all
// positions share one price curve and swaps never cross ticks out of
// the aggregate in-range liquidity.
package engine

import (
	"sort"

	"cosmossdk.io/math"

	"github.com/crestdex/hooks/x/hooks/tickmath"
	"github.com/crestdex/hooks/x/hooks/types"
)

type positionKey struct {
	owner     string
	tickLower int32
	tickUpper int32
}

type position struct {
	liquidity math.Int
	feeOwed0  math.Int
	feeOwed1  math.Int
}

type pool struct {
	key       types.PoolKey
	slot0     types.Slot0
	positions map[positionKey]*position
}

// Engine is the test double for the host AMM. Positions opened through
// ModifyPosition are owned by the pool key's hook address.
type Engine struct {
	pools map[types.PoolID]*pool
	hooks types.LifecycleHooks
}

var _ types.PoolEngine = (*Engine)(nil)

// New returns an empty engine.
func New() *Engine {
	return &Engine{pools: make(map[types.PoolID]*pool)}
}

// SetHooks attaches a hook implementation invoked around pool creation
// and every swap, nested ones included.
func (e *Engine) SetHooks(h types.LifecycleHooks) { e.hooks = h }

// CreatePool registers a pool at the given starting price and runs the
// BeforeInitialize callback with the opaque payload.
func (e *Engine) CreatePool(ctx *types.Context, key types.PoolKey, sqrtPriceX96 math.Int, initData []byte) error {
	id := key.ID()
	if _, ok := e.pools[id]; ok {
		return types.ErrPoolAlreadyInitialized.Wrapf("pool %s", id)
	}
	tick, err := tickmath.GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	// Register before the callback: policies read slot0 during their
	// own initialization.
	e.pools[id] = &pool{
		key:       key,
		slot0:     types.Slot0{SqrtPriceX96: sqrtPriceX96, Tick: tick},
		positions: make(map[positionKey]*position),
	}
	if e.hooks != nil {
		if err := e.hooks.BeforeInitialize(ctx, key, sqrtPriceX96, initData); err != nil {
			delete(e.pools, id)
			return err
		}
	}
	return nil
}

// SetPrice moves a pool's price without trading. Test helper.
func (e *Engine) SetPrice(id types.PoolID, sqrtPriceX96 math.Int) error {
	p, err := e.pool(id)
	if err != nil {
		return err
	}
	tick, err := tickmath.GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	p.slot0 = types.Slot0{SqrtPriceX96: sqrtPriceX96, Tick: tick}
	return nil
}

func (e *Engine) pool(id types.PoolID) (*pool, error) {
	p, ok := e.pools[id]
	if !ok {
		return nil, types.ErrPoolNotInitialized.Wrapf("pool %s", id)
	}
	return p, nil
}

// GetSlot0 implements types.PoolEngine.
func (e *Engine) GetSlot0(id types.PoolID) (types.Slot0, error) {
	p, err := e.pool(id)
	if err != nil {
		return types.Slot0{}, err
	}
	return p.slot0, nil
}

// GetLiquidity implements types.PoolEngine. Returns the sum of all
// positions whose range contains the current tick.
func (e *Engine) GetLiquidity(id types.PoolID) (math.Int, error) {
	p, err := e.pool(id)
	if err != nil {
		return math.Int{}, err
	}
	total := math.ZeroInt()
	for key, pos := range p.positions {
		if inRange(p.slot0.Tick, key) {
			total = total.Add(pos.liquidity)
		}
	}
	return total, nil
}

// GetPosition implements types.PoolEngine.
func (e *Engine) GetPosition(id types.PoolID, owner string, tickLower, tickUpper int32) (math.Int, error) {
	p, err := e.pool(id)
	if err != nil {
		return math.Int{}, err
	}
	pos, ok := p.positions[positionKey{owner, tickLower, tickUpper}]
	if !ok {
		return math.ZeroInt(), nil
	}
	return pos.liquidity, nil
}

// ModifyPosition implements types.PoolEngine. Accrued fees are always
// collected, so a zero delta is a pure fee collection.
func (e *Engine) ModifyPosition(ctx *types.Context, key types.PoolKey, tickLower, tickUpper int32, liquidityDelta math.Int) (types.BalanceDelta, error) {
	if tickLower >= tickUpper {
		return types.BalanceDelta{}, types.ErrInvalidPoolKey.Wrapf("inverted range [%d, %d)", tickLower, tickUpper)
	}
	id := key.ID()
	p, err := e.pool(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	pk := positionKey{key.HookAddr, tickLower, tickUpper}
	pos, ok := p.positions[pk]
	if !ok {
		if liquidityDelta.IsNegative() {
			return types.BalanceDelta{}, types.ErrInsufficientShares.Wrap("position does not exist")
		}
		pos = &position{liquidity: math.ZeroInt(), feeOwed0: math.ZeroInt(), feeOwed1: math.ZeroInt()}
		p.positions[pk] = pos
	}
	if liquidityDelta.IsNegative() && liquidityDelta.Neg().GT(pos.liquidity) {
		return types.BalanceDelta{}, types.ErrInsufficientShares.Wrapf(
			"remove %s exceeds position liquidity %s", liquidityDelta.Neg(), pos.liquidity)
	}

	delta := types.BalanceDelta{Amount0: pos.feeOwed0.Neg(), Amount1: pos.feeOwed1.Neg()}
	pos.feeOwed0 = math.ZeroInt()
	pos.feeOwed1 = math.ZeroInt()

	if !liquidityDelta.IsZero() {
		amount0, amount1, err := e.amountsForRange(p, tickLower, tickUpper, liquidityDelta.Abs(), liquidityDelta.IsPositive())
		if err != nil {
			return types.BalanceDelta{}, err
		}
		if liquidityDelta.IsPositive() {
			delta.Amount0 = delta.Amount0.Add(amount0)
			delta.Amount1 = delta.Amount1.Add(amount1)
		} else {
			delta.Amount0 = delta.Amount0.Sub(amount0)
			delta.Amount1 = delta.Amount1.Sub(amount1)
		}
		pos.liquidity = pos.liquidity.Add(liquidityDelta)
		if pos.liquidity.IsZero() {
			delete(p.positions, pk)
		}
	}

	if e.hooks != nil {
		if err := e.hooks.AfterModifyLiquidity(ctx, key, delta); err != nil {
			return types.BalanceDelta{}, err
		}
	}
	return delta, nil
}

// Swap implements types.PoolEngine. Exact-input only; the swap stops at
// the price limit and never crosses out of the current in-range
// liquidity. Hook callbacks run around every swap when registered.
func (e *Engine) Swap(ctx *types.Context, key types.PoolKey, zeroForOne bool, amountSpecified math.Int, sqrtPriceLimitX96 math.Int) (types.BalanceDelta, error) {
	if !amountSpecified.IsPositive() {
		return types.BalanceDelta{}, types.ErrInvalidAmount.Wrap("exact-input amount must be positive")
	}
	id := key.ID()
	p, err := e.pool(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	params := types.SwapParams{ZeroForOne: zeroForOne, AmountSpecified: amountSpecified}
	if e.hooks != nil {
		if err := e.hooks.BeforeSwap(ctx, key, params); err != nil {
			return types.BalanceDelta{}, err
		}
	}

	liquidity, err := e.GetLiquidity(id)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	current := p.slot0.SqrtPriceX96
	var next math.Int
	var delta types.BalanceDelta
	if liquidity.IsZero() {
		// With no in-range liquidity the price slides to the limit and
		// nothing trades.
		next = sqrtPriceLimitX96
		delta = types.BalanceDelta{Amount0: math.ZeroInt(), Amount1: math.ZeroInt()}
	} else {
		next, err = tickmath.GetNextSqrtPriceFromInput(current, liquidity, amountSpecified, zeroForOne)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		if zeroForOne && next.LT(sqrtPriceLimitX96) {
			next = sqrtPriceLimitX96
		}
		if !zeroForOne && next.GT(sqrtPriceLimitX96) {
			next = sqrtPriceLimitX96
		}

		if zeroForOne {
			in0 := tickmath.GetAmount0Delta(next, current, liquidity, true)
			out1 := tickmath.GetAmount1Delta(next, current, liquidity, false)
			delta = types.BalanceDelta{Amount0: in0, Amount1: out1.Neg()}
		} else {
			in1 := tickmath.GetAmount1Delta(current, next, liquidity, true)
			out0 := tickmath.GetAmount0Delta(current, next, liquidity, false)
			delta = types.BalanceDelta{Amount0: out0.Neg(), Amount1: in1}
		}
	}

	tick, err := tickmath.GetTickAtSqrtRatio(next)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	p.slot0 = types.Slot0{SqrtPriceX96: next, Tick: tick}

	if e.hooks != nil {
		if err := e.hooks.AfterSwap(ctx, key, params, delta); err != nil {
			return types.BalanceDelta{}, err
		}
	}
	return delta, nil
}

// Donate implements types.PoolEngine. Amounts are credited to in-range
// positions pro-rata by liquidity; rounding dust goes to the first
// position in deterministic order.
func (e *Engine) Donate(_ *types.Context, key types.PoolKey, amount0, amount1 math.Int) error {
	if amount0.IsNegative() || amount1.IsNegative() {
		return types.ErrInvalidAmount.Wrap("donation amounts must be non-negative")
	}
	p, err := e.pool(key.ID())
	if err != nil {
		return err
	}

	var keys []positionKey
	total := math.ZeroInt()
	for pk, pos := range p.positions {
		if inRange(p.slot0.Tick, pk) && pos.liquidity.IsPositive() {
			keys = append(keys, pk)
			total = total.Add(pos.liquidity)
		}
	}
	if total.IsZero() {
		return types.ErrInvalidAmount.Wrap("no in-range liquidity to donate to")
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].owner != keys[j].owner {
			return keys[i].owner < keys[j].owner
		}
		if keys[i].tickLower != keys[j].tickLower {
			return keys[i].tickLower < keys[j].tickLower
		}
		return keys[i].tickUpper < keys[j].tickUpper
	})

	given0 := math.ZeroInt()
	given1 := math.ZeroInt()
	for _, pk := range keys[1:] {
		pos := p.positions[pk]
		share0 := amount0.Mul(pos.liquidity).Quo(total)
		share1 := amount1.Mul(pos.liquidity).Quo(total)
		pos.feeOwed0 = pos.feeOwed0.Add(share0)
		pos.feeOwed1 = pos.feeOwed1.Add(share1)
		given0 = given0.Add(share0)
		given1 = given1.Add(share1)
	}
	first := p.positions[keys[0]]
	first.feeOwed0 = first.feeOwed0.Add(amount0.Sub(given0))
	first.feeOwed1 = first.feeOwed1.Add(amount1.Sub(given1))
	return nil
}

// CreditFees adds pending fees directly to a position. Test helper for
// simulating trading fee accrual without running swaps.
func (e *Engine) CreditFees(id types.PoolID, owner string, tickLower, tickUpper int32, fee0, fee1 math.Int) error {
	p, err := e.pool(id)
	if err != nil {
		return err
	}
	pos, ok := p.positions[positionKey{owner, tickLower, tickUpper}]
	if !ok {
		return types.ErrInsufficientShares.Wrap("position does not exist")
	}
	pos.feeOwed0 = pos.feeOwed0.Add(fee0)
	pos.feeOwed1 = pos.feeOwed1.Add(fee1)
	return nil
}

func (e *Engine) amountsForRange(p *pool, tickLower, tickUpper int32, liquidity math.Int, roundUp bool) (math.Int, math.Int, error) {
	sqrtLower, err := tickmath.GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	price := p.slot0.SqrtPriceX96

	switch {
	case price.LTE(sqrtLower):
		return tickmath.GetAmount0Delta(sqrtLower, sqrtUpper, liquidity, roundUp), math.ZeroInt(), nil
	case price.GTE(sqrtUpper):
		return math.ZeroInt(), tickmath.GetAmount1Delta(sqrtLower, sqrtUpper, liquidity, roundUp), nil
	default:
		amount0 := tickmath.GetAmount0Delta(price, sqrtUpper, liquidity, roundUp)
		amount1 := tickmath.GetAmount1Delta(sqrtLower, price, liquidity, roundUp)
		return amount0, amount1, nil
	}
}

func inRange(tick int32, key positionKey) bool {
	return tick >= key.tickLower && tick < key.tickUpper
}
