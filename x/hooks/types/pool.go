package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"cosmossdk.io/math"
)

// PoolID is the deterministic identity of a pool, derived from its key.
type PoolID [32]byte

// String returns the hex encoding of the pool id.
func (id PoolID) String() string {
	return hex.EncodeToString(id[:])
}

// PoolKey identifies a pool by its ordered token pair, fee tier, tick
// spacing and the hook attached to it.
type PoolKey struct {
	Token0      string
	Token1      string
	Fee         uint32
	TickSpacing int32
	HookAddr    string
}

// Validate checks structural well-formedness of the key.
func (k PoolKey) Validate() error {
	if k.Token0 == "" || k.Token1 == "" {
		return ErrInvalidPoolKey.Wrap("token denoms cannot be empty")
	}
	if k.Token0 >= k.Token1 {
		return ErrInvalidPoolKey.Wrapf("tokens must be strictly ordered: %s >= %s", k.Token0, k.Token1)
	}
	if k.TickSpacing <= 0 {
		return ErrInvalidPoolKey.Wrapf("tick spacing must be positive, got %d", k.TickSpacing)
	}
	return nil
}

// ID derives the pool identifier. The encoding is canonical: fields are
// length-prefixed so distinct keys can never collide on concatenation.
func (k PoolKey) ID() PoolID {
	h := sha256.New()
	writeField := func(s string) {
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(s)))
		h.Write(l[:])
		h.Write([]byte(s))
	}
	writeField(k.Token0)
	writeField(k.Token1)

	var num [8]byte
	binary.BigEndian.PutUint32(num[:4], k.Fee)
	binary.BigEndian.PutUint32(num[4:], uint32(k.TickSpacing))
	h.Write(num[:])

	writeField(k.HookAddr)

	var id PoolID
	copy(id[:], h.Sum(nil))
	return id
}

// Slot0 is the host engine's current price state for a pool.
type Slot0 struct {
	SqrtPriceX96 math.Int
	Tick         int32
}

// BalanceDelta is the settlement result of an engine operation.
// Positive amounts are owed by the hook to the engine, negative amounts
// are paid out by the engine.
type BalanceDelta struct {
	Amount0 math.Int
	Amount1 math.Int
}

// ZeroBalanceDelta returns the additive identity.
func ZeroBalanceDelta() BalanceDelta {
	return BalanceDelta{Amount0: math.ZeroInt(), Amount1: math.ZeroInt()}
}

// Add returns the component-wise sum of two deltas.
func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Amount0: d.Amount0.Add(other.Amount0),
		Amount1: d.Amount1.Add(other.Amount1),
	}
}

// Neg returns the component-wise negation.
func (d BalanceDelta) Neg() BalanceDelta {
	return BalanceDelta{Amount0: d.Amount0.Neg(), Amount1: d.Amount1.Neg()}
}

// AmountOf returns the token0 component when zeroForOne is true,
// otherwise the token1 component.
func (d BalanceDelta) AmountOf(zeroForOne bool) math.Int {
	if zeroForOne {
		return d.Amount0
	}
	return d.Amount1
}

// SwapParams describes a requested swap. A positive AmountSpecified is
// an exact-input swap denominated in the input token.
type SwapParams struct {
	ZeroForOne      bool
	AmountSpecified math.Int
}
