// Package tickmath ports the Uniswap v3 tick/price conversions used by
// the hook policies: sqrt-price <-> tick, tick grid alignment and range
// liquidity math in Q64.96 fixed point.
package tickmath

import (
	"errors"
	"math/big"

	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

var (
	ErrTickOutOfBounds      = errors.New("tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")
	ErrLiquidityZero        = errors.New("liquidity must be greater than zero")
	ErrSqrtPriceZero        = errors.New("sqrt price must be greater than zero")
)

const (
	// MinTick is the minimum tick that may be passed to GetSqrtRatioAtTick.
	MinTick = int32(-887272)
	// MaxTick is the maximum tick that may be passed to GetSqrtRatioAtTick.
	MaxTick = int32(887272)
)

var (
	// MinSqrtRatio is the sqrt price at MinTick.
	MinSqrtRatio = math.NewInt(4295128739)
	// MaxSqrtRatio is the sqrt price at MaxTick.
	MaxSqrtRatio = mustIntFromString("1461446703485210103287273052203988822378723970342")

	// Q96 represents 1 in UQ64.96.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	one        = uint256.NewInt(1)
	maxUint256 = uint256.MustFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	// sqrt(1.0001^2^i) for i in 0..19 in UQ128.128, preceded by the
	// 1-bit constant and 1 itself, followed by the rounding mask.
	ratioConstants = [22]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0x100000000000000000000000000000000"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
		uint256.MustFromHex("0xffffffff"),
	}
)

func mustIntFromString(s string) math.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("tickmath: bad integer constant " + s)
	}
	return math.NewIntFromBigInt(n)
}

// GetSqrtRatioAtTick calculates sqrt(1.0001^tick) * 2^96.
func GetSqrtRatioAtTick(tick int32) (math.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return math.Int{}, ErrTickOutOfBounds
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Set(ratioConstants[1])
	}
	for i := 2; i < 21; i++ {
		if absTick&(1<<(i-1)) != 0 {
			ratio.Mul(ratio, ratioConstants[i]).Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Downscale from UQ128.128 to UQ64.96, rounding up.
	rem := new(uint256.Int).And(ratio, ratioConstants[21])
	ratio.Rsh(ratio, 32)
	if rem.Sign() > 0 {
		ratio.Add(ratio, one)
	}

	return math.NewIntFromBigInt(ratio.ToBig()), nil
}

// GetTickAtSqrtRatio calculates the greatest tick whose sqrt ratio is
// at most sqrtPriceX96, by binary search over GetSqrtRatioAtTick.
func GetTickAtSqrtRatio(sqrtPriceX96 math.Int) (int32, error) {
	if sqrtPriceX96.LT(MinSqrtRatio) || sqrtPriceX96.GTE(MaxSqrtRatio) {
		return 0, ErrSqrtPriceOutOfBounds
	}

	low, high := MinTick, MaxTick
	var tick int32
	for low <= high {
		mid := (low + high) / 2
		ratio, err := GetSqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratio.LTE(sqrtPriceX96) {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return tick, nil
}

// AlignTick floors a tick to the spacing grid.
func AlignTick(tick, spacing int32) int32 {
	q := tick / spacing
	if tick%spacing != 0 && tick < 0 {
		q--
	}
	return q * spacing
}

// MinUsableTick returns the lowest tick on the spacing grid.
func MinUsableTick(spacing int32) int32 {
	return (MinTick / spacing) * spacing
}

// MaxUsableTick returns the highest tick on the spacing grid.
func MaxUsableTick(spacing int32) int32 {
	return (MaxTick / spacing) * spacing
}
