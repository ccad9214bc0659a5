package types

import (
	"cosmossdk.io/errors"
)

// Hooks module sentinel errors
var (
	ErrPoolNotInitialized     = errors.Register(ModuleName, 1, "pool not initialized")
	ErrPoolAlreadyInitialized = errors.Register(ModuleName, 2, "pool already initialized")
	ErrInvalidTickSpacing     = errors.Register(ModuleName, 3, "unsupported tick spacing")
	ErrExpired                = errors.Register(ModuleName, 4, "deadline expired")
	ErrExpiredLockWindow      = errors.Register(ModuleName, 5, "lock window already expired")
	ErrShorteningLockedUntil  = errors.Register(ModuleName, 6, "lock window can only be extended")
	ErrBelowMinimumLiquidity  = errors.Register(ModuleName, 7, "initial deposit below minimum liquidity")
	ErrTooMuchSlippage        = errors.Register(ModuleName, 8, "delivered amounts below caller minimums")
	ErrSwapAmountMismatch     = errors.Register(ModuleName, 9, "executed swap amount below specified amount")
	ErrInsufficientShares     = errors.Register(ModuleName, 10, "insufficient liquidity shares")
	ErrUnauthorized           = errors.Register(ModuleName, 11, "unauthorized")
	ErrInvalidAmount          = errors.Register(ModuleName, 12, "invalid amount")
	ErrInvalidParams          = errors.Register(ModuleName, 13, "invalid policy parameters")
	ErrOverflow               = errors.Register(ModuleName, 14, "arithmetic overflow")
	ErrInvalidInitPayload     = errors.Register(ModuleName, 15, "malformed initialization payload")
	ErrInvalidPoolKey         = errors.Register(ModuleName, 16, "invalid pool key")
)
