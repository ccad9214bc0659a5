package keeper

import (
	"cosmossdk.io/log"

	"github.com/crestdex/hooks/x/hooks/types"
)

// Keeper holds the state of every hook policy. Pool-scoped records live
// in owned tables keyed by pool id; callers of the accessors must treat
// a missing record as ErrPoolNotInitialized, never as a default value.
type Keeper struct {
	engine    types.PoolEngine
	logger    log.Logger
	metrics   *Metrics
	tokens    *TokenLedger
	authority string
	hookAddr  string

	poolKeys   map[types.PoolID]types.PoolKey
	volumeFees map[types.PoolID]*types.VolumeFeePoolInfo
	lockPools  map[types.PoolID]*types.LockingPoolInfo
	locks      map[types.PoolID]map[string]*types.LockingInfo
	rebalPools map[types.PoolID]*types.RebalancerPoolInfo
}

// NewKeeper creates a hooks Keeper bound to a host engine. The
// authority may adjust policy parameters and force rebalances; hookAddr
// identifies this hook as a position owner inside the engine.
func NewKeeper(engine types.PoolEngine, logger log.Logger, authority, hookAddr string) *Keeper {
	return &Keeper{
		engine:     engine,
		logger:     logger.With("module", types.ModuleName),
		metrics:    NewMetrics(),
		tokens:     NewTokenLedger(),
		authority:  authority,
		hookAddr:   hookAddr,
		poolKeys:   make(map[types.PoolID]types.PoolKey),
		volumeFees: make(map[types.PoolID]*types.VolumeFeePoolInfo),
		lockPools:  make(map[types.PoolID]*types.LockingPoolInfo),
		locks:      make(map[types.PoolID]map[string]*types.LockingInfo),
		rebalPools: make(map[types.PoolID]*types.RebalancerPoolInfo),
	}
}

// Authority returns the policy owner address.
func (k *Keeper) Authority() string { return k.authority }

// HookAddress returns the address this hook uses as position owner.
func (k *Keeper) HookAddress() string { return k.hookAddr }

// Tokens exposes the reward/vault token ledger.
func (k *Keeper) Tokens() *TokenLedger { return k.tokens }

// GetPoolKey returns the registered key for a pool id.
func (k *Keeper) GetPoolKey(id types.PoolID) (types.PoolKey, bool) {
	key, ok := k.poolKeys[id]
	return key, ok
}

func (k *Keeper) registerPoolKey(key types.PoolKey) types.PoolID {
	id := key.ID()
	k.poolKeys[id] = key
	return id
}

// GetVolumeFeeInfo returns the volume fee state for a pool.
func (k *Keeper) GetVolumeFeeInfo(id types.PoolID) (*types.VolumeFeePoolInfo, error) {
	info, ok := k.volumeFees[id]
	if !ok {
		return nil, types.ErrPoolNotInitialized.Wrapf("volume fee pool %s", id)
	}
	return info, nil
}

// GetLockingPoolInfo returns the locking engine state for a pool.
func (k *Keeper) GetLockingPoolInfo(id types.PoolID) (*types.LockingPoolInfo, error) {
	info, ok := k.lockPools[id]
	if !ok {
		return nil, types.ErrPoolNotInitialized.Wrapf("locking pool %s", id)
	}
	return info, nil
}

// GetLockingInfo returns one user's lock, or false if absent.
func (k *Keeper) GetLockingInfo(id types.PoolID, owner string) (*types.LockingInfo, bool) {
	userLocks, ok := k.locks[id]
	if !ok {
		return nil, false
	}
	lock, ok := userLocks[owner]
	return lock, ok
}

// GetRebalancerInfo returns the rebalancer state for a pool.
func (k *Keeper) GetRebalancerInfo(id types.PoolID) (*types.RebalancerPoolInfo, error) {
	info, ok := k.rebalPools[id]
	if !ok {
		return nil, types.ErrPoolNotInitialized.Wrapf("rebalancer pool %s", id)
	}
	return info, nil
}

func (k *Keeper) setLockingInfo(id types.PoolID, owner string, lock *types.LockingInfo) {
	userLocks, ok := k.locks[id]
	if !ok {
		userLocks = make(map[string]*types.LockingInfo)
		k.locks[id] = userLocks
	}
	userLocks[owner] = lock
}

func (k *Keeper) deleteLockingInfo(id types.PoolID, owner string) {
	if userLocks, ok := k.locks[id]; ok {
		delete(userLocks, owner)
	}
}

// LocksForPool returns the lock table of one pool. Used by invariants
// and tests; the returned map must not be mutated.
func (k *Keeper) LocksForPool(id types.PoolID) map[string]*types.LockingInfo {
	return k.locks[id]
}
