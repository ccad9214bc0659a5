package types

import (
	"time"
)

// Context carries the execution state of a single hook invocation: the
// host ledger's block time, the transaction sender and the flags that
// alter nested behavior. Flags travel with the context rather than
// living in module state, so suppression is visible at every call site.
type Context struct {
	blockTime time.Time
	sender    string
	em        *EventManager

	rebalanceInProgress   bool
	volumeGuardSuppressed bool
}

// NewContext returns a root context for one atomic operation.
func NewContext(blockTime time.Time, sender string) *Context {
	return &Context{
		blockTime: blockTime,
		sender:    sender,
		em:        NewEventManager(),
	}
}

// BlockTime returns the host ledger timestamp for this operation.
func (c *Context) BlockTime() time.Time { return c.blockTime }

// Sender returns the address that initiated the operation.
func (c *Context) Sender() string { return c.sender }

// EventManager returns the shared event stream.
func (c *Context) EventManager() *EventManager { return c.em }

// RebalanceInProgress reports whether this call chain runs inside a
// rebalance. Nested swaps must not re-trigger rebalancing.
func (c *Context) RebalanceInProgress() bool { return c.rebalanceInProgress }

// VolumeGuardSuppressed reports whether the after-swap volume mismatch
// check is disabled for this call chain.
func (c *Context) VolumeGuardSuppressed() bool { return c.volumeGuardSuppressed }

// WithSender returns a copy of the context with a different sender.
// The event manager is shared with the parent.
func (c *Context) WithSender(sender string) *Context {
	cp := *c
	cp.sender = sender
	return &cp
}

// WithRebalanceInProgress returns a copy flagged as running inside a
// rebalance.
func (c *Context) WithRebalanceInProgress() *Context {
	cp := *c
	cp.rebalanceInProgress = true
	return &cp
}

// WithVolumeGuardSuppressed returns a copy with the after-swap volume
// mismatch check disabled.
func (c *Context) WithVolumeGuardSuppressed() *Context {
	cp := *c
	cp.volumeGuardSuppressed = true
	return &cp
}
