// Package database maintains the chain's entities: accounts and their state,
// transactions, blocks, and the observers that apply a block's effects to an
// in memory cache of account state.
package database

import (
	"sort"
	"sync"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// Serializer interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(block *Block) error
	GetBlock(height primitive.Height) (*Block, error)
	ForEach() Iterator
	Truncate(height primitive.Height) error
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (*Block, error)
	Done() bool
}

// =============================================================================

// Cache manages the state of every account that has been referenced on the
// chain. The authoritative cache is only replaced wholesale with a validated
// copy; validation always works against a Copy.
type Cache struct {
	mu     sync.RWMutex
	policy ledger.VestingPolicy
	states map[address.Address]*AccountState
}

// NewCache constructs an empty cache whose account ledgers use the vesting
// policy.
func NewCache(policy ledger.VestingPolicy) *Cache {
	if policy == nil {
		policy = ledger.DecayPolicy{}
	}

	return &Cache{
		policy: policy,
		states: make(map[address.Address]*AccountState),
	}
}

// FindStateByAddress returns the state for the address, creating it when the
// address has never been seen.
func (c *Cache) FindStateByAddress(addr address.Address) *AccountState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.findOrCreate(addr)
}

// FindState returns the state for the account, creating it when needed and
// recording the account's public key when it is known.
func (c *Cache) FindState(account Account) *AccountState {
	c.mu.Lock()
	defer c.mu.Unlock()

	as := c.findOrCreate(account.Address)
	if len(as.PublicKey) == 0 && account.HasPublicKey() {
		as.PublicKey = account.PublicKey
	}

	return as
}

// FindForwardedState returns the state whose balance backs blocks forged by
// the account. A remote harvester forges on behalf of its lessor.
func (c *Cache) FindForwardedState(account Account) *AccountState {
	c.mu.Lock()
	defer c.mu.Unlock()

	as := c.findOrCreate(account.Address)
	if link, exists := as.Remote.Current(); exists && as.Remote.IsRemoteHarvester() {
		return c.findOrCreate(link.Address)
	}

	return as
}

// Lookup returns the state for the address without creating it.
func (c *Cache) Lookup(addr address.Address) (*AccountState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	as, exists := c.states[addr]
	return as, exists
}

// Snapshot returns a deep copy of the state for the address. This is safe to
// call while the cache is being replaced.
func (c *Cache) Snapshot(addr address.Address) (*AccountState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	as, exists := c.states[addr]
	if !exists {
		return nil, false
	}

	return as.Copy(), true
}

// Size returns the number of accounts known.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.states)
}

// Contents returns the states held by the cache in address order.
func (c *Cache) Contents() []*AccountState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	states := make([]*AccountState, 0, len(c.states))
	for _, as := range c.states {
		states = append(states, as)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Address < states[j].Address })

	return states
}

// Copy makes an independent deep copy of the cache for speculative use.
func (c *Cache) Copy() *Cache {
	c.mu.RLock()
	defer c.mu.RUnlock()

	states := make(map[address.Address]*AccountState, len(c.states))
	for addr, as := range c.states {
		states[addr] = as.Copy()
	}

	return &Cache{
		policy: c.policy,
		states: states,
	}
}

// Replace promotes the contents of a validated copy into this cache under a
// single write lock. Existing state handles are kept and pointed at the new
// contents; the copy must not be used afterwards.
func (c *Cache) Replace(copy *Cache) {
	copy.mu.RLock()
	defer copy.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[address.Address]*AccountState, len(copy.states))
	for addr, src := range copy.states {
		dst, exists := c.states[addr]
		if !exists {
			states[addr] = src
			continue
		}

		src.shallowCopyTo(dst)
		states[addr] = dst
	}

	c.states = states
}

// findOrCreate must be called with the write lock held.
func (c *Cache) findOrCreate(addr address.Address) *AccountState {
	as, exists := c.states[addr]
	if !exists {
		as = NewAccountState(addr, c.policy)
		c.states[addr] = as
	}

	return as
}
