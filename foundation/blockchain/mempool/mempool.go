// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"sync"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// ErrUnhashable is returned when a transaction cannot be encoded and so has
// no identity.
var ErrUnhashable = errors.New("transaction cannot be hashed")

// Mempool represents a cache of unconfirmed transactions keyed by their
// hash.
type Mempool struct {
	pool     map[signature.Hash]*database.Tx
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default sort strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyFee)
}

// NewWithStrategy constructs a new mempool with specified sort strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[signature.Hash]*database.Tx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx *database.Tx) (int, error) {
	hash := tx.Hash()
	if hash.IsZero() {
		return 0, ErrUnhashable
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[hash] = tx

	return len(mp.pool), nil
}

// Contains reports whether the transaction is in the pool.
func (mp *Mempool) Contains(hash signature.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[hash]
	return exists
}

// Delete removes the transactions from the mempool.
func (mp *Mempool) Delete(hashes ...signature.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, hash := range hashes {
		delete(mp.pool, hash)
	}
}

// PruneExpired removes every transaction whose deadline has passed and
// returns how many were removed.
func (mp *Mempool) PruneExpired(now primitive.TimeInstant) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var n int
	for hash, tx := range mp.pool {
		if tx.Deadline < now {
			delete(mp.pool, hash)
			n++
		}
	}

	return n
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[signature.Hash]*database.Tx)
}

// PickBest uses the configured sort strategy to return the next set
// of transactions for the next block. Pass -1 for all of them.
func (mp *Mempool) PickBest(howMany int) []*database.Tx {
	mp.mu.RLock()
	txs := make([]*database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx)
	}
	mp.mu.RUnlock()

	return mp.selectFn(txs, howMany)
}
