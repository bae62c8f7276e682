// Package selector provides different transaction selecting algorithms.
package selector

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyFee    = "fee"
	StrategyOldest = "oldest"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyFee:    feeSelect,
	StrategyOldest: oldestSelect,
}

// Func defines a function that takes the unconfirmed transactions and
// selects howMany of them in an order based on the function's strategy.
// Receiving -1 for howMany must return all the transactions in the
// strategy's ordering. The input slice may be reordered.
type Func func(transactions []*database.Tx, howMany int) []*database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// feeSelect returns the transactions paying the highest fee first. Equal
// fees fall back to the canonical transaction order.
var feeSelect = func(txs []*database.Tx, howMany int) []*database.Tx {
	slices.SortFunc(txs, func(a, b *database.Tx) int {
		if c := cmp.Compare(b.Fee(), a.Fee()); c != 0 {
			return c
		}
		return database.CompareTx(a, b)
	})

	return take(txs, howMany)
}

// oldestSelect returns the transactions in timestamp order so nothing waits
// forever behind better paying transactions.
var oldestSelect = func(txs []*database.Tx, howMany int) []*database.Tx {
	slices.SortFunc(txs, func(a, b *database.Tx) int {
		if c := cmp.Compare(a.TimeStamp, b.TimeStamp); c != 0 {
			return c
		}
		return database.CompareTx(a, b)
	})

	return take(txs, howMany)
}

func take(txs []*database.Tx, howMany int) []*database.Tx {
	if howMany < 0 || howMany > len(txs) {
		howMany = len(txs)
	}

	return txs[:howMany]
}
