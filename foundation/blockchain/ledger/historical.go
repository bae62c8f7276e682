// Package ledger maintains the per-account vesting balance buckets and the
// bounded historical balance index they are mirrored into.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// ErrInvalidOperation is returned for calls that violate the ledger's
// contract, such as undoing out of order or querying outside the retained
// history. These indicate a caller bug, not bad input.
var ErrInvalidOperation = errors.New("invalid ledger operation")

// HistoricalBalance is the total balance of an account as of a height.
type HistoricalBalance struct {
	Height  primitive.Height
	Balance primitive.Amount
}

// HistoricalBalances is an ascending by height list of balance snapshots
// bounded to primitive.MaxHistory heights behind the latest mutation.
type HistoricalBalances struct {
	balances []HistoricalBalance
}

// NewHistoricalBalances constructs an empty index.
func NewHistoricalBalances() *HistoricalBalances {
	return &HistoricalBalances{}
}

// Add credits the amount at the specified height.
func (hb *HistoricalBalances) Add(height primitive.Height, amount primitive.Amount) error {
	return hb.apply(height, func(balance primitive.Amount) (primitive.Amount, error) {
		return balance.CheckedAdd(amount)
	})
}

// Subtract debits the amount at the specified height.
func (hb *HistoricalBalances) Subtract(height primitive.Height, amount primitive.Amount) error {
	return hb.apply(height, func(balance primitive.Amount) (primitive.Amount, error) {
		return balance.Subtract(amount)
	})
}

// Balance returns the balance as of height given the current chain tip.
// Heights further than primitive.MaxHistory behind the tip, or beyond it,
// cannot be answered.
func (hb *HistoricalBalances) Balance(tip primitive.Height, height primitive.Height) (primitive.Amount, error) {
	if height < primitive.NemesisHeight || (tip > height && tip-height > primitive.MaxHistory) {
		return 0, fmt.Errorf("height %d outside history of tip %d: %w", height, tip, ErrInvalidOperation)
	}

	if height > tip {
		return 0, fmt.Errorf("height %d beyond tip %d: %w", height, tip, ErrInvalidOperation)
	}

	return hb.balanceAt(height), nil
}

// Latest returns the most recent balance snapshot value.
func (hb *HistoricalBalances) Latest() primitive.Amount {
	if len(hb.balances) == 0 {
		return 0
	}

	return hb.balances[len(hb.balances)-1].Balance
}

// Len returns the number of snapshots retained.
func (hb *HistoricalBalances) Len() int {
	return len(hb.balances)
}

// Snapshots returns a copy of the retained snapshots.
func (hb *HistoricalBalances) Snapshots() []HistoricalBalance {
	return append([]HistoricalBalance(nil), hb.balances...)
}

// Copy returns an independent deep copy of the index.
func (hb *HistoricalBalances) Copy() *HistoricalBalances {
	return &HistoricalBalances{
		balances: hb.Snapshots(),
	}
}

// =============================================================================

// search returns the index of the snapshot at height when found, otherwise
// the insertion point that keeps the list ordered.
func (hb *HistoricalBalances) search(height primitive.Height) (int, bool) {
	idx := sort.Search(len(hb.balances), func(i int) bool {
		return hb.balances[i].Height >= height
	})

	return idx, idx < len(hb.balances) && hb.balances[idx].Height == height
}

// balanceAt returns the snapshot at or before height without range checks.
func (hb *HistoricalBalances) balanceAt(height primitive.Height) primitive.Amount {
	idx, found := hb.search(height)
	switch {
	case found:
		return hb.balances[idx].Balance
	case idx == 0:
		return 0
	}

	return hb.balances[idx-1].Balance
}

// apply locates or inserts the snapshot at height and applies fn to it and
// every later snapshot. Nothing is changed when fn fails for any snapshot.
func (hb *HistoricalBalances) apply(height primitive.Height, fn func(primitive.Amount) (primitive.Amount, error)) error {
	if height < primitive.NemesisHeight {
		return fmt.Errorf("height %d: %w", height, ErrInvalidOperation)
	}

	idx, found := hb.search(height)

	start := hb.balanceAt(height)
	updated := make([]primitive.Amount, 0, len(hb.balances)-idx+1)

	v, err := fn(start)
	if err != nil {
		return fmt.Errorf("height %d: %s: %w", height, err, ErrInvalidOperation)
	}
	updated = append(updated, v)

	first := idx
	if found {
		first++
	}
	for i := first; i < len(hb.balances); i++ {
		v, err := fn(hb.balances[i].Balance)
		if err != nil {
			return fmt.Errorf("height %d: %s: %w", hb.balances[i].Height, err, ErrInvalidOperation)
		}
		updated = append(updated, v)
	}

	if !found {
		hb.balances = append(hb.balances, HistoricalBalance{})
		copy(hb.balances[idx+1:], hb.balances[idx:])
		hb.balances[idx] = HistoricalBalance{Height: height}
	}

	for i, v := range updated {
		hb.balances[idx+i].Balance = v
	}

	hb.trim(height)
	return nil
}

// trim drops snapshots older than primitive.MaxHistory behind height. A
// boundary snapshot is synthesized so the oldest retained entry still holds
// the running balance at the cutoff.
func (hb *HistoricalBalances) trim(height primitive.Height) {
	if height <= primitive.MaxHistory {
		return
	}
	cutoff := height - primitive.MaxHistory

	if len(hb.balances) == 0 || hb.balances[0].Height >= cutoff {
		return
	}

	idx, found := hb.search(cutoff)
	if found {
		hb.balances = append([]HistoricalBalance(nil), hb.balances[idx:]...)
		return
	}

	boundary := HistoricalBalance{
		Height:  cutoff,
		Balance: hb.balances[idx-1].Balance,
	}

	hb.balances = append([]HistoricalBalance{boundary}, hb.balances[idx:]...)
}
