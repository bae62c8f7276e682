package ledger

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// WeightedBalance is the vested and unvested split of a balance for one day
// aligned bucket.
type WeightedBalance struct {
	Height   primitive.Height
	Vested   primitive.Amount
	Unvested primitive.Amount
}

// Balance returns the total balance held in the bucket.
func (wb WeightedBalance) Balance() primitive.Amount {
	return wb.Vested + wb.Unvested
}

// IsZero reports whether both sides of the bucket are empty.
func (wb WeightedBalance) IsZero() bool {
	return wb.Vested == 0 && wb.Unvested == 0
}

// =============================================================================

type opKind int

const (
	opReceive opKind = iota
	opSend
	opFullyVested
)

var opNames = map[opKind]string{
	opReceive:     "receive",
	opSend:        "send",
	opFullyVested: "fully-vested",
}

// journalEntry records enough of a mutation to restore the buckets exactly
// when it is undone.
type journalEntry struct {
	kind          opKind
	height        primitive.Height
	amount        primitive.Amount
	index         int
	bucketsBefore int
	prior         WeightedBalance
}

// WeightedBalances tracks an account's balance as day aligned vesting
// buckets. Every mutation is mirrored into the historical index. Mutations
// must be applied at non-decreasing heights and undone in reverse order.
type WeightedBalances struct {
	policy     VestingPolicy
	balances   []WeightedBalance
	journal    []journalEntry
	historical *HistoricalBalances
}

// NewWeightedBalances constructs an empty ledger using the vesting policy.
func NewWeightedBalances(policy VestingPolicy) *WeightedBalances {
	if policy == nil {
		policy = DecayPolicy{}
	}

	return &WeightedBalances{
		policy:     policy,
		historical: NewHistoricalBalances(),
	}
}

// AddFullyVested credits an amount that is vested immediately. This is used
// for the nemesis allocation.
func (wb *WeightedBalances) AddFullyVested(height primitive.Height, amount primitive.Amount) error {
	if err := wb.historical.Add(height, amount); err != nil {
		return err
	}

	err := wb.mutate(opFullyVested, height, amount, func(b *WeightedBalance) error {
		b.Vested += amount
		return nil
	})
	if err != nil {
		return rollback(err, wb.historical.Subtract, height, amount)
	}

	return nil
}

// AddReceive credits an unvested amount at the specified height.
func (wb *WeightedBalances) AddReceive(height primitive.Height, amount primitive.Amount) error {
	if err := wb.historical.Add(height, amount); err != nil {
		return err
	}

	err := wb.mutate(opReceive, height, amount, func(b *WeightedBalance) error {
		b.Unvested += amount
		return nil
	})
	if err != nil {
		return rollback(err, wb.historical.Subtract, height, amount)
	}

	return nil
}

// AddSend debits an amount at the specified height, taking it from the
// vested and unvested sides in proportion to their sizes.
func (wb *WeightedBalances) AddSend(height primitive.Height, amount primitive.Amount) error {
	if len(wb.balances) == 0 || BucketHeight(height) < wb.balances[0].Height {
		return fmt.Errorf("send %d at height %d from empty account: %w", amount, height, ErrInvalidOperation)
	}

	if err := wb.historical.Subtract(height, amount); err != nil {
		return err
	}

	err := wb.mutate(opSend, height, amount, func(b *WeightedBalance) error {
		total := b.Balance()
		if amount > total {
			return fmt.Errorf("send %d exceeds bucket balance %d: %w", amount, total, ErrInvalidOperation)
		}

		fromVested := mulDiv(amount, b.Vested, total)
		b.Vested -= fromVested
		b.Unvested -= amount - fromVested
		return nil
	})
	if err != nil {
		return rollback(err, wb.historical.Add, height, amount)
	}

	return nil
}

// UndoReceive reverts the most recent AddReceive.
func (wb *WeightedBalances) UndoReceive(height primitive.Height, amount primitive.Amount) error {
	return wb.undo(opReceive, height, amount)
}

// UndoSend reverts the most recent AddSend.
func (wb *WeightedBalances) UndoSend(height primitive.Height, amount primitive.Amount) error {
	return wb.undo(opSend, height, amount)
}

// Vested returns the vested balance as of the specified height.
func (wb *WeightedBalances) Vested(height primitive.Height) primitive.Amount {
	return wb.at(height).Vested
}

// Unvested returns the unvested balance as of the specified height.
func (wb *WeightedBalances) Unvested(height primitive.Height) primitive.Amount {
	return wb.at(height).Unvested
}

// Balance returns the total balance as of height from the historical index.
func (wb *WeightedBalances) Balance(tip primitive.Height, height primitive.Height) (primitive.Amount, error) {
	return wb.historical.Balance(tip, height)
}

// Historical returns the historical index the buckets are mirrored into.
func (wb *WeightedBalances) Historical() *HistoricalBalances {
	return wb.historical
}

// Buckets returns a copy of the stored buckets.
func (wb *WeightedBalances) Buckets() []WeightedBalance {
	return append([]WeightedBalance(nil), wb.balances...)
}

// Size returns the number of stored buckets.
func (wb *WeightedBalances) Size() int {
	return len(wb.balances)
}

// Copy returns an independent deep copy of the ledger.
func (wb *WeightedBalances) Copy() *WeightedBalances {
	return &WeightedBalances{
		policy:     wb.policy,
		balances:   append([]WeightedBalance(nil), wb.balances...),
		journal:    append([]journalEntry(nil), wb.journal...),
		historical: wb.historical.Copy(),
	}
}

// ShallowCopyTo replaces the contents of target with references to this
// ledger's contents. The source must not be mutated afterwards.
func (wb *WeightedBalances) ShallowCopyTo(target *WeightedBalances) {
	target.policy = wb.policy
	target.balances = wb.balances
	target.journal = wb.journal
	target.historical = wb.historical
}

// =============================================================================

// rollback reverts the historical mirror of a rejected bucket mutation. The
// inverse of an apply at the same height cannot fail, so an error here means
// the index is corrupt and is returned alongside the cause.
func rollback(cause error, inverse func(primitive.Height, primitive.Amount) error, height primitive.Height, amount primitive.Amount) error {
	if err := inverse(height, amount); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

// search returns the index of the bucket at height when found, otherwise the
// insertion point that keeps the list ordered.
func (wb *WeightedBalances) search(height primitive.Height) (int, bool) {
	idx := sort.Search(len(wb.balances), func(i int) bool {
		return wb.balances[i].Height >= height
	})

	return idx, idx < len(wb.balances) && wb.balances[idx].Height == height
}

// advance carries a bucket forward one day using the vesting policy.
func (wb *WeightedBalances) advance(b WeightedBalance) WeightedBalance {
	next := wb.policy.Advance(b)
	next.Height = b.Height + primitive.BlocksPerDay
	return next
}

// at computes the bucket for height without storing any carried buckets.
func (wb *WeightedBalances) at(height primitive.Height) WeightedBalance {
	bucket := BucketHeight(height)

	idx, found := wb.search(bucket)
	switch {
	case found:
		return wb.balances[idx]
	case idx == 0:
		return WeightedBalance{Height: bucket}
	}

	b := wb.balances[idx-1]
	for b.Height < bucket {
		b = wb.advance(b)
	}

	return b
}

// mutate locates or creates the bucket for height, back filling missing days
// from the newest bucket, and applies fn to it. Only the newest bucket may be
// mutated so the buckets never disagree with the historical index.
func (wb *WeightedBalances) mutate(kind opKind, height primitive.Height, amount primitive.Amount, fn func(b *WeightedBalance) error) error {
	bucket := BucketHeight(height)
	idx, found := wb.search(bucket)

	if idx < len(wb.balances)-1 || (!found && idx < len(wb.balances)) {
		return fmt.Errorf("%s at height %d precedes newest bucket %d: %w", opNames[kind], height, wb.balances[len(wb.balances)-1].Height, ErrInvalidOperation)
	}

	entry := journalEntry{
		kind:          kind,
		height:        height,
		amount:        amount,
		index:         idx,
		bucketsBefore: len(wb.balances),
	}

	var target WeightedBalance
	switch {
	case found:
		entry.prior = wb.balances[idx]
		target = wb.balances[idx]

	case idx == 0:
		target = WeightedBalance{Height: bucket}

	default:
		target = wb.balances[idx-1]
		for target.Height < bucket {
			target = wb.advance(target)
		}
	}

	if err := fn(&target); err != nil {
		return err
	}

	switch {
	case found:
		wb.balances[idx] = target

	case idx == 0:
		wb.balances = append(wb.balances, target)

	default:

		// Store every carried day up to the bucket so later undo operations
		// can truncate back to the original length.
		carry := wb.balances[idx-1]
		for carry = wb.advance(carry); carry.Height < bucket; carry = wb.advance(carry) {
			wb.balances = append(wb.balances, carry)
		}
		wb.balances = append(wb.balances, target)
		entry.index = len(wb.balances) - 1
	}

	wb.journal = append(wb.journal, entry)
	wb.pruneJournal(height)

	return nil
}

// undo reverts the newest journal entry, which must match the request.
func (wb *WeightedBalances) undo(kind opKind, height primitive.Height, amount primitive.Amount) error {
	if len(wb.journal) == 0 {
		return fmt.Errorf("undo %s %d at height %d with nothing applied: %w", opNames[kind], amount, height, ErrInvalidOperation)
	}

	top := wb.journal[len(wb.journal)-1]
	if top.kind != kind || top.height != height || top.amount != amount {
		return fmt.Errorf("undo %s %d at height %d does not match last %s %d at height %d: %w",
			opNames[kind], amount, height, opNames[top.kind], top.amount, top.height, ErrInvalidOperation)
	}

	// Mirror the inverse into the historical index first.
	var err error
	switch kind {
	case opReceive:
		err = wb.historical.Subtract(height, amount)
	case opSend:
		err = wb.historical.Add(height, amount)
	}
	if err != nil {
		return err
	}

	wb.journal = wb.journal[:len(wb.journal)-1]

	// A collapsed bucket may have shortened the list below its length at
	// the time of the entry.
	for len(wb.balances) < top.bucketsBefore {
		wb.balances = append(wb.balances, WeightedBalance{})
	}
	wb.balances = wb.balances[:top.bucketsBefore]

	if top.index >= top.bucketsBefore {
		return nil
	}
	wb.balances[top.index] = top.prior

	if top.prior.IsZero() {
		wb.collapse(top.index)
	}

	return nil
}

// collapse removes a zero value bucket and rebuilds it from the historical
// index when carrying the previous bucket forward would not reproduce the
// account's balance.
func (wb *WeightedBalances) collapse(index int) {
	removed := wb.balances[index]
	wb.balances = append(wb.balances[:index], wb.balances[index+1:]...)

	total := wb.historical.Latest()

	var carried primitive.Amount
	if index > 0 {
		b := wb.balances[index-1]
		for b.Height < removed.Height {
			b = wb.advance(b)
		}
		carried = b.Balance()
	}

	if carried == total {
		return
	}

	rebuilt := WeightedBalance{Height: removed.Height, Unvested: total}
	wb.balances = append(wb.balances, WeightedBalance{})
	copy(wb.balances[index+1:], wb.balances[index:])
	wb.balances[index] = rebuilt
}

// pruneJournal drops entries that are too old to ever be undone.
func (wb *WeightedBalances) pruneJournal(height primitive.Height) {
	if height <= primitive.MaxHistory {
		return
	}
	cutoff := height - primitive.MaxHistory

	n := 0
	for n < len(wb.journal) && wb.journal[n].height < cutoff {
		n++
	}

	if n > 0 {
		wb.journal = append([]journalEntry(nil), wb.journal[n:]...)
	}
}

// mulDiv returns a*b/c using 128 bit intermediate precision. The caller
// guarantees a <= c so the quotient fits.
func mulDiv(a, b, c primitive.Amount) primitive.Amount {
	if c == 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return primitive.Amount(q)
}
