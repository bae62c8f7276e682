package ledger

import "github.com/ardanlabs/poichain/foundation/blockchain/primitive"

// VestingPolicy decides how much of a bucket's unvested balance becomes
// vested when the bucket is carried forward one day. The returned bucket's
// height is ignored; the ledger always advances by primitive.BlocksPerDay.
// Implementations must preserve the bucket's total balance.
type VestingPolicy interface {
	Advance(wb WeightedBalance) WeightedBalance
}

// VestingFunc adapts a function to the VestingPolicy interface.
type VestingFunc func(wb WeightedBalance) WeightedBalance

// Advance implements the VestingPolicy interface.
func (f VestingFunc) Advance(wb WeightedBalance) WeightedBalance {
	return f(wb)
}

// DecayPolicy vests one tenth of the unvested balance per day.
type DecayPolicy struct{}

// Advance implements the VestingPolicy interface.
func (DecayPolicy) Advance(wb WeightedBalance) WeightedBalance {
	moved := wb.Unvested / 10

	return WeightedBalance{
		Height:   wb.Height + primitive.BlocksPerDay,
		Vested:   wb.Vested + moved,
		Unvested: wb.Unvested - moved,
	}
}

// BucketHeight returns the day aligned bucket that height falls into.
func BucketHeight(height primitive.Height) primitive.Height {
	const bpd = primitive.BlocksPerDay
	return (height + bpd - 1) / bpd * bpd
}
