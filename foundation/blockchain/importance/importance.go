// Package importance calculates how much weight each account carries when
// harvesting.
package importance

import (
	"math/big"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// Scale is the value of an importance held by an account owning everything.
const Scale = 1_000_000_000

// Importances maps each account to its share of Scale.
type Importances map[address.Address]uint64

// Generator calculates the importance of every account at a height.
type Generator interface {
	Calculate(height primitive.Height, states []*database.AccountState) Importances
}

// PoS gives each account its share of the total balance. The shares are
// integer parts per billion, rounded down.
type PoS struct{}

// Calculate implements the Generator interface.
func (PoS) Calculate(height primitive.Height, states []*database.AccountState) Importances {
	total := new(big.Int)
	for _, as := range states {
		total.Add(total, new(big.Int).SetUint64(uint64(as.Info.Balance)))
	}

	imps := make(Importances, len(states))
	if total.Sign() == 0 {
		return imps
	}

	scale := big.NewInt(Scale)
	for _, as := range states {
		if as.Info.Balance == 0 {
			continue
		}

		share := new(big.Int).SetUint64(uint64(as.Info.Balance))
		share.Mul(share, scale)
		share.Div(share, total)
		imps[as.Address] = share.Uint64()
	}

	return imps
}
