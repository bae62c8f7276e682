// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// ErrMissingNemesisSigner is returned when the genesis file does not name the
// account that signs the nemesis block.
var ErrMissingNemesisSigner = errors.New("genesis: missing nemesis signer")

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time                  `json:"date"`
	ChainID       uint16                     `json:"chain_id"`       // The chain id represents an unique id for this running instance.
	NemesisSigner signature.PublicKey        `json:"nemesis_signer"` // The public key recorded as the signer of the nemesis block.
	MaxChainSize  int                        `json:"max_chain_size"` // The maximum number of blocks accepted in one candidate chain.
	Balances      map[address.Address]uint64 `json:"balances"`       // Fully vested units credited at the nemesis height.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values are usable.
func (g Genesis) Validate() error {
	if len(g.NemesisSigner) == 0 {
		return ErrMissingNemesisSigner
	}

	for addr := range g.Balances {
		if err := addr.Validate(); err != nil {
			return fmt.Errorf("genesis: balance %s: %w", addr, err)
		}
	}

	return nil
}

// TimeStamp returns the network time of the nemesis block.
func (g Genesis) TimeStamp() primitive.TimeInstant {
	return primitive.FromTime(g.Date)
}

// NemesisBlock constructs the first block of the chain. The block carries no
// transactions; the initial balances are applied directly to account state.
func (g Genesis) NemesisBlock() *database.Block {
	signer := database.NewAccountFromPublicKey(g.NemesisSigner)
	return database.NewNemesisBlock(signer, g.TimeStamp(), nil)
}

// Apply credits the initial balances to the cache as fully vested funds.
func (g Genesis) Apply(states *database.Cache) error {
	for addr, units := range g.Balances {
		amount := primitive.FromUnits(units)

		as := states.FindStateByAddress(addr)
		as.Info.Balance = as.Info.Balance.Add(amount)
		if err := as.Weighted.AddFullyVested(primitive.NemesisHeight, amount); err != nil {
			return fmt.Errorf("genesis: fund %s: %w", addr, err)
		}
	}

	return nil
}
