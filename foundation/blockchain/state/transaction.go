package state

import (
	"errors"
	"math/big"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

// ErrKnownTransaction is returned when the transaction is already waiting in
// the mempool or has been confirmed.
var ErrKnownTransaction = errors.New("transaction already known")

// UpsertTransaction accepts a transaction from a wallet or a peer for
// inclusion. The transaction must be valid on top of the current tip.
func (s *State) UpsertTransaction(tx *database.Tx) error {
	hash := tx.Hash()
	if s.mempool.Contains(hash) {
		return ErrKnownTransaction
	}

	if result := s.checkTransaction(tx); result != validation.Success {
		if result == validation.Neutral {
			return ErrKnownTransaction
		}
		return &ValidationError{Result: result}
	}

	if _, err := s.mempool.Upsert(tx); err != nil {
		return err
	}

	s.evHandler("state: UpsertTransaction: tx[%s]: added", hash)

	if s.Worker != nil {
		s.Worker.SignalShareTx(tx)
		s.Worker.SignalHarvest()
	}

	return nil
}

// checkTransaction validates the transaction inside a probe block on top of
// the tip. The forger checks are skipped since nobody is harvesting it.
func (s *State) checkTransaction(tx *database.Tx) validation.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent := s.latest()

	block, err := s.probeBlock(parent, s.probe, nil, tx)
	if err != nil {
		s.evHandler("state: checkTransaction: probe: ERROR: %s", err)
		return validation.FailureUnknown
	}

	v := s.newValidator(s.hashes, anyForger{})
	return v.IsValid(parent, []*database.Block{block}, s.states.Copy())
}

// probeBlock builds and signs a block holding the transactions on top of
// the parent.
func (s *State) probeBlock(parent *database.Block, forger database.Account, txs []*database.Tx, extra ...*database.Tx) (*database.Block, error) {
	ts := max(s.currentTime(), parent.TimeStamp.AddSeconds(1))

	block := database.NewBlock(forger, parent, ts)
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	for _, tx := range extra {
		block.AddTransaction(tx)
	}

	if err := block.Sign(); err != nil {
		return nil, err
	}

	return block, nil
}

// =============================================================================

// anyForger is a scorer that accepts every forger.
type anyForger struct{}

func (anyForger) CalculateHit(*database.Block) *big.Int { return new(big.Int) }

func (anyForger) CalculateTarget(*database.Block, *database.Block, *database.Cache) *big.Int {
	return big.NewInt(1)
}
