package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/scorer"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

// MaxTransactionsPerBlock is the most transactions a harvested block carries.
const MaxTransactionsPerBlock = 120

// Set of errors returned when a block cannot be harvested.
var (
	ErrNoHarvester = errors.New("node has no harvesting account")
	ErrTooEarly    = errors.New("tip is not older than the current time")
	ErrNotEligible = errors.New("harvester hit is not below the target")
)

// HarvestBlock attempts to forge the next block with the node's harvesting
// account. The best mempool transactions that still validate are included
// and the block becomes the new tip.
func (s *State) HarvestBlock() (*database.Block, error) {
	if s.harvester.KeyPair == nil || !s.harvester.KeyPair.HasPrivateKey() {
		return nil, ErrNoHarvester
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.latest()
	ts := s.currentTime()
	if ts <= parent.TimeStamp {
		return nil, ErrTooEarly
	}

	scr := s.scorer
	if scr == nil {
		scr = scorer.BlockScorer{}
	}

	block := database.NewBlock(s.harvester, parent, ts)
	block.SetDifficulty(s.windowAt(parent.Height).Next(block.Height))

	hit := scr.CalculateHit(block)
	target := scr.CalculateTarget(parent, block, s.states.Copy())
	if hit.Cmp(target) >= 0 {
		return nil, ErrNotEligible
	}

	s.evHandler("state: HarvestBlock: eligible: %s", block)

	var txs []*database.Tx
	for _, tx := range s.mempool.PickBest(-1) {
		if len(txs) == MaxTransactionsPerBlock {
			break
		}

		if result := s.checkInBlock(parent, txs, tx); result != validation.Success {
			s.evHandler("state: HarvestBlock: tx[%s]: skip: %s", tx.Hash(), result)
			continue
		}
		txs = append(txs, tx)
	}

	for _, tx := range txs {
		block.AddTransaction(tx)
	}

	if err := block.Sign(); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	if err := s.processChain([]*database.Block{block}, scr); err != nil {
		return nil, err
	}

	s.evHandler("state: HarvestBlock: harvested: %s: txs[%d]", block, len(txs))

	return block, nil
}

// checkInBlock reports whether the transaction validates after the already
// selected ones. It must be called with the lock held.
func (s *State) checkInBlock(parent *database.Block, selected []*database.Tx, tx *database.Tx) validation.Result {
	block, err := s.probeBlock(parent, s.harvester, selected, tx)
	if err != nil {
		return validation.FailureUnknown
	}

	v := s.newValidator(s.hashes, anyForger{})
	return v.IsValid(parent, []*database.Block{block}, s.states.Copy())
}
