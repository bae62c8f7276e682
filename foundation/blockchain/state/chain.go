package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/scorer"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
	"github.com/ardanlabs/poichain/foundation/blockchain/validator"
)

// Set of errors returned when a candidate chain cannot be processed.
var (
	ErrNoBlocks         = errors.New("no blocks provided")
	ErrUnknownParent    = errors.New("parent block is not known")
	ErrRewriteLimit     = errors.New("chain rewrites too many blocks")
	ErrNotBetter        = errors.New("chain score is not better than the local chain")
	ErrAlreadyProcessed = errors.New("chain is already part of the local chain")
)

// recentSize is how many blocks are kept in memory to serve reorganizations
// and the difficulty window.
const recentSize = primitive.RewriteLimit + primitive.BlocksForDifficulty + 1

// ValidationError is returned when the validator rejects a chain or transaction.
type ValidationError struct {
	Result validation.Result
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", ve.Result)
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationError returns a copy of the ValidationError pointer.
func GetValidationError(err error) *ValidationError {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve
}

// =============================================================================

// ProcessChain validates a chain of blocks received from a peer or forged
// locally and, when it is better than what the node has, makes it part of
// the local chain. The chain's parent may be up to RewriteLimit blocks
// behind the tip, in which case the blocks after the parent are undone.
func (s *State) ProcessChain(blocks []*database.Block) error {
	if len(blocks) == 0 {
		return ErrNoBlocks
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.processChain(blocks, s.scorer)
}

// processChain must be called with the write lock held.
func (s *State) processChain(blocks []*database.Block, scr validator.Scorer) error {
	first := blocks[0]
	tip := s.latest()

	s.evHandler("state: ProcessChain: started: tip[%d]: first[%d]: blocks[%d]", tip.Height, first.Height, len(blocks))
	defer s.evHandler("state: ProcessChain: completed")

	parentHeight, err := first.Height.Prev()
	if err != nil {
		return fmt.Errorf("%s: %w", first, err)
	}

	if parentHeight > tip.Height {
		return fmt.Errorf("tip[%d]: parent[%d]: %w", tip.Height, parentHeight, ErrUnknownParent)
	}

	if uint64(tip.Height-parentHeight) > primitive.RewriteLimit {
		return fmt.Errorf("tip[%d]: parent[%d]: %w", tip.Height, parentHeight, ErrRewriteLimit)
	}

	parent, exists := s.blockAt(parentHeight)
	if !exists {
		return fmt.Errorf("parent[%d]: %w", parentHeight, ErrUnknownParent)
	}

	replaced := s.blocksAfter(parentHeight)
	if len(replaced) >= len(blocks) && sameBlocks(replaced[:len(blocks)], blocks) {
		return ErrAlreadyProcessed
	}

	// Undo the blocks being replaced on a copy of the account states.
	states := s.states.Copy()
	commit := database.NewCommitObserver(states)
	for i := len(replaced) - 1; i >= 0; i-- {
		s.evHandler("state: ProcessChain: undo: %s", replaced[i])
		if err := replaced[i].Undo(commit); err != nil {
			return fmt.Errorf("undo: %w", err)
		}
	}

	// The difficulty is derived from the local history, never trusted from
	// the sender.
	window := s.windowAt(parentHeight)
	for _, block := range blocks {
		block.SetDifficulty(window.Next(block.Height))
		window.Push(scorer.Sample{Difficulty: block.Difficulty, TimeStamp: block.TimeStamp})
	}

	// Transactions in the undone blocks may legitimately appear again.
	hashes := excludingHashes{
		lookup:   s.hashes,
		excluded: make(map[signature.Hash]struct{}),
	}
	for _, block := range replaced {
		for _, tx := range block.Transactions {
			for _, hash := range tx.Identities() {
				hashes.excluded[hash] = struct{}{}
			}
		}
	}

	v := s.newValidator(hashes, scr)
	if result := v.IsValid(parent, blocks, states); result != validation.Success {
		return &ValidationError{Result: result}
	}

	if len(replaced) > 0 {
		local := scorer.ChainScore(replaced)
		remote := scorer.ChainScore(blocks)
		if remote.Cmp(local) <= 0 {
			s.evHandler("state: ProcessChain: score: local[%s]: remote[%s]: keep local", local, remote)
			return ErrNotBetter
		}
	}

	s.evHandler("state: ProcessChain: promote: replaced[%d]", len(replaced))
	s.states.Replace(states)

	return s.commit(parentHeight, replaced, blocks)
}

// commit persists the promoted chain and updates everything derived from
// it.
func (s *State) commit(parentHeight primitive.Height, replaced []*database.Block, blocks []*database.Block) error {
	if err := s.storage.Truncate(parentHeight); err != nil {
		return fmt.Errorf("truncate storage: %w", err)
	}

	s.truncateRecent(parentHeight)
	for _, block := range replaced {
		for _, tx := range block.Transactions {
			s.hashes.Remove(tx.Identities()...)
		}
	}

	for _, block := range blocks {
		s.evHandler("state: ProcessChain: write: %s", block)
		if err := s.storage.Write(block); err != nil {
			return fmt.Errorf("write storage: %w", err)
		}

		s.commitHashes(block)
		s.pushRecent(block)
	}

	// Transactions of undone blocks that did not make it into the new chain
	// go back into the mempool.
	for _, block := range replaced {
		for _, tx := range block.Transactions {
			if !s.hashes.Contains(tx.Hash()) {
				s.mempool.Upsert(tx)
			}
		}
	}

	s.mempool.PruneExpired(s.latest().TimeStamp)

	return nil
}

// commitHashes records the block's transactions as confirmed and removes
// them from the mempool.
func (s *State) commitHashes(block *database.Block) {
	for _, tx := range block.Transactions {
		ids := tx.Identities()
		for _, hash := range ids {
			s.hashes.Put(hash, block.Height)
		}
		s.mempool.Delete(ids...)
	}
}

// =============================================================================

// latest returns the tip of the chain.
func (s *State) latest() *database.Block {
	return s.recent[len(s.recent)-1]
}

// pushRecent makes the block the new tip.
func (s *State) pushRecent(block *database.Block) {
	s.recent = append(s.recent, block)
	if len(s.recent) > recentSize {
		s.recent = append([]*database.Block(nil), s.recent[len(s.recent)-recentSize:]...)
	}
}

// truncateRecent drops every block above the height.
func (s *State) truncateRecent(height primitive.Height) {
	for len(s.recent) > 0 && s.latest().Height > height {
		s.recent = s.recent[:len(s.recent)-1]
	}
}

// blockAt returns the in memory block at the height.
func (s *State) blockAt(height primitive.Height) (*database.Block, bool) {
	first := s.recent[0].Height
	if height < first || height > s.latest().Height {
		return nil, false
	}

	return s.recent[height-first], true
}

// blocksAfter returns the in memory blocks above the height.
func (s *State) blocksAfter(height primitive.Height) []*database.Block {
	var blocks []*database.Block
	for _, block := range s.recent {
		if block.Height > height {
			blocks = append(blocks, block)
		}
	}

	return blocks
}

// windowAt returns the difficulty samples of the blocks up to and including
// the height.
func (s *State) windowAt(height primitive.Height) *scorer.DifficultyWindow {
	var samples []scorer.Sample
	for _, block := range s.recent {
		if block.Height > height {
			break
		}
		samples = append(samples, scorer.Sample{Difficulty: block.Difficulty, TimeStamp: block.TimeStamp})
	}

	return scorer.NewDifficultyWindow(samples...)
}

func sameBlocks(a []*database.Block, b []*database.Block) bool {
	for i := range a {
		if a[i].Hash() != b[i].Hash() {
			return false
		}
	}

	return true
}

// =============================================================================

// excludingHashes is a replay lookup that forgets the hashes of blocks being
// undone.
type excludingHashes struct {
	lookup   validator.HashLookup
	excluded map[signature.Hash]struct{}
}

// Contains implements the validator.HashLookup interface.
func (eh excludingHashes) Contains(hash signature.Hash) bool {
	if _, exists := eh.excluded[hash]; exists {
		return false
	}

	return eh.lookup.Contains(hash)
}
