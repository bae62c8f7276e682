package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/poichain/foundation/blockchain/importance"
	"github.com/ardanlabs/poichain/foundation/blockchain/peer"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// ErrAccountNotFound is returned when the chain has never seen the account.
var ErrAccountNotFound = errors.New("account not found")

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = primitive.Height(^uint64(0) >> 1)

// =============================================================================

// Balance represents an account's balance as of a height.
type Balance struct {
	Height   primitive.Height `json:"height"`
	Balance  primitive.Amount `json:"balance"`
	Vested   primitive.Amount `json:"vested"`
	Unvested primitive.Amount `json:"unvested"`
}

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer provides the ability to add a new peer.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// RemoveKnownPeer removes a peer that could not be reached.
func (s *State) RemoveKnownPeer(peer peer.Peer) {
	s.knownPeers.Remove(peer)
}

// LatestBlock returns the current tip of the chain.
func (s *State) LatestBlock() *database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest()
}

// QueryStatus returns what this node reports to its peers.
func (s *State) QueryStatus() peer.PeerStatus {
	latest := s.LatestBlock()

	return peer.PeerStatus{
		LatestBlockHash:   latest.Hash().String(),
		LatestBlockHeight: latest.Height.Uint64(),
		KnownPeers:        s.RetrieveKnownPeers(),
	}
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryMempool returns the unconfirmed transactions in selection order.
func (s *State) QueryMempool() []*database.Tx {
	return s.mempool.PickBest(-1)
}

// QueryAccount returns a copy of the account state.
func (s *State) QueryAccount(addr address.Address) (*database.AccountState, error) {
	as, exists := s.states.Snapshot(addr)
	if !exists {
		return nil, fmt.Errorf("%s: %w", addr, ErrAccountNotFound)
	}

	return as, nil
}

// QueryHistoricalBalance returns the balance of the account as of the
// height. Heights older than MaxHistory blocks behind the tip are not
// retained.
func (s *State) QueryHistoricalBalance(addr address.Address, height primitive.Height) (Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tip := s.latest().Height
	if height == QueryLatest {
		height = tip
	}

	as, exists := s.states.Lookup(addr)
	if !exists {
		return Balance{}, fmt.Errorf("%s: %w", addr, ErrAccountNotFound)
	}

	amount, err := as.Weighted.Balance(tip, height)
	if err != nil {
		return Balance{}, err
	}

	bal := Balance{
		Height:   height,
		Balance:  amount,
		Vested:   as.Weighted.Vested(height),
		Unvested: as.Weighted.Unvested(height),
	}

	return bal, nil
}

// QueryBlocksByHeight returns the set of blocks between the heights. This
// function reads the blockchain from storage.
func (s *State) QueryBlocksByHeight(from primitive.Height, to primitive.Height) ([]*database.Block, error) {
	tip := s.LatestBlock().Height
	if from == QueryLatest {
		from = tip
	}
	if to == QueryLatest || to > tip {
		to = tip
	}

	var out []*database.Block
	for h := from; h <= to; h++ {
		block, err := s.storage.GetBlock(h)
		if err != nil {
			return nil, fmt.Errorf("blk[%d]: %w", h, err)
		}
		out = append(out, block)
	}

	return out, nil
}

// Importances calculates the importance of every account at the tip.
func (s *State) Importances() importance.Importances {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.importance.Calculate(s.latest().Height, s.states.Contents())
}
