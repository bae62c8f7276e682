package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/peer"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

const baseURL = "http://%s/v1/node"

// client is shared by every request made to a peer.
var client = http.Client{
	Timeout: 10 * time.Second,
}

// NetSendBlockToPeers takes the new harvested block and sends it to all
// known peers.
func (s *State) NetSendBlockToPeers(block *database.Block) error {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	var errs []error
	for _, peer := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/chain/submit", fmt.Sprintf(baseURL, peer.Host))

		if err := send(http.MethodPost, url, []*database.Block{block}, nil); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", peer.Host, err))
			continue
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", peer)
	}

	return errors.Join(errs...)
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(tx *database.Tx) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	for _, peer := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/tx/submit", fmt.Sprintf(baseURL, peer.Host))
		if err := send(http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s", err)
		}
	}
}

// NetRequestPeerStatus looks for new nodes on the blockchain by asking
// known nodes for their peer list. New nodes are added to the list.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: latest-blk[%d]: peer-list[%s]", pr, ps.LatestBlockHeight, ps.KnownPeers)

	return ps, nil
}

// NetRequestAddPeer lets the peer know this node is available.
func (s *State) NetRequestAddPeer(pr peer.Peer) error {
	url := fmt.Sprintf("%s/peers", fmt.Sprintf(baseURL, pr.Host))
	return send(http.MethodPost, url, peer.New(s.host), nil)
}

// NetRequestPeerMempool asks the peer for the transactions in their mempool.
func (s *State) NetRequestPeerMempool(pr peer.Peer) ([]*database.Tx, error) {
	s.evHandler("state: NetRequestPeerMempool: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerMempool: completed: %s", pr)

	url := fmt.Sprintf("%s/tx/list", fmt.Sprintf(baseURL, pr.Host))

	var mempool []*database.Tx
	if err := send(http.MethodGet, url, nil, &mempool); err != nil {
		return nil, err
	}

	s.evHandler("state: sync: NetRequestPeerMempool: len[%d]", len(mempool))

	return mempool, nil
}

// NetRequestPeerBlocks queries the specified node asking for blocks this
// node does not have and processes them. When the peer is on a fork the
// request is repeated from the oldest block that may still be rewritten.
func (s *State) NetRequestPeerBlocks(pr peer.Peer) error {
	s.evHandler("state: NetRequestPeerBlocks: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerBlocks: completed: %s", pr)

	tip := s.LatestBlock().Height

	err := s.requestBlocks(pr, tip.Next())
	if ve := GetValidationError(err); ve == nil || ve.Result != validation.FailurePreviousHashMismatch {
		return err
	}

	from := primitive.NemesisHeight.Next()
	if tip > primitive.RewriteLimit {
		from = tip - primitive.RewriteLimit + 1
	}

	s.evHandler("state: NetRequestPeerBlocks: fork detected: request from[%d]", from)

	return s.requestBlocks(pr, from)
}

// requestBlocks pulls the peer's blocks from the height onward in chunks
// the validator accepts.
func (s *State) requestBlocks(pr peer.Peer, from primitive.Height) error {
	url := fmt.Sprintf("%s/blocks/list/%d/latest", fmt.Sprintf(baseURL, pr.Host), from)

	var blocks []*database.Block
	if err := send(http.MethodGet, url, nil, &blocks); err != nil {
		return err
	}

	s.evHandler("state: NetRequestPeerBlocks: found blocks[%d]", len(blocks))

	for len(blocks) > 0 {
		n := min(len(blocks), s.maxChainSize)
		err := s.ProcessChain(blocks[:n])
		if err != nil && !errors.Is(err, ErrAlreadyProcessed) {
			return err
		}
		blocks = blocks[n:]
	}

	return nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequest(method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}

	default:
		var err error
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return err
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
