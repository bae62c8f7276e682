package worker

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/peer"
)

// peerOperations handles finding new peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.peerTicker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list and pulls any blocks the peers
// have that this node is missing.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, peer := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(peer)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", peer.Host, err)
			w.state.RemoveKnownPeer(peer)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		if peerStatus.LatestBlockHeight > w.state.LatestBlock().Height.Uint64() {
			if err := w.state.NetRequestPeerBlocks(peer); err != nil {
				w.evHandler("worker: runPeersOperation: retrievePeerBlocks: %s: ERROR: %s", peer.Host, err)
			}
		}
	}

	// get the latest peers and let them know this node is available to chat
	for _, peer := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(peer); err != nil {
			w.evHandler("worker: runPeersOperation: addPeer: %s: ERROR: %s", peer.Host, err)
		}
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of know peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: runPeerUpdatesOperation: addNewPeers: started")
	defer w.evHandler("worker: runPeerUpdatesOperation: addNewPeers: completed")

	for _, peer := range knownPeers {

		// Don't add this running node to the known peer list.
		if peer.Match(w.state.RetrieveHost()) {
			continue
		}

		if w.state.AddKnownPeer(peer) {
			w.evHandler("worker: runPeerUpdatesOperation: addNewPeers: add peer nodes: adding peer-node %s", peer)
		}
	}
}
