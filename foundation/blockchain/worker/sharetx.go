package worker

// maxTxShareRequests represents the max number of pending tx network share
// requests that can be outstanding before share requests are dropped. To keep
// this simple, a buffered channel of this arbitrary number is being used. If
// the channel does become full, requests for new transactions to be shared
// will not be accepted.
const maxTxShareRequests = 100

// maxBlockShareRequests is the same limit for harvested blocks.
const maxBlockShareRequests = 10

// =============================================================================

// shareOperations handles sharing new transactions and harvested blocks.
func (w *Worker) shareOperations() {
	w.evHandler("worker: shareOperations: G started")
	defer w.evHandler("worker: shareOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if !w.isShutdown() {
				w.state.NetSendTxToPeers(tx)
			}
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				if err := w.state.NetSendBlockToPeers(block); err != nil {
					w.evHandler("worker: shareOperations: WARNING: %s", err)
				}
			}
		case <-w.shut:
			w.evHandler("worker: shareOperations: received shut signal")
			return
		}
	}
}
