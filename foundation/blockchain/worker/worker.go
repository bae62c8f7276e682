// Package worker implements harvesting, peer updates, and sharing of
// transactions and blocks for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
)

// peerUpdateInterval represents the interval of finding new peer nodes
// and updating the blockchain on disk with missing blocks.
const peerUpdateInterval = time.Minute

// harvestInterval is how often the node checks whether its harvester is
// eligible to forge the next block. The target grows with the time since
// the tip so eligibility is retried well within one block interval.
const harvestInterval = primitive.TargetSecondsPerBlock * time.Second / 6

// =============================================================================

// Worker manages the harvesting and networking workflows for the blockchain.
type Worker struct {
	state         *state.State
	wg            sync.WaitGroup
	peerTicker    *time.Ticker
	harvestTicker *time.Ticker
	shut          chan struct{}
	startHarvest  chan bool
	txSharing     chan *database.Tx
	blockSharing  chan *database.Block
	evHandler     state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	w := Worker{
		state:         st,
		peerTicker:    time.NewTicker(peerUpdateInterval),
		harvestTicker: time.NewTicker(harvestInterval),
		shut:          make(chan struct{}),
		startHarvest:  make(chan bool, 1),
		txSharing:     make(chan *database.Tx, maxTxShareRequests),
		blockSharing:  make(chan *database.Block, maxBlockShareRequests),
		evHandler:     evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.harvestOperations,
		w.shareOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop tickers")
	w.peerTicker.Stop()
	w.harvestTicker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalHarvest starts a harvesting attempt. If there is already a signal
// pending in the channel, just return since an attempt will start.
func (w *Worker) SignalHarvest() {
	select {
	case w.startHarvest <- true:
	default:
	}
	w.evHandler("worker: SignalHarvest: harvest signaled")
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx *database.Tx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// SignalShareBlock signals a share block operation.
func (w *Worker) SignalShareBlock(block *database.Block) {
	select {
	case w.blockSharing <- block:
		w.evHandler("worker: SignalShareBlock: share block signaled")
	default:
		w.evHandler("worker: SignalShareBlock: queue full, block won't be shared.")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
