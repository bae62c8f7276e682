package worker

import (
	"errors"

	"github.com/ardanlabs/poichain/foundation/blockchain/state"
)

// harvestOperations handles harvesting.
func (w *Worker) harvestOperations() {
	w.evHandler("worker: harvestOperations: G started")
	defer w.evHandler("worker: harvestOperations: G completed")

	for {
		select {
		case <-w.startHarvest:
			if !w.isShutdown() {
				w.runHarvestOperation()
			}
		case <-w.harvestTicker.C:
			if !w.isShutdown() {
				w.runHarvestOperation()
			}
		case <-w.shut:
			w.evHandler("worker: harvestOperations: received shut signal")
			return
		}
	}
}

// runHarvestOperation tries to forge the next block and shares it with the
// network when the harvester is eligible.
func (w *Worker) runHarvestOperation() {
	block, err := w.state.HarvestBlock()
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoHarvester):
		case errors.Is(err, state.ErrNotEligible), errors.Is(err, state.ErrTooEarly):
			w.evHandler("worker: runHarvestOperation: not eligible")
		default:
			w.evHandler("worker: runHarvestOperation: HARVEST: ERROR: %s", err)
		}
		return
	}

	w.evHandler("worker: runHarvestOperation: HARVEST: harvested: %s", block)
	w.SignalShareBlock(block)
}
