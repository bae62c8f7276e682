// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/poichain/business/web/errs"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/peer"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
	"github.com/ardanlabs/poichain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// SubmitPeer is called by a node so they can be added to the known peer list.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if pr.Host == "" {
		return errs.NewTrusted(errors.New("missing host"), http.StatusBadRequest)
	}

	if !pr.Match(h.State.RetrieveHost()) && h.State.AddKnownPeer(pr) {
		h.Log.Infow("adding peer", "traceid", v.TraceID, "host", pr.Host)
	}

	return web.Respond(ctx, w, nil, http.StatusOK)
}

// SubmitNodeTransaction adds a transaction shared by a peer to the mempool.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add node tx", "traceid", v.TraceID, "hash", tx.Hash(), "signer", tx.Signer)

	if err := h.State.UpsertTransaction(&tx); err != nil {
		switch {
		case errors.Is(err, state.ErrKnownTransaction):
			return errs.NewTrusted(err, http.StatusConflict)
		case state.IsValidationError(err):
			return errs.NewRejected(err, state.GetValidationError(err).Result, http.StatusBadRequest)
		}
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeChain takes blocks received from a peer, validates them and if that
// passes, makes them part of the local chain.
func (h Handlers) ProposeChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var blocks []*database.Block
	if err := web.Decode(r, &blocks); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.ProcessChain(blocks); err != nil {
		h.Log.Infow("propose chain", "traceid", v.TraceID, "blocks", len(blocks), "ERROR", err)

		switch {
		case errors.Is(err, state.ErrAlreadyProcessed):
			return web.Respond(ctx, w, nil, http.StatusNoContent)

		// The peer is ahead of us. The peer operation will pull the
		// missing blocks on its next pass.
		case errors.Is(err, state.ErrUnknownParent):
			return errs.NewTrusted(err, http.StatusNotAcceptable)

		case errors.Is(err, state.ErrNoBlocks), errors.Is(err, primitive.ErrInvalidHeight):
			return errs.NewTrusted(err, http.StatusBadRequest)

		case state.IsValidationError(err):
			return errs.NewRejected(errors.New("chain not accepted"), state.GetValidationError(err).Result, http.StatusNotAcceptable)
		}

		return errs.NewTrusted(errors.New("chain not accepted"), http.StatusNotAcceptable)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryStatus(), http.StatusOK)
}

// BlocksByHeight returns all the blocks based on the specified to/from values.
func (h Handlers) BlocksByHeight(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := parseHeight(web.Param(r, "from"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := parseHeight(web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tip := h.State.LatestBlock().Height
	if from == state.QueryLatest {
		from = tip
	}
	if to == state.QueryLatest {
		to = tip
	}

	// Nothing past the tip; the caller is up to date.
	if from > tip {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks, err := h.State.QueryBlocksByHeight(from, to)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Mempool returns the set of unconfirmed transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryMempool(), http.StatusOK)
}

// =============================================================================

// parseHeight converts a path parameter into a height.
func parseHeight(s string) (primitive.Height, error) {
	if s == "latest" || s == "" {
		return state.QueryLatest, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("height %q: %w", s, err)
	}

	return primitive.NewHeight(n)
}
