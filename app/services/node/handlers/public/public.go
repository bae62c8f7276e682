// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/poichain/business/web/errs"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
	"github.com/ardanlabs/poichain/foundation/events"
	"github.com/ardanlabs/poichain/foundation/nameservice"
	"github.com/ardanlabs/poichain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// Clients narrow the feed with ?source=state&source=worker.
	ch := h.Evts.Acquire(v.TraceID, r.URL.Query()["source"]...)
	defer func() {
		if dropped, err := h.Evts.Release(v.TraceID); err == nil && dropped > 0 {
			h.Log.Infow("events", "traceid", v.TraceID, "dropped", dropped)
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// LastBlock returns the tip of the chain.
func (h Handlers) LastBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.LatestBlock(), http.StatusOK)
}

// Account returns what the chain knows about the account.
func (h Handlers) Account(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := h.NS.Resolve(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	as, err := h.State.QueryAccount(addr)
	if err != nil {
		if errors.Is(err, state.ErrAccountNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	tip := h.State.LatestBlock().Height

	remote := "inactive"
	switch {
	case as.Remote.IsHarvestingRemotely():
		remote = "active"
	case as.Remote.IsRemoteHarvester():
		remote = "remote"
	}

	act := account{
		Address:         as.Address,
		Name:            h.NS.Lookup(as.Address),
		PublicKey:       as.PublicKey,
		Balance:         as.Info.Balance,
		Vested:          as.Weighted.Vested(tip),
		Unvested:        as.Weighted.Unvested(tip),
		Importance:      h.State.Importances()[as.Address],
		HarvestedBlocks: as.Info.HarvestedBlocks,
		Label:           as.Info.Label,
		Cosignatories:   as.Multisig.Cosignatories(),
		CosignatoryOf:   as.Multisig.CosignatoryOf(),
		RemoteStatus:    remote,
	}

	return web.Respond(ctx, w, act, http.StatusOK)
}

// Historical returns the balance of the account as of the height. The
// height may be "latest".
func (h Handlers) Historical(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := h.NS.Resolve(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	height, err := parseHeight(web.Param(r, "height"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	bal, err := h.State.QueryHistoricalBalance(addr, height)
	if err != nil {
		if errors.Is(err, state.ErrAccountNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, historical{Address: addr, Balance: bal}, http.StatusOK)
}

// Mempool returns the set of unconfirmed transactions in selection order.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pool := h.State.QueryMempool()

	txs := make([]unconfirmed, len(pool))
	for i, tx := range pool {
		txs[i] = unconfirmed{
			Hash:     tx.Hash(),
			Signer:   h.NS.Lookup(tx.Signer.Address),
			Fee:      tx.Fee(),
			Deadline: tx.Deadline,
			Tx:       tx,
		}
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// SubmitTransaction adds a signed wallet transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "hash", tx.Hash(), "type", tx.Type(), "signer", tx.Signer, "fee", tx.Fee())

	if err := h.State.UpsertTransaction(&tx); err != nil {
		switch {
		case errors.Is(err, state.ErrKnownTransaction):
			return errs.NewTrusted(err, http.StatusConflict)
		case state.IsValidationError(err):
			return errs.NewRejected(err, state.GetValidationError(err).Result, http.StatusBadRequest)
		}
		return err
	}

	resp := submitted{
		Status: "transaction added to mempool",
		Hash:   tx.Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitChain processes a chain of blocks pushed by a client.
func (h Handlers) SubmitChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var blocks []*database.Block
	if err := web.Decode(r, &blocks); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit chain", "traceid", v.TraceID, "blocks", len(blocks))

	err = h.State.ProcessChain(blocks)
	switch {
	case err == nil:
	case errors.Is(err, state.ErrAlreadyProcessed):
		return web.Respond(ctx, w, submitted{Status: "already processed"}, http.StatusOK)
	case errors.Is(err, state.ErrNoBlocks):
		return errs.NewTrusted(err, http.StatusBadRequest)
	case state.IsValidationError(err):
		return errs.NewRejected(err, state.GetValidationError(err).Result, http.StatusNotAcceptable)
	case errors.Is(err, state.ErrNotBetter),
		errors.Is(err, state.ErrUnknownParent),
		errors.Is(err, state.ErrRewriteLimit),
		errors.Is(err, primitive.ErrInvalidHeight):
		return errs.NewTrusted(err, http.StatusNotAcceptable)
	default:
		return err
	}

	resp := submitted{
		Status: "accepted",
		Height: h.State.LatestBlock().Height.Uint64(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
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
