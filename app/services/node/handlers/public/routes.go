package public

import (
	"net/http"

	"github.com/ardanlabs/poichain/foundation/blockchain/state"
	"github.com/ardanlabs/poichain/foundation/events"
	"github.com/ardanlabs/poichain/foundation/nameservice"
	"github.com/ardanlabs/poichain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain/last", pbl.LastBlock)
	app.Handle(http.MethodPost, version, "/chain/submit", pbl.SubmitChain)
	app.Handle(http.MethodGet, version, "/accounts/:address", pbl.Account)
	app.Handle(http.MethodGet, version, "/accounts/:address/historical/:height", pbl.Historical)
	app.Handle(http.MethodGet, version, "/tx/unconfirmed", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}
