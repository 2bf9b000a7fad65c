// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/memoledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/memoledger/business/sys/metrics"
	"github.com/ardanlabs/memoledger/business/web/mid"
	"github.com/ardanlabs/memoledger/foundation/events"
	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
	"github.com/ardanlabs/memoledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics
	State   *state.State
	NS      *nameservice.NameService
	Evts    *events.Events
	Origins []string
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:     cfg.Log,
		Metrics: cfg.Metrics,
		State:   cfg.State,
		NS:      cfg.NS,
		Evts:    cfg.Evts,
		WS: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return mid.OriginAllowed(cfg.Origins, r.Header.Get("Origin"))
			},
		},
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/owner", pbl.Owner)
	app.Handle(http.MethodGet, version, "/contract", pbl.Contract)
	app.Handle(http.MethodGet, version, "/memos/list", pbl.Memos)
	app.Handle(http.MethodPost, version, "/memos/buy", pbl.BuyCoffee)
	app.Handle(http.MethodPost, version, "/tips/withdraw", pbl.WithdrawTips)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
}
