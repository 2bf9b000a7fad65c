package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/memoledger/business/sys/metrics"
	"github.com/ardanlabs/memoledger/business/web/errs"
	"github.com/ardanlabs/memoledger/business/web/mid"
	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
	"github.com/ardanlabs/memoledger/foundation/logger"
	"github.com/ardanlabs/memoledger/foundation/validate"
	"github.com/ardanlabs/memoledger/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Errors(t *testing.T) {
	log := logger.NewNop()

	type table struct {
		name   string
		err    error
		status int
		fields bool
	}

	tt := []table{
		{name: "unauthorized", err: errs.FromLedger(memo.ErrUnauthorized), status: http.StatusForbidden},
		{name: "rejected", err: errs.FromLedger(database.ErrTransferRejected), status: http.StatusConflict},
		{name: "validation", err: validate.Check(database.SignedCall{}), status: http.StatusBadRequest, fields: true},
		{name: "internal", err: errors.New("disk full"), status: http.StatusInternalServerError},
		{name: "panic", err: nil, status: http.StatusInternalServerError},
	}

	t.Log("Given the need to map handler errors to responses.")
	{
		for _, tst := range tt {
			f := func(t *testing.T) {
				m := metrics.New()
				app := web.NewApp(make(chan os.Signal, 1), mid.Logger(log), mid.Errors(log), mid.Metrics(m), mid.Panics(m))

				h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					if tst.err == nil {
						panic("boom")
					}
					return tst.err
				}
				app.Handle(http.MethodGet, "v1", "/test", h)

				w := httptest.NewRecorder()
				app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %s:\tShould receive status %d : %d", failed, tst.name, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %s:\tShould receive status %d.", success, tst.name, tst.status)

				var resp errs.Response
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("\t%s\tTest %s:\tShould be able to unmarshal the response : %s", failed, tst.name, err)
				}

				if tst.status == http.StatusInternalServerError && resp.Error != http.StatusText(http.StatusInternalServerError) {
					t.Fatalf("\t%s\tTest %s:\tShould not leak internal errors : %s", failed, tst.name, resp.Error)
				}

				if tst.fields != (len(resp.Fields) > 0) {
					t.Fatalf("\t%s\tTest %s:\tShould get field errors only for validation : %v", failed, tst.name, resp.Fields)
				}
				t.Logf("\t%s\tTest %s:\tShould get the expected error body.", success, tst.name)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Cors(t *testing.T) {
	type table struct {
		name    string
		origins []string
		origin  string
		exp     string
		allowed bool
	}

	tt := []table{
		{name: "any", origins: []string{"*"}, origin: "http://wallet.example", exp: "*", allowed: true},
		{name: "listed", origins: []string{"http://wallet.example"}, origin: "http://wallet.example", exp: "http://wallet.example", allowed: true},
		{name: "unlisted", origins: []string{"http://wallet.example"}, origin: "http://evil.example", exp: "", allowed: false},
		{name: "no origin", origins: []string{"http://wallet.example"}, origin: "", exp: "", allowed: true},
	}

	t.Log("Given the need to accept browser wallets from allowed sites.")
	{
		for _, tst := range tt {
			f := func(t *testing.T) {
				app := web.NewApp(make(chan os.Signal, 1), mid.Cors(tst.origins))
				h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					return web.Respond(ctx, w, nil, http.StatusNoContent)
				}
				app.Handle(http.MethodOptions, "", "/*", h)

				r := httptest.NewRequest(http.MethodOptions, "/v1/memos/buy", nil)
				if tst.origin != "" {
					r.Header.Set("Origin", tst.origin)
				}
				w := httptest.NewRecorder()
				app.ServeHTTP(w, r)

				if got := w.Header().Get("Access-Control-Allow-Origin"); got != tst.exp {
					t.Fatalf("\t%s\tTest %s:\tShould set the allowed origin to %q : %q", failed, tst.name, tst.exp, got)
				}
				t.Logf("\t%s\tTest %s:\tShould set the allowed origin to %q.", success, tst.name, tst.exp)

				if got := mid.OriginAllowed(tst.origins, tst.origin); got != tst.allowed {
					t.Fatalf("\t%s\tTest %s:\tShould report allowed %v : %v", failed, tst.name, tst.allowed, got)
				}
				t.Logf("\t%s\tTest %s:\tShould report allowed %v.", success, tst.name, tst.allowed)
			}

			t.Run(tst.name, f)
		}
	}
}
