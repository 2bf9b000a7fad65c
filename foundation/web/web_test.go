package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/memoledger/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Handle(t *testing.T) {
	t.Log("Given the need to route requests through the app.")
	{
		var order []string
		mw := func(name string) web.Middleware {
			return func(handler web.Handler) web.Handler {
				return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					order = append(order, name)
					return handler(ctx, w, r)
				}
			}
		}

		app := web.NewApp(make(chan os.Signal, 1), mw("app"))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := web.GetValues(ctx)
			if err != nil {
				return err
			}
			if v.TraceID == "" {
				return errors.New("missing trace id")
			}

			resp := struct {
				Account string `json:"account"`
			}{
				Account: web.Param(r, "account"),
			}
			return web.Respond(ctx, w, resp, http.StatusOK)
		}
		app.Handle(http.MethodGet, "v1", "/accounts/list/:account", h, mw("route"))

		r := httptest.NewRequest(http.MethodGet, "/v1/accounts/list/0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200 for the response : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200 for the response.", success)

		var resp struct {
			Account string `json:"account"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the response : %s", failed, err)
		}
		if resp.Account != "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
			t.Fatalf("\t%s\tShould get the route parameter back : %s", failed, resp.Account)
		}
		t.Logf("\t%s\tShould get the route parameter back.", success)

		if strings.Join(order, ",") != "app,route" {
			t.Fatalf("\t%s\tShould run app middleware before route middleware : %v", failed, order)
		}
		t.Logf("\t%s\tShould run app middleware before route middleware.", success)
	}
}

func Test_ShutdownSignal(t *testing.T) {
	t.Log("Given the need to shutdown on integrity errors.")
	{
		shutdown := make(chan os.Signal, 1)
		app := web.NewApp(shutdown)

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return web.NewShutdownError("journal corrupted")
		}
		app.Handle(http.MethodGet, "", "/boom", h)

		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		select {
		case <-shutdown:
			t.Logf("\t%s\tShould receive a shutdown signal.", success)
		default:
			t.Fatalf("\t%s\tShould receive a shutdown signal.", failed)
		}
	}
}

type payload struct {
	Name string `json:"name"`
}

func (p payload) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func Test_Decode(t *testing.T) {
	t.Log("Given the need to decode request payloads.")
	{
		tt := []struct {
			name string
			body string
			ok   bool
		}{
			{"valid", `{"name":"mimi"}`, true},
			{"unknown field", `{"name":"mimi","tip":1}`, false},
			{"fails validation", `{"name":""}`, false},
			{"bad json", `{"name":`, false},
		}

		for _, tst := range tt {
			f := func(t *testing.T) {
				var p payload
				r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tst.body))
				err := web.Decode(r, &p)

				if (err == nil) != tst.ok {
					t.Fatalf("\t%s\tTest %s:\tShould get the expected decode result : %v", failed, tst.name, err)
				}
				t.Logf("\t%s\tTest %s:\tShould get the expected decode result.", success, tst.name)
			}

			t.Run(tst.name, f)
		}
	}
}
