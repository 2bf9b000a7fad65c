// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/ardanlabs/memoledger/business/sys/metrics"
	"github.com/ardanlabs/memoledger/business/web/errs"
	"github.com/ardanlabs/memoledger/foundation/events"
	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
	"github.com/ardanlabs/memoledger/foundation/validate"
	"github.com/ardanlabs/memoledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of memo ledger endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics
	State   *state.State
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Events handles a web socket to provide NewMemo events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// The upgrader has already answered the client when it fails.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Infow("events", "traceid", v.TraceID, "status", "upgrade refused", "ERROR", err)
		return nil
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer func() {
		if dropped, err := h.Evts.Release(v.TraceID); err == nil && dropped > 0 {
			h.Log.Infow("events", "traceid", v.TraceID, "status", "client missed memos", "dropped", dropped)
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
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Owner returns the account that owns the ledger.
func (h Handlers) Owner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ownerID := h.State.Owner()

	resp := owner{
		Owner:     ownerID,
		OwnerName: h.NS.Lookup(ownerID),
		Contract:  h.State.ContractID(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Contract returns the current state of the ledger.
func (h Handlers) Contract(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ownerID := h.State.Owner()
	latest := h.State.LatestRecord()

	resp := contract{
		Owner:        ownerID,
		OwnerName:    h.NS.Lookup(ownerID),
		Contract:     h.State.ContractID(),
		Balance:      h.State.ContractBalance(),
		Memos:        h.State.MemoCount(),
		LatestRecord: latest.Number,
		LatestHash:   latest.Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Memos returns every memo in the order they were recorded. Passing
// order=desc returns the newest memo first.
func (h Handlers) Memos(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	order := r.URL.Query().Get("order")
	switch order {
	case "", "asc":
		order = "asc"
	case "desc":
	default:
		return errs.NewTrusted(fmt.Errorf("invalid order %q", order), http.StatusBadRequest)
	}

	list := h.State.Memos()

	infos := make([]memoInfo, len(list))
	for i, m := range list {
		infos[i] = memoInfo{
			From:      m.From,
			FromName:  h.NS.Lookup(m.From),
			To:        m.To,
			TimeStamp: m.TimeStamp,
			Name:      m.Name,
			Message:   m.Message,
		}
	}

	if order == "desc" {
		slices.Reverse(infos)
	}

	resp := memos{
		Order: order,
		Memos: infos,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BuyCoffee records a payment and its memo from a signed buyCoffee call.
func (h Handlers) BuyCoffee(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.submit(ctx, w, r, database.MethodBuyCoffee)
}

// WithdrawTips moves the accumulated tips to the owner from a signed
// withdrawTips call.
func (h Handlers) WithdrawTips(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.submit(ctx, w, r, database.MethodWithdrawTips)
}

// Accounts returns the current balances and nonces for all accounts.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var list []database.Account

	switch account := web.Param(r, "account"); account {
	case "":
		list = h.State.Accounts()

	default:
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		list = []database.Account{h.State.QueryAccount(accountID)}
	}

	infos := make([]info, len(list))
	for i, act := range list {
		infos[i] = info{
			Account: act.AccountID,
			Name:    h.NS.Lookup(act.AccountID),
			Nonce:   act.Nonce,
			Balance: act.Balance,
		}
	}

	resp := accounts{
		LatestRecord: h.State.LatestRecord().Number,
		Accounts:     infos,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// submit decodes and executes a signed call for the specified method.
func (h Handlers) submit(ctx context.Context, w http.ResponseWriter, r *http.Request, method string) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedCall database.SignedCall
	if err := web.Decode(r, &signedCall); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(signedCall); err != nil {
		return err
	}

	if signedCall.Method != method {
		return errs.NewTrusted(fmt.Errorf("%w: %q not served by this endpoint", database.ErrUnknownMethod, signedCall.Method), http.StatusBadRequest)
	}

	h.Log.Infow("submit call", "traceid", v.TraceID, "from:nonce:method", signedCall, "value", signedCall.Value)

	result, err := h.State.SubmitCall(signedCall)
	h.Metrics.AddCall(method, err)
	if err != nil {
		return errs.FromLedger(err)
	}

	resp := callResult{
		Record:    result.Record.Number,
		Hash:      result.Record.Hash(),
		From:      result.From,
		Nonce:     result.Record.Call.Nonce,
		Method:    result.Record.Call.Method,
		Memo:      result.Memo,
		Withdrawn: result.Withdrawn,
		Balance:   h.State.QueryAccount(result.From).Balance,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// NewMemoEvent is the message published to websocket clients for every
// memo recorded.
func NewMemoEvent(m memo.Memo) (string, error) {
	evt := newMemoEvent{
		Type:      "NewMemo",
		From:      m.From,
		To:        m.To,
		TimeStamp: m.TimeStamp,
		Name:      m.Name,
		Message:   m.Message,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
