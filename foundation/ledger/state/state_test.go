package state_test

import (
	"crypto/ecdsa"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/ledger/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	chainID  = 4202
	payerKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	execTime = 1751328000
)

type accounts struct {
	ownerKey *ecdsa.PrivateKey
	payerKey *ecdsa.PrivateKey
	owner    database.AccountID
	payer    database.AccountID
}

func newAccounts(t *testing.T) accounts {
	t.Helper()

	ownerKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate the owner key: %v", failed, err)
	}

	pk, err := crypto.HexToECDSA(payerKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the payer key: %v", failed, err)
	}

	return accounts{
		ownerKey: ownerKey,
		payerKey: pk,
		owner:    database.PublicKeyToAccountID(ownerKey.PublicKey),
		payer:    database.PublicKeyToAccountID(pk.PublicKey),
	}
}

func newState(t *testing.T, acts accounts, ser database.Serializer) *state.State {
	t.Helper()

	st, err := state.New(state.Config{
		OwnerID: acts.owner,
		Genesis: genesis.Genesis{
			ChainID:  chainID,
			Balances: map[string]uint64{string(acts.payer): 1000},
		},
		Storage: ser,
		Now:     func() time.Time { return time.Unix(execTime, 0) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

func sign(t *testing.T, call database.Call, pk *ecdsa.PrivateKey) database.SignedCall {
	t.Helper()

	signedCall, err := call.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the call: %v", failed, err)
	}

	return signedCall
}

// =============================================================================

func Test_GiftScenario(t *testing.T) {
	t.Log("Given a ledger owned by A and a payment from B.")
	{
		acts := newAccounts(t)

		mem, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st := newState(t, acts, mem)

		var events []memo.Memo
		st.Subscribe(func(m memo.Memo) { events = append(events, m) })

		call := database.NewBuyCoffeeCall(chainID, 1, 1, "mimi", "this is a gift")
		result, err := st.SubmitCall(sign(t, call, acts.payerKey))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to buy a coffee: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to buy a coffee.", success)

		exp := memo.Memo{From: acts.payer, To: acts.owner, TimeStamp: execTime, Name: "mimi", Message: "this is a gift"}
		if result.Memo == nil || *result.Memo != exp {
			t.Logf("\t%s\tgot: %+v", failed, result.Memo)
			t.Logf("\t%s\texp: %+v", failed, exp)
			t.Fatalf("\t%s\tShould get back the recorded memo.", failed)
		}
		t.Logf("\t%s\tShould get back the recorded memo.", success)

		if len(events) != 1 || events[0] != exp {
			t.Fatalf("\t%s\tShould fire one notification with the memo fields, got %+v.", failed, events)
		}
		t.Logf("\t%s\tShould fire one notification with the memo fields.", success)

		withdraw := database.NewWithdrawTipsCall(chainID, 2)
		if _, err := st.SubmitCall(sign(t, withdraw, acts.payerKey)); !errors.Is(err, memo.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould reject a withdraw by B: %v", failed, err)
		}
		if st.ContractBalance() != 1 {
			t.Fatalf("\t%s\tShould keep the balance, got %d.", failed, st.ContractBalance())
		}
		t.Logf("\t%s\tShould reject a withdraw by B and keep the balance.", success)

		withdraw = database.NewWithdrawTipsCall(chainID, 1)
		result, err = st.SubmitCall(sign(t, withdraw, acts.ownerKey))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to withdraw as A: %v", failed, err)
		}

		if result.Withdrawn != 1 || st.ContractBalance() != 0 || st.QueryAccount(acts.owner).Balance != 1 {
			t.Fatalf("\t%s\tShould move the balance to A, withdrawn %d contract %d.", failed, result.Withdrawn, st.ContractBalance())
		}
		t.Logf("\t%s\tShould move the balance to A.", success)

		if st.LatestRecord().Number != 2 {
			t.Fatalf("\t%s\tShould have journaled two calls, got %d.", failed, st.LatestRecord().Number)
		}
		t.Logf("\t%s\tShould have journaled two calls.", success)
	}
}

func Test_CallValidation(t *testing.T) {
	t.Log("Given calls that must be rejected without changing state.")
	{
		acts := newAccounts(t)

		mem, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st := newState(t, acts, mem)

		if _, err := st.SubmitCall(sign(t, database.NewBuyCoffeeCall(chainID, 1, 10, "a", "b"), acts.payerKey)); err != nil {
			t.Fatalf("\t%s\tShould be able to buy a coffee: %v", failed, err)
		}

		type table struct {
			name string
			call database.Call
			err  error
		}

		tt := []table{
			{name: "reused nonce", call: database.NewBuyCoffeeCall(chainID, 1, 10, "a", "b"), err: database.ErrInvalidNonce},
			{name: "wrong chain", call: database.NewBuyCoffeeCall(1, 2, 10, "a", "b"), err: database.ErrWrongChain},
			{name: "zero value", call: database.NewBuyCoffeeCall(chainID, 2, 0, "a", "b"), err: memo.ErrZeroValue},
			{name: "unknown method", call: database.Call{ChainID: chainID, Nonce: 2, Method: "transfer"}, err: database.ErrUnknownMethod},
		}

		for testID, tst := range tt {
			_, err := st.SubmitCall(sign(t, tst.call, acts.payerKey))
			if !errors.Is(err, tst.err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the %s call with %v, got %v.", failed, testID, tst.name, tst.err, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the %s call.", success, testID, tst.name)
		}

		if st.MemoCount() != 1 || st.ContractBalance() != 10 || st.LatestRecord().Number != 1 {
			t.Fatalf("\t%s\tShould not change any state.", failed)
		}
		t.Logf("\t%s\tShould not change any state.", success)
	}
}

func Test_Replay(t *testing.T) {
	t.Log("Given a journal written by a previous run.")
	{
		acts := newAccounts(t)

		mem, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st := newState(t, acts, mem)

		calls := []struct {
			call database.Call
			key  *ecdsa.PrivateKey
		}{
			{database.NewBuyCoffeeCall(chainID, 1, 10, "ann", "first"), acts.payerKey},
			{database.NewBuyCoffeeCall(chainID, 2, 20, "bob", "second"), acts.payerKey},
			{database.NewWithdrawTipsCall(chainID, 1), acts.ownerKey},
			{database.NewBuyCoffeeCall(chainID, 3, 5, "cat", "third"), acts.payerKey},
		}

		for i, c := range calls {
			if _, err := st.SubmitCall(sign(t, c.call, c.key)); err != nil {
				t.Fatalf("\t%s\tShould be able to submit call %d: %v", failed, i, err)
			}
		}

		replayed := newState(t, acts, mem)

		got := replayed.Memos()
		exp := st.Memos()
		if len(got) != len(exp) {
			t.Fatalf("\t%s\tShould replay every memo, got %d, exp %d.", failed, len(got), len(exp))
		}
		for i := range exp {
			if got[i] != exp[i] {
				t.Fatalf("\t%s\tShould replay memo %d exactly, got %+v, exp %+v.", failed, i, got[i], exp[i])
			}
		}
		t.Logf("\t%s\tShould replay every memo in order.", success)

		if replayed.ContractBalance() != 5 || replayed.QueryAccount(acts.owner).Balance != 30 || replayed.QueryAccount(acts.payer).Balance != 965 {
			t.Fatalf("\t%s\tShould replay balances.", failed)
		}
		t.Logf("\t%s\tShould replay balances.", success)

		if replayed.QueryAccount(acts.payer).Nonce != 3 {
			t.Fatalf("\t%s\tShould replay nonces, got %d.", failed, replayed.QueryAccount(acts.payer).Nonce)
		}
		t.Logf("\t%s\tShould replay nonces.", success)
	}
}

// failingStorage accepts nothing.
type failingStorage struct {
	*memory.Memory
}

func (failingStorage) Write(database.Record) error {
	return errors.New("disk full")
}

func Test_StorageFailure(t *testing.T) {
	t.Log("Given storage that fails to write.")
	{
		acts := newAccounts(t)

		mem, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st := newState(t, acts, failingStorage{mem})

		var notified int
		st.Subscribe(func(memo.Memo) { notified++ })

		if _, err := st.SubmitCall(sign(t, database.NewBuyCoffeeCall(chainID, 1, 10, "a", "b"), acts.payerKey)); err == nil {
			t.Fatalf("\t%s\tShould fail the call.", failed)
		}

		if st.MemoCount() != 0 || st.ContractBalance() != 0 || notified != 0 || st.QueryAccount(acts.payer).Nonce != 0 {
			t.Fatalf("\t%s\tShould not change any state.", failed)
		}
		t.Logf("\t%s\tShould fail the call without changing state.", success)
	}
}

func Test_ObserverReadsState(t *testing.T) {
	t.Log("Given an observer that reads the state from inside its callback.")
	{
		acts := newAccounts(t)

		mem, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		st := newState(t, acts, mem)

		type seen struct {
			nonce  uint64
			record uint64
			count  int
		}
		var got []seen
		st.Subscribe(func(m memo.Memo) {
			got = append(got, seen{
				nonce:  st.QueryAccount(m.From).Nonce,
				record: st.LatestRecord().Number,
				count:  st.MemoCount(),
			})
		})

		calls := []database.SignedCall{
			sign(t, database.NewBuyCoffeeCall(chainID, 1, 1, "mimi", "gift"), acts.payerKey),
			sign(t, database.NewBuyCoffeeCall(chainID, 2, 1, "mimi", "gift"), acts.payerKey),
		}

		done := make(chan error, 1)
		go func() {
			for _, call := range calls {
				if _, err := st.SubmitCall(call); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("\t%s\tShould be able to buy coffee: %v", failed, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould not block a call on an observer reading the state.", failed)
		}
		t.Logf("\t%s\tShould not block a call on an observer reading the state.", success)

		exp := []seen{{nonce: 1, record: 1, count: 1}, {nonce: 2, record: 2, count: 2}}
		if len(got) != len(exp) {
			t.Fatalf("\t%s\tShould notify once per payment, got %d.", failed, len(got))
		}
		for i := range exp {
			if got[i] != exp[i] {
				t.Logf("\t%s\tgot: %+v", failed, got[i])
				t.Logf("\t%s\texp: %+v", failed, exp[i])
				t.Fatalf("\t%s\tShould see the fully applied call %d.", failed, i+1)
			}
		}
		t.Logf("\t%s\tShould see every call fully applied.", success)
	}
}
