// Package state is the core API for the memo ledger. It plays the part of
// the execution environment the contract runs in: it authenticates the
// caller, assigns the execution time, executes state changing calls one at
// a time and journals every call that succeeds.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
)

// EventHandler defines a function that is called when events
// occur in the processing of calls.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger.
type Config struct {
	OwnerID   database.AccountID
	Genesis   genesis.Genesis
	Storage   database.Serializer
	EvHandler EventHandler
	Now       func() time.Time
}

// Result is what a successful call produced.
type Result struct {
	Record    database.Record    `json:"record"`
	From      database.AccountID `json:"from"`
	Memo      *memo.Memo         `json:"memo,omitempty"`
	Withdrawn uint64             `json:"withdrawn"`
}

// State manages the memo ledger and the accounts it moves currency between.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	evHandler EventHandler
	now       func() time.Time

	db      *database.Database
	ledger  *memo.Ledger
	storage database.Serializer
	latest  database.Record
}

// New constructs the ledger owned by the configured account and replays
// the journal found in storage.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	db, err := database.New(cfg.Genesis)
	if err != nil {
		return nil, fmt.Errorf("constructing database: %w", err)
	}

	ledger, err := memo.New(cfg.OwnerID, db, memo.WithDeferredNotify())
	if err != nil {
		return nil, fmt.Errorf("constructing ledger: %w", err)
	}

	s := State{
		genesis:   cfg.Genesis,
		evHandler: ev,
		now:       now,
		db:        db,
		ledger:    ledger,
		storage:   cfg.Storage,
	}

	if err := s.replay(); err != nil {
		return nil, err
	}

	// Nobody is subscribed yet, this only drops the replayed memos.
	ledger.Flush()

	ev("state: New: owner[%s] contract[%s] records[%d]", ledger.Owner(), ledger.ContractID(), s.latest.Number)

	return &s, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Shutdown: closing storage")
	return s.storage.Close()
}

// SubmitCall authenticates and executes a call. The call is journaled
// before any state changes and is either fully applied or not at all.
// NewMemo observers run after the call is fully applied and the state lock
// is released, so they can read the state.
func (s *State) SubmitCall(signedCall database.SignedCall) (Result, error) {
	result, err := s.submitCall(signedCall)
	s.ledger.Flush()

	return result, err
}

// submitCall executes the call under the state lock.
func (s *State) submitCall(signedCall database.SignedCall) (Result, error) {
	if err := signedCall.Validate(s.genesis.ChainID); err != nil {
		return Result{}, err
	}

	from, err := signedCall.FromAccount()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", database.ErrInvalidSignature, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.ValidateNonce(from, signedCall.Nonce); err != nil {
		return Result{}, err
	}

	record := database.Record{
		Number:    s.latest.Number + 1,
		Call:      signedCall,
		TimeStamp: uint64(s.now().UTC().Unix()),
	}

	commit := func() error {
		if err := s.storage.Write(record); err != nil {
			return fmt.Errorf("writing record %d: %w", record.Number, err)
		}
		return nil
	}

	result, err := s.execute(from, record, commit)
	if err != nil {
		s.evHandler("state: SubmitCall: %s: rejected: %s", signedCall, err)
		return Result{}, err
	}

	s.evHandler("state: SubmitCall: %s: record[%d] committed", signedCall, record.Number)

	return result, nil
}

// =============================================================================

// replay re-executes every journaled call against the genesis state.
func (s *State) replay() error {
	iter := s.storage.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return fmt.Errorf("reading journal: %w", err)
		}

		if record.Number != s.latest.Number+1 {
			return fmt.Errorf("journal out of order: got record %d, exp %d", record.Number, s.latest.Number+1)
		}

		if err := record.Call.Validate(s.genesis.ChainID); err != nil {
			return fmt.Errorf("replaying record %d: %w", record.Number, err)
		}

		from, err := record.Call.FromAccount()
		if err != nil {
			return fmt.Errorf("replaying record %d: %w", record.Number, err)
		}

		if err := s.db.ValidateNonce(from, record.Call.Nonce); err != nil {
			return fmt.Errorf("replaying record %d: %w", record.Number, err)
		}

		if _, err := s.execute(from, record, nil); err != nil {
			return fmt.Errorf("replaying record %d: %w", record.Number, err)
		}
	}

	return nil
}

// execute dispatches the call to the ledger. The caller must hold the
// state lock.
func (s *State) execute(from database.AccountID, record database.Record, commit memo.CommitFunc) (Result, error) {
	call := record.Call

	result := Result{
		Record: record,
		From:   from,
	}

	switch call.Method {
	case database.MethodBuyCoffee:
		p := memo.Payment{
			From:      from,
			Value:     call.Value,
			TimeStamp: record.TimeStamp,
			Name:      call.Name,
			Message:   call.Message,
		}

		m, err := s.ledger.BuyCoffee(p, commit)
		if err != nil {
			return Result{}, err
		}
		result.Memo = &m

	case database.MethodWithdrawTips:
		amount, err := s.ledger.WithdrawTips(from, commit)
		if err != nil {
			return Result{}, err
		}
		result.Withdrawn = amount

	default:
		return Result{}, fmt.Errorf("%w: %q", database.ErrUnknownMethod, call.Method)
	}

	s.db.UpdateNonce(from, call.Nonce)
	s.latest = record

	return result, nil
}
