// Package memo implements the memo ledger contract. Accounts pay the
// contract to record a memo (a name and a message) and the owner, fixed
// when the ledger is constructed, withdraws the accumulated tips.
//
// The ledger performs no serialization of calls beyond its own locking;
// the execution environment is expected to submit state changing calls
// one at a time.
package memo

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
)

// Set of errors returned by the ledger.
var (
	ErrZeroValue    = errors.New("payment value must be greater than zero")
	ErrUnauthorized = errors.New("caller is not the owner")
)

// Memo is the record of one payment. Memos are immutable once appended.
type Memo struct {
	From      database.AccountID `json:"from"`
	To        database.AccountID `json:"to"`
	TimeStamp uint64             `json:"timestamp"`
	Name      string             `json:"name"`
	Message   string             `json:"message"`
}

// Payment is the input for recording a memo. TimeStamp is the execution
// time of the call and is assigned by the environment, never the payer.
type Payment struct {
	From      database.AccountID
	Value     uint64
	TimeStamp uint64
	Name      string
	Message   string
}

// Bank represents the behavior the ledger needs from the accounts that
// hold the native currency.
type Bank interface {
	Balance(accountID database.AccountID) uint64
	Accepts(accountID database.AccountID) error
	Transfer(fromID database.AccountID, toID database.AccountID, amount uint64) error
}

// CommitFunc is called once every check for a call has passed and before
// any state is changed. Returning an error aborts the call.
type CommitFunc func() error

// Observer is called with every memo recorded by the ledger.
type Observer func(memo Memo)

// =============================================================================

// Ledger maintains the append-only list of memos and the owner that is
// allowed to withdraw the tips.
type Ledger struct {
	owner    database.AccountID
	contract database.AccountID
	bank     Bank

	mu    sync.RWMutex
	memos []Memo

	deferred bool
	pending  []Memo

	emitMu    sync.Mutex
	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

// Option changes how a ledger is constructed.
type Option func(l *Ledger)

// WithDeferredNotify holds NewMemo notifications until Flush is called.
// A host uses it to finish its own bookkeeping for a call, and release its
// own locks, before observers run.
func WithDeferredNotify() Option {
	return func(l *Ledger) {
		l.deferred = true
	}
}

// New constructs a ledger owned by the specified account. The tips are
// held by the contract account derived from the owner.
func New(owner database.AccountID, bank Bank, options ...Option) (*Ledger, error) {

	// Callers are recovered in checksum form so the owner must be too.
	owner, err := database.ToAccountID(string(owner))
	if err != nil {
		return nil, fmt.Errorf("invalid owner account: %w", err)
	}

	l := Ledger{
		owner:     owner,
		contract:  database.ContractAccountID(owner),
		bank:      bank,
		observers: make(map[int]Observer),
	}

	for _, option := range options {
		option(&l)
	}

	return &l, nil
}

// Owner returns the account that owns the ledger.
func (l *Ledger) Owner() database.AccountID {
	return l.owner
}

// ContractID returns the account holding the accumulated tips.
func (l *Ledger) ContractID() database.AccountID {
	return l.contract
}

// Balance returns the tips currently held by the ledger.
func (l *Ledger) Balance() uint64 {
	return l.bank.Balance(l.contract)
}

// Memos returns a copy of every memo in the order they were recorded.
func (l *Ledger) Memos() []Memo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	memos := make([]Memo, len(l.memos))
	copy(memos, l.memos)

	return memos
}

// Count returns the number of memos recorded.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.memos)
}

// BuyCoffee moves the payment value from the payer into the ledger and
// records a memo addressed to the owner. Observers are notified after the
// memo is recorded. A zero value payment is rejected.
func (l *Ledger) BuyCoffee(p Payment, commit CommitFunc) (Memo, error) {
	l.mu.Lock()

	if p.Value == 0 {
		l.mu.Unlock()
		return Memo{}, ErrZeroValue
	}

	if bal := l.bank.Balance(p.From); bal < p.Value {
		l.mu.Unlock()
		return Memo{}, fmt.Errorf("%w: bal %d, needed %d", database.ErrInsufficientFunds, bal, p.Value)
	}

	if err := l.bank.Accepts(l.contract); err != nil {
		l.mu.Unlock()
		return Memo{}, err
	}

	if err := run(commit); err != nil {
		l.mu.Unlock()
		return Memo{}, err
	}

	if err := l.bank.Transfer(p.From, l.contract, p.Value); err != nil {
		l.mu.Unlock()
		return Memo{}, err
	}

	memo := Memo{
		From:      p.From,
		To:        l.owner,
		TimeStamp: p.TimeStamp,
		Name:      p.Name,
		Message:   p.Message,
	}
	l.memos = append(l.memos, memo)

	if l.deferred {
		l.pending = append(l.pending, memo)
		l.mu.Unlock()
		return memo, nil
	}

	// Take the emit lock before releasing the ledger so notifications go
	// out in the order the memos were recorded.
	l.emitMu.Lock()
	l.mu.Unlock()

	defer l.emitMu.Unlock()
	l.emit(memo)

	return memo, nil
}

// WithdrawTips transfers the entire balance held by the ledger to the
// owner. Only the owner can call it. When the owner refuses the transfer
// the balance is left untouched.
func (l *Ledger) WithdrawTips(caller database.AccountID, commit CommitFunc) (uint64, error) {
	if caller != l.owner {
		return 0, fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	amount := l.bank.Balance(l.contract)

	if err := l.bank.Accepts(l.owner); err != nil {
		return 0, err
	}

	if err := run(commit); err != nil {
		return 0, err
	}

	if err := l.bank.Transfer(l.contract, l.owner, amount); err != nil {
		return 0, err
	}

	return amount, nil
}

// Subscribe registers the observer for every memo recorded from now on.
// Observers are called synchronously and must not make state changing
// calls against the ledger. The returned function removes the observer.
func (l *Ledger) Subscribe(obs Observer) (unsubscribe func()) {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()

	id := l.nextObsID
	l.nextObsID++
	l.observers[id] = obs

	var once sync.Once
	return func() {
		once.Do(func() {
			l.obsMu.Lock()
			defer l.obsMu.Unlock()

			delete(l.observers, id)
		})
	}
}

// Flush delivers the notifications held back by WithDeferredNotify in the
// order the memos were recorded. It returns once every memo recorded
// before the call has been delivered.
func (l *Ledger) Flush() {
	if !l.deferred {
		return
	}

	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, memo := range pending {
		l.emit(memo)
	}
}

// =============================================================================

// emit calls every registered observer in registration order.
func (l *Ledger) emit(memo Memo) {
	l.obsMu.Lock()
	ids := make([]int, 0, len(l.observers))
	for id := range l.observers {
		ids = append(ids, id)
	}
	observers := make([]Observer, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		observers = append(observers, l.observers[id])
	}
	l.obsMu.Unlock()

	for _, obs := range observers {
		obs(memo)
	}
}

// run executes the commit function when one is provided.
func run(commit CommitFunc) error {
	if commit == nil {
		return nil
	}
	return commit()
}
