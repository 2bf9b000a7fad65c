// Package database handles the lower level support for the memo ledger:
// account balances and nonces, the signed calls accounts submit, and the
// interface used to journal executed calls to storage.
package database

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
)

// Set of errors returned by the database and call validation.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferRejected  = errors.New("transfer rejected by receiver")
	ErrInvalidNonce      = errors.New("invalid nonce")
	ErrWrongChain        = errors.New("wrong chain id")
	ErrUnknownMethod     = errors.New("unknown method")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// Serializer interface represents the behavior required to be implemented by any
// package providing support for journaling executed calls.
type Serializer interface {
	Write(record Record) error
	GetRecord(num uint64) (Record, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the journal.
type Iterator interface {
	Next() (Record, error)
	Done() bool
}

// =============================================================================

// Database manages data related to accounts who have transacted on the ledger.
type Database struct {
	mu       sync.RWMutex
	genesis  genesis.Genesis
	accounts map[AccountID]Account
	refuse   map[AccountID]bool
}

// New constructs a new database and applies account genesis information.
func New(gen genesis.Genesis) (*Database, error) {
	db := Database{
		genesis: gen,
	}

	if err := db.Reset(); err != nil {
		return nil, err
	}

	return &db, nil
}

// Reset re-initializes the database back to the genesis state.
func (db *Database) Reset() error {
	accounts := make(map[AccountID]Account)
	for accountStr, balance := range db.genesis.Balances {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return fmt.Errorf("genesis balance %q: %w", accountStr, err)
		}
		accounts[accountID] = Account{AccountID: accountID, Balance: balance}
	}

	refuse := make(map[AccountID]bool)
	for _, accountStr := range db.genesis.RefuseTransfers {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return fmt.Errorf("genesis refusing account %q: %w", accountStr, err)
		}
		refuse[accountID] = true
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = accounts
	db.refuse = refuse

	return nil
}

// Genesis returns the genesis information the database was built from.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// Query returns the account for the specified id. Accounts that never
// transacted are returned with a zero balance and nonce.
func (db *Database) Query(accountID AccountID) Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return Account{AccountID: accountID}
	}

	return account
}

// Balance returns the current balance for the specified account.
func (db *Database) Balance(accountID AccountID) uint64 {
	return db.Query(accountID).Balance
}

// Copy makes a copy of the current accounts in the database.
func (db *Database) Copy() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account, len(db.accounts))
	for accountID, account := range db.accounts {
		accounts[accountID] = account
	}
	return accounts
}

// Accounts returns the accounts sorted by account id.
func (db *Database) Accounts() []Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	list := make([]Account, 0, len(db.accounts))
	for _, account := range db.accounts {
		list = append(list, account)
	}
	sort.Sort(byAccount(list))

	return list
}

// Accepts reports whether the specified account will accept an incoming
// transfer. Accounts listed as refusing transfers in genesis never do.
func (db *Database) Accepts(accountID AccountID) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.refuse[accountID] {
		return fmt.Errorf("%w: %s", ErrTransferRejected, accountID)
	}

	return nil
}

// Transfer moves the amount from one account to another. Either both
// balances change or neither does.
func (db *Database) Transfer(fromID AccountID, toID AccountID, amount uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	from := db.accounts[fromID]
	from.AccountID = fromID

	if from.Balance < amount {
		return fmt.Errorf("%w: bal %d, needed %d", ErrInsufficientFunds, from.Balance, amount)
	}

	if db.refuse[toID] {
		return fmt.Errorf("%w: %s", ErrTransferRejected, toID)
	}

	if fromID == toID {
		return nil
	}

	to := db.accounts[toID]
	to.AccountID = toID

	from.Balance -= amount
	to.Balance += amount

	db.accounts[fromID] = from
	db.accounts[toID] = to

	return nil
}

// ValidateNonce checks the nonce is greater than the last nonce used by
// the account.
func (db *Database) ValidateNonce(accountID AccountID, nonce uint64) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account := db.accounts[accountID]
	if nonce <= account.Nonce {
		return fmt.Errorf("%w: nonce too small, current %d, provided %d", ErrInvalidNonce, account.Nonce, nonce)
	}

	return nil
}

// UpdateNonce records the nonce as the last one used by the account.
func (db *Database) UpdateNonce(accountID AccountID, nonce uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.accounts[accountID]
	account.AccountID = accountID
	account.Nonce = nonce

	db.accounts[accountID] = account
}
