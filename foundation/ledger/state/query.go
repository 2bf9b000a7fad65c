package state

import (
	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
)

// Owner returns the account that owns the ledger. Clients call this to
// check the ledger is up and deployed.
func (s *State) Owner() database.AccountID {
	return s.ledger.Owner()
}

// ContractID returns the account holding the accumulated tips.
func (s *State) ContractID() database.AccountID {
	return s.ledger.ContractID()
}

// ContractBalance returns the tips waiting to be withdrawn.
func (s *State) ContractBalance() uint64 {
	return s.ledger.Balance()
}

// Memos returns every memo, oldest first.
func (s *State) Memos() []memo.Memo {
	return s.ledger.Memos()
}

// MemoCount returns the number of memos recorded.
func (s *State) MemoCount() int {
	return s.ledger.Count()
}

// Subscribe registers an observer for every memo recorded from now on.
func (s *State) Subscribe(obs memo.Observer) (unsubscribe func()) {
	return s.ledger.Subscribe(obs)
}

// Accounts returns every known account sorted by id.
func (s *State) Accounts() []database.Account {
	return s.db.Accounts()
}

// QueryAccount returns the account for the specified id.
func (s *State) QueryAccount(accountID database.AccountID) database.Account {
	return s.db.Query(accountID)
}

// LatestRecord returns the last call written to the journal.
func (s *State) LatestRecord() database.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest
}

// Genesis returns the genesis information the ledger started from.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}
