// Package commands contains the functionality for the set of admin commands.
package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
)

// Balances writes the current set of balances. If an account is provided
// only that account is written.
func Balances(w io.Writer, account string, st *state.State, ns *nameservice.NameService) error {
	accounts := st.Accounts()

	if account != "" {
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return err
		}
		accounts = []database.Account{st.QueryAccount(accountID)}
	}

	latest := st.LatestRecord()
	fmt.Fprintf(w, "LatestRecord: %d  Hash: %s\n\n", latest.Number, latest.Hash())

	for _, act := range accounts {
		fmt.Fprintf(w, "Account: %s  Name: %s  Nonce: %d  Balance: %d\n",
			act.AccountID, ns.Lookup(act.AccountID), act.Nonce, act.Balance)
	}

	return nil
}
