package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
)

// Memos writes every memo in the order they were recorded.
func Memos(w io.Writer, st *state.State, ns *nameservice.NameService) error {
	fmt.Fprintf(w, "Owner: %s  Contract: %s  Balance: %d\n\n",
		st.Owner(), st.ContractID(), st.ContractBalance())

	for i, m := range st.Memos() {
		ts := time.Unix(int64(m.TimeStamp), 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "%d: %s  From: %s (%s)  Name: %s  Message: %s\n",
			i+1, ts, m.From, ns.Lookup(m.From), m.Name, m.Message)
	}

	return nil
}
