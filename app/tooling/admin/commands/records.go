package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
)

// Records writes every call found in the journal.
func Records(w io.Writer, storage database.Serializer) error {
	iter := storage.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Record: %d  Time: %d  Call: %s  Value: %d  Hash: %s\n",
			record.Number, record.TimeStamp, record.Call, record.Call.Value, record.Hash())
	}

	return nil
}
