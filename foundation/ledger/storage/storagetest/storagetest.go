// Package storagetest provides the behavior checks every journal
// serializer must pass.
package storagetest

import (
	"math/big"
	"testing"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Record constructs a record for the specified number.
func Record(num uint64) database.Record {
	call := database.NewBuyCoffeeCall(4202, num, 10*num, "mimi", "this is a gift")

	return database.Record{
		Number: num,
		Call: database.SignedCall{
			Call: call,
			V:    big.NewInt(29),
			R:    big.NewInt(int64(num)),
			S:    big.NewInt(int64(num) + 1),
		},
		TimeStamp: 1700000000 + num,
	}
}

// Run writes a set of records, reads them back by number and through the
// iterator, then resets the journal.
func Run(t *testing.T, ser database.Serializer) {
	const total = 3

	t.Log("Given the need to journal executed calls.")
	{
		for num := uint64(1); num <= total; num++ {
			if err := ser.Write(Record(num)); err != nil {
				t.Fatalf("\t%s\tShould be able to write record %d: %v", failed, num, err)
			}
		}
		t.Logf("\t%s\tShould be able to write %d records.", success, total)

		if err := ser.Write(Record(2)); err == nil {
			t.Fatalf("\t%s\tShould not be able to write record 2 twice.", failed)
		}
		t.Logf("\t%s\tShould not be able to write record 2 twice.", success)

		record, err := ser.GetRecord(2)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to get record 2: %v", failed, err)
		}

		exp := Record(2)
		if record.Hash() != exp.Hash() {
			t.Logf("\t%s\tgot: %+v", failed, record)
			t.Logf("\t%s\texp: %+v", failed, exp)
			t.Fatalf("\t%s\tShould get back the same record.", failed)
		}
		t.Logf("\t%s\tShould get back the same record.", success)

		if _, err := ser.GetRecord(total + 1); err == nil {
			t.Fatalf("\t%s\tShould not find a record past the end.", failed)
		}
		t.Logf("\t%s\tShould not find a record past the end.", success)

		var count uint64
		iter := ser.ForEach()
		for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to iterate: %v", failed, err)
			}

			count++
			if record.Number != count {
				t.Fatalf("\t%s\tShould iterate in order, got %d, exp %d.", failed, record.Number, count)
			}
		}

		if count != total {
			t.Logf("\t%s\tgot: %d", failed, count)
			t.Logf("\t%s\texp: %d", failed, total)
			t.Fatalf("\t%s\tShould iterate over every record.", failed)
		}
		t.Logf("\t%s\tShould iterate over every record in order.", success)

		if err := ser.Reset(); err != nil {
			t.Fatalf("\t%s\tShould be able to reset the journal: %v", failed, err)
		}

		iter = ser.ForEach()
		if _, err := iter.Next(); err != nil || !iter.Done() {
			t.Fatalf("\t%s\tShould have an empty journal after reset: %v", failed, err)
		}
		t.Logf("\t%s\tShould have an empty journal after reset.", success)

		if err := ser.Write(Record(1)); err != nil {
			t.Fatalf("\t%s\tShould be able to write record 1 after reset: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write record 1 after reset.", success)
	}
}
