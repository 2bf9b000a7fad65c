// Package level implements the ability to read and write journal records
// to a LevelDB database.
package level

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// recordPrefix is the key prefix for every journal record. The number is
// zero padded so keys sort in record order.
const recordPrefix = "r-"

// Level represents the serialization implementation for reading and storing
// records in LevelDB. This implements the database.Serializer interface.
type Level struct {
	db *leveldb.DB
}

// New opens or creates the LevelDB database at the specified path.
func New(dbPath string) (*Level, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb %s: %w", dbPath, err)
	}

	return &Level{db: db}, nil
}

// Close releases the database.
func (l *Level) Close() error {
	return l.db.Close()
}

// Write stores the record under its number. A record number is never
// written twice.
func (l *Level) Write(record database.Record) error {
	key := recordKey(record.Number)

	exists, err := l.db.Has(key, nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("record %d already exists", record.Number)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return l.db.Put(key, data, &opt.WriteOptions{Sync: true})
}

// GetRecord locates and returns the specified record by number.
func (l *Level) GetRecord(num uint64) (database.Record, error) {
	data, err := l.db.Get(recordKey(num), nil)
	if err != nil {
		return database.Record{}, err
	}

	var record database.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return database.Record{}, fmt.Errorf("decoding record %d: %w", num, err)
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records
// starting with record number 1.
func (l *Level) ForEach() database.Iterator {
	return &levelIterator{level: l}
}

// Reset deletes every journal record.
func (l *Level) Reset() error {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// recordKey forms the key for the specified record.
func recordKey(num uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", recordPrefix, num))
}

// =============================================================================

// levelIterator walks the records by number until one is missing.
type levelIterator struct {
	level   *Level // Access to the storage API.
	current uint64 // Current record number being iterated over.
	eoj     bool   // Represents the iterator is at the end of the journal.
}

// Next retrieves the next record.
func (li *levelIterator) Next() (database.Record, error) {
	if li.eoj {
		return database.Record{}, errors.New("end of journal")
	}

	li.current++
	record, err := li.level.GetRecord(li.current)
	if errors.Is(err, leveldb.ErrNotFound) {
		li.eoj = true
		return database.Record{}, nil
	}

	return record, err
}

// Done returns the end of journal value.
func (li *levelIterator) Done() bool {
	return li.eoj
}
