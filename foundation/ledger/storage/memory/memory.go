// Package memory implements the ability to read and write journal records
// to memory using a slice.
package memory

import (
	"errors"
	"sync"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
)

// Memory represents the serialization implementation for reading and storing
// records in memory using a slice. This implements the database.Serializer
// interface.
type Memory struct {
	mu      sync.RWMutex
	records []database.Record
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified record and stores it in memory.
func (m *Memory) Write(record database.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(m.records))+1 != record.Number {
		return errors.New("record is out of order")
	}

	m.records = append(m.records, record)

	return nil
}

// GetRecord locates and returns the specified record by number.
func (m *Memory) GetRecord(num uint64) (database.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num == 0 || num > uint64(len(m.records)) {
		return database.Record{}, errors.New("record does not exist")
	}

	return m.records[num-1], nil
}

// ForEach returns an iterator to walk through all the records
// starting with record number 1.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the journal.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the records in memory.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current record number being iterated over.
	eoj     bool    // Represents the iterator is at the end of the journal.
}

// Next retrieves the next record.
func (mi *memoryIterator) Next() (database.Record, error) {
	if mi.eoj {
		return database.Record{}, errors.New("end of journal")
	}

	mi.current++
	record, err := mi.storage.GetRecord(mi.current)
	if err != nil {
		mi.eoj = true
		return database.Record{}, nil
	}

	return record, nil
}

// Done returns the end of journal value.
func (mi *memoryIterator) Done() bool {
	return mi.eoj
}
