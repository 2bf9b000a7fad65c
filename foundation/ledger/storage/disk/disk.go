// Package disk implements the ability to read and write journal records
// to disk, one JSON file per record.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ardanlabs/memoledger/foundation/ledger/database"
)

// Disk represents the serialization implementation for reading and storing
// records in their own separate files on disk. This implements the
// database.Serializer interface.
type Disk struct {
	dbPath string
}

// tempPattern names the files a record is written to before it's moved
// into place.
const tempPattern = "record-*.tmp"

// New constructs a Disk value for use. Temp files left behind by a write
// that never completed are removed.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	stale, err := filepath.Glob(filepath.Join(dbPath, tempPattern))
	if err != nil {
		return nil, err
	}
	for _, name := range stale {
		if err := os.Remove(name); err != nil {
			return nil, fmt.Errorf("removing partial record: %w", err)
		}
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified record and stores it on disk in a file labeled
// with the record number. A record number is never written twice. The
// record is synced to a temp file first and renamed into place, so a
// record file is either complete or missing.
func (d *Disk) Write(record database.Record) error {
	path := d.getPath(record.Number)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("record %d: %w", record.Number, fs.ErrExist)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(d.dbPath, tempPattern)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return err
	}

	return nil
}

// GetRecord locates and returns the contents of the specified record
// by number.
func (d *Disk) GetRecord(num uint64) (database.Record, error) {
	f, err := os.OpenFile(d.getPath(num), os.O_RDONLY, 0600)
	if err != nil {
		return database.Record{}, err
	}
	defer f.Close()

	var record database.Record
	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return database.Record{}, fmt.Errorf("decoding record %d: %w", num, err)
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records
// starting with record number 1.
func (d *Disk) ForEach() database.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the journal on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(num uint64) string {
	name := strconv.FormatUint(num, 10)
	return filepath.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading records on disk.
type diskIterator struct {
	disk    *Disk  // Access to the storage API.
	current uint64 // Current record number being iterated over.
	eoj     bool   // Represents the iterator is at the end of the journal.
}

// Next retrieves the next record from disk. A missing file marks the end
// of the journal.
func (di *diskIterator) Next() (database.Record, error) {
	if di.eoj {
		return database.Record{}, errors.New("end of journal")
	}

	di.current++
	record, err := di.disk.GetRecord(di.current)
	if errors.Is(err, fs.ErrNotExist) {
		di.eoj = true
		return database.Record{}, nil
	}

	return record, err
}

// Done returns the end of journal value.
func (di *diskIterator) Done() bool {
	return di.eoj
}
