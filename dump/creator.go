package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Creator dumps the ledger state. Output file format:
//
//	'<label>-<height>-ledger.json': JSON header
//	'<label>-<height>-storage.csv': CSV of storage items
//
// Storage CSV are 'section,key,value' where section is SectionLedger for
// ledger account storage and SectionNative for native balances. Binary
// key-value are base64-encoded.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps the ledger into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	if id.Label == "" || strings.Contains(id.Label, sep) {
		return nil, errors.New("dump label must be non-empty and must not contain '" + sep + "'")
	}

	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// Section returns StorageWriter for the named section of the storage dump.
func (x *Creator) Section(name string) *StorageWriter {
	return &StorageWriter{
		name: name,
		csv:  x.storageItemsCSV,
	}
}

// Flush writes the header and flushes accumulated storage items to the file
// system.
func (x *Creator) Flush(hdr Header) error {
	jEnc := json.NewEncoder(x.dumpStreams.header)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(hdr)
	if err != nil {
		return fmt.Errorf("encode header to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// StorageWriter writes data into the section of the storage dump.
type StorageWriter struct {
	name string
	csv  *csv.Writer
}

// Write saves given binary key-value into the section.
func (x *StorageWriter) Write(key, value []byte) error {
	err := x.csv.Write([]string{
		x.name,
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}
