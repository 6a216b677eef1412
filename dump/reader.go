package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// IterateDumps iterates over all dumps collected by the Creator in the
// specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, headerFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		err = initDumpStreams(&streams, dir, id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromDumpStreams(streams.header, streams.storageItems)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

// ReadDump reads the dump with the given ID from the directory.
func ReadDump(dir string, id ID) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, id, true)
	if err != nil {
		return nil, err
	}

	defer streams.close()

	var r Reader

	err = r.fromDumpStreams(streams.header, streams.storageItems)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

type kv struct{ k, v []byte }

// Reader reads the ledger state collected in the superior dump.
type Reader struct {
	header   Header
	mStorage map[string][]kv
}

func (x *Reader) fromDumpStreams(rHeader, rStorageItems io.Reader) error {
	x.header = Header{}

	err := json.NewDecoder(rHeader).Decode(&x.header)
	if err != nil {
		return fmt.Errorf("decode header from JSON: %w", err)
	}

	var rec []string
	var _kv kv

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	x.mStorage = make(map[string][]kv)

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		_kv.k, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		_kv.v, err = _encoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		x.mStorage[rec[0]] = append(x.mStorage[rec[0]], _kv)
	}
}

// Header returns the dump header.
func (x *Reader) Header() Header {
	return x.header
}

// IterateSection passes all storage items of the named section into f in
// the order they were written.
func (x *Reader) IterateSection(name string, f func(key, value []byte)) {
	kvs := x.mStorage[name]
	for i := range kvs {
		f(kvs[i].k, kvs[i].v)
	}
}
