package dump

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ID is a unique identifier of the snapshot.
type ID struct {
	// Label of the snapshot source (e.g. testnet, local).
	Label string
	// Number of calls committed in the environment at the snapshot moment.
	Height uint64
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(x.Height, 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseUint(ss[1], 10, 64)
	if err != nil {
		return fmt.Errorf("decode height from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Height = n

	return nil
}

// Header is a JSON-encoded summary of the snapshot.
type Header struct {
	// Ledger account.
	Account string `json:"account"`
	// Version of the ledger state.
	Version int `json:"version"`
	// Decimal total token supply.
	TotalSupply string `json:"totalSupply"`
	// Storage units used by the ledger account.
	StorageUsage uint64 `json:"storageUsage"`
}

// Sections of the storage CSV.
const (
	SectionLedger = "ledger"
	SectionNative = "native"
)

// global encoding of binary values.
var _encoding = base64.StdEncoding

// dumpStreams groups data streams for the header and storage items.
type dumpStreams struct {
	header, storageItems io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	_ = x.storageItems.Close()
	_ = x.header.Close()
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with the header
	headerFileSuffix = "ledger.json"
	// suffix of file with storage items
	storageFileSuffix = "storage.csv"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathStorage := filepath.Join(dir, strings.Join([]string{id.String(), storageFileSuffix}, sep))
	if !read {
		if err = checkFileNotExists(pathStorage); err != nil {
			return err
		}
	}

	pathHeader := filepath.Join(dir, strings.Join([]string{id.String(), headerFileSuffix}, sep))
	if !read {
		if err = checkFileNotExists(pathHeader); err != nil {
			return err
		}
	}

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	d.storageItems, err = os.OpenFile(pathStorage, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with storage items: %w", err)
	}

	d.header, err = os.OpenFile(pathHeader, flag, perm)
	if err != nil {
		_ = d.storageItems.Close()
		return fmt.Errorf("open file with header: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
