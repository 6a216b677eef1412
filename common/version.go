package common

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/host"
)

const (
	major = 0
	minor = 3
	patch = 0

	// Versions from which the stored state can be used as is.
	prevMajor = 0
	prevMinor = 2
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// VersionKey is a storage key of the ledger state version.
var VersionKey = []byte{'v'}

var (
	// ErrVersionMismatch is returned by CheckVersion if the stored state is
	// too old or was written by a newer release.
	ErrVersionMismatch = errors.New("state version mismatch")

	// ErrNoVersion is returned by StoredVersion if no version is stored.
	ErrNoVersion = errors.New("state version is missing")
)

// CheckVersion checks that the state written by the given version can be
// used by the current one.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from > Version {
		return fmt.Errorf("%w: %d is newer than %d", ErrVersionMismatch, from, Version)
	}
	return nil
}

// StoredVersion returns the version the state was initialized with.
func StoredVersion(st host.Storage) (int, error) {
	data := st.Get(VersionKey)
	if data == nil {
		return 0, ErrNoVersion
	}

	return int(GetInteger(st, VersionKey).Int64()), nil
}

// PutVersion stores current version.
func PutVersion(st host.Storage) {
	PutInteger(st, VersionKey, big.NewInt(Version))
}
