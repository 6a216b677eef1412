package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/ftledger/common"
)

// storesPerAccount is a number of storage items written on registration of
// a single account. Must match the account record layout.
const storesPerAccount = 1

// sampleAmount is the widest amount priced by the registration estimate.
var sampleAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// sampleID has the length of the longest account ID but can't collide with
// any valid one.
var sampleID = strings.Repeat("~", MaxAccountIDLength)

// MeasureRegistrationFootprint returns number of storage units a single
// account registration consumes. It writes a sample account into the storage
// and removes it before returning.
func (l *Ledger) MeasureRegistrationFootprint() uint64 {
	key := accountKey(sampleID)
	sample := Account{
		Balance:    sampleAmount,
		Registrant: sampleID,
		Escrow:     sampleAmount,
	}

	before := l.host.StorageUsage()

	defer l.st.Delete(key)

	err := common.SetSerialized(l.st, key, &sample)
	if err != nil {
		panic(fmt.Sprintf("write sample account: %v", err))
	}

	return (l.host.StorageUsage() - before) * storesPerAccount
}

// EstimateRegistrationCost returns native currency amount covering storage of
// a single account given the price of a storage unit.
func (l *Ledger) EstimateRegistrationCost(byteCost *big.Int) *big.Int {
	units := new(big.Int).SetUint64(l.MeasureRegistrationFootprint())
	return units.Mul(units, byteCost)
}
