/*
Package config describes configuration of the token ledger tools.

Configuration is read from the YAML file:

	Ledger:
	  Account: ft.test
	  Owner: owner.test
	  TotalSupply: "1000000000000000000000000000"
	  StorageByteCost: "10000000000000000000"
	  StorageRecordOverhead: 40
	DB:
	  Type: boltdb
	  BoltDBOptions:
	    FilePath: ./ledger.bolt

Amounts are decimal strings since they may not fit into 64 bits.
*/
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/ftledger/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

// Config is a root configuration structure.
type Config struct {
	Ledger Ledger                   `yaml:"Ledger"`
	DB     dbconfig.DBConfiguration `yaml:"DB"`
}

// Ledger groups parameters of the ledger and its host environment.
type Ledger struct {
	// Account of the ledger itself.
	Account string `yaml:"Account"`
	// Initial holder of the whole supply.
	Owner string `yaml:"Owner"`
	// Initial token supply.
	TotalSupply string `yaml:"TotalSupply"`
	// Native currency price of a storage unit.
	StorageByteCost string `yaml:"StorageByteCost"`
	// Storage units charged per stored item.
	StorageRecordOverhead int64 `yaml:"StorageRecordOverhead"`
}

// Default values.
const (
	DefaultAccount     = "ft.ledger"
	DefaultTotalSupply = "1000000000000000000000000000"
	DefaultDBType      = "inmemory"
)

// Default returns configuration with all values set to defaults.
func Default() Config {
	return Config{
		Ledger: Ledger{
			Account:               DefaultAccount,
			TotalSupply:           DefaultTotalSupply,
			StorageByteCost:       sim.DefaultStorageByteCost,
			StorageRecordOverhead: sim.DefaultRecordOverhead,
		},
		DB: dbconfig.DBConfiguration{
			Type: DefaultDBType,
		},
	}
}

// Load reads configuration from the YAML file at path. Missing fields are
// set to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	return Decode(data)
}

// Decode parses YAML configuration. Missing fields are set to defaults.
func Decode(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode YAML: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration values.
func (c Config) Validate() error {
	err := ledger.ValidateAccountID(c.Ledger.Account)
	if err != nil {
		return fmt.Errorf("ledger account: %w", err)
	}

	if c.Ledger.Owner != "" {
		err = ledger.ValidateAccountID(c.Ledger.Owner)
		if err != nil {
			return fmt.Errorf("ledger owner: %w", err)
		}
	}

	supply, err := c.Ledger.Supply()
	if err != nil {
		return err
	}
	if supply.Sign() <= 0 {
		return errors.New("total supply must be positive")
	}

	byteCost, err := c.Ledger.ByteCost()
	if err != nil {
		return err
	}
	if byteCost.Sign() < 0 {
		return errors.New("storage byte cost must not be negative")
	}

	if c.Ledger.StorageRecordOverhead < 0 {
		return errors.New("storage record overhead must not be negative")
	}

	switch c.DB.Type {
	case "inmemory":
	case "boltdb":
		if c.DB.BoltDBOptions.FilePath == "" {
			return errors.New("missing BoltDB file path")
		}
	case "leveldb":
		if c.DB.LevelDBOptions.DataDirectoryPath == "" {
			return errors.New("missing LevelDB data directory")
		}
	default:
		return fmt.Errorf("unsupported DB type '%s'", c.DB.Type)
	}

	return nil
}

// Supply returns parsed TotalSupply.
func (l Ledger) Supply() (*big.Int, error) {
	return parseAmount("total supply", l.TotalSupply)
}

// ByteCost returns parsed StorageByteCost.
func (l Ledger) ByteCost() (*big.Int, error) {
	return parseAmount("storage byte cost", l.StorageByteCost)
}

// Environment returns host environment configuration.
func (l Ledger) Environment() (sim.Config, error) {
	byteCost, err := l.ByteCost()
	if err != nil {
		return sim.Config{}, err
	}

	res := sim.Config{
		Account:         l.Account,
		StorageByteCost: byteCost,
		RecordOverhead:  l.StorageRecordOverhead,
	}

	if res.RecordOverhead == 0 {
		// zero means default for the environment
		res.RecordOverhead = -1
	}

	return res, nil
}

func parseAmount(name, s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s '%s'", name, s)
	}
	return n, nil
}
