package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// Genesis file format. AppState holds the configuration of every
// extension, keyed by the extension name.
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState weave.Options `json:"app_state"`
}

// LoadGenesis reads and parses the genesis file at the given path.
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return ParseGenesis(raw)
}

// ParseGenesis decodes a JSON serialized genesis.
func ParseGenesis(raw []byte) (*Genesis, error) {
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if !weave.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInput, "invalid chain id %q", gen.ChainID)
	}
	return &gen, nil
}

const chainIDKey = "_i:chain_id"

// loadChainID returns the chain id stored if any.
func loadChainID(db weave.ReadOnlyKVStore) string {
	v, _ := db.Get([]byte(chainIDKey))
	return string(v)
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name.
func saveChainID(db weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}
	k := []byte(chainIDKey)
	if ok, err := db.Has(k); err != nil {
		return err
	} else if ok {
		return errors.Wrap(errors.ErrDuplicate, "chain id already set")
	}
	return db.Set(k, []byte(chainID))
}
