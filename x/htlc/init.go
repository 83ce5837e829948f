package htlc

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/gconf"
)

// Initializer fulfils the weave.Initializer interface to load the
// configuration of this extension from the genesis file.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

func (Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	return gconf.InitConfig(db, opts, packageName, &Configuration{})
}
