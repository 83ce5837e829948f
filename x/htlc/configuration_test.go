package htlc

import (
	"encoding/json"
	"testing"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/gconf"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest"
	"github.com/obridge/weave/weavetest/assert"
	"github.com/obridge/weave/x/settings"
)

type handlerCollector map[string]weave.Handler

func (c handlerCollector) Handle(path string, h weave.Handler) {
	c[path] = h
}

func TestUpdateConfiguration(t *testing.T) {
	env := newTestEnv(t, &settings.Registry{})
	owner := weavetest.NewCondition()

	routes := make(handlerCollector)
	RegisterRoutes(routes, env.auth, env.bank)
	h := routes[UpdateConfigurationMsg{}.Path()]

	create := &weavetest.Tx{Msg: &UpdateConfigurationMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Patch: &Configuration{
			Metadata:      &weave.Metadata{Schema: 1},
			Owner:         owner.Address(),
			ConfirmPolicy: ConfirmByParties,
		},
	}}
	// Only the registry administrator can create the configuration.
	_, err := h.Deliver(env.ctx(1000, owner), env.db, create)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = h.Deliver(env.ctx(1000, env.admin), env.db, create)
	assert.Nil(t, err)

	policy, err := loadConfirmPolicy(env.db)
	assert.Nil(t, err)
	assert.Equal(t, ConfirmByParties, policy)

	// From now on the owner is in charge.
	relax := &weavetest.Tx{Msg: &UpdateConfigurationMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Patch:    &Configuration{ConfirmPolicy: ConfirmByAnyone},
	}}
	_, err = h.Deliver(env.ctx(1000, env.admin), env.db, relax)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = h.Deliver(env.ctx(1000, owner), env.db, relax)
	assert.Nil(t, err)

	var conf Configuration
	assert.Nil(t, gconf.Load(env.db, packageName, &conf))
	assert.Equal(t, ConfirmByAnyone, conf.ConfirmPolicy)
	assert.Equal(t, owner.Address(), conf.Owner)
}

func TestConfigurationGenesis(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	raw, err := json.Marshal(map[string]interface{}{
		"conf": map[string]interface{}{
			"htlc": map[string]interface{}{
				"metadata":       map[string]interface{}{"schema": 1},
				"owner":          owner,
				"confirm_policy": "parties",
			},
		},
	})
	assert.Nil(t, err)
	var opts weave.Options
	assert.Nil(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))
	policy, err := loadConfirmPolicy(db)
	assert.Nil(t, err)
	assert.Equal(t, ConfirmByParties, policy)

	// Without configuration anyone can confirm.
	policy, err = loadConfirmPolicy(store.MemStore())
	assert.Nil(t, err)
	assert.Equal(t, ConfirmByAnyone, policy)
}
