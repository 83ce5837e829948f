package gconf

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest"
	"github.com/obridge/weave/weavetest/assert"
)

type myconfig struct {
	Owner weave.Address `json:"owner"`
	Num   int64         `json:"num"`
	Str   string        `json:"str"`
}

func (c *myconfig) GetOwner() weave.Address { return c.Owner }

func (c *myconfig) Validate() error {
	if c.Num < 0 {
		return errors.Wrap(errors.ErrInput, "negative num")
	}
	return nil
}

func (c *myconfig) Marshal() ([]byte, error) {
	return codec.NewEncoder().Bytes(1, c.Owner).Int64(2, c.Num).String(3, c.Str).Result()
}

func (c *myconfig) Unmarshal(raw []byte) error {
	*c = myconfig{}
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch field {
		case 1:
			c.Owner, err = d.Bytes()
		case 2:
			c.Num, err = d.Int64()
		case 3:
			c.Str, err = d.String()
		default:
			err = d.Skip()
		}
		if err != nil {
			return err
		}
	}
}

type myconfigMsg struct {
	Patch *myconfig
}

func (*myconfigMsg) Path() string {
	return "mypkg/update_configuration"
}

func (*myconfigMsg) Validate() error {
	return nil
}

func (m *myconfigMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Patch).Result()
}

func (m *myconfigMsg) Unmarshal(raw []byte) error {
	return nil
}

func TestSaveLoad(t *testing.T) {
	db := store.MemStore()

	var conf myconfig
	assert.IsErr(t, errors.ErrNotFound, Load(db, "mypkg", &conf))
	if ok, err := Exists(db, "mypkg"); err != nil || ok {
		t.Fatalf("want no configuration, got %v, %v", ok, err)
	}

	assert.IsErr(t, errors.ErrInput, Save(db, "mypkg", &myconfig{Num: -1}))

	want := &myconfig{Owner: weavetest.NewCondition().Address(), Num: 7, Str: "x"}
	assert.Nil(t, Save(db, "mypkg", want))
	assert.Nil(t, Load(db, "mypkg", &conf))
	assert.Equal(t, want, &conf)

	// Configurations are isolated by package name.
	assert.IsErr(t, errors.ErrNotFound, Load(db, "otherpkg", &conf))
}

func TestInitConfig(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	raw, err := json.Marshal(map[string]interface{}{
		"conf": map[string]interface{}{
			"mypkg": map[string]interface{}{"owner": owner, "num": 3},
		},
	})
	assert.Nil(t, err)
	var opts weave.Options
	assert.Nil(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	assert.Nil(t, InitConfig(db, opts, "mypkg", &myconfig{}))

	var conf myconfig
	assert.Nil(t, Load(db, "mypkg", &conf))
	assert.Equal(t, int64(3), conf.Num)
	assert.Equal(t, owner, conf.Owner)

	// A package without genesis configuration is left unconfigured.
	assert.Nil(t, InitConfig(db, opts, "otherpkg", &myconfig{}))
	assert.IsErr(t, errors.ErrNotFound, Load(db, "otherpkg", &conf))
}

func TestUpdateConfigurationHandler(t *testing.T) {
	owner := weavetest.NewCondition()
	admin := weavetest.NewCondition()

	cases := map[string]struct {
		Init       *myconfig
		InitAdmin  weave.Address
		Patch      *myconfig
		Signer     weave.Condition
		WantErr    *errors.Error
		WantConfig *myconfig
	}{
		"success": {
			Init:       &myconfig{Owner: owner.Address(), Num: 5125, Str: "foobar"},
			Patch:      &myconfig{Num: 333},
			Signer:     owner,
			WantConfig: &myconfig{Owner: owner.Address(), Num: 333, Str: "foobar"},
		},
		"message must be signed by the configuration owner": {
			Init:    &myconfig{Owner: owner.Address(), Num: 5125},
			Patch:   &myconfig{Num: 333},
			Signer:  weavetest.NewCondition(),
			WantErr: errors.ErrUnauthorized,
		},
		"invalid configuration is not accepted": {
			Init:    &myconfig{Owner: owner.Address(), Num: 5125},
			Patch:   &myconfig{Num: -3},
			Signer:  owner,
			WantErr: errors.ErrInput,
		},
		"missing configuration without init admin": {
			Patch:   &myconfig{Owner: owner.Address()},
			Signer:  owner,
			WantErr: errors.ErrUnauthorized,
		},
		"missing configuration created by init admin": {
			InitAdmin:  admin.Address(),
			Patch:      &myconfig{Owner: owner.Address(), Num: 1},
			Signer:     admin,
			WantConfig: &myconfig{Owner: owner.Address(), Num: 1},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.Init != nil {
				assert.Nil(t, Save(db, "mypkg", tc.Init))
			}
			var initAdmin func(weave.ReadOnlyKVStore) (weave.Address, error)
			if tc.InitAdmin != nil {
				initAdmin = func(weave.ReadOnlyKVStore) (weave.Address, error) {
					return tc.InitAdmin, nil
				}
			}
			auth := &weavetest.Auth{Signer: tc.Signer}
			h := NewUpdateConfigurationHandler("mypkg", &myconfig{}, auth, initAdmin)
			tx := &weavetest.Tx{Msg: &myconfigMsg{Patch: tc.Patch}}

			_, err := h.Deliver(context.Background(), db, tx)
			assert.IsErr(t, tc.WantErr, err)

			if tc.WantConfig != nil {
				var got myconfig
				assert.Nil(t, Load(db, "mypkg", &got))
				assert.Equal(t, tc.WantConfig, &got)
			}
		})
	}
}
