package gconf

import (
	"reflect"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/x"
)

// OwnedConfig is a configuration that declares who may change it.
type OwnedConfig interface {
	Configuration
	GetOwner() weave.Address
}

// UpdateConfigurationHandler applies a configuration patch carried in the
// Patch field of a message. Only non zero fields of the patch are applied.
type UpdateConfigurationHandler struct {
	pkg       string
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(weave.ReadOnlyKVStore) (weave.Address, error)
}

var _ weave.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler updating the configuration
// of pkg. config is only used as a type template.
//
// An existing configuration can be changed only with the signature of its
// owner. When no configuration was saved yet, initAdmin, if given, returns
// the address allowed to create it.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	initAdmin func(weave.ReadOnlyKVStore) (weave.Address, error),
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		config:    config,
		auth:      auth,
		initAdmin: initAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.update(ctx, store, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.update(ctx, store, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) update(ctx weave.Context, store weave.KVStore, tx weave.Tx) error {
	current := h.newConfig()
	if err := h.authorize(ctx, store, current); err != nil {
		return err
	}
	patch, err := patchOf(tx)
	if err != nil {
		return errors.Wrap(err, "message patch")
	}
	if reflect.TypeOf(patch) != reflect.TypeOf(current) {
		return errors.Wrapf(errors.ErrMsg, "patch of type %T cannot update %T", patch, current)
	}
	apply(current, patch)
	if err := Save(store, h.pkg, current); err != nil {
		return errors.Wrap(err, "save configuration")
	}
	return nil
}

// authorize loads the current configuration into dst and ensures the
// operation is signed by whoever may change it.
func (h UpdateConfigurationHandler) authorize(ctx weave.Context, store weave.KVStore, dst OwnedConfig) error {
	err := Load(store, h.pkg, dst)
	switch {
	case err == nil:
		owner := dst.GetOwner()
		if owner == nil {
			return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
		}
		if !h.auth.HasAddress(ctx, owner) {
			return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
		}
		return nil
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "load configuration")
	case h.initAdmin == nil:
		return errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be initialized")
	}
	admin, err := h.initAdmin(store)
	if err != nil {
		return errors.Wrap(err, "initialization admin")
	}
	if !h.auth.HasAddress(ctx, admin) {
		return errors.Wrap(errors.ErrUnauthorized, "initialization admin signature required")
	}
	return nil
}

// newConfig returns a zero configuration of the handled type. The template
// is shared between operations and must not be written to.
func (h UpdateConfigurationHandler) newConfig() OwnedConfig {
	return reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)
}

// apply copies every non zero field of patch into dst.
func apply(dst, patch OwnedConfig) {
	d := reflect.ValueOf(dst).Elem()
	p := reflect.ValueOf(patch).Elem()
	for i := 0; i < d.NumField(); i++ {
		field := p.Field(i)
		if reflect.DeepEqual(field.Interface(), reflect.Zero(field.Type()).Interface()) {
			continue
		}
		d.Field(i).Set(field)
	}
}

// patchOf returns the value of the Patch field of the validated message.
func patchOf(tx weave.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported message %T", msg)
	}
	field := v.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr || field.IsNil() {
		return nil, errors.Wrap(errors.ErrEmpty, "patch")
	}
	patch, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "patch %T", field.Interface())
	}
	return patch, nil
}
