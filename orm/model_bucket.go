package orm

import (
	"reflect"
	"regexp"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	weave.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db weave.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db weave.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database, replacing any existing entity
	// stored under the same key.
	Put(db weave.KVStore, key []byte, m Model) error

	// Create saves given model only if no entity is stored under given
	// key. It returns ErrDuplicate otherwise.
	Create(db weave.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db weave.KVStore, key []byte) error

	// ByIndex returns primary keys of all entities indexed under given
	// value by the named index. When destination is not nil, it must be a
	// pointer to a slice of models and found entities are appended to it.
	ByIndex(db weave.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error)
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model Because of Go type system, using []Model type would not work for
// us. Instead we use a placeholder type and the validation is done during the
// runtime.
type ModelSlicePtr interface{}

// IndexerFunc computes the secondary index value for a model. Returning a nil
// value excludes the model from the index.
type IndexerFunc func(Model) ([]byte, error)

// BucketOption configures a model bucket.
type BucketOption func(*modelBucket)

// WithIndex declares a secondary, non unique index maintained by the bucket.
func WithIndex(name string, fn IndexerFunc) BucketOption {
	if !isBucketName(name) {
		panic("invalid index name: " + name)
	}
	return func(mb *modelBucket) {
		mb.indexes[name] = &index{
			prefix: []byte("_i." + mb.name + "_" + name + ":"),
			fn:     fn,
		}
	}
}

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// NewModelBucket returns a ModelBucket instance. All entities are stored
// under "<name>:" prefix. Example model is used to create new instances
// when loading data.
func NewModelBucket(name string, example Model, opts ...BucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	t := reflect.TypeOf(example)
	if t.Kind() != reflect.Ptr {
		panic("model must be a pointer")
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   t.Elem(),
		indexes: make(map[string]*index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]*index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model).Interface().(Model)
}

func (mb *modelBucket) One(db weave.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if reflect.TypeOf(dest) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	// Reset the destination so that no value from a previous use leaks.
	reflect.ValueOf(dest).Elem().Set(reflect.Zero(mb.model))
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %s", mb.name)
	}
	return nil
}

func (mb *modelBucket) Has(db weave.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot check the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db weave.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal")
	}

	var prev Model
	if len(mb.indexes) > 0 {
		prev = mb.newModel()
		switch err := mb.One(db, key, prev); {
		case err == nil:
		case errors.ErrNotFound.Is(err):
			prev = nil
		default:
			return errors.Wrap(err, "load previous state")
		}
	}
	for name, idx := range mb.indexes {
		if err := idx.update(db, key, prev, m); err != nil {
			return errors.Wrapf(err, "index %s", name)
		}
	}

	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Create(db weave.KVStore, key []byte, m Model) error {
	switch err := mb.Has(db, key); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "%s %X", mb.name, key)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	return mb.Put(db, key, m)
}

func (mb *modelBucket) Delete(db weave.KVStore, key []byte) error {
	if len(mb.indexes) == 0 {
		if err := mb.Has(db, key); err != nil {
			return err
		}
	} else {
		prev := mb.newModel()
		if err := mb.One(db, key, prev); err != nil {
			return err
		}
		for name, idx := range mb.indexes {
			if err := idx.update(db, key, prev, nil); err != nil {
				return errors.Wrapf(err, "index %s", name)
			}
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

func (mb *modelBucket) ByIndex(db weave.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown index %q", indexName)
	}
	keys, err := idx.keys(db, value)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return keys, nil
	}

	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice || slice.Elem().Type().Elem() != reflect.PtrTo(mb.model) {
		return nil, errors.Wrapf(errors.ErrType, "destination must be *[]*%s, got %T", mb.model, dest)
	}
	for _, key := range keys {
		m := mb.newModel()
		if err := mb.One(db, key, m); err != nil {
			return nil, errors.Wrapf(err, "indexed entity %X", key)
		}
		slice.Elem().Set(reflect.Append(slice.Elem(), reflect.ValueOf(m)))
	}
	return keys, nil
}
