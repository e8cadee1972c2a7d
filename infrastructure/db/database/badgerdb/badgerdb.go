package badgerdb

import (
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerDB defines a thin wrapper around badger.
type BadgerDB struct {
	db *badger.DB
}

// NewBadgerDB opens a badger instance defined by the given path,
// creating it if it doesn't exist.
func NewBadgerDB(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log})
	return open(opts)
}

// NewInMemoryBadgerDB opens a badger instance that lives in memory only.
func NewInMemoryBadgerDB() (*BadgerDB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{log})
	return open(opts)
}

func open(opts badger.Options) (*BadgerDB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening badger database at %q", opts.Dir)
	}
	return &BadgerDB{db: db}, nil
}

var _ database.Database = (*BadgerDB)(nil)

// Close closes the badger instance.
func (db *BadgerDB) Close() error {
	return errors.WithStack(db.db.Close())
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *BadgerDB) Put(key *database.Key, value []byte) error {
	err := db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key.Bytes(), value)
	})
	return errors.WithStack(err)
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (db *BadgerDB) Get(key *database.Key) ([]byte, error) {
	var data []byte
	err := db.db.View(func(txn *badger.Txn) error {
		var err error
		data, err = get(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Has returns true if the database does contains the
// given key.
func (db *BadgerDB) Has(key *database.Key) (bool, error) {
	var exists bool
	err := db.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = has(txn, key)
		return err
	})
	return exists, err
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *BadgerDB) Delete(key *database.Key) error {
	err := db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key.Bytes())
	})
	return errors.WithStack(err)
}

func get(txn *badger.Txn, key *database.Key) ([]byte, error) {
	item, err := txn.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func has(txn *badger.Txn, key *database.Key) (bool, error) {
	_, err := txn.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return true, nil
}
