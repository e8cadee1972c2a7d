package badgerdb

import (
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerDBTransaction is a thin wrapper around a read-write badger
// transaction. Badger detects conflicting transactions on Commit.
type BadgerDBTransaction struct {
	txn      *badger.Txn
	isClosed bool
}

// Begin begins a new transaction.
func (db *BadgerDB) Begin() (database.Transaction, error) {
	return &BadgerDBTransaction{
		txn:      db.db.NewTransaction(true),
		isClosed: false,
	}, nil
}

// Commit commits whatever changes were made to the database
// within this transaction.
func (tx *BadgerDBTransaction) Commit() error {
	if tx.isClosed {
		return errors.New("cannot commit a closed transaction")
	}

	tx.isClosed = true
	return errors.WithStack(tx.txn.Commit())
}

// Rollback rolls back whatever changes were made to the
// database within this transaction.
func (tx *BadgerDBTransaction) Rollback() error {
	if tx.isClosed {
		return errors.New("cannot rollback a closed transaction")
	}

	tx.isClosed = true
	tx.txn.Discard()
	return nil
}

// RollbackUnlessClosed rolls back changes that were made to
// the database within the transaction, unless the transaction
// had already been closed using either Rollback or Commit.
func (tx *BadgerDBTransaction) RollbackUnlessClosed() error {
	if tx.isClosed {
		return nil
	}
	return tx.Rollback()
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (tx *BadgerDBTransaction) Put(key *database.Key, value []byte) error {
	if tx.isClosed {
		return errors.New("cannot put into a closed transaction")
	}

	return errors.WithStack(tx.txn.Set(key.Bytes(), value))
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (tx *BadgerDBTransaction) Get(key *database.Key) ([]byte, error) {
	if tx.isClosed {
		return nil, errors.New("cannot get from a closed transaction")
	}

	return get(tx.txn, key)
}

// Has returns true if the database does contains the
// given key.
func (tx *BadgerDBTransaction) Has(key *database.Key) (bool, error) {
	if tx.isClosed {
		return false, errors.New("cannot has from a closed transaction")
	}

	return has(tx.txn, key)
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (tx *BadgerDBTransaction) Delete(key *database.Key) error {
	if tx.isClosed {
		return errors.New("cannot delete from a closed transaction")
	}

	return errors.WithStack(tx.txn.Delete(key.Bytes()))
}
