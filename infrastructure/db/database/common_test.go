package database_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/cellnet/celld/infrastructure/db/database/badgerdb"
	"github.com/cellnet/celld/infrastructure/db/database/ldb"
)

type databasePrepareFunc func(t *testing.T, testName string) (db database.Database, name string, teardownFunc func())

// databasePrepareFuncs is a set of functions, in which each function
// prepares a separate database type for testing.
// See testForAllDatabaseTypes for further details.
var databasePrepareFuncs = []databasePrepareFunc{
	prepareLDBForTest,
	prepareInMemoryLDBForTest,
	prepareBadgerForTest,
}

func prepareLDBForTest(t *testing.T, testName string) (db database.Database, name string, teardownFunc func()) {
	// Create a temp db to run tests against
	path := t.TempDir()
	db, err := ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: Open unexpectedly "+
			"failed: %s", testName, err)
	}
	return db, "ldb", closeFunc(t, testName, db)
}

func prepareInMemoryLDBForTest(t *testing.T, testName string) (db database.Database, name string, teardownFunc func()) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("%s: Open unexpectedly "+
			"failed: %s", testName, err)
	}
	return db, "in-memory ldb", closeFunc(t, testName, db)
}

func prepareBadgerForTest(t *testing.T, testName string) (db database.Database, name string, teardownFunc func()) {
	db, err := badgerdb.NewBadgerDB(t.TempDir())
	if err != nil {
		t.Fatalf("%s: Open unexpectedly "+
			"failed: %s", testName, err)
	}
	return db, "badger", closeFunc(t, testName, db)
}

func closeFunc(t *testing.T, testName string, db database.Database) func() {
	return func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
	}
}

// testForAllDatabaseTypes runs the given testFunc for every database
// type defined in databasePrepareFuncs. This is to make sure that
// all supported database types adhere to the assumptions defined in
// the interfaces in this package.
func testForAllDatabaseTypes(t *testing.T, testName string,
	testFunc func(t *testing.T, db database.Database, testName string)) {

	for _, prepareDatabase := range databasePrepareFuncs {
		func() {
			db, dbType, teardownFunc := prepareDatabase(t, testName)
			defer teardownFunc()

			testName := fmt.Sprintf("%s: %s", dbType, testName)
			testFunc(t, db, testName)
		}()
	}
}

var testBucket = database.MakeBucket([]byte("test"))

func TestDatabasePutGetDelete(t *testing.T) {
	testForAllDatabaseTypes(t, "TestDatabasePutGetDelete", testDatabasePutGetDelete)
}

func testDatabasePutGetDelete(t *testing.T, db database.Database, testName string) {
	key := testBucket.Key([]byte("key"))
	value := []byte("value")

	_, err := db.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Get of a missing key "+
			"returned wrong error: %s", testName, err)
	}

	err = db.Put(key, value)
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %s", testName, err)
	}
	exists, err := db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %s", testName, err)
	}
	if !exists {
		t.Fatalf("%s: Has unexpectedly returned false", testName)
	}
	returnedValue, err := db.Get(key)
	if err != nil {
		t.Fatalf("%s: Get unexpectedly failed: %s", testName, err)
	}
	if !bytes.Equal(returnedValue, value) {
		t.Fatalf("%s: Get returned wrong value. Want: %s, got: %s",
			testName, value, returnedValue)
	}

	err = db.Delete(key)
	if err != nil {
		t.Fatalf("%s: Delete unexpectedly failed: %s", testName, err)
	}
	exists, err = db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has unexpectedly failed: %s", testName, err)
	}
	if exists {
		t.Fatalf("%s: Has unexpectedly returned true after Delete", testName)
	}
	err = db.Delete(key)
	if err != nil {
		t.Fatalf("%s: Delete of a missing key unexpectedly failed: %s", testName, err)
	}
}

func TestTransactionCommitAndRollback(t *testing.T) {
	testForAllDatabaseTypes(t, "TestTransactionCommitAndRollback", testTransactionCommitAndRollback)
}

func testTransactionCommitAndRollback(t *testing.T, db database.Database, testName string) {
	committedKey := testBucket.Key([]byte("committed"))
	rolledBackKey := testBucket.Key([]byte("rolled back"))

	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin unexpectedly failed: %s", testName, err)
	}
	err = dbTx.Put(committedKey, []byte{1})
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %s", testName, err)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("%s: Commit unexpectedly failed: %s", testName, err)
	}
	if err := dbTx.Commit(); err == nil {
		t.Fatalf("%s: Commit of a closed transaction unexpectedly succeeded", testName)
	}
	if err := dbTx.Put(committedKey, []byte{2}); err == nil {
		t.Fatalf("%s: Put into a closed transaction unexpectedly succeeded", testName)
	}
	if err := dbTx.RollbackUnlessClosed(); err != nil {
		t.Fatalf("%s: RollbackUnlessClosed of a closed transaction unexpectedly failed: %s", testName, err)
	}

	dbTx, err = db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin unexpectedly failed: %s", testName, err)
	}
	err = dbTx.Put(rolledBackKey, []byte{1})
	if err != nil {
		t.Fatalf("%s: Put unexpectedly failed: %s", testName, err)
	}
	err = dbTx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("%s: RollbackUnlessClosed unexpectedly failed: %s", testName, err)
	}

	value, err := db.Get(committedKey)
	if err != nil {
		t.Fatalf("%s: Get of a committed key unexpectedly failed: %s", testName, err)
	}
	if !bytes.Equal(value, []byte{1}) {
		t.Fatalf("%s: Get of a committed key returned %x", testName, value)
	}
	_, err = db.Get(rolledBackKey)
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Get of a rolled back key returned wrong error: %s", testName, err)
	}
}

func TestKeys(t *testing.T) {
	sub := testBucket.Bucket([]byte("sub"))
	key := sub.Key([]byte{0xab})
	expected := append([]byte("test/sub/"), 0xab)
	if !bytes.Equal(key.Bytes(), expected) {
		t.Fatalf("unexpected key bytes %q", key.Bytes())
	}
	if key.String() != "test/sub/ab" {
		t.Fatalf("unexpected key string %q", key.String())
	}
	if !bytes.Equal(testBucket.Path(), []byte("test/")) {
		t.Fatalf("creating a sub bucket is not expected to modify its parent")
	}
}
