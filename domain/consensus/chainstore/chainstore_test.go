package chainstore_test

import (
	"testing"

	"github.com/cellnet/celld/domain/chainconfig"
	"github.com/cellnet/celld/domain/consensus/chainstore"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/testutils"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/cellnet/celld/infrastructure/db/database/badgerdb"
	"github.com/cellnet/celld/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

type databasePrepareFunc func(t *testing.T) (db database.Database, name string)

var databasePrepareFuncs = []databasePrepareFunc{
	func(t *testing.T) (database.Database, string) {
		db, err := ldb.NewLevelDB(t.TempDir(), 8)
		if err != nil {
			t.Fatalf("NewLevelDB: %s", err)
		}
		return db, "ldb"
	},
	func(t *testing.T) (database.Database, string) {
		db, err := ldb.NewInMemoryLevelDB()
		if err != nil {
			t.Fatalf("NewInMemoryLevelDB: %s", err)
		}
		return db, "in-memory ldb"
	},
	func(t *testing.T) (database.Database, string) {
		db, err := badgerdb.NewInMemoryBadgerDB()
		if err != nil {
			t.Fatalf("NewInMemoryBadgerDB: %s", err)
		}
		return db, "badger"
	},
}

// testForAllDatabaseTypes runs testFunc against a fresh simnet ChainStore
// on top of every supported database type
func testForAllDatabaseTypes(t *testing.T, testFunc func(t *testing.T, store *chainstore.ChainStore,
	params *chainconfig.Params)) {

	for _, prepareDatabase := range databasePrepareFuncs {
		db, dbType := prepareDatabase(t)
		t.Run(dbType, func(t *testing.T) {
			defer func() {
				err := db.Close()
				if err != nil {
					t.Fatalf("Close: %s", err)
				}
			}()

			params := chainconfig.SimnetParams.Clone()
			store, err := chainstore.New(db, params)
			if err != nil {
				t.Fatalf("chainstore.New: %s", err)
			}
			testFunc(t, store, params)
		})
	}
}

func tipHeader(t *testing.T, store *chainstore.ChainStore) *externalapi.DomainBlockHeader {
	tipHash, err := store.Tip()
	if err != nil {
		t.Fatalf("Tip: %s", err)
	}
	header, err := store.BlockHeader(tipHash)
	if err != nil {
		t.Fatalf("BlockHeader: %s", err)
	}
	return header
}

// insertChild builds a block on top of the store's tip and inserts it
func insertChild(t *testing.T, store *chainstore.ChainStore, cellbaseOutputs []*externalapi.DomainCellOutput,
	transactions []*externalapi.DomainTransaction) *externalapi.DomainBlock {

	parent := tipHeader(t, store)
	block := testutils.BuildBlock(parent, parent.Bits, cellbaseOutputs, transactions, nil)
	err := store.InsertBlock(block)
	if err != nil {
		t.Fatalf("InsertBlock: %+v", err)
	}
	return block
}

func cellState(t *testing.T, store *chainstore.ChainStore, outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) externalapi.CellState {

	state, err := store.CellStateAt(outpoint, asOf)
	if err != nil {
		t.Fatalf("CellStateAt: %s", err)
	}
	return state
}

func TestNewInitializesGenesis(t *testing.T) {
	testForAllDatabaseTypes(t, func(t *testing.T, store *chainstore.ChainStore, params *chainconfig.Params) {
		tipHash, err := store.Tip()
		if err != nil {
			t.Fatalf("Tip: %s", err)
		}
		if !tipHash.Equal(params.GenesisHash) {
			t.Fatalf("expected the tip to be genesis %s but got %s", params.GenesisHash, tipHash)
		}
		genesisHeader, err := store.HeaderByHeight(0)
		if err != nil {
			t.Fatalf("HeaderByHeight: %s", err)
		}
		if !genesisHeader.Equal(params.GenesisBlock.Header) {
			t.Fatalf("unexpected genesis header")
		}
		genesis, err := store.Block(params.GenesisHash)
		if err != nil {
			t.Fatalf("Block: %s", err)
		}
		if !genesis.Equal(params.GenesisBlock) {
			t.Fatalf("unexpected genesis block")
		}

		genesisCellbaseOutpoint := externalapi.NewDomainOutpoint(
			consensushashing.TransactionHash(params.GenesisBlock.Transactions[0]), 0)
		if !cellState(t, store, genesisCellbaseOutpoint, params.GenesisHash).IsLive() {
			t.Fatalf("expected the genesis cellbase output to be live")
		}
	})
}

func TestNewReopensExistingChain(t *testing.T) {
	path := t.TempDir()
	params := chainconfig.SimnetParams.Clone()

	db, err := ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %s", err)
	}
	store, err := chainstore.New(db, params)
	if err != nil {
		t.Fatalf("chainstore.New: %s", err)
	}
	block := insertChild(t, store, []*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(10)}, nil)
	err = db.Close()
	if err != nil {
		t.Fatalf("Close: %s", err)
	}

	db, err = ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %s", err)
	}
	defer db.Close()
	store, err = chainstore.New(db, params)
	if err != nil {
		t.Fatalf("chainstore.New: %s", err)
	}
	tipHash, err := store.Tip()
	if err != nil {
		t.Fatalf("Tip: %s", err)
	}
	if !tipHash.Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("expected the reopened tip to be %s but got %s", consensushashing.BlockHash(block), tipHash)
	}

	_, err = chainstore.New(db, chainconfig.DevnetParams.Clone())
	if err == nil {
		t.Fatalf("expected opening a simnet chain with devnet params to fail")
	}
}

func TestCellStateAt(t *testing.T) {
	testForAllDatabaseTypes(t, func(t *testing.T, store *chainstore.ChainStore, params *chainconfig.Params) {
		block1 := insertChild(t, store, []*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(100)}, nil)
		block1Hash := consensushashing.BlockHash(block1)
		cellOutpoint := externalapi.NewDomainOutpoint(consensushashing.TransactionHash(block1.Transactions[0]), 0)

		spend := testutils.NewTransaction([]*externalapi.DomainOutpoint{cellOutpoint},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(60)})
		block2 := insertChild(t, store, nil, []*externalapi.DomainTransaction{spend})
		block2Hash := consensushashing.BlockHash(block2)
		newOutpoint := externalapi.NewDomainOutpoint(consensushashing.TransactionHash(spend), 0)

		tests := []struct {
			name           string
			outpoint       *externalapi.DomainOutpoint
			asOf           *externalapi.DomainHash
			expectedIsLive bool
		}{
			{"cell before its block", cellOutpoint, params.GenesisHash, false},
			{"cell at its block", cellOutpoint, block1Hash, true},
			{"cell after being spent", cellOutpoint, block2Hash, false},
			{"new cell before its block", newOutpoint, block1Hash, false},
			{"new cell at its block", newOutpoint, block2Hash, true},
			{"out of range index", externalapi.NewDomainOutpoint(&newOutpoint.TransactionHash, 1), block2Hash, false},
			{"unknown transaction", externalapi.NewDomainOutpoint(externalapi.NewZeroHash(), 0), block2Hash, false},
			{"unknown asOf", cellOutpoint, &newOutpoint.TransactionHash, false},
		}
		for _, test := range tests {
			state := cellState(t, store, test.outpoint, test.asOf)
			if state.IsLive() != test.expectedIsLive {
				t.Fatalf("%s: expected IsLive %t but got %t", test.name, test.expectedIsLive, state.IsLive())
			}
			if state.IsLive() && state.Output == nil {
				t.Fatalf("%s: a live cell must carry its output", test.name)
			}
		}

		state := cellState(t, store, newOutpoint, block2Hash)
		if state.Output.Capacity != 60 {
			t.Fatalf("expected capacity 60 but got %d", state.Output.Capacity)
		}
	})
}

func TestInsertBlockRejections(t *testing.T) {
	testForAllDatabaseTypes(t, func(t *testing.T, store *chainstore.ChainStore, params *chainconfig.Params) {
		block1 := insertChild(t, store, []*externalapi.DomainCellOutput{
			testutils.AlwaysSuccessOutput(100),
			testutils.AlwaysSuccessOutput(100),
		}, nil)
		cellbaseHash := consensushashing.TransactionHash(block1.Transactions[0])
		cellOutpoint := externalapi.NewDomainOutpoint(cellbaseHash, 0)

		spend := func(capacity uint64, outpoint *externalapi.DomainOutpoint) *externalapi.DomainTransaction {
			return testutils.NewTransaction([]*externalapi.DomainOutpoint{outpoint},
				[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(capacity)})
		}
		replayed := spend(50, externalapi.NewDomainOutpoint(cellbaseHash, 1))
		block2 := insertChild(t, store, nil, []*externalapi.DomainTransaction{replayed})
		tip := block2.Header
		isMissingTxOut := func(err error) bool {
			return errors.As(err, &ruleerrors.ErrMissingTxOut{})
		}

		tests := []struct {
			name          string
			block         *externalapi.DomainBlock
			isExpectedErr func(error) bool
		}{
			{
				name:  "not extending the tip",
				block: testutils.BuildBlock(block1.Header, tip.Bits, nil, nil, nil),
				isExpectedErr: func(err error) bool {
					return errors.Is(err, ruleerrors.ErrNotExtendingTip)
				},
			},
			{
				name:  "replayed transaction",
				block: testutils.BuildBlock(tip, tip.Bits, nil, []*externalapi.DomainTransaction{replayed}, nil),
				isExpectedErr: func(err error) bool {
					return errors.Is(err, ruleerrors.ErrDuplicateTransactions)
				},
			},
			{
				name: "double spend",
				block: testutils.BuildBlock(tip, tip.Bits, nil,
					[]*externalapi.DomainTransaction{spend(10, cellOutpoint), spend(20, cellOutpoint)}, nil),
				isExpectedErr: func(err error) bool {
					return errors.Is(err, ruleerrors.ErrDoubleSpendInSameBlock)
				},
			},
			{
				name: "spent cell",
				block: testutils.BuildBlock(tip, tip.Bits, nil,
					[]*externalapi.DomainTransaction{spend(10, externalapi.NewDomainOutpoint(cellbaseHash, 1))}, nil),
				isExpectedErr: isMissingTxOut,
			},
			{
				name: "unknown cell",
				block: testutils.BuildBlock(tip, tip.Bits, nil,
					[]*externalapi.DomainTransaction{spend(10, externalapi.NewDomainOutpoint(externalapi.NewZeroHash(), 3))},
					nil),
				isExpectedErr: isMissingTxOut,
			},
		}
		for _, test := range tests {
			err := store.InsertBlock(test.block)
			if !test.isExpectedErr(err) {
				t.Fatalf("%s: unexpected error: %v", test.name, err)
			}

			tipHash, err := store.Tip()
			if err != nil {
				t.Fatalf("Tip: %s", err)
			}
			if !tipHash.Equal(consensushashing.BlockHash(block2)) {
				t.Fatalf("%s: a rejected block must not move the tip", test.name)
			}
			if !cellState(t, store, cellOutpoint, tipHash).IsLive() {
				t.Fatalf("%s: a rejected block must not spend cells", test.name)
			}
			_, err = store.Block(consensushashing.BlockHash(test.block))
			if !database.IsNotFoundError(err) {
				t.Fatalf("%s: a rejected block must not be stored, got: %v", test.name, err)
			}
		}
	})
}

func TestTransactionFee(t *testing.T) {
	testForAllDatabaseTypes(t, func(t *testing.T, store *chainstore.ChainStore, params *chainconfig.Params) {
		block1 := insertChild(t, store, []*externalapi.DomainCellOutput{
			testutils.AlwaysSuccessOutput(100),
			testutils.AlwaysSuccessOutput(50),
		}, nil)
		cellbaseHash := consensushashing.TransactionHash(block1.Transactions[0])
		first := externalapi.NewDomainOutpoint(cellbaseHash, 0)
		second := externalapi.NewDomainOutpoint(cellbaseHash, 1)

		tests := []struct {
			name          string
			outpoints     []*externalapi.DomainOutpoint
			outputs       []uint64
			expectedFee   uint64
			isExpectedErr func(error) bool
		}{
			{name: "single input", outpoints: []*externalapi.DomainOutpoint{first}, outputs: []uint64{60},
				expectedFee: 40},
			{name: "two inputs", outpoints: []*externalapi.DomainOutpoint{first, second}, outputs: []uint64{100, 49},
				expectedFee: 1},
			{name: "no fee", outpoints: []*externalapi.DomainOutpoint{second}, outputs: []uint64{50},
				expectedFee: 0},
			{
				name:      "spend too high",
				outpoints: []*externalapi.DomainOutpoint{second},
				outputs:   []uint64{51},
				isExpectedErr: func(err error) bool {
					return errors.Is(err, ruleerrors.ErrSpendTooHigh)
				},
			},
			{
				name:      "outputs overflow",
				outpoints: []*externalapi.DomainOutpoint{first},
				outputs:   []uint64{^uint64(0), 1},
				isExpectedErr: func(err error) bool {
					return errors.Is(err, ruleerrors.ErrBadTxOutValue)
				},
			},
			{
				name:      "missing input",
				outpoints: []*externalapi.DomainOutpoint{externalapi.NewDomainOutpoint(cellbaseHash, 2)},
				outputs:   []uint64{1},
				isExpectedErr: func(err error) bool {
					return errors.As(err, &ruleerrors.ErrMissingTxOut{})
				},
			},
		}
		for _, test := range tests {
			outputs := make([]*externalapi.DomainCellOutput, len(test.outputs))
			for i, capacity := range test.outputs {
				outputs[i] = testutils.AlwaysSuccessOutput(capacity)
			}
			fee, err := store.TransactionFee(testutils.NewTransaction(test.outpoints, outputs))
			if test.isExpectedErr != nil {
				if !test.isExpectedErr(err) {
					t.Fatalf("%s: unexpected error: %v", test.name, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("%s: TransactionFee: %+v", test.name, err)
			}
			if fee != test.expectedFee {
				t.Fatalf("%s: expected fee %d but got %d", test.name, test.expectedFee, fee)
			}
		}
	})
}

func TestChainParametersQueries(t *testing.T) {
	testForAllDatabaseTypes(t, func(t *testing.T, store *chainstore.ChainStore, params *chainconfig.Params) {
		bits, err := store.RequiredDifficulty(params.GenesisBlock.Header)
		if err != nil {
			t.Fatalf("RequiredDifficulty: %s", err)
		}
		if bits != params.GenesisBlock.Header.Bits {
			t.Fatalf("expected simnet to always require bits %08x but got %08x",
				params.GenesisBlock.Header.Bits, bits)
		}
		if store.BlockReward(1) != params.BaseSubsidy {
			t.Fatalf("expected the reward at height 1 to be %d but got %d", params.BaseSubsidy, store.BlockReward(1))
		}
		if store.MaxUnclesCount() != params.MaxUnclesCount || store.MaxUnclesAge() != params.MaxUnclesAge {
			t.Fatalf("unexpected uncle limits %d/%d", store.MaxUnclesCount(), store.MaxUnclesAge())
		}
	})
}

// TestCellSetCommitment checks that the commitment only depends on the set
// of live cells, not on the database it is stored in nor on how the set was
// reached
func TestCellSetCommitment(t *testing.T) {
	var commitments []*externalapi.DomainHash
	testForAllDatabaseTypes(t, func(t *testing.T, store *chainstore.ChainStore, params *chainconfig.Params) {
		genesisCommitment, err := store.CellSetCommitment(params.GenesisHash)
		if err != nil {
			t.Fatalf("CellSetCommitment: %s", err)
		}

		block1 := insertChild(t, store, []*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(100)}, nil)
		cellOutpoint := externalapi.NewDomainOutpoint(consensushashing.TransactionHash(block1.Transactions[0]), 0)
		block1Commitment, err := store.CellSetCommitment(consensushashing.BlockHash(block1))
		if err != nil {
			t.Fatalf("CellSetCommitment: %s", err)
		}
		if block1Commitment.Equal(genesisCommitment) {
			t.Fatalf("creating a cell must change the commitment")
		}

		// The same output under a new outpoint is a different cell
		spend := testutils.NewTransaction([]*externalapi.DomainOutpoint{cellOutpoint},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(100)})
		block2 := insertChild(t, store, nil, []*externalapi.DomainTransaction{spend})
		block2Commitment, err := store.CellSetCommitment(consensushashing.BlockHash(block2))
		if err != nil {
			t.Fatalf("CellSetCommitment: %s", err)
		}
		if block2Commitment.Equal(block1Commitment) {
			t.Fatalf("the commitment must depend on the outpoints of the cells")
		}
		commitments = append(commitments, block2Commitment)
	})

	for i := 1; i < len(commitments); i++ {
		if !commitments[i].Equal(commitments[0]) {
			t.Fatalf("commitment #%d %s differs from commitment #0 %s", i, commitments[i], commitments[0])
		}
	}
}
