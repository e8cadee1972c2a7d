package chainstore

import (
	"sync"

	"github.com/cellnet/celld/domain/chainconfig"
	"github.com/cellnet/celld/domain/consensus/database/serialization"
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/processes/difficultymanager"
	"github.com/cellnet/celld/domain/consensus/processes/rewardmanager"
	"github.com/cellnet/celld/domain/consensus/utils/lrucache"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/pkg/errors"
)

var (
	headersBucket      = database.MakeBucket([]byte("headers"))
	blocksBucket       = database.MakeBucket([]byte("blocks"))
	heightsBucket      = database.MakeBucket([]byte("heights"))
	transactionsBucket = database.MakeBucket([]byte("transactions"))
	cellsBucket        = database.MakeBucket([]byte("cells"))
	spentCellsBucket   = database.MakeBucket([]byte("spent-cells"))
	cellSetsBucket     = database.MakeBucket([]byte("cell-sets"))
	tipKey             = database.MakeBucket(nil).Key([]byte("tip"))
)

const headerCacheSize = 1000

// ChainStore keeps a single canonical chain in a database.Database and
// answers the queries block verification makes about it. It is safe for
// concurrent use.
type ChainStore struct {
	lock   sync.RWMutex
	db     database.Database
	params *chainconfig.Params

	difficultyManager model.DifficultyManager
	rewardManager     model.RewardManager

	cacheLock   sync.Mutex
	headerCache *lrucache.LRUCache
}

var _ model.ChainProvider = (*ChainStore)(nil)

// New returns a ChainStore over db, inserting params' genesis block if
// db holds no chain yet
func New(db database.Database, params *chainconfig.Params) (*ChainStore, error) {
	store := &ChainStore{
		db:            db,
		params:        params,
		rewardManager: rewardmanager.New(params.BaseSubsidy, params.SubsidyReductionInterval),
		headerCache:   lrucache.New(headerCacheSize),
	}
	store.difficultyManager = difficultymanager.New(
		unlockedHeaderLookup{store: store},
		params.PowMax,
		params.DifficultyAdjustmentWindowSize,
		params.TargetTimePerBlock,
		params.DisableDifficultyAdjustment)

	hasTip, err := db.Has(tipKey)
	if err != nil {
		return nil, err
	}
	if !hasTip {
		log.Infof("Initializing a new chain with the %s genesis block %s", params.Name, params.GenesisHash)
		err = store.insertBlock(params.GenesisBlock, nil)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	tipHash, err := store.tip()
	if err != nil {
		return nil, err
	}
	genesisHash, err := store.headerHashByHeight(0)
	if err != nil {
		return nil, err
	}
	if !genesisHash.Equal(params.GenesisHash) {
		return nil, errors.Errorf("the database holds a chain with genesis %s rather than the %s genesis %s",
			genesisHash, params.Name, params.GenesisHash)
	}
	log.Infof("Loaded chain with tip %s", tipHash)
	return store, nil
}

// Tip returns the hash of the last block of the chain
func (s *ChainStore) Tip() (*externalapi.DomainHash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.tip()
}

func (s *ChainStore) tip() (*externalapi.DomainHash, error) {
	tipBytes, err := s.db.Get(tipKey)
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeHash(tipBytes)
}

// HeaderByHeight returns the header of the chain block at the given height
func (s *ChainStore) HeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	blockHash, err := s.headerHashByHeight(height)
	if err != nil {
		return nil, err
	}
	return s.blockHeader(blockHash)
}

func (s *ChainStore) headerHashByHeight(height uint64) (*externalapi.DomainHash, error) {
	hashBytes, err := s.db.Get(heightsBucket.Key(serialization.SerializeHeight(height)))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeHash(hashBytes)
}

// CellSetCommitment returns the commitment to the set of cells live as of
// the given block
func (s *ChainStore) CellSetCommitment(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	cellSet, err := s.cellSet(blockHash)
	if err != nil {
		return nil, err
	}
	return cellSet.Hash(), nil
}

// unlockedHeaderLookup lets processes that are called while the store is
// locked read headers without locking it again
type unlockedHeaderLookup struct {
	store *ChainStore
}

func (l unlockedHeaderLookup) BlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	return l.store.blockHeader(blockHash)
}

// unlockedCellProvider is unlockedHeaderLookup's counterpart for cells
type unlockedCellProvider struct {
	store *ChainStore
}

func (p unlockedCellProvider) CellAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	return p.store.cellStateAt(outpoint, asOf)
}
