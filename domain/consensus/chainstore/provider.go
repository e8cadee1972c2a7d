package chainstore

import (
	"github.com/cellnet/celld/domain/consensus/database/serialization"
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/multiset"
	"github.com/cellnet/celld/infrastructure/db/database"
)

// BlockHeader implements model.ChainProvider
func (s *ChainStore) BlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.blockHeader(blockHash)
}

func (s *ChainStore) blockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	s.cacheLock.Lock()
	cached, ok := s.headerCache.Get(blockHash)
	s.cacheLock.Unlock()
	if ok {
		return cached.(*externalapi.DomainBlockHeader).Clone(), nil
	}

	headerBytes, err := s.db.Get(headersBucket.Key(serialization.SerializeHash(blockHash)))
	if err != nil {
		return nil, err
	}
	header, err := serialization.DeserializeHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	s.cacheLock.Lock()
	s.headerCache.Add(blockHash, header.Clone())
	s.cacheLock.Unlock()
	return header, nil
}

// Block implements model.ChainProvider
func (s *ChainStore) Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.block(blockHash)
}

func (s *ChainStore) block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	blockBytes, err := s.db.Get(blocksBucket.Key(serialization.SerializeHash(blockHash)))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeBlock(blockBytes)
}

// RequiredDifficulty implements model.ChainProvider
func (s *ChainStore) RequiredDifficulty(parentHeader *externalapi.DomainBlockHeader) (uint32, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.difficultyManager.RequiredDifficulty(parentHeader)
}

// BlockReward implements model.ChainProvider
func (s *ChainStore) BlockReward(height uint64) uint64 {
	return s.rewardManager.BlockReward(height)
}

// TransactionFee implements model.ChainProvider. The inputs of transaction
// have to be live as of the tip.
func (s *ChainStore) TransactionFee(transaction *externalapi.DomainTransaction) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tipHash, err := s.tip()
	if err != nil {
		return 0, err
	}
	return CalculateFee(transaction, unlockedCellProvider{store: s}, tipHash)
}

// CellStateAt implements model.ChainProvider
func (s *ChainStore) CellStateAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.cellStateAt(outpoint, asOf)
}

// cellStateAt returns the outpoint's cell if both the block that created it
// and asOf are in the chain, the former no higher than the latter, and the
// cell wasn't spent by asOf's height
func (s *ChainStore) cellStateAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	asOfHeader, err := s.blockHeader(asOf)
	if err != nil {
		if database.IsNotFoundError(err) {
			return externalapi.UnknownCellState(), nil
		}
		return externalapi.CellState{}, err
	}

	location, err := s.transactionLocation(&outpoint.TransactionHash)
	if err != nil {
		if database.IsNotFoundError(err) {
			return externalapi.UnknownCellState(), nil
		}
		return externalapi.CellState{}, err
	}
	creatingHeader, err := s.blockHeader(location.BlockHash)
	if err != nil {
		return externalapi.CellState{}, err
	}
	if creatingHeader.Height > asOfHeader.Height {
		return externalapi.UnknownCellState(), nil
	}

	outpointKey := serialization.SerializeOutpoint(outpoint)
	outputBytes, err := s.db.Get(cellsBucket.Key(outpointKey))
	if err != nil {
		if database.IsNotFoundError(err) {
			return externalapi.UnknownCellState(), nil
		}
		return externalapi.CellState{}, err
	}

	spentHeightBytes, err := s.db.Get(spentCellsBucket.Key(outpointKey))
	if err == nil {
		spentHeight, err := serialization.DeserializeHeight(spentHeightBytes)
		if err != nil {
			return externalapi.CellState{}, err
		}
		if spentHeight <= asOfHeader.Height {
			return externalapi.UnknownCellState(), nil
		}
	} else if !database.IsNotFoundError(err) {
		return externalapi.CellState{}, err
	}

	output, err := serialization.DeserializeCellOutput(outputBytes)
	if err != nil {
		return externalapi.CellState{}, err
	}
	return externalapi.NewLiveCellState(output), nil
}

func (s *ChainStore) transactionLocation(
	transactionHash *externalapi.DomainHash) (*serialization.TransactionLocation, error) {

	locationBytes, err := s.db.Get(transactionsBucket.Key(serialization.SerializeHash(transactionHash)))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeTransactionLocation(locationBytes)
}

func (s *ChainStore) cellSet(blockHash *externalapi.DomainHash) (model.Multiset, error) {
	cellSetBytes, err := s.db.Get(cellSetsBucket.Key(serialization.SerializeHash(blockHash)))
	if err != nil {
		return nil, err
	}
	return multiset.FromBytes(cellSetBytes)
}

// MaxUnclesCount implements model.ChainProvider
func (s *ChainStore) MaxUnclesCount() int {
	return s.params.MaxUnclesCount
}

// MaxUnclesAge implements model.ChainProvider
func (s *ChainStore) MaxUnclesAge() uint64 {
	return s.params.MaxUnclesAge
}
