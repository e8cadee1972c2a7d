package chainstore

import (
	"github.com/cellnet/celld/domain/consensus/database/serialization"
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/multiset"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/cellnet/celld/infrastructure/logger"
	"github.com/pkg/errors"
)

// InsertBlock appends an already verified block to the chain. The block
// must extend the current tip.
func (s *ChainStore) InsertBlock(block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "InsertBlock")
	defer onEnd()

	s.lock.Lock()
	defer s.lock.Unlock()

	tipHash, err := s.tip()
	if err != nil {
		return err
	}
	tipHeader, err := s.blockHeader(tipHash)
	if err != nil {
		return err
	}
	if !block.Header.ParentHash.Equal(tipHash) {
		return errors.Wrapf(ruleerrors.ErrNotExtendingTip, "block parent %s is not the tip %s",
			block.Header.ParentHash, tipHash)
	}
	if block.Header.Height != tipHeader.Height+1 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedHeight, "block height is %d while the tip is at height %d",
			block.Header.Height, tipHeader.Height)
	}
	return s.insertBlock(block, tipHash)
}

// insertBlock writes block together with its cells and spends in a single
// database transaction. parentHash is nil only for genesis.
func (s *ChainStore) insertBlock(block *externalapi.DomainBlock, parentHash *externalapi.DomainHash) error {
	blockHash := consensushashing.BlockHash(block)
	blockKey := serialization.SerializeHash(blockHash)

	cellSet := multiset.New()
	if parentHash != nil {
		parentCellSet, err := s.cellSet(parentHash)
		if err != nil {
			return err
		}
		cellSet = parentCellSet.Clone()
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	headerBytes, err := serialization.SerializeHeader(block.Header)
	if err != nil {
		return err
	}
	err = dbTx.Put(headersBucket.Key(blockKey), headerBytes)
	if err != nil {
		return err
	}
	blockBytes, err := serialization.SerializeBlock(block)
	if err != nil {
		return err
	}
	err = dbTx.Put(blocksBucket.Key(blockKey), blockBytes)
	if err != nil {
		return err
	}
	err = dbTx.Put(heightsBucket.Key(serialization.SerializeHeight(block.Header.Height)), blockKey)
	if err != nil {
		return err
	}

	createdOutputs, err := s.insertCreatedCells(dbTx, block, blockHash, cellSet)
	if err != nil {
		return err
	}
	err = s.insertSpentCells(dbTx, block, createdOutputs, cellSet)
	if err != nil {
		return err
	}

	err = dbTx.Put(cellSetsBucket.Key(blockKey), cellSet.Serialize())
	if err != nil {
		return err
	}
	err = dbTx.Put(tipKey, blockKey)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	log.Debugf("Inserted block %s at height %d with %d transactions and %d uncles",
		blockHash, block.Header.Height, len(block.Transactions), len(block.Uncles))
	return nil
}

// insertCreatedCells stores the location of every transaction of block and
// the cells it creates. It returns the created outputs by outpoint.
func (s *ChainStore) insertCreatedCells(dbTx database.Transaction, block *externalapi.DomainBlock,
	blockHash *externalapi.DomainHash, cellSet model.Multiset) (
	map[externalapi.DomainOutpoint]*externalapi.DomainCellOutput, error) {

	createdOutputs := make(map[externalapi.DomainOutpoint]*externalapi.DomainCellOutput)
	for i, transaction := range block.Transactions {
		transactionHash := consensushashing.TransactionHash(transaction)
		transactionKey := serialization.SerializeHash(transactionHash)

		exists, err := s.db.Has(transactionsBucket.Key(transactionKey))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.Wrapf(ruleerrors.ErrDuplicateTransactions,
				"transaction %s is already in the chain", transactionHash)
		}
		location := &serialization.TransactionLocation{BlockHash: blockHash, Index: uint32(i)}
		err = dbTx.Put(transactionsBucket.Key(transactionKey), serialization.SerializeTransactionLocation(location))
		if err != nil {
			return nil, err
		}

		for index, output := range transaction.Outputs {
			outpoint := externalapi.NewDomainOutpoint(transactionHash, uint32(index))
			outputBytes, err := serialization.SerializeCellOutput(output)
			if err != nil {
				return nil, err
			}
			err = dbTx.Put(cellsBucket.Key(serialization.SerializeOutpoint(outpoint)), outputBytes)
			if err != nil {
				return nil, err
			}
			entry, err := serialization.SerializeCellEntry(outpoint, output)
			if err != nil {
				return nil, err
			}
			cellSet.Add(entry)
			createdOutputs[*outpoint] = output
		}
	}
	return createdOutputs, nil
}

// insertSpentCells marks every cell spent by block's transactions as spent
// at block's height
func (s *ChainStore) insertSpentCells(dbTx database.Transaction, block *externalapi.DomainBlock,
	createdOutputs map[externalapi.DomainOutpoint]*externalapi.DomainCellOutput, cellSet model.Multiset) error {

	spentHeightBytes := serialization.SerializeHeight(block.Header.Height)
	spentInBlock := make(map[externalapi.DomainOutpoint]struct{})
	for _, transaction := range block.Transactions {
		if transactionhelper.IsCellbase(transaction) {
			continue
		}
		for _, input := range transaction.Inputs {
			outpoint := input.PreviousOutpoint
			if _, ok := spentInBlock[outpoint]; ok {
				return errors.Wrapf(ruleerrors.ErrDoubleSpendInSameBlock,
					"cell %s is spent more than once in the block", outpoint)
			}
			spentInBlock[outpoint] = struct{}{}

			output, err := s.unspentOutput(&outpoint, createdOutputs)
			if err != nil {
				return err
			}
			outpointKey := serialization.SerializeOutpoint(&outpoint)
			err = dbTx.Put(spentCellsBucket.Key(outpointKey), spentHeightBytes)
			if err != nil {
				return err
			}
			entry, err := serialization.SerializeCellEntry(&outpoint, output)
			if err != nil {
				return err
			}
			cellSet.Remove(entry)
		}
	}
	return nil
}

func (s *ChainStore) unspentOutput(outpoint *externalapi.DomainOutpoint,
	createdOutputs map[externalapi.DomainOutpoint]*externalapi.DomainCellOutput) (
	*externalapi.DomainCellOutput, error) {

	if output, ok := createdOutputs[*outpoint]; ok {
		return output, nil
	}

	outpointKey := serialization.SerializeOutpoint(outpoint)
	outputBytes, err := s.db.Get(cellsBucket.Key(outpointKey))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, ruleerrors.NewErrMissingTxOut([]*externalapi.DomainOutpoint{outpoint})
		}
		return nil, err
	}
	isSpent, err := s.db.Has(spentCellsBucket.Key(outpointKey))
	if err != nil {
		return nil, err
	}
	if isSpent {
		return nil, ruleerrors.NewErrMissingTxOut([]*externalapi.DomainOutpoint{outpoint})
	}
	return serialization.DeserializeCellOutput(outputBytes)
}
