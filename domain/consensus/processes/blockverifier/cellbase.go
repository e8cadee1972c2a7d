package blockverifier

import (
	"math"

	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

// CellbaseVerifier checks the position, input and reward of a block's cellbase
type CellbaseVerifier struct {
	block *externalapi.DomainBlock
	chain model.ChainProvider
}

// NewCellbaseVerifier instantiates a CellbaseVerifier for block
func NewCellbaseVerifier(block *externalapi.DomainBlock, chain model.ChainProvider) *CellbaseVerifier {
	return &CellbaseVerifier{
		block: block,
		chain: chain,
	}
}

// Verify checks the block's cellbase. A block without any cellbase passes,
// requiring one is left to the callers.
func (v *CellbaseVerifier) Verify() error {
	transactions := v.block.Transactions
	if len(transactions) == 0 {
		return nil
	}

	cellbaseCount := 0
	for _, tx := range transactions {
		if transactionhelper.IsCellbase(tx) {
			cellbaseCount++
		}
	}
	if cellbaseCount == 0 {
		return nil
	}
	if cellbaseCount > 1 {
		return errors.Wrapf(ruleerrors.ErrCellbaseInvalidQuantity, "block contains %d "+
			"cellbase transactions", cellbaseCount)
	}

	cellbase := transactions[transactionhelper.CellbaseTransactionIndex]
	if !transactionhelper.IsCellbase(cellbase) {
		return errors.Wrapf(ruleerrors.ErrCellbaseInvalidPosition, "the cellbase transaction "+
			"is not the first transaction in the block")
	}

	height := v.block.Header.Height
	expectedInput := transactionhelper.NewCellbaseInput(height)
	if !cellbase.Inputs[0].Equal(expectedInput) {
		return errors.Wrapf(ruleerrors.ErrCellbaseInvalidInput, "the cellbase input does not "+
			"commit to the block height %d", height)
	}

	reward, err := v.maxReward(transactions[transactionhelper.CellbaseTransactionIndex+1:])
	if err != nil {
		return err
	}

	outputCapacity, ok := transactionhelper.OutputsCapacity(cellbase)
	if !ok {
		return errors.Wrapf(ruleerrors.ErrCellbaseInvalidReward, "the cellbase output capacity overflows")
	}
	if outputCapacity > reward {
		return errors.Wrapf(ruleerrors.ErrCellbaseInvalidReward, "the cellbase pays %d while "+
			"the block reward is only %d", outputCapacity, reward)
	}
	return nil
}

// maxReward returns the block subsidy plus the fees of transactions,
// saturating at math.MaxUint64
func (v *CellbaseVerifier) maxReward(transactions []*externalapi.DomainTransaction) (uint64, error) {
	reward := v.chain.BlockReward(v.block.Header.Height)
	for _, tx := range transactions {
		fee, err := v.chain.TransactionFee(tx)
		if err != nil {
			return 0, err
		}
		if reward > math.MaxUint64-fee {
			reward = math.MaxUint64
			continue
		}
		reward += fee
	}
	return reward, nil
}
