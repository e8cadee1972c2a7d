package chainstore

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

// CalculateFee returns the capacity transaction leaves unclaimed, looking
// its inputs up in cellProvider as of asOf. Unknown inputs fail with
// ErrMissingTxOut.
func CalculateFee(transaction *externalapi.DomainTransaction, cellProvider model.CellProvider,
	asOf *externalapi.DomainHash) (uint64, error) {

	var inputCapacity uint64
	var missingOutpoints []*externalapi.DomainOutpoint
	for _, input := range transaction.Inputs {
		cell, err := cellProvider.CellAt(&input.PreviousOutpoint, asOf)
		if err != nil {
			return 0, err
		}
		if !cell.IsLive() {
			outpoint := input.PreviousOutpoint
			missingOutpoints = append(missingOutpoints, &outpoint)
			continue
		}

		newInputCapacity := inputCapacity + cell.Output.Capacity
		if newInputCapacity < inputCapacity {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total capacity of the inputs overflows")
		}
		inputCapacity = newInputCapacity
	}
	if len(missingOutpoints) > 0 {
		return 0, ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}

	outputCapacity, ok := transactionhelper.OutputsCapacity(transaction)
	if !ok {
		return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total capacity of the outputs overflows")
	}
	if outputCapacity > inputCapacity {
		return 0, errors.Wrapf(ruleerrors.ErrSpendTooHigh, "total capacity of all transaction outputs is %d "+
			"which is higher than the input capacity of %d", outputCapacity, inputCapacity)
	}
	return inputCapacity - outputCapacity, nil
}
