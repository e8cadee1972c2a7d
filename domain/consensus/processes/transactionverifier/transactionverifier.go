package transactionverifier

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// transactionVerifier exposes a set of validation rules for a single
// transaction whose input cells were already resolved
type transactionVerifier struct{}

// New instantiates a new TransactionVerifier
func New() model.TransactionVerifier {
	return &transactionVerifier{}
}

// VerifyTransaction implements model.TransactionVerifier
func (v *transactionVerifier) VerifyTransaction(resolvedTransaction *externalapi.ResolvedTransaction) error {
	tx := resolvedTransaction.Transaction

	err := checkTransactionInputCount(tx)
	if err != nil {
		return err
	}

	err = checkTransactionOutputCount(tx)
	if err != nil {
		return err
	}

	err = checkInputCellsAreLive(resolvedTransaction)
	if err != nil {
		return err
	}

	err = checkTransactionCapacity(resolvedTransaction)
	if err != nil {
		return err
	}

	return checkUnlockScripts(resolvedTransaction)
}

func checkTransactionInputCount(tx *externalapi.DomainTransaction) error {
	// A non-cellbase transaction must have at least one input.
	if len(tx.Inputs) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTxInputs, "transaction has no inputs")
	}
	return nil
}

func checkTransactionOutputCount(tx *externalapi.DomainTransaction) error {
	if len(tx.Outputs) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTxOutputs, "transaction has no outputs")
	}
	return nil
}

func checkInputCellsAreLive(resolvedTransaction *externalapi.ResolvedTransaction) error {
	tx := resolvedTransaction.Transaction
	if len(resolvedTransaction.InputCells) != len(tx.Inputs) {
		return errors.Errorf("transaction has %d inputs but %d resolved input cells",
			len(tx.Inputs), len(resolvedTransaction.InputCells))
	}

	var missingOutpoints []*externalapi.DomainOutpoint
	for i, input := range tx.Inputs {
		if !resolvedTransaction.InputCells[i].IsLive() {
			outpoint := input.PreviousOutpoint
			missingOutpoints = append(missingOutpoints, &outpoint)
		}
	}

	if len(missingOutpoints) > 0 {
		return ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}
	return nil
}

func checkTransactionCapacity(resolvedTransaction *externalapi.ResolvedTransaction) error {
	var totalInputCapacity uint64
	for i, cell := range resolvedTransaction.InputCells {
		newTotalInputCapacity := totalInputCapacity + cell.Output.Capacity
		if newTotalInputCapacity < totalInputCapacity {
			return errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total capacity of the inputs "+
				"overflows at input %d", i)
		}
		totalInputCapacity = newTotalInputCapacity
	}

	var totalOutputCapacity uint64
	for i, output := range resolvedTransaction.Transaction.Outputs {
		newTotalOutputCapacity := totalOutputCapacity + output.Capacity
		if newTotalOutputCapacity < totalOutputCapacity {
			return errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total capacity of the outputs "+
				"overflows at output %d", i)
		}
		totalOutputCapacity = newTotalOutputCapacity
	}

	if totalOutputCapacity > totalInputCapacity {
		return errors.Wrapf(ruleerrors.ErrSpendTooHigh, "total capacity of all transaction outputs is %d "+
			"which is higher than the input capacity of %d", totalOutputCapacity, totalInputCapacity)
	}
	return nil
}
