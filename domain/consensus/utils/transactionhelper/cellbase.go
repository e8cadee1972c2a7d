package transactionhelper

import (
	"encoding/binary"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
)

// CellbaseTransactionIndex is the index of the cellbase transaction in every block
const CellbaseTransactionIndex = 0

// NewCellbaseInput returns the one input every cellbase of a block at the
// given height is expected to carry: the null outpoint unlocked by a script
// whose only signed arg is the height as 8 little endian bytes.
func NewCellbaseInput(height uint64) *externalapi.DomainTransactionInput {
	heightBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(heightBytes, height)

	return &externalapi.DomainTransactionInput{
		PreviousOutpoint: *externalapi.NewDomainOutpoint(externalapi.NewZeroHash(), externalapi.NullOutpointIndex),
		UnlockScript: &externalapi.Script{
			Version:    externalapi.ScriptVersionAlwaysSuccess,
			SignedArgs: [][]byte{heightBytes},
		},
	}
}

// NewCellbaseTransaction returns a cellbase for a block at the given height
// that pays out the given outputs
func NewCellbaseTransaction(height uint64, outputs []*externalapi.DomainCellOutput) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		Version: 0,
		Inputs:  []*externalapi.DomainTransactionInput{NewCellbaseInput(height)},
		Outputs: outputs,
	}
}

// IsCellbase determines whether or not a transaction is a cellbase. A cellbase
// is a special transaction created by miners that has exactly one input,
// spending the null outpoint.
func IsCellbase(tx *externalapi.DomainTransaction) bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].PreviousOutpoint.IsNull()
}

// OutputsCapacity returns the sum of the capacities of tx's outputs, and
// false if the sum overflows
func OutputsCapacity(tx *externalapi.DomainTransaction) (uint64, bool) {
	var total uint64
	for _, output := range tx.Outputs {
		newTotal := total + output.Capacity
		if newTotal < total {
			return 0, false
		}
		total = newTotal
	}
	return total, true
}
