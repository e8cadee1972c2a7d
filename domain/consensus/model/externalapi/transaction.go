package externalapi

import (
	"bytes"
	"fmt"
	"math"
)

// DomainTransaction represents a transaction consuming cells through its
// inputs and creating new cells through its outputs
type DomainTransaction struct {
	Version uint16
	Inputs  []*DomainTransactionInput
	Outputs []*DomainCellOutput
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	inputsClone := make([]*DomainTransactionInput, len(tx.Inputs))
	for i, input := range tx.Inputs {
		inputsClone[i] = input.Clone()
	}

	outputsClone := make([]*DomainCellOutput, len(tx.Outputs))
	for i, output := range tx.Outputs {
		outputsClone[i] = output.Clone()
	}

	return &DomainTransaction{
		Version: tx.Version,
		Inputs:  inputsClone,
		Outputs: outputsClone,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainTransaction{0, []*DomainTransactionInput{}, []*DomainCellOutput{}}

// Equal returns whether tx equals to other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}

	if tx.Version != other.Version {
		return false
	}

	if len(tx.Inputs) != len(other.Inputs) || len(tx.Outputs) != len(other.Outputs) {
		return false
	}

	for i, input := range tx.Inputs {
		if !input.Equal(other.Inputs[i]) {
			return false
		}
	}

	for i, output := range tx.Outputs {
		if !output.Equal(other.Outputs[i]) {
			return false
		}
	}

	return true
}

// DomainTransactionInput references the cell being consumed and carries the
// script that unlocks it
type DomainTransactionInput struct {
	PreviousOutpoint DomainOutpoint
	UnlockScript     *Script
}

// Clone returns a clone of DomainTransactionInput
func (input *DomainTransactionInput) Clone() *DomainTransactionInput {
	return &DomainTransactionInput{
		PreviousOutpoint: input.PreviousOutpoint,
		UnlockScript:     input.UnlockScript.Clone(),
	}
}

// Equal returns whether input equals to other
func (input *DomainTransactionInput) Equal(other *DomainTransactionInput) bool {
	if input == nil || other == nil {
		return input == other
	}

	return input.PreviousOutpoint == other.PreviousOutpoint &&
		input.UnlockScript.Equal(other.UnlockScript)
}

// NullOutpointIndex is the output index of the null outpoint
const NullOutpointIndex = math.MaxUint32

// DomainOutpoint references an output of a transaction
type DomainOutpoint struct {
	TransactionHash DomainHash
	Index           uint32
}

// NewDomainOutpoint instantiates a new DomainOutpoint with the given hash and index
func NewDomainOutpoint(transactionHash *DomainHash, index uint32) *DomainOutpoint {
	return &DomainOutpoint{
		TransactionHash: *transactionHash,
		Index:           index,
	}
}

// IsNull returns whether the outpoint is the null outpoint, which is only
// ever referenced by cellbase inputs
func (op DomainOutpoint) IsNull() bool {
	return op.Index == NullOutpointIndex && op.TransactionHash.IsZero()
}

// String stringifies an outpoint.
func (op DomainOutpoint) String() string {
	return fmt.Sprintf("%s:%d", op.TransactionHash, op.Index)
}

// DomainCellOutput is a cell: a capacity holding some data, guarded by the
// hash of the script allowed to consume it
type DomainCellOutput struct {
	Capacity uint64
	Data     []byte
	Lock     DomainHash
}

// Clone returns a clone of DomainCellOutput
func (output *DomainCellOutput) Clone() *DomainCellOutput {
	dataClone := make([]byte, len(output.Data))
	copy(dataClone, output.Data)

	return &DomainCellOutput{
		Capacity: output.Capacity,
		Data:     dataClone,
		Lock:     output.Lock,
	}
}

// Equal returns whether output equals to other
func (output *DomainCellOutput) Equal(other *DomainCellOutput) bool {
	if output == nil || other == nil {
		return output == other
	}

	return output.Capacity == other.Capacity &&
		bytes.Equal(output.Data, other.Data) &&
		output.Lock.Equal(&other.Lock)
}
