package testutils

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/merkle"
	"github.com/cellnet/celld/domain/consensus/utils/pow"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
)

// BlockTimeInterval is the timestamp distance between a block built by
// BuildBlock and its parent
const BlockTimeInterval = 1000

// NewTransaction returns a transaction spending the given outpoints with
// always-success unlock scripts
func NewTransaction(outpoints []*externalapi.DomainOutpoint,
	outputs []*externalapi.DomainCellOutput) *externalapi.DomainTransaction {

	inputs := make([]*externalapi.DomainTransactionInput, len(outpoints))
	for i, outpoint := range outpoints {
		script, _ := AlwaysSuccessScript()
		inputs[i] = &externalapi.DomainTransactionInput{
			PreviousOutpoint: *outpoint,
			UnlockScript:     script,
		}
	}
	return &externalapi.DomainTransaction{
		Version: 0,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// AlwaysSuccessOutput returns an output of the given capacity locked by
// the always-success script
func AlwaysSuccessOutput(capacity uint64) *externalapi.DomainCellOutput {
	_, lock := AlwaysSuccessScript()
	return &externalapi.DomainCellOutput{
		Capacity: capacity,
		Lock:     *lock,
	}
}

// BuildBlock builds a block on top of parent: a cellbase paying
// cellbaseOutputs, followed by transactions, crediting uncles.
// The header commitments are filled in, the proof of work is not.
func BuildBlock(parent *externalapi.DomainBlockHeader, bits uint32,
	cellbaseOutputs []*externalapi.DomainCellOutput, transactions []*externalapi.DomainTransaction,
	uncles []*externalapi.DomainUncleBlock) *externalapi.DomainBlock {

	height := parent.Height + 1
	cellbase := transactionhelper.NewCellbaseTransaction(height, cellbaseOutputs)
	allTransactions := append([]*externalapi.DomainTransaction{cellbase}, transactions...)
	if uncles == nil {
		uncles = []*externalapi.DomainUncleBlock{}
	}

	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:            0,
			ParentHash:         *consensushashing.HeaderHash(parent),
			Height:             height,
			TimeInMilliseconds: parent.TimeInMilliseconds + BlockTimeInterval,
			Bits:               bits,
		},
		Transactions: allTransactions,
		Uncles:       uncles,
	}
	UpdateHeaderCommitments(block)
	return block
}

// UpdateHeaderCommitments recalculates the transactions root, the uncles
// hash and the cellbase hash of block's header. Call it after modifying
// the block body.
func UpdateHeaderCommitments(block *externalapi.DomainBlock) {
	block.Header.TransactionsRoot = *merkle.CalculateHashMerkleRoot(block.Transactions)
	block.Header.UnclesHash = *consensushashing.UnclesHash(block.Uncles)
	if len(block.Transactions) > 0 {
		block.Header.CellbaseHash = *consensushashing.TransactionHash(block.Transactions[0])
	} else {
		block.Header.CellbaseHash = externalapi.DomainHash{}
	}
}

// SolveHeader increments the header's nonce until it satisfies the
// target encoded in its own bits
func SolveHeader(header *externalapi.DomainBlockHeader) {
	for !pow.CheckProofOfWorkByBits(header) {
		header.Nonce++
	}
}

// ToUncle returns block in its uncle form
func ToUncle(block *externalapi.DomainBlock) *externalapi.DomainUncleBlock {
	return &externalapi.DomainUncleBlock{
		Header:   block.Header.Clone(),
		Cellbase: block.Transactions[transactionhelper.CellbaseTransactionIndex].Clone(),
	}
}
