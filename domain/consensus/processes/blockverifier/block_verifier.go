package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/infrastructure/logger"
)

// BlockVerifier runs every block-level consensus rule over a single
// candidate block. It is meant to live for a single verification and never
// modifies the block or the chain.
type BlockVerifier struct {
	block               *externalapi.DomainBlock
	chain               model.ChainProvider
	pow                 model.PowVerifier
	headerVerifier      model.HeaderVerifier
	transactionVerifier model.TransactionVerifier
}

// New instantiates a BlockVerifier for block on top of chain
func New(block *externalapi.DomainBlock,
	chain model.ChainProvider,
	pow model.PowVerifier,
	headerVerifier model.HeaderVerifier,
	transactionVerifier model.TransactionVerifier) *BlockVerifier {

	return &BlockVerifier{
		block:               block,
		chain:               chain,
		pow:                 pow,
		headerVerifier:      headerVerifier,
		transactionVerifier: transactionVerifier,
	}
}

// VerifyBlock is a shortcut for New(...).Verify()
func VerifyBlock(block *externalapi.DomainBlock,
	chain model.ChainProvider,
	pow model.PowVerifier,
	headerVerifier model.HeaderVerifier,
	transactionVerifier model.TransactionVerifier) error {

	return New(block, chain, pow, headerVerifier, transactionVerifier).Verify()
}

// Verify runs the block checks in order and returns the first failure as is.
// The candidate's own header is expected to be verified by the caller.
func (v *BlockVerifier) Verify() error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "BlockVerifier.Verify")
	defer onEnd()

	log.Tracef("Verifying block %s at height %d", logger.NewLogClosure(func() string {
		return consensushashing.BlockHash(v.block).String()
	}), v.block.Header.Height)

	err := CheckEmptyTransactions(v.block)
	if err != nil {
		return err
	}

	err = CheckDuplicateTransactions(v.block)
	if err != nil {
		return err
	}

	err = NewCellbaseVerifier(v.block, v.chain).Verify()
	if err != nil {
		return err
	}

	err = CheckMerkleRoot(v.block)
	if err != nil {
		return err
	}

	err = NewUnclesVerifier(v.block, v.chain, v.pow, v.headerVerifier).Verify()
	if err != nil {
		return err
	}

	return NewTransactionsVerifier(v.block, v.chain, v.transactionVerifier).Verify()
}
