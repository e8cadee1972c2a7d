package consensus

import (
	"github.com/cellnet/celld/domain/consensus/chainstore"
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/processes/blockverifier"
)

// candidateChain is the chain as seen by a block that is about to extend
// it: transaction fees are computed with the block's own outputs available
// as inputs
type candidateChain struct {
	*chainstore.ChainStore
	block        *externalapi.DomainBlock
	cellResolver *blockverifier.CellResolver
}

var _ model.ChainProvider = (*candidateChain)(nil)

func newCandidateChain(chainStore *chainstore.ChainStore, block *externalapi.DomainBlock) *candidateChain {
	return &candidateChain{
		ChainStore:   chainStore,
		block:        block,
		cellResolver: blockverifier.NewCellResolver(block.Transactions, storeCellProvider{chainStore}),
	}
}

// TransactionFee overrides ChainStore.TransactionFee
func (c *candidateChain) TransactionFee(transaction *externalapi.DomainTransaction) (uint64, error) {
	return chainstore.CalculateFee(transaction, c.cellResolver, &c.block.Header.ParentHash)
}

type storeCellProvider struct {
	chainStore *chainstore.ChainStore
}

func (p storeCellProvider) CellAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	return p.chainStore.CellStateAt(outpoint, asOf)
}
