package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
)

// CellResolver answers cell lookups for the transactions of a single block.
// Outputs of the block's own transactions are visible regardless of the
// block they are looked up from. Any other outpoint is delegated to the chain.
type CellResolver struct {
	transactions       []*externalapi.DomainTransaction
	transactionIndexes map[externalapi.DomainHash]int
	chain              model.CellProvider
}

// NewCellResolver indexes transactions and returns a CellResolver over them
func NewCellResolver(transactions []*externalapi.DomainTransaction, chain model.CellProvider) *CellResolver {
	transactionIndexes := make(map[externalapi.DomainHash]int, len(transactions))
	for i, tx := range transactions {
		transactionIndexes[*consensushashing.TransactionHash(tx)] = i
	}

	return &CellResolver{
		transactions:       transactions,
		transactionIndexes: transactionIndexes,
		chain:              chain,
	}
}

var _ model.CellProvider = (*CellResolver)(nil)

// CellAt implements model.CellProvider
func (r *CellResolver) CellAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	if index, ok := r.transactionIndexes[outpoint.TransactionHash]; ok {
		outputs := r.transactions[index].Outputs
		if uint64(outpoint.Index) >= uint64(len(outputs)) {
			return externalapi.UnknownCellState(), nil
		}
		return externalapi.NewLiveCellState(outputs[outpoint.Index]), nil
	}

	return r.chain.CellAt(outpoint, asOf)
}

// ResolveTransaction looks up every input cell of tx as of asOf
func (r *CellResolver) ResolveTransaction(tx *externalapi.DomainTransaction,
	asOf *externalapi.DomainHash) (*externalapi.ResolvedTransaction, error) {

	inputCells := make([]externalapi.CellState, len(tx.Inputs))
	for i, input := range tx.Inputs {
		cell, err := r.CellAt(&input.PreviousOutpoint, asOf)
		if err != nil {
			return nil, err
		}
		inputCells[i] = cell
	}

	return &externalapi.ResolvedTransaction{
		Transaction: tx,
		InputCells:  inputCells,
	}, nil
}

// chainCellProvider adapts a ChainProvider to model.CellProvider
type chainCellProvider struct {
	chain model.ChainProvider
}

func (p chainCellProvider) CellAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	return p.chain.CellStateAt(outpoint, asOf)
}
