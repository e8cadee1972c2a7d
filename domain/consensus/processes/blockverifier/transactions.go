package blockverifier

import (
	"runtime"
	"sync"

	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

// TransactionsVerifier resolves and verifies every non-cellbase
// transaction of a block, in parallel
type TransactionsVerifier struct {
	block               *externalapi.DomainBlock
	chain               model.ChainProvider
	transactionVerifier model.TransactionVerifier
}

// NewTransactionsVerifier instantiates a TransactionsVerifier for block
func NewTransactionsVerifier(block *externalapi.DomainBlock, chain model.ChainProvider,
	transactionVerifier model.TransactionVerifier) *TransactionsVerifier {

	return &TransactionsVerifier{
		block:               block,
		chain:               chain,
		transactionVerifier: transactionVerifier,
	}
}

// transactionResult is the outcome of a single transaction. lookupErr is a
// failure of the chain itself, verifyErr a rejection of the transaction.
type transactionResult struct {
	lookupErr error
	verifyErr error
}

// Verify resolves the inputs of all transactions but the cellbase as of the
// block's parent, and verifies them. Every rejected transaction is reported
// in a single ErrInvalidTransactionsInBlock, indexed by its position among
// the non-cellbase transactions.
func (v *TransactionsVerifier) Verify() error {
	transactions := v.block.Transactions
	if len(transactions) <= transactionhelper.CellbaseTransactionIndex+1 {
		return nil
	}

	resolver := NewCellResolver(transactions, chainCellProvider{chain: v.chain})
	asOf := &v.block.Header.ParentHash
	nonCellbaseTransactions := transactions[transactionhelper.CellbaseTransactionIndex+1:]

	results := make([]transactionResult, len(nonCellbaseTransactions))
	workerCount := runtime.GOMAXPROCS(0)
	if workerCount > len(nonCellbaseTransactions) {
		workerCount = len(nonCellbaseTransactions)
	}

	indexes := make(chan int)
	waitGroup := sync.WaitGroup{}
	waitGroup.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		spawn("TransactionsVerifier.Verify-worker", func() {
			defer waitGroup.Done()
			for index := range indexes {
				results[index] = v.verifyTransaction(resolver, nonCellbaseTransactions[index], asOf)
			}
		})
	}
	for index := range nonCellbaseTransactions {
		indexes <- index
	}
	close(indexes)
	waitGroup.Wait()

	for _, result := range results {
		if result.lookupErr != nil {
			return result.lookupErr
		}
	}

	var invalidTransactions []ruleerrors.InvalidTransaction
	for index, result := range results {
		if result.verifyErr != nil {
			invalidTransactions = append(invalidTransactions, ruleerrors.InvalidTransaction{
				Index: index,
				Error: result.verifyErr,
			})
		}
	}
	if len(invalidTransactions) > 0 {
		log.Debugf("Block at height %d has %d invalid transactions",
			v.block.Header.Height, len(invalidTransactions))
		return ruleerrors.NewErrInvalidTransactionsInBlock(invalidTransactions)
	}
	return nil
}

// verifyTransaction reports a panic of the transaction verifier as the
// transaction's lookupErr.
func (v *TransactionsVerifier) verifyTransaction(resolver *CellResolver, tx *externalapi.DomainTransaction,
	asOf *externalapi.DomainHash) (result transactionResult) {

	defer func() {
		if r := recover(); r != nil {
			result = transactionResult{lookupErr: errors.Errorf("verification of transaction %s panicked: %v",
				consensushashing.TransactionHash(tx), r)}
		}
	}()

	resolvedTransaction, err := resolver.ResolveTransaction(tx, asOf)
	if err != nil {
		return transactionResult{lookupErr: err}
	}
	return transactionResult{verifyErr: v.transactionVerifier.VerifyTransaction(resolvedTransaction)}
}
