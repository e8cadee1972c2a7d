package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/hashset"
	"github.com/pkg/errors"
)

// CheckDuplicateTransactions fails blocks in which two transactions share a hash
func CheckDuplicateTransactions(block *externalapi.DomainBlock) error {
	transactionHashes := hashset.NewFromSlice(consensushashing.TransactionHashes(block.Transactions)...)
	if transactionHashes.Length() < len(block.Transactions) {
		return errors.Wrapf(ruleerrors.ErrDuplicateTransactions, "block contains %d transactions "+
			"but only %d distinct transaction hashes", len(block.Transactions), transactionHashes.Length())
	}
	return nil
}
