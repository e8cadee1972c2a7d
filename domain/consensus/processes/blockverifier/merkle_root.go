package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/merkle"
	"github.com/pkg/errors"
)

// CheckMerkleRoot fails blocks whose transactions do not hash to the
// transactions root committed to in the header
func CheckMerkleRoot(block *externalapi.DomainBlock) error {
	calculatedTransactionsRoot := merkle.CalculateHashMerkleRoot(block.Transactions)
	if !block.Header.TransactionsRoot.Equal(calculatedTransactionsRoot) {
		return errors.Wrapf(ruleerrors.ErrBadMerkleRoot, "block transactions root is invalid - block "+
			"header indicates %s, but calculated value is %s",
			block.Header.TransactionsRoot, calculatedTransactionsRoot)
	}
	return nil
}
