package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// CheckEmptyTransactions fails blocks that carry no transactions at all
func CheckEmptyTransactions(block *externalapi.DomainBlock) error {
	if len(block.Transactions) == 0 {
		return errors.Wrapf(ruleerrors.ErrEmptyTransactions, "block does not contain "+
			"any transactions")
	}
	return nil
}
