package consensus

import (
	"sync"

	"github.com/cellnet/celld/domain/chainconfig"
	"github.com/cellnet/celld/domain/consensus/chainstore"
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/processes/blockverifier"
	"github.com/cellnet/celld/domain/consensus/processes/headerverifier"
	"github.com/cellnet/celld/domain/consensus/processes/transactionverifier"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/pow"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/cellnet/celld/infrastructure/logger"
	"github.com/pkg/errors"
)

// Consensus maintains the canonical chain and extends it with blocks that
// pass verification
type Consensus interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock) error

	GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	GetHeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error)
	GetTip() (*externalapi.DomainHash, error)
	GetCellState(outpoint *externalapi.DomainOutpoint) (externalapi.CellState, error)
	GetCellSetCommitment(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
}

type consensus struct {
	lock sync.Mutex

	chainStore          *chainstore.ChainStore
	pow                 model.PowVerifier
	headerVerifier      model.HeaderVerifier
	transactionVerifier model.TransactionVerifier
}

// New instantiates a new Consensus over db, initializing it with params'
// genesis block if it's empty
func New(params *chainconfig.Params, db database.Database) (Consensus, error) {
	chainStore, err := chainstore.New(db, params)
	if err != nil {
		return nil, err
	}

	var powVerifier model.PowVerifier
	if params.SkipProofOfWork {
		powVerifier = pow.NewDummyVerifier()
	} else {
		powVerifier = pow.NewVerifier(params.PowMax)
	}

	return &consensus{
		chainStore:          chainStore,
		pow:                 powVerifier,
		headerVerifier:      headerverifier.New(params.TimestampDeviationTolerance, params.TargetTimePerBlock),
		transactionVerifier: transactionverifier.New(),
	}, nil
}

// ValidateAndInsertBlock verifies the given block against the current tip
// and, if it's valid, appends it to the chain
func (s *consensus) ValidateAndInsertBlock(block *externalapi.DomainBlock) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateAndInsertBlock")
	defer onEnd()

	blockHash := consensushashing.BlockHash(block)
	log.Debugf("Validating block %s", blockHash)

	err := s.validateBlock(block)
	if err != nil {
		return err
	}

	err = s.chainStore.InsertBlock(block)
	if err != nil {
		return err
	}
	log.Debugf("Accepted block %s at height %d", blockHash, block.Header.Height)
	return nil
}

func (s *consensus) validateBlock(block *externalapi.DomainBlock) error {
	if block.Header == nil {
		return errors.New("block has no header")
	}

	headerResolver, err := blockverifier.NewHeaderResolverWrapper(block.Header, s.chainStore)
	if err != nil {
		return err
	}
	err = s.headerVerifier.VerifyHeader(headerResolver, s.pow)
	if err != nil {
		return err
	}

	tipHash, err := s.chainStore.Tip()
	if err != nil {
		return err
	}
	if !block.Header.ParentHash.Equal(tipHash) {
		return errors.Wrapf(ruleerrors.ErrNotExtendingTip, "block parent %s is not the tip %s",
			block.Header.ParentHash, tipHash)
	}

	// The block verifier accepts blocks without a cellbase, but it never
	// verifies the first transaction. Extending the chain requires it to
	// be the cellbase.
	if len(block.Transactions) > 0 && !transactionhelper.IsCellbase(block.Transactions[0]) {
		return errors.Wrapf(ruleerrors.ErrCellbaseMissing, "the first transaction of block %s "+
			"is not a cellbase", consensushashing.BlockHash(block))
	}

	chain := newCandidateChain(s.chainStore, block)
	err = blockverifier.VerifyBlock(block, chain, s.pow, s.headerVerifier, s.transactionVerifier)
	if err != nil {
		return err
	}

	return checkBlockDoubleSpends(block)
}

// checkBlockDoubleSpends makes sure no two inputs of block spend the same
// cell. Each transaction is checked on its own by the block verifier, which
// can't see conflicts between transactions.
func checkBlockDoubleSpends(block *externalapi.DomainBlock) error {
	usedOutpoints := make(map[externalapi.DomainOutpoint]*externalapi.DomainHash)
	for _, transaction := range block.Transactions {
		if transactionhelper.IsCellbase(transaction) {
			continue
		}
		for _, input := range transaction.Inputs {
			transactionHash := consensushashing.TransactionHash(transaction)
			if spendingTransactionHash, exists := usedOutpoints[input.PreviousOutpoint]; exists {
				return errors.Wrapf(ruleerrors.ErrDoubleSpendInSameBlock, "transaction %s spends "+
					"outpoint %s that was already spent by "+
					"transaction %s in this block", transactionHash, input.PreviousOutpoint, spendingTransactionHash)
			}
			usedOutpoints[input.PreviousOutpoint] = transactionHash
		}
	}
	return nil
}

func (s *consensus) GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	return s.chainStore.Block(blockHash)
}

func (s *consensus) GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	return s.chainStore.BlockHeader(blockHash)
}

func (s *consensus) GetHeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error) {
	return s.chainStore.HeaderByHeight(height)
}

func (s *consensus) GetTip() (*externalapi.DomainHash, error) {
	return s.chainStore.Tip()
}

// GetCellState returns the state of outpoint's cell as of the tip
func (s *consensus) GetCellState(outpoint *externalapi.DomainOutpoint) (externalapi.CellState, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	tipHash, err := s.chainStore.Tip()
	if err != nil {
		return externalapi.CellState{}, err
	}
	return s.chainStore.CellStateAt(outpoint, tipHash)
}

func (s *consensus) GetCellSetCommitment(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	return s.chainStore.CellSetCommitment(blockHash)
}
