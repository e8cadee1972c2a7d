package blockverifier

import (
	"sync"
	"testing"

	"github.com/cellnet/celld/domain/chainconfig"
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/processes/headerverifier"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/hashset"
	"github.com/cellnet/celld/domain/consensus/utils/testutils"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/pkg/errors"
)

const testBlockReward = 1000

// testChain is an in-memory model.ChainProvider. Every cell it ever saw is
// live, as of any block.
type testChain struct {
	blocks map[externalapi.DomainHash]*externalapi.DomainBlock
	cells  map[externalapi.DomainOutpoint]*externalapi.DomainCellOutput
	tip    *externalapi.DomainBlock

	bits           uint32
	fee            uint64
	feeErr         error
	cellErr        error
	maxUnclesCount int
	maxUnclesAge   uint64

	asOfLock   sync.Mutex
	asOfHashes hashset.HashSet
}

func newTestChain(t *testing.T, length int) *testChain {
	genesis := chainconfig.SimnetParams.GenesisBlock.Clone()
	chain := &testChain{
		blocks:         make(map[externalapi.DomainHash]*externalapi.DomainBlock),
		cells:          make(map[externalapi.DomainOutpoint]*externalapi.DomainCellOutput),
		bits:           genesis.Header.Bits,
		maxUnclesCount: 2,
		maxUnclesAge:   6,
		asOfHashes:     hashset.New(),
	}
	chain.add(genesis)
	for i := 0; i < length; i++ {
		chain.add(chain.buildBlock(nil, nil))
	}
	if chain.tip.Header.Height != uint64(length) {
		t.Fatalf("newTestChain: unexpected tip height %d", chain.tip.Header.Height)
	}
	return chain
}

func (c *testChain) add(block *externalapi.DomainBlock) {
	c.blocks[*consensushashing.BlockHash(block)] = block
	for _, tx := range block.Transactions {
		txHash := consensushashing.TransactionHash(tx)
		for i, output := range tx.Outputs {
			c.cells[*externalapi.NewDomainOutpoint(txHash, uint32(i))] = output
		}
	}
	c.tip = block
}

// buildBlock builds a block on the tip whose cellbase claims the full reward
func (c *testChain) buildBlock(transactions []*externalapi.DomainTransaction,
	uncles []*externalapi.DomainUncleBlock) *externalapi.DomainBlock {

	reward := testBlockReward + uint64(len(transactions))*c.fee
	return testutils.BuildBlock(c.tip.Header, c.bits,
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(reward)}, transactions, uncles)
}

func (c *testChain) ancestor(height uint64) *externalapi.DomainBlock {
	block := c.tip
	for block.Header.Height > height {
		block = c.blocks[block.Header.ParentHash]
	}
	return block
}

// uncleAt returns a sibling of the chain block at the given height. Uncles
// built with different salts are different.
func (c *testChain) uncleAt(height uint64, salt uint64) *externalapi.DomainUncleBlock {
	parent := c.ancestor(height - 1)
	block := testutils.BuildBlock(parent.Header, c.bits,
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(salt)}, nil, nil)
	return testutils.ToUncle(block)
}

// tipCellbaseOutpoint returns the outpoint of a live cell holding testBlockReward
func (c *testChain) tipCellbaseOutpoint() *externalapi.DomainOutpoint {
	return externalapi.NewDomainOutpoint(consensushashing.TransactionHash(c.tip.Transactions[0]), 0)
}

func (c *testChain) BlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	block, err := c.Block(blockHash)
	if err != nil {
		return nil, err
	}
	return block.Header, nil
}

func (c *testChain) Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	block, ok := c.blocks[*blockHash]
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound, "block %s not found", blockHash)
	}
	return block, nil
}

func (c *testChain) RequiredDifficulty(*externalapi.DomainBlockHeader) (uint32, error) {
	return c.bits, nil
}

func (c *testChain) BlockReward(uint64) uint64 {
	return testBlockReward
}

func (c *testChain) TransactionFee(*externalapi.DomainTransaction) (uint64, error) {
	if c.feeErr != nil {
		return 0, c.feeErr
	}
	return c.fee, nil
}

func (c *testChain) CellStateAt(outpoint *externalapi.DomainOutpoint,
	asOf *externalapi.DomainHash) (externalapi.CellState, error) {

	c.asOfLock.Lock()
	c.asOfHashes.Add(asOf)
	c.asOfLock.Unlock()

	if c.cellErr != nil {
		return externalapi.CellState{}, c.cellErr
	}
	output, ok := c.cells[*outpoint]
	if !ok {
		return externalapi.UnknownCellState(), nil
	}
	return externalapi.NewLiveCellState(output), nil
}

func (c *testChain) MaxUnclesCount() int {
	return c.maxUnclesCount
}

func (c *testChain) MaxUnclesAge() uint64 {
	return c.maxUnclesAge
}

var _ model.ChainProvider = (*testChain)(nil)

func newTestHeaderVerifier() model.HeaderVerifier {
	return headerverifier.New(chainconfig.SimnetParams.TimestampDeviationTolerance,
		chainconfig.SimnetParams.TargetTimePerBlock)
}

// stubTransactionVerifier rejects exactly the transactions in invalid
type stubTransactionVerifier struct {
	invalid hashset.HashSet
}

func (v *stubTransactionVerifier) VerifyTransaction(resolved *externalapi.ResolvedTransaction) error {
	txHash := consensushashing.TransactionHash(resolved.Transaction)
	if v.invalid.Contains(txHash) {
		return errors.Wrapf(ruleerrors.ErrScriptValidation, "transaction %s is marked invalid", txHash)
	}
	return nil
}

// rejectingPow fails every header
type rejectingPow struct{}

func (rejectingPow) VerifyProofOfWork(*externalapi.DomainBlockHeader) bool {
	return false
}
