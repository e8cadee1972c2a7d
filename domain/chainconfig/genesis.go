package chainconfig

import (
	"math/big"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/math"
	"github.com/cellnet/celld/domain/consensus/utils/merkle"
	"github.com/cellnet/celld/domain/consensus/utils/transactionhelper"
)

// newGenesisBlock builds a genesis block whose only transaction is a
// cellbase carrying the network's name, and whose bits encode powMax.
func newGenesisBlock(networkName string, timeInMilliseconds int64, powMax *big.Int) externalapi.DomainBlock {
	cellbase := transactionhelper.NewCellbaseTransaction(0, []*externalapi.DomainCellOutput{{
		Capacity: 0,
		Data:     []byte(networkName),
		Lock:     *externalapi.NewZeroHash(),
	}})
	transactions := []*externalapi.DomainTransaction{cellbase}

	return externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:            0,
			ParentHash:         *externalapi.NewZeroHash(),
			Height:             0,
			TimeInMilliseconds: timeInMilliseconds,
			Bits:               math.BigToCompact(powMax),
			Nonce:              0,
			TransactionsRoot:   *merkle.CalculateHashMerkleRoot(transactions),
			UnclesHash:         *consensushashing.UnclesHash(nil),
			CellbaseHash:       *consensushashing.TransactionHash(cellbase),
		},
		Transactions: transactions,
		Uncles:       []*externalapi.DomainUncleBlock{},
	}
}

var mainnetGenesisBlock = newGenesisBlock("celld-mainnet", 1735689600000, mainPowMax)
var mainnetGenesisHash = consensushashing.BlockHash(&mainnetGenesisBlock)

var testnetGenesisBlock = newGenesisBlock("celld-testnet", 1735689600000, testnetPowMax)
var testnetGenesisHash = consensushashing.BlockHash(&testnetGenesisBlock)

var simnetGenesisBlock = newGenesisBlock("celld-simnet", 1735689600000, simnetPowMax)
var simnetGenesisHash = consensushashing.BlockHash(&simnetGenesisBlock)

var devnetGenesisBlock = newGenesisBlock("celld-devnet", 1735689600000, devnetPowMax)
var devnetGenesisHash = consensushashing.BlockHash(&devnetGenesisBlock)
