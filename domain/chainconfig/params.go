package chainconfig

import (
	"math/big"
	"time"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
)

// These variables are the default proof-of-work limit parameters for each
// default network.
var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowMax is the highest proof of work value a block can
	// have for the main network. It is the value 2^239 - 1.
	mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 239), bigOne)

	// testnetPowMax is the highest proof of work value a block can
	// have for the test network. It is the value 2^250 - 1.
	testnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 250), bigOne)

	// simnetPowMax is the highest proof of work value a block can
	// have for the simulation test network. It is the value 2^255 - 1.
	simnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// devnetPowMax is the highest proof of work value a block can
	// have for the development network. It is the value 2^255 - 1.
	devnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

const (
	defaultTargetTimePerBlock             = 10 * time.Second
	defaultDifficultyAdjustmentWindowSize = 144
	defaultTimestampDeviationTolerance    = 30
	defaultBaseSubsidy                    = 5000 * 100_000_000
	defaultSubsidyReductionInterval       = 4 * 365 * 24 * 360
	defaultMaxUnclesCount                 = 2
	defaultMaxUnclesAge                   = 6
)

// Params defines a network by its parameters. These parameters may be
// used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *externalapi.DomainBlock

	// GenesisHash is the starting block hash.
	GenesisHash *externalapi.DomainHash

	// PowMax defines the highest allowed proof of work value for a block
	// as a uint256.
	PowMax *big.Int

	// SkipProofOfWork indicates whether proof of work should be checked.
	SkipProofOfWork bool

	// BaseSubsidy is the block reward of the first blocks, before any
	// reduction.
	BaseSubsidy uint64

	// SubsidyReductionInterval is the interval of blocks before the subsidy
	// is reduced.
	SubsidyReductionInterval uint64

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// DifficultyAdjustmentWindowSize is the size of window that is inspected
	// to calculate the required difficulty of each block.
	DifficultyAdjustmentWindowSize uint64

	// DisableDifficultyAdjustment determine whether to use difficulty
	// adjustment; when set every block requires the PowMax bits.
	DisableDifficultyAdjustment bool

	// TimestampDeviationTolerance is the maximum offset a block timestamp
	// is allowed to be in the future, measured in TargetTimePerBlock units.
	TimestampDeviationTolerance uint64

	// MaxUnclesCount is the maximum number of uncles a block may credit.
	MaxUnclesCount int

	// MaxUnclesAge is the maximum height distance between a block and the
	// uncles it credits.
	MaxUnclesAge uint64
}

// MaxFutureOffset returns how far in the future a block timestamp may be
func (p *Params) MaxFutureOffset() time.Duration {
	return time.Duration(p.TimestampDeviationTolerance) * p.TargetTimePerBlock
}

// Clone returns a copy of p that can be modified without affecting p
func (p *Params) Clone() *Params {
	clone := *p
	clone.PowMax = new(big.Int).Set(p.PowMax)
	return &clone
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:                           "celld-mainnet",
	GenesisBlock:                   &mainnetGenesisBlock,
	GenesisHash:                    mainnetGenesisHash,
	PowMax:                         mainPowMax,
	BaseSubsidy:                    defaultBaseSubsidy,
	SubsidyReductionInterval:       defaultSubsidyReductionInterval,
	TargetTimePerBlock:             defaultTargetTimePerBlock,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	MaxUnclesCount:                 defaultMaxUnclesCount,
	MaxUnclesAge:                   defaultMaxUnclesAge,
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:                           "celld-testnet",
	GenesisBlock:                   &testnetGenesisBlock,
	GenesisHash:                    testnetGenesisHash,
	PowMax:                         testnetPowMax,
	BaseSubsidy:                    defaultBaseSubsidy,
	SubsidyReductionInterval:       defaultSubsidyReductionInterval,
	TargetTimePerBlock:             defaultTargetTimePerBlock,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	MaxUnclesCount:                 defaultMaxUnclesCount,
	MaxUnclesAge:                   defaultMaxUnclesAge,
}

// SimnetParams defines the network parameters for the simulation test network.
// This network is similar to the normal test network except it is
// intended for private use within a group of individuals doing simulation
// testing and full integration tests between different applications such as
// wallets, voting service helpers, mining pools, block explorers, and other
// services.
//
// The functionality is intended to differ in that the only nodes which are
// specifically specified are used to create the network rather than following
// normal discovery rules. This is important as otherwise it would just turn
// into another public testnet.
var SimnetParams = Params{
	Name:                           "celld-simnet",
	GenesisBlock:                   &simnetGenesisBlock,
	GenesisHash:                    simnetGenesisHash,
	PowMax:                         simnetPowMax,
	BaseSubsidy:                    defaultBaseSubsidy,
	SubsidyReductionInterval:       210_000,
	TargetTimePerBlock:             time.Millisecond,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	DisableDifficultyAdjustment:    true,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	MaxUnclesCount:                 defaultMaxUnclesCount,
	MaxUnclesAge:                   defaultMaxUnclesAge,
}

// DevnetParams defines the network parameters for the development network.
var DevnetParams = Params{
	Name:                           "celld-devnet",
	GenesisBlock:                   &devnetGenesisBlock,
	GenesisHash:                    devnetGenesisHash,
	PowMax:                         devnetPowMax,
	BaseSubsidy:                    defaultBaseSubsidy,
	SubsidyReductionInterval:       defaultSubsidyReductionInterval,
	TargetTimePerBlock:             defaultTargetTimePerBlock,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	MaxUnclesCount:                 defaultMaxUnclesCount,
	MaxUnclesAge:                   defaultMaxUnclesAge,
}
