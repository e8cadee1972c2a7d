package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/cellnet/celld/domain/chainconfig"
	"github.com/cellnet/celld/domain/consensus/utils/math"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet                 bool   `long:"testnet" description:"Use the test network"`
	Simnet                  bool   `long:"simnet" description:"Use the simulation test network"`
	Devnet                  bool   `long:"devnet" description:"Use the development test network"`
	OverrideChainParamsFile string `long:"override-chain-params-file" description:"Overrides chain params (allowed only on devnet)"`

	ActiveNetParams *chainconfig.Params
}

type overrideChainParamsConfig struct {
	PowMax                           *string `json:"powMax"`
	SkipProofOfWork                  *bool   `json:"skipProofOfWork"`
	BaseSubsidy                      *uint64 `json:"baseSubsidy"`
	SubsidyReductionInterval         *uint64 `json:"subsidyReductionInterval"`
	TargetTimePerBlockInMilliSeconds *int64  `json:"targetTimePerBlockInMilliSeconds"`
	DifficultyAdjustmentWindowSize   *uint64 `json:"difficultyAdjustmentWindowSize"`
	DisableDifficultyAdjustment      *bool   `json:"disableDifficultyAdjustment"`
	TimestampDeviationTolerance      *uint64 `json:"timestampDeviationTolerance"`
	MaxUnclesCount                   *int    `json:"maxUnclesCount"`
	MaxUnclesAge                     *uint64 `json:"maxUnclesAge"`
}

// ResolveNetwork parses the network command line argument and sets NetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	//NetParams holds the selected network parameters. Default value is main-net.
	networkFlags.ActiveNetParams = &chainconfig.MainnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	// Count number of network flags passed; assign active network params
	// while we're at it
	if networkFlags.Testnet {
		numNets++
		networkFlags.ActiveNetParams = &chainconfig.TestnetParams
	}
	if networkFlags.Simnet {
		numNets++
		networkFlags.ActiveNetParams = &chainconfig.SimnetParams
	}
	if networkFlags.Devnet {
		numNets++
		networkFlags.ActiveNetParams = &chainconfig.DevnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, simnet, devnet, etc.) cannot be used" +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		if parser != nil {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
		}
		return err
	}

	// The shared params are never modified in place
	networkFlags.ActiveNetParams = networkFlags.ActiveNetParams.Clone()

	return networkFlags.overrideChainParams()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chainconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideChainParams() error {
	if networkFlags.OverrideChainParamsFile == "" {
		return nil
	}

	if !networkFlags.Devnet {
		return errors.Errorf("override-chain-params-file is allowed only when using devnet")
	}

	overrideChainParamsFile, err := os.Open(networkFlags.OverrideChainParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideChainParamsFile.Close()

	decoder := json.NewDecoder(overrideChainParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideChainParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "couldn't parse %s", networkFlags.OverrideChainParamsFile)
	}

	params := networkFlags.ActiveNetParams

	if config.PowMax != nil {
		powMax, ok := big.NewInt(0).SetString(*config.PowMax, 16)
		if !ok {
			return errors.Errorf("couldn't convert %s to big int", *config.PowMax)
		}

		genesisTarget := math.CompactToBig(params.GenesisBlock.Header.Bits)
		if powMax.Cmp(genesisTarget) < 0 {
			return errors.Errorf("powMax (%s) is smaller than genesis's target (%s)", powMax.Text(16),
				genesisTarget.Text(16))
		}
		params.PowMax = powMax
	}

	if config.SkipProofOfWork != nil {
		params.SkipProofOfWork = *config.SkipProofOfWork
	}

	if config.BaseSubsidy != nil {
		params.BaseSubsidy = *config.BaseSubsidy
	}

	if config.SubsidyReductionInterval != nil {
		if *config.SubsidyReductionInterval == 0 {
			return errors.New("subsidyReductionInterval must be positive")
		}
		params.SubsidyReductionInterval = *config.SubsidyReductionInterval
	}

	if config.TargetTimePerBlockInMilliSeconds != nil {
		params.TargetTimePerBlock = time.Duration(*config.TargetTimePerBlockInMilliSeconds) *
			time.Millisecond
	}

	if config.DifficultyAdjustmentWindowSize != nil {
		params.DifficultyAdjustmentWindowSize = *config.DifficultyAdjustmentWindowSize
	}

	if config.DisableDifficultyAdjustment != nil {
		params.DisableDifficultyAdjustment = *config.DisableDifficultyAdjustment
	}

	if config.TimestampDeviationTolerance != nil {
		params.TimestampDeviationTolerance = *config.TimestampDeviationTolerance
	}

	if config.MaxUnclesCount != nil {
		params.MaxUnclesCount = *config.MaxUnclesCount
	}

	if config.MaxUnclesAge != nil {
		params.MaxUnclesAge = *config.MaxUnclesAge
	}

	return nil
}
