package difficultymanager

import (
	"math"
	"math/big"
	"time"

	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	consensusmath "github.com/cellnet/celld/domain/consensus/utils/math"
)

// DifficultyManager provides a method to resolve the
// difficulty value of a block
type difficultyManager struct {
	headerLookup                   model.HeaderLookup
	powMax                         *big.Int
	powMaxBits                     uint32
	difficultyAdjustmentWindowSize uint64
	targetTimePerBlock             time.Duration
	disableDifficultyAdjustment    bool
}

// New instantiates a new DifficultyManager
func New(headerLookup model.HeaderLookup,
	powMax *big.Int,
	difficultyAdjustmentWindowSize uint64,
	targetTimePerBlock time.Duration,
	disableDifficultyAdjustment bool) model.DifficultyManager {

	return &difficultyManager{
		headerLookup:                   headerLookup,
		powMax:                         powMax,
		powMaxBits:                     consensusmath.BigToCompact(powMax),
		difficultyAdjustmentWindowSize: difficultyAdjustmentWindowSize,
		targetTimePerBlock:             targetTimePerBlock,
		disableDifficultyAdjustment:    disableDifficultyAdjustment,
	}
}

// RequiredDifficulty returns the bits a child of parentHeader must carry.
//
// The new target is the average target of the difficultyAdjustmentWindowSize
// blocks ending at the parent, scaled by how long those blocks actually took
// relative to how long they were expected to take.
func (dm *difficultyManager) RequiredDifficulty(parentHeader *externalapi.DomainBlockHeader) (uint32, error) {
	if dm.disableDifficultyAdjustment || dm.difficultyAdjustmentWindowSize == 0 {
		return dm.powMaxBits, nil
	}

	// Fetch window of difficultyAdjustmentWindowSize + 1 so we can have difficultyAdjustmentWindowSize block intervals
	window, ok, err := dm.blockWindow(parentHeader, dm.difficultyAdjustmentWindowSize+1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return dm.powMaxBits, nil
	}
	windowMinTimestamp, windowMaxTimeStamp := blockWindowMinMaxTimestamps(window)

	// Remove the oldest block from the window so to calculate the average target of difficultyAdjustmentWindowSize blocks
	targetsWindow := window[:dm.difficultyAdjustmentWindowSize]

	// Calculate new target difficulty as:
	// averageWindowTarget * (windowTimespan / (targetTimePerBlock * windowSize))
	// The result uses integer division which means it will be slightly
	// rounded down.
	timespan := windowMaxTimeStamp - windowMinTimestamp
	if timespan < 1 {
		timespan = 1
	}
	newTarget := averageBlockWindowTarget(targetsWindow)
	newTarget.
		Mul(newTarget, big.NewInt(timespan)).
		Div(newTarget, big.NewInt(dm.targetTimePerBlock.Milliseconds())).
		Div(newTarget, new(big.Int).SetUint64(dm.difficultyAdjustmentWindowSize))
	if newTarget.Cmp(dm.powMax) > 0 {
		return dm.powMaxBits, nil
	}
	if newTarget.Sign() == 0 {
		newTarget.SetInt64(1)
	}
	return consensusmath.BigToCompact(newTarget), nil
}

// blockWindow returns the windowSize headers ending at startingHeader,
// newest first. ok is false when the chain below startingHeader is
// shorter than windowSize.
func (dm *difficultyManager) blockWindow(startingHeader *externalapi.DomainBlockHeader, windowSize uint64) (
	window []*externalapi.DomainBlockHeader, ok bool, err error) {

	if startingHeader.Height+1 < windowSize {
		return nil, false, nil
	}

	window = make([]*externalapi.DomainBlockHeader, 0, windowSize)
	currentHeader := startingHeader
	for {
		window = append(window, currentHeader)
		if uint64(len(window)) == windowSize {
			return window, true, nil
		}
		currentHeader, err = dm.headerLookup.BlockHeader(&currentHeader.ParentHash)
		if err != nil {
			return nil, false, err
		}
	}
}

func blockWindowMinMaxTimestamps(window []*externalapi.DomainBlockHeader) (min, max int64) {
	min = math.MaxInt64
	max = 0
	for _, header := range window {
		if header.TimeInMilliseconds < min {
			min = header.TimeInMilliseconds
		}
		if header.TimeInMilliseconds > max {
			max = header.TimeInMilliseconds
		}
	}
	return
}

func averageBlockWindowTarget(window []*externalapi.DomainBlockHeader) *big.Int {
	averageTarget := big.NewInt(0)
	for _, header := range window {
		target := consensusmath.CompactToBig(header.Bits)
		averageTarget.Add(averageTarget, target)
	}
	return averageTarget.Div(averageTarget, big.NewInt(int64(len(window))))
}
