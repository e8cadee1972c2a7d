package rewardmanager

import (
	"github.com/cellnet/celld/domain/consensus/model"
)

type rewardManager struct {
	baseSubsidy              uint64
	subsidyReductionInterval uint64
}

// New instantiates a new RewardManager
func New(baseSubsidy uint64, subsidyReductionInterval uint64) model.RewardManager {
	return &rewardManager{
		baseSubsidy:              baseSubsidy,
		subsidyReductionInterval: subsidyReductionInterval,
	}
}

// BlockReward returns the subsidy amount a block at the provided height
// should have. This is mainly used for determining how much the cellbase for
// newly generated blocks awards as well as validating the cellbase for blocks
// has the expected value.
//
// The subsidy is halved every SubsidyReductionInterval blocks. Mathematically
// this is: baseSubsidy / 2^(height/SubsidyReductionInterval)
//
// At the target block generation rate for the main network, this is
// approximately every 4 years.
func (r *rewardManager) BlockReward(height uint64) uint64 {
	if r.subsidyReductionInterval == 0 {
		return r.baseSubsidy
	}

	// Equivalent to: baseSubsidy / 2^(height/subsidyHalvingInterval)
	// Go defines shifts of 64 or more as yielding 0.
	return r.baseSubsidy >> (height / r.subsidyReductionInterval)
}
