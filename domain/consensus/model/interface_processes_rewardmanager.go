package model

// RewardManager exposes the block subsidy schedule
type RewardManager interface {
	BlockReward(height uint64) uint64
}
