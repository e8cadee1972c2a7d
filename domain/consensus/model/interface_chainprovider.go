package model

import "github.com/cellnet/celld/domain/consensus/model/externalapi"

// CellProvider answers what the state of an outpoint is as of some block
type CellProvider interface {
	CellAt(outpoint *externalapi.DomainOutpoint, asOf *externalapi.DomainHash) (externalapi.CellState, error)
}

// ChainProvider is a read-only, thread-safe view of the canonical chain
// that the block verification pipeline consumes.
// Lookups of missing entries return an error for which
// database.IsNotFoundError returns true.
type ChainProvider interface {
	BlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)

	// RequiredDifficulty returns the bits a child of parentHeader must carry
	RequiredDifficulty(parentHeader *externalapi.DomainBlockHeader) (uint32, error)
	BlockReward(height uint64) uint64
	TransactionFee(transaction *externalapi.DomainTransaction) (uint64, error)
	CellStateAt(outpoint *externalapi.DomainOutpoint, asOf *externalapi.DomainHash) (externalapi.CellState, error)

	MaxUnclesCount() int
	MaxUnclesAge() uint64
}
