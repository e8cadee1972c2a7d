package model

import "github.com/cellnet/celld/domain/consensus/model/externalapi"

// DifficultyManager provides a method to resolve the
// difficulty value of a block
type DifficultyManager interface {
	RequiredDifficulty(parentHeader *externalapi.DomainBlockHeader) (uint32, error)
}

// HeaderLookup is the minimal header access the difficulty manager needs
type HeaderLookup interface {
	BlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
}
