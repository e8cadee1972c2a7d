package model

import "github.com/cellnet/celld/domain/consensus/model/externalapi"

// Multiset is a set that can be updated incrementally and committed to
// with a single hash
type Multiset interface {
	Add(data []byte)
	Remove(data []byte)
	Hash() *externalapi.DomainHash
	Serialize() []byte
	Clone() Multiset
}
