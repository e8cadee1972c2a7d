// Package multiset implements model.Multiset, the order independent
// commitment to the live cell set, on top of a MuHash.
package multiset

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/kaspanet/go-muhash"
	"github.com/pkg/errors"
)

type muHashMultiset struct {
	*muhash.MuHash
}

// New returns an empty multiset
func New() model.Multiset {
	return muHashMultiset{muhash.NewMuHash()}
}

// FromBytes restores a multiset from the output of its Serialize method
func FromBytes(multisetBytes []byte) (model.Multiset, error) {
	var serialized muhash.SerializedMuHash
	if len(multisetBytes) != len(serialized) {
		return nil, errors.Errorf("a serialized multiset is %d bytes long, got %d bytes",
			len(serialized), len(multisetBytes))
	}
	copy(serialized[:], multisetBytes)
	ms, err := muhash.DeserializeMuHash(&serialized)
	if err != nil {
		return nil, errors.Wrap(err, "malformed multiset")
	}
	return muHashMultiset{ms}, nil
}

func (m muHashMultiset) Hash() *externalapi.DomainHash {
	finalized := m.Finalize()
	return externalapi.NewDomainHashFromByteArray(finalized.AsArray())
}

func (m muHashMultiset) Serialize() []byte {
	serialized := m.MuHash.Serialize()
	return serialized[:]
}

func (m muHashMultiset) Clone() model.Multiset {
	return muHashMultiset{m.MuHash.Clone()}
}
