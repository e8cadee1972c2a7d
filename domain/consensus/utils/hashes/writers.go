package hashes

import (
	"hash"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// HashWriter incrementally hashes everything written to it with a keyed
// blake2b, the key separating the hashing domains. Obtain one from the
// New*HashWriter constructors.
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite writes p to the hash. hash.Hash never fails a write, so
// a failure here is a programming error and panics.
func (h HashWriter) InfallibleWrite(p []byte) {
	if _, err := h.Write(p); err != nil {
		panic(errors.Wrap(err, "hash.Hash write failed"))
	}
}

// Finalize returns the hash of everything written so far
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var digest [externalapi.DomainHashSize]byte
	copy(digest[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&digest)
}
