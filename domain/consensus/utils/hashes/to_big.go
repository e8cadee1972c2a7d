package hashes

import (
	"math/big"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
)

// ToBig converts a externalapi.DomainHash into a big.Int treated as a little endian string.
func ToBig(hash *externalapi.DomainHash) *big.Int {
	// A Hash is in little-endian, but the big package wants the bytes in
	// big-endian, so reverse them.
	buf := hash.ByteArray()
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}

	return new(big.Int).SetBytes(buf[:])
}
