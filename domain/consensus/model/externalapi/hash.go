package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize is the size in bytes of every hash in the chain:
// block, transaction and script hashes as well as cell set commitments.
const DomainHashSize = 32

// DomainHash is an immutable 32-byte hash. It is comparable, so it may be
// used as a map key by value.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewZeroHash returns the all-zero hash, used as the genesis parent.
func NewZeroHash() *DomainHash {
	return &DomainHash{}
}

// NewDomainHashFromByteArray returns a hash holding a copy of hashBytes
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{hashArray: *hashBytes}
}

// NewDomainHashFromByteSlice returns a hash holding a copy of hashBytes,
// which must be exactly DomainHashSize long.
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("a hash is %d bytes long, got %d bytes", DomainHashSize, len(hashBytes))
	}
	var hash DomainHash
	copy(hash.hashArray[:], hashBytes)
	return &hash, nil
}

// NewDomainHashFromString parses a hex-encoded hash
func NewDomainHashFromString(hashString string) (*DomainHash, error) {
	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed hash %q", hashString)
	}
	return NewDomainHashFromByteSlice(hashBytes)
}

func (hash DomainHash) String() string {
	return hex.EncodeToString(hash.hashArray[:])
}

// ByteArray returns a copy of the hash bytes
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	bytes := hash.hashArray
	return &bytes
}

// ByteSlice returns a copy of the hash bytes
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// IsZero returns whether hash is the all-zero hash
func (hash *DomainHash) IsZero() bool {
	return *hash == DomainHash{}
}

// Equal returns whether hash equals other. Two nil hashes are equal.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return *hash == *other
}

// Clone returns a copy of hash
func (hash *DomainHash) Clone() *DomainHash {
	clone := *hash
	return &clone
}
