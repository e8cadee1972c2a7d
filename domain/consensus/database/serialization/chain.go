package serialization

import (
	"encoding/binary"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// TransactionLocation locates a transaction inside a canonical block
type TransactionLocation struct {
	BlockHash *externalapi.DomainHash
	Index     uint32
}

const transactionLocationSize = externalapi.DomainHashSize + 4

// SerializeTransactionLocation serializes a TransactionLocation
func SerializeTransactionLocation(location *TransactionLocation) []byte {
	locationBytes := make([]byte, transactionLocationSize)
	copy(locationBytes, location.BlockHash.ByteSlice())
	binary.LittleEndian.PutUint32(locationBytes[externalapi.DomainHashSize:], location.Index)
	return locationBytes
}

// DeserializeTransactionLocation deserializes a TransactionLocation
func DeserializeTransactionLocation(locationBytes []byte) (*TransactionLocation, error) {
	if len(locationBytes) != transactionLocationSize {
		return nil, errors.Errorf("transaction location is expected to be %d bytes but got %d",
			transactionLocationSize, len(locationBytes))
	}
	blockHash, err := externalapi.NewDomainHashFromByteSlice(locationBytes[:externalapi.DomainHashSize])
	if err != nil {
		return nil, err
	}
	return &TransactionLocation{
		BlockHash: blockHash,
		Index:     binary.LittleEndian.Uint32(locationBytes[externalapi.DomainHashSize:]),
	}, nil
}

// SerializeHeight serializes a block height. The encoding is big endian so
// that keys built from heights sort by height.
func SerializeHeight(height uint64) []byte {
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height)
	return heightBytes
}

// DeserializeHeight deserializes a height serialized by SerializeHeight
func DeserializeHeight(heightBytes []byte) (uint64, error) {
	if len(heightBytes) != 8 {
		return 0, errors.Errorf("height is expected to be 8 bytes but got %d", len(heightBytes))
	}
	return binary.BigEndian.Uint64(heightBytes), nil
}

// SerializeHash serializes hash to a slice of bytes
func SerializeHash(hash *externalapi.DomainHash) []byte {
	return hash.ByteSlice()
}

// DeserializeHash a slice of bytes to a hash
func DeserializeHash(hashBytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}
