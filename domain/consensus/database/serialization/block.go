package serialization

import (
	"bytes"
	"io"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// maxCount bounds any element count read from the database, so that a
// corrupted entry can't cause a huge allocation
const maxCount = 1 << 20

// SerializeHeader serializes header in the same layout it is hashed in
func SerializeHeader(header *externalapi.DomainBlockHeader) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := consensushashing.SerializeHeader(buffer, header)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DeserializeHeader deserializes a header serialized by SerializeHeader
func DeserializeHeader(headerBytes []byte) (*externalapi.DomainBlockHeader, error) {
	reader := bytes.NewReader(headerBytes)
	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	return header, checkFullyRead(reader)
}

func readHeader(r io.Reader) (*externalapi.DomainBlockHeader, error) {
	header := &externalapi.DomainBlockHeader{}
	err := serialization.ReadElements(r,
		&header.Version,
		&header.ParentHash,
		&header.Height,
		&header.TimeInMilliseconds,
		&header.Bits,
		&header.Nonce,
		&header.TransactionsRoot,
		&header.UnclesHash,
		&header.CellbaseHash)
	if err != nil {
		return nil, err
	}
	return header, nil
}

// SerializeBlock serializes block with all of its transactions and uncles
func SerializeBlock(block *externalapi.DomainBlock) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := consensushashing.SerializeHeader(buffer, block.Header)
	if err != nil {
		return nil, err
	}

	err = serialization.WriteElement(buffer, uint64(len(block.Transactions)))
	if err != nil {
		return nil, err
	}
	for _, tx := range block.Transactions {
		err = writeTransaction(buffer, tx)
		if err != nil {
			return nil, err
		}
	}

	err = serialization.WriteElement(buffer, uint64(len(block.Uncles)))
	if err != nil {
		return nil, err
	}
	for _, uncle := range block.Uncles {
		err = consensushashing.SerializeHeader(buffer, uncle.Header)
		if err != nil {
			return nil, err
		}
		err = writeTransaction(buffer, uncle.Cellbase)
		if err != nil {
			return nil, err
		}
	}

	return buffer.Bytes(), nil
}

// DeserializeBlock deserializes a block serialized by SerializeBlock
func DeserializeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	reader := bytes.NewReader(blockBytes)
	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	transactionCount, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	transactions := make([]*externalapi.DomainTransaction, transactionCount)
	for i := range transactions {
		transactions[i], err = readTransaction(reader)
		if err != nil {
			return nil, err
		}
	}

	uncleCount, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	uncles := make([]*externalapi.DomainUncleBlock, uncleCount)
	for i := range uncles {
		uncleHeader, err := readHeader(reader)
		if err != nil {
			return nil, err
		}
		cellbase, err := readTransaction(reader)
		if err != nil {
			return nil, err
		}
		uncles[i] = &externalapi.DomainUncleBlock{
			Header:   uncleHeader,
			Cellbase: cellbase,
		}
	}

	err = checkFullyRead(reader)
	if err != nil {
		return nil, err
	}

	return &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactions,
		Uncles:       uncles,
	}, nil
}

func readCount(r io.Reader) (uint64, error) {
	var count uint64
	err := serialization.ReadElement(r, &count)
	if err != nil {
		return 0, err
	}
	if count > maxCount {
		return 0, errors.Errorf("element count %d exceeds the maximum of %d", count, maxCount)
	}
	return count, nil
}

func checkFullyRead(reader *bytes.Reader) error {
	if reader.Len() != 0 {
		return errors.Errorf("%d unexpected trailing bytes", reader.Len())
	}
	return nil
}
