package consensushashing

import (
	"io"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/hashes"
	"github.com/cellnet/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// BlockHash returns the given block's hash
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	return HeaderHash(block.Header)
}

// UncleHash returns the given uncle's hash, which is the hash of its header
func UncleHash(uncle *externalapi.DomainUncleBlock) *externalapi.DomainHash {
	return HeaderHash(uncle.Header)
}

// HeaderHash returns the given header's hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	err := SerializeHeader(writer, header)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	return writer.Finalize()
}

// UnclesHash returns the commitment to the given uncles list that a header carries.
// An empty list commits to the zero hash.
func UnclesHash(uncles []*externalapi.DomainUncleBlock) *externalapi.DomainHash {
	if len(uncles) == 0 {
		return externalapi.NewZeroHash()
	}

	writer := hashes.NewUnclesHashWriter()
	err := serialization.WriteElement(writer, uint64(len(uncles)))
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	for _, uncle := range uncles {
		err = serialization.WriteElement(writer, UncleHash(uncle))
		if err != nil {
			panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
		}
	}

	return writer.Finalize()
}

// SerializeHeader writes the canonical encoding of header to w
func SerializeHeader(w io.Writer, header *externalapi.DomainBlockHeader) error {
	return serialization.WriteElements(w, header.Version, header.ParentHash, header.Height,
		header.TimeInMilliseconds, header.Bits, header.Nonce, header.TransactionsRoot,
		header.UnclesHash, header.CellbaseHash)
}
