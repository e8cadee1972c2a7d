package consensushashing

import (
	"io"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/hashes"
	"github.com/cellnet/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// txEncoding is a bitmask defining which transaction fields we
// want to encode and which to ignore.
type txEncoding uint8

const (
	txEncodingFull txEncoding = 0

	// txEncodingExcludeScriptArgs omits the witness arguments of every unlock
	// script, so signatures can commit to the rest of the transaction.
	txEncodingExcludeScriptArgs txEncoding = 1 << iota
)

// TransactionHash returns the transaction hash. Transaction hashes identify
// transactions and are what outpoints refer to.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	return transactionHash(tx, txEncodingFull)
}

// TransactionSigHash returns the message that unlock scripts of tx sign:
// the transaction hash with every unlock script's Args omitted.
func TransactionSigHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	return transactionHash(tx, txEncodingExcludeScriptArgs)
}

// TransactionHashes returns the hashes of the given transactions, in order
func TransactionHashes(transactions []*externalapi.DomainTransaction) []*externalapi.DomainHash {
	transactionHashes := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		transactionHashes[i] = TransactionHash(tx)
	}
	return transactionHashes
}

func transactionHash(tx *externalapi.DomainTransaction, encodingFlags txEncoding) *externalapi.DomainHash {
	var writer hashes.HashWriter
	if encodingFlags&txEncodingExcludeScriptArgs == txEncodingExcludeScriptArgs {
		writer = hashes.NewTransactionSigningHashWriter()
	} else {
		writer = hashes.NewTransactionHashWriter()
	}
	err := serializeTransaction(writer, tx, encodingFlags)
	if err != nil {
		// this writer never return errors (no allocations or possible failures) so errors can only come from validity checks,
		// and we assume we never construct malformed transactions.
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}

	return writer.Finalize()
}

func serializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, encodingFlags txEncoding) error {
	err := serialization.WriteElements(w, tx.Version, uint64(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range tx.Inputs {
		err = writeTransactionInput(w, input, encodingFlags)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, uint64(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		err = serialization.WriteElement(w, output.Capacity)
		if err != nil {
			return err
		}
		err = serialization.WriteVarBytes(w, output.Data)
		if err != nil {
			return err
		}
		err = serialization.WriteElement(w, output.Lock)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTransactionInput(w io.Writer, input *externalapi.DomainTransactionInput, encodingFlags txEncoding) error {
	err := serialization.WriteElements(w, input.PreviousOutpoint.TransactionHash, input.PreviousOutpoint.Index)
	if err != nil {
		return err
	}

	script := input.UnlockScript
	if script == nil {
		return errors.New("input has no unlock script")
	}
	err = serialization.WriteElement(w, script.Version)
	if err != nil {
		return err
	}
	err = writeByteSlices(w, script.SignedArgs)
	if err != nil {
		return err
	}
	if encodingFlags&txEncodingExcludeScriptArgs != txEncodingExcludeScriptArgs {
		return writeByteSlices(w, script.Args)
	}
	return nil
}

func writeByteSlices(w io.Writer, slices [][]byte) error {
	err := serialization.WriteElement(w, uint64(len(slices)))
	if err != nil {
		return err
	}
	for _, slice := range slices {
		err = serialization.WriteVarBytes(w, slice)
		if err != nil {
			return err
		}
	}
	return nil
}
