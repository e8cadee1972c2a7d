package serialization

import (
	"bytes"
	"io"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/serialization"
)

// SerializeTransaction serializes tx including its unlock scripts
func SerializeTransaction(tx *externalapi.DomainTransaction) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := writeTransaction(buffer, tx)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DeserializeTransaction deserializes a transaction serialized by SerializeTransaction
func DeserializeTransaction(transactionBytes []byte) (*externalapi.DomainTransaction, error) {
	reader := bytes.NewReader(transactionBytes)
	tx, err := readTransaction(reader)
	if err != nil {
		return nil, err
	}
	return tx, checkFullyRead(reader)
}

func writeTransaction(w io.Writer, tx *externalapi.DomainTransaction) error {
	err := serialization.WriteElements(w, tx.Version, uint64(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range tx.Inputs {
		err = serialization.WriteElements(w, input.PreviousOutpoint.TransactionHash, input.PreviousOutpoint.Index)
		if err != nil {
			return err
		}
		err = writeScript(w, input.UnlockScript)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, uint64(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		err = writeCellOutput(w, output)
		if err != nil {
			return err
		}
	}
	return nil
}

func readTransaction(r io.Reader) (*externalapi.DomainTransaction, error) {
	tx := &externalapi.DomainTransaction{}
	err := serialization.ReadElement(r, &tx.Version)
	if err != nil {
		return nil, err
	}

	inputCount, err := readCount(r)
	if err != nil {
		return nil, err
	}
	tx.Inputs = make([]*externalapi.DomainTransactionInput, inputCount)
	for i := range tx.Inputs {
		input := &externalapi.DomainTransactionInput{}
		err = serialization.ReadElements(r, &input.PreviousOutpoint.TransactionHash, &input.PreviousOutpoint.Index)
		if err != nil {
			return nil, err
		}
		input.UnlockScript, err = readScript(r)
		if err != nil {
			return nil, err
		}
		tx.Inputs[i] = input
	}

	outputCount, err := readCount(r)
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]*externalapi.DomainCellOutput, outputCount)
	for i := range tx.Outputs {
		tx.Outputs[i], err = readCellOutput(r)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// writeScript writes a presence flag followed by the script, a nil script
// being only the flag
func writeScript(w io.Writer, script *externalapi.Script) error {
	if script == nil {
		return serialization.WriteElement(w, false)
	}
	err := serialization.WriteElements(w, true, script.Version)
	if err != nil {
		return err
	}
	err = writeByteSlices(w, script.SignedArgs)
	if err != nil {
		return err
	}
	return writeByteSlices(w, script.Args)
}

func readScript(r io.Reader) (*externalapi.Script, error) {
	var hasScript bool
	err := serialization.ReadElement(r, &hasScript)
	if err != nil {
		return nil, err
	}
	if !hasScript {
		return nil, nil
	}

	script := &externalapi.Script{}
	err = serialization.ReadElement(r, &script.Version)
	if err != nil {
		return nil, err
	}
	script.SignedArgs, err = readByteSlices(r)
	if err != nil {
		return nil, err
	}
	script.Args, err = readByteSlices(r)
	if err != nil {
		return nil, err
	}
	return script, nil
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

func readByteSlices(r io.Reader) ([][]byte, error) {
	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	slices := make([][]byte, count)
	for i := range slices {
		slices[i], err = serialization.ReadVarBytes(r)
		if err != nil {
			return nil, err
		}
	}
	return slices, nil
}
