package serialization

import (
	"bytes"
	"io"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/serialization"
)

// SerializeCellOutput serializes a cell output
func SerializeCellOutput(output *externalapi.DomainCellOutput) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := writeCellOutput(buffer, output)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DeserializeCellOutput deserializes a cell output serialized by SerializeCellOutput
func DeserializeCellOutput(outputBytes []byte) (*externalapi.DomainCellOutput, error) {
	reader := bytes.NewReader(outputBytes)
	output, err := readCellOutput(reader)
	if err != nil {
		return nil, err
	}
	return output, checkFullyRead(reader)
}

func writeCellOutput(w io.Writer, output *externalapi.DomainCellOutput) error {
	err := serialization.WriteElement(w, output.Capacity)
	if err != nil {
		return err
	}
	err = serialization.WriteVarBytes(w, output.Data)
	if err != nil {
		return err
	}
	return serialization.WriteElement(w, output.Lock)
}

func readCellOutput(r io.Reader) (*externalapi.DomainCellOutput, error) {
	output := &externalapi.DomainCellOutput{}
	err := serialization.ReadElement(r, &output.Capacity)
	if err != nil {
		return nil, err
	}
	output.Data, err = serialization.ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	err = serialization.ReadElement(r, &output.Lock)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// SerializeOutpoint serializes an outpoint into a fixed size key
func SerializeOutpoint(outpoint *externalapi.DomainOutpoint) []byte {
	buffer := bytes.NewBuffer(make([]byte, 0, externalapi.DomainHashSize+4))
	// Writes into a bytes.Buffer never fail
	_ = serialization.WriteElements(buffer, outpoint.TransactionHash, outpoint.Index)
	return buffer.Bytes()
}

// SerializeCellEntry serializes an outpoint together with the output it
// points to. This is the element a cell set commitment is built from.
func SerializeCellEntry(outpoint *externalapi.DomainOutpoint, output *externalapi.DomainCellOutput) ([]byte, error) {
	buffer := bytes.NewBuffer(SerializeOutpoint(outpoint))
	err := writeCellOutput(buffer, output)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
