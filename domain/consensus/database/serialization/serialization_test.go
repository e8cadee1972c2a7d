package serialization

import (
	"testing"

	"github.com/cellnet/celld/domain/chainconfig"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/testutils"
	"github.com/davecgh/go-spew/spew"
)

func testBlock(t *testing.T) *externalapi.DomainBlock {
	genesis := chainconfig.SimnetParams.GenesisBlock
	key, err := testutils.NewSchnorrKey()
	if err != nil {
		t.Fatalf("NewSchnorrKey: %+v", err)
	}

	cellbaseOutpoint := externalapi.NewDomainOutpoint(consensushashing.TransactionHash(genesis.Transactions[0]), 0)
	tx := testutils.NewTransaction([]*externalapi.DomainOutpoint{cellbaseOutpoint}, []*externalapi.DomainCellOutput{
		{Capacity: 10, Data: []byte("data"), Lock: *key.Lock()},
		testutils.AlwaysSuccessOutput(20),
	})
	tx.Inputs[0].UnlockScript = key.UnlockScript()
	err = testutils.SignInput(tx, 0, key)
	if err != nil {
		t.Fatalf("SignInput: %+v", err)
	}

	uncle := testutils.ToUncle(testutils.BuildBlock(genesis.Header, genesis.Header.Bits,
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(1)}, nil, nil))
	return testutils.BuildBlock(genesis.Header, genesis.Header.Bits,
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(2)},
		[]*externalapi.DomainTransaction{tx}, []*externalapi.DomainUncleBlock{uncle})
}

func TestBlockSerialization(t *testing.T) {
	block := testBlock(t)

	blockBytes, err := SerializeBlock(block)
	if err != nil {
		t.Fatalf("SerializeBlock: %+v", err)
	}
	deserialized, err := DeserializeBlock(blockBytes)
	if err != nil {
		t.Fatalf("DeserializeBlock: %+v", err)
	}
	if !deserialized.Equal(block) {
		t.Fatalf("deserialized block differs from the original.\nexpected: %s\ngot: %s",
			spew.Sdump(block), spew.Sdump(deserialized))
	}
	if !consensushashing.BlockHash(deserialized).Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("deserialized block has a different hash")
	}
	if !consensushashing.TransactionHash(deserialized.Transactions[1]).
		Equal(consensushashing.TransactionHash(block.Transactions[1])) {

		t.Fatalf("deserialized transaction has a different hash")
	}

	_, err = DeserializeBlock(blockBytes[:len(blockBytes)-1])
	if err == nil {
		t.Fatalf("DeserializeBlock: expected an error for a truncated block")
	}
	_, err = DeserializeBlock(append(blockBytes, 0))
	if err == nil {
		t.Fatalf("DeserializeBlock: expected an error for trailing bytes")
	}
}

func TestHeaderSerialization(t *testing.T) {
	header := testBlock(t).Header

	headerBytes, err := SerializeHeader(header)
	if err != nil {
		t.Fatalf("SerializeHeader: %+v", err)
	}
	deserialized, err := DeserializeHeader(headerBytes)
	if err != nil {
		t.Fatalf("DeserializeHeader: %+v", err)
	}
	if !deserialized.Equal(header) {
		t.Fatalf("expected header %s but got %s", spew.Sdump(header), spew.Sdump(deserialized))
	}
}

func TestTransactionSerializationWithoutScript(t *testing.T) {
	tx := &externalapi.DomainTransaction{
		Version: 1,
		Inputs: []*externalapi.DomainTransactionInput{{
			PreviousOutpoint: externalapi.DomainOutpoint{Index: 4},
		}},
		Outputs: []*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(5)},
	}

	txBytes, err := SerializeTransaction(tx)
	if err != nil {
		t.Fatalf("SerializeTransaction: %+v", err)
	}
	deserialized, err := DeserializeTransaction(txBytes)
	if err != nil {
		t.Fatalf("DeserializeTransaction: %+v", err)
	}
	if !deserialized.Equal(tx) || deserialized.Inputs[0].UnlockScript != nil {
		t.Fatalf("expected transaction %s but got %s", spew.Sdump(tx), spew.Sdump(deserialized))
	}
}

func TestChainRecordSerialization(t *testing.T) {
	location := &TransactionLocation{BlockHash: chainconfig.SimnetParams.GenesisHash, Index: 7}
	deserializedLocation, err := DeserializeTransactionLocation(SerializeTransactionLocation(location))
	if err != nil {
		t.Fatalf("DeserializeTransactionLocation: %+v", err)
	}
	if !deserializedLocation.BlockHash.Equal(location.BlockHash) || deserializedLocation.Index != location.Index {
		t.Fatalf("expected location %+v but got %+v", location, deserializedLocation)
	}

	height, err := DeserializeHeight(SerializeHeight(1234567))
	if err != nil {
		t.Fatalf("DeserializeHeight: %+v", err)
	}
	if height != 1234567 {
		t.Fatalf("expected height 1234567 but got %d", height)
	}

	output := &externalapi.DomainCellOutput{Capacity: 3, Data: []byte{1, 2}, Lock: *chainconfig.SimnetParams.GenesisHash}
	outputBytes, err := SerializeCellOutput(output)
	if err != nil {
		t.Fatalf("SerializeCellOutput: %+v", err)
	}
	deserializedOutput, err := DeserializeCellOutput(outputBytes)
	if err != nil {
		t.Fatalf("DeserializeCellOutput: %+v", err)
	}
	if !deserializedOutput.Equal(output) {
		t.Fatalf("expected output %+v but got %+v", output, deserializedOutput)
	}
}
