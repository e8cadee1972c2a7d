package merkle

import (
	"testing"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
)

func hashFromByte(b byte) *externalapi.DomainHash {
	var hashArray [externalapi.DomainHashSize]byte
	hashArray[0] = b
	return externalapi.NewDomainHashFromByteArray(&hashArray)
}

func TestCalculateMerkleRoot(t *testing.T) {
	a, b, c := hashFromByte(1), hashFromByte(2), hashFromByte(3)

	tests := []struct {
		name     string
		leaves   []*externalapi.DomainHash
		expected *externalapi.DomainHash
	}{
		{
			name:     "empty",
			leaves:   nil,
			expected: externalapi.NewZeroHash(),
		},
		{
			name:     "single leaf is the root",
			leaves:   []*externalapi.DomainHash{a},
			expected: a,
		},
		{
			name:     "two leaves",
			leaves:   []*externalapi.DomainHash{a, b},
			expected: hashMerkleBranches(a, b),
		},
		{
			name:     "odd level duplicates its last node",
			leaves:   []*externalapi.DomainHash{a, b, c},
			expected: hashMerkleBranches(hashMerkleBranches(a, b), hashMerkleBranches(c, c)),
		},
	}

	for _, test := range tests {
		root := CalculateMerkleRoot(test.leaves)
		if !root.Equal(test.expected) {
			t.Errorf("%s: unexpected merkle root. Want: %s, got: %s", test.name, test.expected, root)
		}
	}
}

func TestCalculateMerkleRootDoesNotMutateLeaves(t *testing.T) {
	leaves := make([]*externalapi.DomainHash, 3, 4)
	for i := range leaves {
		leaves[i] = hashFromByte(byte(i))
	}
	CalculateMerkleRoot(leaves)
	if len(leaves) != 3 || leaves[:4][3] != nil {
		t.Fatalf("CalculateMerkleRoot is not expected to write into the caller's slice")
	}
}

func TestCalculateHashMerkleRootOrderMatters(t *testing.T) {
	txA := &externalapi.DomainTransaction{Version: 1}
	txB := &externalapi.DomainTransaction{Version: 2}

	ab := CalculateHashMerkleRoot([]*externalapi.DomainTransaction{txA, txB})
	ba := CalculateHashMerkleRoot([]*externalapi.DomainTransaction{txB, txA})
	if ab.Equal(ba) {
		t.Fatalf("transactions root is expected to depend on the transactions order")
	}
}
