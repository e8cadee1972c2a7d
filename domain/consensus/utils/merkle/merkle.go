package merkle

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/hashes"
)

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation. This is a helper
// function used to aid in the generation of a merkle tree.
func hashMerkleBranches(left, right *externalapi.DomainHash) *externalapi.DomainHash {
	// Concatenate the left and right nodes.
	w := hashes.NewMerkleBranchHashWriter()

	w.InfallibleWrite(left.ByteSlice())
	w.InfallibleWrite(right.ByteSlice())

	return w.Finalize()
}

// CalculateHashMerkleRoot calculates the merkle root of a tree consisting of
// the given transactions' hashes.
// See `merkleRoot` for more info.
func CalculateHashMerkleRoot(transactions []*externalapi.DomainTransaction) *externalapi.DomainHash {
	return CalculateMerkleRoot(consensushashing.TransactionHashes(transactions))
}

// CalculateMerkleRoot calculates the root of a merkle tree whose leaves are
// the given hashes. A level with an odd number of nodes is completed by
// pairing its last node with itself. An empty list of leaves yields the
// zero hash.
func CalculateMerkleRoot(leaves []*externalapi.DomainHash) *externalapi.DomainHash {
	if len(leaves) == 0 {
		return externalapi.NewZeroHash()
	}

	level := make([]*externalapi.DomainHash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]*externalapi.DomainHash, len(level)/2)
		for i := range next {
			next[i] = hashMerkleBranches(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}
