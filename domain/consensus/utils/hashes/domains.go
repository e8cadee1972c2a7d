package hashes

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	transactionHashDomain    = "TransactionHash"
	transactionSigningDomain = "TransactionSigningHash"
	blockHashDomain          = "BlockHash"
	merkleBranchDomain       = "MerkleBranchHash"
	unclesHashDomain         = "UnclesHash"
	scriptHashDomain         = "ScriptHash"
)

func newKeyedWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewTransactionHashWriter Returns a new HashWriter used for transaction hashes
func NewTransactionHashWriter() HashWriter {
	return newKeyedWriter(transactionHashDomain)
}

// NewTransactionSigningHashWriter Returns a new HashWriter used for signature hashes
func NewTransactionSigningHashWriter() HashWriter {
	return newKeyedWriter(transactionSigningDomain)
}

// NewBlockHashWriter Returns a new HashWriter used for hashing blocks
func NewBlockHashWriter() HashWriter {
	return newKeyedWriter(blockHashDomain)
}

// NewMerkleBranchHashWriter Returns a new HashWriter used for a merkle tree branch
func NewMerkleBranchHashWriter() HashWriter {
	return newKeyedWriter(merkleBranchDomain)
}

// NewUnclesHashWriter Returns a new HashWriter used for hashing a block's uncles list
func NewUnclesHashWriter() HashWriter {
	return newKeyedWriter(unclesHashDomain)
}

// NewScriptHashWriter Returns a new HashWriter used for script hashes (cell locks)
func NewScriptHashWriter() HashWriter {
	return newKeyedWriter(scriptHashDomain)
}

