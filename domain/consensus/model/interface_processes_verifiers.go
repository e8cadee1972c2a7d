package model

import "github.com/cellnet/celld/domain/consensus/model/externalapi"

// PowVerifier checks the proof of work of a header. Implementations are
// small values and may be freely copied.
type PowVerifier interface {
	VerifyProofOfWork(header *externalapi.DomainBlockHeader) bool
}

// HeaderResolver gives header verification everything it needs to know
// about the surroundings of the header under test
type HeaderResolver interface {
	Header() *externalapi.DomainBlockHeader

	// Parent returns nil when the parent is unknown
	Parent() *externalapi.DomainBlockHeader
	ExpectedBits() (uint32, error)
}

// HeaderVerifier validates a single header against its resolver
type HeaderVerifier interface {
	VerifyHeader(resolver HeaderResolver, powVerifier PowVerifier) error
}

// TransactionVerifier runs the script and capacity rules of a single
// transaction whose inputs were already resolved
type TransactionVerifier interface {
	VerifyTransaction(resolvedTransaction *externalapi.ResolvedTransaction) error
}
