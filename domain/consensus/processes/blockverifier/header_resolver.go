package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/infrastructure/db/database"
)

// HeaderResolverWrapper resolves the surroundings of a header through a
// ChainProvider, so that it can be verified by a model.HeaderVerifier
type HeaderResolverWrapper struct {
	header *externalapi.DomainBlockHeader
	parent *externalapi.DomainBlockHeader
	chain  model.ChainProvider
}

// NewHeaderResolverWrapper looks up header's parent in chain. An unknown
// parent is not an error here, header verification reports it.
func NewHeaderResolverWrapper(header *externalapi.DomainBlockHeader,
	chain model.ChainProvider) (*HeaderResolverWrapper, error) {

	parent, err := chain.BlockHeader(&header.ParentHash)
	if err != nil {
		if !database.IsNotFoundError(err) {
			return nil, err
		}
		parent = nil
	}

	return &HeaderResolverWrapper{
		header: header,
		parent: parent,
		chain:  chain,
	}, nil
}

var _ model.HeaderResolver = (*HeaderResolverWrapper)(nil)

// Header implements model.HeaderResolver
func (w *HeaderResolverWrapper) Header() *externalapi.DomainBlockHeader {
	return w.header
}

// Parent implements model.HeaderResolver
func (w *HeaderResolverWrapper) Parent() *externalapi.DomainBlockHeader {
	return w.parent
}

// ExpectedBits implements model.HeaderResolver. The bits are recalculated
// from the chain rather than trusted from the header.
func (w *HeaderResolverWrapper) ExpectedBits() (uint32, error) {
	if w.parent == nil {
		return 0, ruleerrors.NewErrMissingParents([]*externalapi.DomainHash{w.header.ParentHash.Clone()})
	}
	return w.chain.RequiredDifficulty(w.parent)
}
