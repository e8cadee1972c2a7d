package blockverifier

import (
	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/hashset"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/pkg/errors"
)

// UnclesVerifier checks the uncles credited by a block against the
// MaxUnclesAge ancestors preceding it
type UnclesVerifier struct {
	block          *externalapi.DomainBlock
	chain          model.ChainProvider
	pow            model.PowVerifier
	headerVerifier model.HeaderVerifier
}

// NewUnclesVerifier instantiates an UnclesVerifier for block
func NewUnclesVerifier(block *externalapi.DomainBlock, chain model.ChainProvider,
	pow model.PowVerifier, headerVerifier model.HeaderVerifier) *UnclesVerifier {

	return &UnclesVerifier{
		block:          block,
		chain:          chain,
		pow:            pow,
		headerVerifier: headerVerifier,
	}
}

// Verify checks the uncles hash, count and depths, and then every uncle in
// order. An uncle may not be an ancestor nor an uncle already credited
// within the window, and its header must be valid on top of its own parent.
func (v *UnclesVerifier) Verify() error {
	header := v.block.Header
	uncles := v.block.Uncles

	calculatedUnclesHash := consensushashing.UnclesHash(uncles)
	if !header.UnclesHash.Equal(calculatedUnclesHash) {
		return ruleerrors.NewErrUnclesInvalidHash(header.UnclesHash.Clone(), calculatedUnclesHash)
	}

	if len(uncles) == 0 {
		return nil
	}

	maxUnclesCount := v.chain.MaxUnclesCount()
	if len(uncles) > maxUnclesCount {
		return ruleerrors.NewErrUnclesOverLength(maxUnclesCount, len(uncles))
	}

	err := v.checkUnclesDepth()
	if err != nil {
		return err
	}

	excluded, err := v.excludedHashes()
	if err != nil {
		return err
	}

	included := hashset.NewWithCapacity(len(uncles))
	for _, uncle := range uncles {
		uncleHash := consensushashing.UncleHash(uncle)

		if uncle.Cellbase == nil {
			return errors.Wrapf(ruleerrors.ErrUncleInvalidCellbase, "uncle %s has no cellbase", uncleHash)
		}
		cellbaseHash := consensushashing.TransactionHash(uncle.Cellbase)
		if !uncle.Header.CellbaseHash.Equal(cellbaseHash) {
			return errors.Wrapf(ruleerrors.ErrUncleInvalidCellbase, "uncle %s commits to cellbase %s "+
				"but carries cellbase %s", uncleHash, uncle.Header.CellbaseHash, cellbaseHash)
		}

		if included.Contains(uncleHash) {
			return ruleerrors.NewErrUncleDuplicate(uncleHash)
		}

		if excluded.Contains(uncleHash) {
			return ruleerrors.NewErrUncleInvalidInclude(uncleHash)
		}

		resolver, err := NewHeaderResolverWrapper(uncle.Header, v.chain)
		if err != nil {
			return err
		}
		err = v.headerVerifier.VerifyHeader(resolver, v.pow)
		if err != nil {
			return errors.Wrapf(err, "uncle %s", uncleHash)
		}

		included.Add(uncleHash)
	}

	return nil
}

func (v *UnclesVerifier) checkUnclesDepth() error {
	height := v.block.Header.Height
	maxUnclesAge := v.chain.MaxUnclesAge()

	minUncleHeight := uint64(0)
	if height > maxUnclesAge {
		minUncleHeight = height - maxUnclesAge
	}
	maxUncleHeight := uint64(0)
	if height > 0 {
		maxUncleHeight = height - 1
	}

	for _, uncle := range v.block.Uncles {
		uncleHeight := uncle.Header.Height
		if uncleHeight >= height || height-uncleHeight > maxUnclesAge {
			return ruleerrors.NewErrUnclesInvalidDepth(minUncleHeight, maxUncleHeight, uncleHeight)
		}
	}
	return nil
}

// excludedHashes returns the hashes no uncle may have: the block itself,
// its ancestors and the uncles they credit, up to MaxUnclesAge ancestors
// back. The walk stops early on a short chain.
func (v *UnclesVerifier) excludedHashes() (hashset.HashSet, error) {
	header := v.block.Header
	excluded := hashset.New()
	excluded.Add(consensushashing.HeaderHash(header))
	excluded.Add(&header.ParentHash)

	ancestorHash := &header.ParentHash
	for i := uint64(0); i < v.chain.MaxUnclesAge(); i++ {
		ancestor, err := v.chain.Block(ancestorHash)
		if err != nil {
			if database.IsNotFoundError(err) {
				break
			}
			return nil, err
		}

		excluded.Add(&ancestor.Header.ParentHash)
		for _, uncle := range ancestor.Uncles {
			excluded.Add(consensushashing.UncleHash(uncle))
		}
		ancestorHash = &ancestor.Header.ParentHash
	}

	return excluded, nil
}
