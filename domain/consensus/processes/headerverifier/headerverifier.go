package headerverifier

import (
	"time"

	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/util/mstime"
	"github.com/pkg/errors"
)

// headerVerifier validates a header against its parent, the difficulty
// the chain expects of it, and its proof of work
type headerVerifier struct {
	maxFutureOffset time.Duration
	now             func() time.Time
}

// New instantiates a new HeaderVerifier. Headers may be timestamped at most
// timestampDeviationTolerance blocks into the future.
func New(timestampDeviationTolerance uint64, targetTimePerBlock time.Duration) model.HeaderVerifier {
	return &headerVerifier{
		maxFutureOffset: time.Duration(timestampDeviationTolerance) * targetTimePerBlock,
		now:             mstime.Now,
	}
}

// VerifyHeader implements model.HeaderVerifier
func (v *headerVerifier) VerifyHeader(resolver model.HeaderResolver, powVerifier model.PowVerifier) error {
	header := resolver.Header()
	parent := resolver.Parent()
	if parent == nil {
		return ruleerrors.NewErrMissingParents([]*externalapi.DomainHash{header.ParentHash.Clone()})
	}

	err := checkHeight(header, parent)
	if err != nil {
		return err
	}

	err = checkTimestampAfterParent(header, parent)
	if err != nil {
		return err
	}

	err = v.checkBlockTimestampNotTooFarInTheFuture(header)
	if err != nil {
		return err
	}

	err = checkDifficulty(resolver)
	if err != nil {
		return err
	}

	return checkProofOfWork(header, powVerifier)
}

func checkHeight(header, parent *externalapi.DomainBlockHeader) error {
	if header.Height != parent.Height+1 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedHeight, "block height of %d is not one above its "+
			"parent's height of %d", header.Height, parent.Height)
	}
	return nil
}

func checkTimestampAfterParent(header, parent *externalapi.DomainBlockHeader) error {
	if header.TimeInMilliseconds <= parent.TimeInMilliseconds {
		return errors.Wrapf(ruleerrors.ErrTimeTooOld, "block timestamp of %d is not after its parent's "+
			"timestamp of %d", header.TimeInMilliseconds, parent.TimeInMilliseconds)
	}
	return nil
}

func (v *headerVerifier) checkBlockTimestampNotTooFarInTheFuture(header *externalapi.DomainBlockHeader) error {
	maxTimestamp := mstime.TimeToUnixMilli(v.now().Add(v.maxFutureOffset))
	if header.TimeInMilliseconds > maxTimestamp {
		return errors.Wrapf(ruleerrors.ErrTimeTooMuchInTheFuture, "block timestamp of %d "+
			"is too far in the future, the maximum allowed is %d", header.TimeInMilliseconds, maxTimestamp)
	}
	return nil
}

func checkDifficulty(resolver model.HeaderResolver) error {
	expectedBits, err := resolver.ExpectedBits()
	if err != nil {
		return err
	}

	header := resolver.Header()
	if header.Bits != expectedBits {
		return errors.Wrapf(ruleerrors.ErrUnexpectedDifficulty, "block difficulty of %d is not the "+
			"expected value of %d", header.Bits, expectedBits)
	}
	return nil
}

func checkProofOfWork(header *externalapi.DomainBlockHeader, powVerifier model.PowVerifier) error {
	if !powVerifier.VerifyProofOfWork(header) {
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "block %s has invalid proof of work",
			consensushashing.HeaderHash(header))
	}
	return nil
}
