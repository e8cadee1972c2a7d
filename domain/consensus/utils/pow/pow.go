package pow

import (
	"math/big"

	"github.com/cellnet/celld/domain/consensus/model"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/hashes"
	"github.com/cellnet/celld/domain/consensus/utils/math"
)

// Verifier checks that a header's hash does not exceed the target encoded
// in its bits, and that this target is within the network's bounds
type Verifier struct {
	powMax *big.Int
}

// NewVerifier returns a Verifier for a network whose easiest allowed target is powMax
func NewVerifier(powMax *big.Int) Verifier {
	return Verifier{powMax: new(big.Int).Set(powMax)}
}

var _ model.PowVerifier = Verifier{}

// VerifyProofOfWork implements model.PowVerifier
func (v Verifier) VerifyProofOfWork(header *externalapi.DomainBlockHeader) bool {
	target := math.CompactToBig(header.Bits)

	// The target difficulty must be larger than zero.
	if target.Sign() <= 0 {
		return false
	}

	// The target difficulty must be less than the maximum allowed.
	if target.Cmp(v.powMax) > 0 {
		return false
	}

	return CheckProofOfWorkWithTarget(header, target)
}

// CheckProofOfWorkWithTarget check's if the block has a valid PoW according to the provided target
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkWithTarget(header *externalapi.DomainBlockHeader, target *big.Int) bool {
	// The block hash must be less or equal than the claimed target.
	return hashes.ToBig(consensushashing.HeaderHash(header)).Cmp(target) <= 0
}

// CheckProofOfWorkByBits check's if the block has a valid PoW according to its Bits field
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkByBits(header *externalapi.DomainBlockHeader) bool {
	return CheckProofOfWorkWithTarget(header, math.CompactToBig(header.Bits))
}

type dummyVerifier struct{}

// NewDummyVerifier returns a PowVerifier that accepts every header.
// It is used by networks that skip proof of work and by tests.
func NewDummyVerifier() model.PowVerifier {
	return dummyVerifier{}
}

func (dummyVerifier) VerifyProofOfWork(*externalapi.DomainBlockHeader) bool {
	return true
}
