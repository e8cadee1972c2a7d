package pow

import (
	"math/big"
	"testing"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/math"
)

// easyPowMax is 2^255 - 1, so roughly every second nonce solves it
var easyPowMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))

func solve(t *testing.T, header *externalapi.DomainBlockHeader) {
	target := math.CompactToBig(header.Bits)
	for i := uint64(0); i < 1000; i++ {
		header.Nonce = i
		if CheckProofOfWorkWithTarget(header, target) {
			return
		}
	}
	t.Fatalf("couldn't solve the header in 1000 attempts")
}

func TestVerifier(t *testing.T) {
	verifier := NewVerifier(easyPowMax)
	bits := math.BigToCompact(easyPowMax)

	header := &externalapi.DomainBlockHeader{Height: 1, Bits: bits, TimeInMilliseconds: 1000}
	solve(t, header)
	if !verifier.VerifyProofOfWork(header) {
		t.Fatalf("a solved header is expected to pass")
	}

	// Find a nonce that does not solve the header
	unsolved := header.Clone()
	target := math.CompactToBig(bits)
	for unsolved.Nonce = 0; CheckProofOfWorkWithTarget(unsolved, target); unsolved.Nonce++ {
	}
	if verifier.VerifyProofOfWork(unsolved) {
		t.Fatalf("an unsolved header is expected to fail")
	}

	tooEasy := header.Clone()
	tooEasy.Bits = math.BigToCompact(new(big.Int).Lsh(easyPowMax, 1))
	if verifier.VerifyProofOfWork(tooEasy) {
		t.Fatalf("a target above the maximum is expected to fail")
	}

	negative := header.Clone()
	negative.Bits = bits | 0x00800000
	if verifier.VerifyProofOfWork(negative) {
		t.Fatalf("a negative target is expected to fail")
	}

	zero := header.Clone()
	zero.Bits = 0
	if verifier.VerifyProofOfWork(zero) {
		t.Fatalf("a zero target is expected to fail")
	}
}

func TestVerifierIsCopyable(t *testing.T) {
	powMax := new(big.Int).Set(easyPowMax)
	verifier := NewVerifier(powMax)
	powMax.SetInt64(0)

	header := &externalapi.DomainBlockHeader{Bits: math.BigToCompact(easyPowMax)}
	solve(t, header)
	verifierCopy := verifier
	if !verifierCopy.VerifyProofOfWork(header) {
		t.Fatalf("the verifier is not expected to depend on the caller's powMax")
	}
}

func TestDummyVerifier(t *testing.T) {
	if !NewDummyVerifier().VerifyProofOfWork(&externalapi.DomainBlockHeader{Bits: 0}) {
		t.Fatalf("the dummy verifier is expected to accept everything")
	}
}
