package math

import (
	"math"
	"math/big"
	"testing"
)

func TestCompactConversions(t *testing.T) {
	tests := []struct {
		name    string
		big     string
		compact uint32
		// decoded is what compact decodes to when the encoding loses precision
		decoded string
	}{
		{name: "zero", big: "0", compact: 0},
		{name: "negative one", big: "-1", compact: 25231360},
		{name: "max int64", big: "9223372036854775807", compact: 142606335, decoded: "9223370937343148032"},
		{name: "large", big: "922337203685477580712312312123487", compact: 237861256,
			decoded: "922337129789886856855791696084992"},
	}

	for _, test := range tests {
		n, ok := new(big.Int).SetString(test.big, 10)
		if !ok {
			t.Fatalf("%s: bad test number %s", test.name, test.big)
		}
		if compact := BigToCompact(n); compact != test.compact {
			t.Errorf("%s: BigToCompact: got %d want %d", test.name, compact, test.compact)
		}
		expectedDecoded := test.decoded
		if expectedDecoded == "" {
			expectedDecoded = test.big
		}
		if decoded := CompactToBig(test.compact); decoded.String() != expectedDecoded {
			t.Errorf("%s: CompactToBig: got %s want %s", test.name, decoded, expectedDecoded)
		}
	}

	// A zero exponent shifts the whole mantissa out
	if decoded := CompactToBig(10000000); decoded.Sign() != 0 {
		t.Errorf("CompactToBig(10000000): got %s want 0", decoded)
	}
	if decoded := CompactToBig(math.MaxUint32); decoded.Sign() >= 0 {
		t.Errorf("CompactToBig(MaxUint32) is expected to have the sign bit set, got %s", decoded)
	}
}

func TestCompactRoundTripsTargets(t *testing.T) {
	// Targets whose significant bits fit in the 23 bit mantissa survive the round trip
	targets := []*big.Int{
		big.NewInt(1),
		big.NewInt(0x7fffff),
		new(big.Int).Lsh(big.NewInt(0x7fffff), 200),
		new(big.Int).Lsh(big.NewInt(0x12345), 64),
	}
	for i, target := range targets {
		roundTripped := CompactToBig(BigToCompact(target))
		if roundTripped.Cmp(target) != 0 {
			t.Errorf("target #%d changed in the round trip: got %s want %s", i, roundTripped, target)
		}
	}
}
