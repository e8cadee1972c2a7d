package externalapi

import "bytes"

// Script versions understood by the transaction verifier
const (
	ScriptVersionAlwaysSuccess uint8 = 0
	ScriptVersionSchnorr       uint8 = 1
)

// Script is an unlock script. Only Version and SignedArgs take part in the
// script hash that cells commit to as their lock; Args carry witness data
// such as signatures.
type Script struct {
	Version    uint8
	SignedArgs [][]byte
	Args       [][]byte
}

// Clone returns a clone of Script
func (script *Script) Clone() *Script {
	if script == nil {
		return nil
	}

	return &Script{
		Version:    script.Version,
		SignedArgs: cloneByteSlices(script.SignedArgs),
		Args:       cloneByteSlices(script.Args),
	}
}

// Equal returns whether script equals to other
func (script *Script) Equal(other *Script) bool {
	if script == nil || other == nil {
		return script == other
	}

	return script.Version == other.Version &&
		byteSlicesEqual(script.SignedArgs, other.SignedArgs) &&
		byteSlicesEqual(script.Args, other.Args)
}

func cloneByteSlices(slices [][]byte) [][]byte {
	if slices == nil {
		return nil
	}
	clone := make([][]byte, len(slices))
	for i, slice := range slices {
		clone[i] = make([]byte, len(slice))
		copy(clone[i], slice)
	}
	return clone
}

func byteSlicesEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
