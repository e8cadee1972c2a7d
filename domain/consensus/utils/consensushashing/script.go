package consensushashing

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/hashes"
	"github.com/cellnet/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// ScriptHash returns the hash a cell commits to as its lock. Only the
// script's version and signed args are covered.
func ScriptHash(script *externalapi.Script) *externalapi.DomainHash {
	writer := hashes.NewScriptHashWriter()
	err := serialization.WriteElement(writer, script.Version)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	err = writeByteSlices(writer, script.SignedArgs)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}
