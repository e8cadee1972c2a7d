package transactionverifier

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

const (
	schnorrPublicKeySize = 32
	schnorrSignatureSize = 64
)

func checkUnlockScripts(resolvedTransaction *externalapi.ResolvedTransaction) error {
	tx := resolvedTransaction.Transaction

	// Computed lazily, only signature scripts need it
	var sigHash *externalapi.DomainHash
	for i, input := range tx.Inputs {
		script := input.UnlockScript
		if script == nil {
			return errors.Wrapf(ruleerrors.ErrScriptMalformed, "input %d has no unlock script", i)
		}

		lock := resolvedTransaction.InputCells[i].Output.Lock
		scriptHash := consensushashing.ScriptHash(script)
		if !scriptHash.Equal(&lock) {
			return errors.Wrapf(ruleerrors.ErrScriptValidation, "unlock script of input %d hashes to %s "+
				"while the spent cell is locked by %s", i, scriptHash, &lock)
		}

		switch script.Version {
		case externalapi.ScriptVersionAlwaysSuccess:
			continue
		case externalapi.ScriptVersionSchnorr:
			if sigHash == nil {
				sigHash = consensushashing.TransactionSigHash(tx)
			}
			err := verifySchnorrScript(script, sigHash)
			if err != nil {
				return errors.Wrapf(err, "input %d", i)
			}
		default:
			return errors.Wrapf(ruleerrors.ErrScriptMalformed, "input %d has an unlock script "+
				"of unknown version %d", i, script.Version)
		}
	}
	return nil
}

// verifySchnorrScript checks a script whose only signed arg is a schnorr
// public key and whose only arg is a signature of sigHash by that key
func verifySchnorrScript(script *externalapi.Script, sigHash *externalapi.DomainHash) error {
	if len(script.SignedArgs) != 1 || len(script.SignedArgs[0]) != schnorrPublicKeySize {
		return errors.Wrapf(ruleerrors.ErrScriptMalformed, "schnorr script expects a single "+
			"%d bytes public key", schnorrPublicKeySize)
	}
	if len(script.Args) != 1 || len(script.Args[0]) != schnorrSignatureSize {
		return errors.Wrapf(ruleerrors.ErrScriptMalformed, "schnorr script expects a single "+
			"%d bytes signature", schnorrSignatureSize)
	}

	publicKey, err := secp256k1.DeserializeSchnorrPubKey(script.SignedArgs[0])
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrScriptMalformed, "invalid public key: %s", err)
	}
	signature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(script.Args[0])
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrScriptMalformed, "invalid signature: %s", err)
	}

	secpHash := secp256k1.Hash(*sigHash.ByteArray())
	if !publicKey.SchnorrVerify(&secpHash, signature) {
		return errors.Wrapf(ruleerrors.ErrScriptValidation, "signature verification failed")
	}
	return nil
}
