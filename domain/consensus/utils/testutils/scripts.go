package testutils

import (
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// AlwaysSuccessScript returns an unlock script that any transaction may
// use, together with the lock that commits to it
func AlwaysSuccessScript() (*externalapi.Script, *externalapi.DomainHash) {
	script := &externalapi.Script{Version: externalapi.ScriptVersionAlwaysSuccess}
	return script, consensushashing.ScriptHash(script)
}

// SchnorrKey is a key pair able to unlock cells locked by Lock
type SchnorrKey struct {
	keyPair   *secp256k1.SchnorrKeyPair
	publicKey []byte
}

// NewSchnorrKey generates a random SchnorrKey
func NewSchnorrKey() (*SchnorrKey, error) {
	keyPair, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate a schnorr key pair")
	}
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive the schnorr public key")
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize the schnorr public key")
	}

	return &SchnorrKey{
		keyPair:   keyPair,
		publicKey: serializedPublicKey[:],
	}, nil
}

// UnlockScript returns an unsigned unlock script for this key
func (key *SchnorrKey) UnlockScript() *externalapi.Script {
	publicKey := make([]byte, len(key.publicKey))
	copy(publicKey, key.publicKey)
	return &externalapi.Script{
		Version:    externalapi.ScriptVersionSchnorr,
		SignedArgs: [][]byte{publicKey},
	}
}

// Lock returns the lock of cells spendable by this key
func (key *SchnorrKey) Lock() *externalapi.DomainHash {
	return consensushashing.ScriptHash(key.UnlockScript())
}

// SignInput signs tx with key and stores the signature in the unlock script
// of the input at inputIndex. The signature does not cover any script Args,
// so inputs may be signed in any order once the rest of tx is final.
func SignInput(tx *externalapi.DomainTransaction, inputIndex int, key *SchnorrKey) error {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return errors.Errorf("input index %d is out of range", inputIndex)
	}
	input := tx.Inputs[inputIndex]
	if input.UnlockScript == nil {
		input.UnlockScript = key.UnlockScript()
	}

	sigHash := consensushashing.TransactionSigHash(tx)
	secpHash := secp256k1.Hash(*sigHash.ByteArray())
	signature, err := key.keyPair.SchnorrSign(&secpHash)
	if err != nil {
		return errors.Wrap(err, "failed to sign the transaction")
	}

	input.UnlockScript.Args = [][]byte{signature.Serialize()[:]}
	return nil
}
