package wallet

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

const opData65 = 0x41

// SignTransactionOpts is the struct given to SignTransaction method
type SignTransactionOpts struct {
	Transaction *explorer.Transaction
	PrivateKeys []*btcec.PrivateKey
}

func (o SignTransactionOpts) validate() error {
	if o.Transaction == nil {
		return ErrNullTransaction
	}
	if len(o.Transaction.Inputs) <= 0 {
		return ErrEmptyInputs
	}
	for _, in := range o.Transaction.Inputs {
		if in.Utxo == nil {
			return ErrMissingPrevout
		}
	}
	return nil
}

// SignTransaction signs every input of the given tx with the private key whose
// schnorr P2PK script matches the one of the spent utxo. The signature
// scripts of the tx are updated in place.
func SignTransaction(opts SignTransactionOpts) error {
	if err := opts.validate(); err != nil {
		return err
	}

	tx := opts.Transaction
	for i, in := range tx.Inputs {
		key := findKeyForScript(opts.PrivateKeys, in.Utxo.ScriptPublicKey.Script)
		if key == nil {
			return ErrMissingSigningKey
		}

		sigHash, err := CalculateSignatureHash(tx, i)
		if err != nil {
			return err
		}
		sig, err := schnorr.Sign(key, sigHash)
		if err != nil {
			return err
		}

		sigScript := make([]byte, 0, SchnorrSignatureScriptSize)
		sigScript = append(sigScript, opData65)
		sigScript = append(sigScript, sig.Serialize()...)
		sigScript = append(sigScript, SigHashAll)
		in.SignatureScript = sigScript
	}
	return nil
}

// VerifyInputSignature returns whether the signature script of the input at
// the given index is a valid schnorr signature for the given public key.
func VerifyInputSignature(
	tx *explorer.Transaction, inputIndex int, pubkey *btcec.PublicKey,
) bool {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return false
	}
	sigScript := tx.Inputs[inputIndex].SignatureScript
	if len(sigScript) != SchnorrSignatureScriptSize ||
		sigScript[0] != opData65 || sigScript[len(sigScript)-1] != SigHashAll {
		return false
	}
	sig, err := schnorr.ParseSignature(sigScript[1 : len(sigScript)-1])
	if err != nil {
		return false
	}
	sigHash, err := CalculateSignatureHash(tx, inputIndex)
	if err != nil {
		return false
	}
	return sig.Verify(sigHash, pubkey)
}

func findKeyForScript(keys []*btcec.PrivateKey, script []byte) *btcec.PrivateKey {
	for _, key := range keys {
		if key == nil {
			continue
		}
		if bytes.Equal(PayToPubKeyScript(key.PubKey()).Script, script) {
			return key
		}
	}
	return nil
}
