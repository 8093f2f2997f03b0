package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/stretchr/testify/require"
)

func TestSignTransaction(t *testing.T) {
	w, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{testMnemonic})
	require.NoError(t, err)

	keys := make([]*btcec.PrivateKey, 0, 2)
	pubkeys := make([]*btcec.PublicKey, 0, 2)
	for i := uint32(0); i < 2; i++ {
		prvkey, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
			NewDerivationPath(0, ReceiveChain, i).String(),
		})
		require.NoError(t, err)
		keys = append(keys, prvkey)
		pubkeys = append(pubkeys, pubkey)
	}

	tx := explorer.NewTransaction()
	for i, pubkey := range pubkeys {
		tx.AddInput(explorer.Utxo{
			Outpoint: explorer.Outpoint{
				TransactionID: "4a4f1c1b6e2d3f0e8a7c5b9d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f",
				Index:         uint32(i),
			},
			Amount:          uint64(i+1) * 100_000_000,
			ScriptPublicKey: PayToPubKeyScript(pubkey),
		})
	}
	tx.AddOutput(250_000_000, PayToPubKeyScript(pubkeys[0]))

	err = SignTransaction(SignTransactionOpts{tx, keys})
	require.NoError(t, err)

	for i, pubkey := range pubkeys {
		require.Len(t, tx.Inputs[i].SignatureScript, SchnorrSignatureScriptSize)
		require.True(t, VerifyInputSignature(tx, i, pubkey))
	}
	require.False(t, VerifyInputSignature(tx, 0, pubkeys[1]))

	// any change to the tx invalidates the signatures
	tx.Outputs[0].Value--
	require.False(t, VerifyInputSignature(tx, 0, pubkeys[0]))
}

func TestFailingSignTransaction(t *testing.T) {
	w, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{testMnemonic})
	require.NoError(t, err)
	prvkey, _, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{"0'/0/0"})
	require.NoError(t, err)
	_, otherPubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{"0'/0/1"})
	require.NoError(t, err)

	err = SignTransaction(SignTransactionOpts{})
	require.ErrorIs(t, err, ErrNullTransaction)

	err = SignTransaction(SignTransactionOpts{Transaction: explorer.NewTransaction()})
	require.ErrorIs(t, err, ErrEmptyInputs)

	tx := explorer.NewTransaction()
	tx.AddInput(explorer.Utxo{
		Outpoint: explorer.Outpoint{
			TransactionID: "4a4f1c1b6e2d3f0e8a7c5b9d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f",
		},
		Amount:          100,
		ScriptPublicKey: PayToPubKeyScript(otherPubkey),
	})
	tx.AddOutput(50, PayToPubKeyScript(otherPubkey))

	err = SignTransaction(SignTransactionOpts{tx, []*btcec.PrivateKey{prvkey}})
	require.ErrorIs(t, err, ErrMissingSigningKey)
}
