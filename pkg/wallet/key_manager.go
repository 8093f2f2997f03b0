package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

// KeyManager binds a Wallet to a Network to derive account keys and
// addresses.
type KeyManager struct {
	wallet  *Wallet
	network *Network
}

// NewKeyManager returns a KeyManager for the wallet restored from the given
// secret, either a mnemonic or a hex encoded seed.
func NewKeyManager(secret string, network *Network) (*KeyManager, error) {
	if network == nil {
		return nil, ErrNullNetwork
	}
	w, err := NewWalletFromSecret(secret)
	if err != nil {
		return nil, err
	}
	return &KeyManager{w, network}, nil
}

// NewKeyManagerFromWallet returns a KeyManager for an already restored
// wallet.
func NewKeyManagerFromWallet(w *Wallet, network *Network) (*KeyManager, error) {
	if network == nil {
		return nil, ErrNullNetwork
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &KeyManager{w, network}, nil
}

func (k *KeyManager) AccountExtendedPublicKey(account uint32) (string, error) {
	return k.wallet.ExtendedPublicKey(ExtendedKeyOpts{Account: account})
}

func (k *KeyManager) DeriveAddresses(
	xpub string, chain, offset, count uint32,
) ([]string, error) {
	return DeriveAddresses(DeriveAddressesOpts{
		ExtendedPublicKey: xpub,
		Chain:             chain,
		Offset:            offset,
		Count:             count,
		Network:           k.network,
	})
}

func (k *KeyManager) SigningKey(path DerivationPath) (*btcec.PrivateKey, error) {
	prvkey, _, err := k.wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: path.String(),
	})
	return prvkey, err
}

// Signer signs transactions with schnorr signatures.
type Signer struct{}

func (Signer) Sign(tx *explorer.Transaction, keys []*btcec.PrivateKey) error {
	return SignTransaction(SignTransactionOpts{
		Transaction: tx,
		PrivateKeys: keys,
	})
}
