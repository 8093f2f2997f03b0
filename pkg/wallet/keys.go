package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// ExtendedKeyOpts is the struct given to the ExtendedPublicKey method
type ExtendedKeyOpts struct {
	Account uint32
}

func (o ExtendedKeyOpts) validate() error {
	if o.Account > MaxHardenedValue {
		return ErrOutOfRangeDerivationPathAccount
	}
	return nil
}

// ExtendedPublicKey returns the extended public key in base58 format of the
// provided account index, ie. the key at m/44'/111111'/account'.
func (w *Wallet) ExtendedPublicKey(opts ExtendedKeyOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	masterKey, err := hdkeychain.NewKeyFromString(w.masterKey)
	if err != nil {
		return "", err
	}

	xprv, err := masterKey.Derive(hdkeychain.HardenedKeyStart + opts.Account)
	if err != nil {
		return "", err
	}

	xpub, err := xprv.Neuter()
	if err != nil {
		return "", err
	}
	return xpub.String(), nil
}

// DeriveSigningKeyPairOpts is the struct given to DeriveSigningKeyPair method
type DeriveSigningKeyPairOpts struct {
	DerivationPath string
}

func (o DeriveSigningKeyPairOpts) validate() error {
	derivationPath, err := ParseDerivationPath(o.DerivationPath)
	if err != nil {
		return err
	}

	return checkDerivationPath(derivationPath)
}

// DeriveSigningKeyPair derives the key pair of the provided relative
// derivation path account'/chain/index.
func (w *Wallet) DeriveSigningKeyPair(opts DeriveSigningKeyPairOpts) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if err := w.validate(); err != nil {
		return nil, nil, err
	}

	hdNode, err := hdkeychain.NewKeyFromString(w.masterKey)
	if err != nil {
		return nil, nil, err
	}

	derivationPath, _ := ParseDerivationPath(opts.DerivationPath)
	for _, step := range derivationPath {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, nil, err
		}
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := hdNode.ECPubKey()
	if err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// DeriveAddressesOpts is the struct given to DeriveAddresses method
type DeriveAddressesOpts struct {
	ExtendedPublicKey string
	Chain             uint32
	Offset            uint32
	Count             uint32
	Network           *Network
}

func (o DeriveAddressesOpts) validate() error {
	if len(o.ExtendedPublicKey) <= 0 {
		return ErrNullExtendedKey
	}
	if o.Chain != ReceiveChain && o.Chain != ChangeChain {
		return ErrInvalidChain
	}
	if o.Count == 0 {
		return ErrInvalidCount
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	return nil
}

// DeriveAddresses derives Count sequential addresses starting from Offset on
// the given chain of an account extended public key.
func DeriveAddresses(opts DeriveAddressesOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	xpub, err := hdkeychain.NewKeyFromString(opts.ExtendedPublicKey)
	if err != nil {
		return nil, err
	}
	chainNode, err := xpub.Derive(opts.Chain)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, opts.Count)
	for i := uint32(0); i < opts.Count; i++ {
		child, err := chainNode.Derive(opts.Offset + i)
		if err != nil {
			return nil, err
		}
		pubkey, err := child.ECPubKey()
		if err != nil {
			return nil, err
		}
		addr, err := AddressFromPublicKey(pubkey, opts.Network)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}
