package domain

import (
	"strings"

	"github.com/kspr-network/kspr-daemon/pkg/wallet"
)

// Vault holds the mnemonic of the HD wallet encrypted with the user passcode,
// and the network the wallet operates on.
type Vault struct {
	EncryptedMnemonic string
	Network           string
}

// NewVault encrypts the provided mnemonic with the passcode and returns a
// new Vault.
func NewVault(mnemonic []string, passcode, network string) (*Vault, error) {
	if len(mnemonic) <= 0 || len(passcode) <= 0 {
		return nil, ErrNullMnemonicOrPasscode
	}
	if _, err := wallet.NetworkByName(network); err != nil {
		return nil, err
	}
	if _, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	}); err != nil {
		return nil, err
	}

	encryptedMnemonic, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  strings.Join(mnemonic, " "),
		Passphrase: passcode,
	})
	if err != nil {
		return nil, err
	}

	return &Vault{
		EncryptedMnemonic: encryptedMnemonic,
		Network:           network,
	}, nil
}

// IsZero returns whether the vault is not initialized.
func (v *Vault) IsZero() bool {
	return v == nil || len(v.EncryptedMnemonic) <= 0
}

// Mnemonic decrypts and returns the mnemonic with the given passcode.
func (v *Vault) Mnemonic(passcode string) ([]string, error) {
	if v.IsZero() {
		return nil, ErrVaultNotFound
	}

	mnemonic, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: v.EncryptedMnemonic,
		Passphrase: passcode,
	})
	if err != nil {
		return nil, ErrInvalidPasscode
	}
	return strings.Split(mnemonic, " "), nil
}

// Wallet returns the HD wallet restored from the vault mnemonic.
func (v *Vault) Wallet(passcode string) (*wallet.Wallet, error) {
	mnemonic, err := v.Mnemonic(passcode)
	if err != nil {
		return nil, err
	}
	return wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
}

// SetNetwork changes the network the wallet operates on.
func (v *Vault) SetNetwork(network string) error {
	if _, err := wallet.NetworkByName(network); err != nil {
		return err
	}
	v.Network = network
	return nil
}
