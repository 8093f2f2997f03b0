package domain_test

import (
	"strings"
	"testing"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
	"github.com/stretchr/testify/require"
)

var testMnemonic = strings.Split(
	"abandon abandon abandon abandon abandon abandon abandon abandon abandon "+
		"abandon abandon about", " ",
)

func TestNewVault(t *testing.T) {
	vault, err := domain.NewVault(testMnemonic, "passcode", "testnet-10")
	require.NoError(t, err)
	require.False(t, vault.IsZero())
	require.Equal(t, "testnet-10", vault.Network)

	mnemonic, err := vault.Mnemonic("passcode")
	require.NoError(t, err)
	require.Equal(t, testMnemonic, mnemonic)

	_, err = vault.Mnemonic("wrong")
	require.ErrorIs(t, err, domain.ErrInvalidPasscode)

	w, err := vault.Wallet("passcode")
	require.NoError(t, err)
	require.NotNil(t, w)
}

func TestNewVaultInvalid(t *testing.T) {
	_, err := domain.NewVault(nil, "passcode", "mainnet")
	require.ErrorIs(t, err, domain.ErrNullMnemonicOrPasscode)

	_, err = domain.NewVault(testMnemonic, "", "mainnet")
	require.ErrorIs(t, err, domain.ErrNullMnemonicOrPasscode)

	_, err = domain.NewVault(testMnemonic, "passcode", "devnet")
	require.ErrorIs(t, err, wallet.ErrUnknownNetwork)

	badMnemonic := make([]string, len(testMnemonic))
	copy(badMnemonic, testMnemonic)
	badMnemonic[11] = "abandon"
	_, err = domain.NewVault(badMnemonic, "passcode", "mainnet")
	require.ErrorIs(t, err, wallet.ErrInvalidMnemonic)
}

func TestVaultSetNetwork(t *testing.T) {
	vault, err := domain.NewVault(testMnemonic, "passcode", "mainnet")
	require.NoError(t, err)

	require.NoError(t, vault.SetNetwork("testnet-11"))
	require.Equal(t, "testnet-11", vault.Network)

	require.ErrorIs(t, vault.SetNetwork("devnet"), wallet.ErrUnknownNetwork)
	require.Equal(t, "testnet-11", vault.Network)

	var empty *domain.Vault
	require.True(t, empty.IsZero())
	_, err = empty.Mnemonic("passcode")
	require.ErrorIs(t, err, domain.ErrVaultNotFound)
}
