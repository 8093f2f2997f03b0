package domain

import (
	"fmt"

	"github.com/kspr-network/kspr-daemon/pkg/wallet"
)

// Account defines the entity data structure for a discovered account of the
// HD wallet.
type Account struct {
	Index                uint32
	Name                 string
	Address              string
	ReceiveAddresses     []string
	ChangeAddresses      []string
	LastUsedReceiveIndex int
	LastUsedChangeIndex  int
	Balance              float64
	UtxoCount            int
}

// NewAccount returns an Account with no derived addresses.
func NewAccount(index uint32) (*Account, error) {
	if index > wallet.MaxHardenedValue {
		return nil, ErrInvalidAccountIndex
	}

	return &Account{
		Index:                index,
		Name:                 AccountName(index),
		ReceiveAddresses:     make([]string, 0),
		ChangeAddresses:      make([]string, 0),
		LastUsedReceiveIndex: -1,
		LastUsedChangeIndex:  -1,
	}, nil
}

// AccountName returns the display label of the account with the given index.
func AccountName(index uint32) string {
	return fmt.Sprintf("Account #%d", index+1)
}

// AddAddresses appends a window of receive and change addresses. The
// primary address is set to the first receive address.
func (a *Account) AddAddresses(receive, change []string) {
	a.ReceiveAddresses = append(a.ReceiveAddresses, receive...)
	a.ChangeAddresses = append(a.ChangeAddresses, change...)
	if len(a.Address) <= 0 && len(a.ReceiveAddresses) > 0 {
		a.Address = a.ReceiveAddresses[0]
	}
}

// Addresses returns all receive and change addresses of the account.
func (a *Account) Addresses() []string {
	addresses := make([]string, 0, len(a.ReceiveAddresses)+len(a.ChangeAddresses))
	addresses = append(addresses, a.ReceiveAddresses...)
	return append(addresses, a.ChangeAddresses...)
}

// DerivationPath returns the relative derivation path account'/chain/index
// of the given address, if owned by the account.
func (a *Account) DerivationPath(address string) (wallet.DerivationPath, bool) {
	for i, addr := range a.ReceiveAddresses {
		if addr == address {
			return wallet.NewDerivationPath(a.Index, wallet.ReceiveChain, uint32(i)), true
		}
	}
	for i, addr := range a.ChangeAddresses {
		if addr == address {
			return wallet.NewDerivationPath(a.Index, wallet.ChangeChain, uint32(i)), true
		}
	}
	return nil, false
}

// UpdateLastUsedIndexes sets the last used receive and change indexes to
// the highest address position owning any of the given addresses. Indexes
// never decrease.
func (a *Account) UpdateLastUsedIndexes(usedAddresses []string) {
	used := make(map[string]struct{}, len(usedAddresses))
	for _, addr := range usedAddresses {
		used[addr] = struct{}{}
	}

	for i, addr := range a.ReceiveAddresses {
		if _, ok := used[addr]; ok && i > a.LastUsedReceiveIndex {
			a.LastUsedReceiveIndex = i
		}
	}
	for i, addr := range a.ChangeAddresses {
		if _, ok := used[addr]; ok && i > a.LastUsedChangeIndex {
			a.LastUsedChangeIndex = i
		}
	}
}

// UpdateBalance sets the mature balance, in whole KAS, and the number of
// utxos backing it.
func (a *Account) UpdateBalance(balance float64, utxoCount int) {
	a.Balance = balance
	a.UtxoCount = utxoCount
}
