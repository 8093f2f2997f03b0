package wsinterface

import (
	"context"

	"github.com/kspr-network/kspr-daemon/internal/core/application"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GenSeed(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockWalletService) InitWallet(
	ctx context.Context, mnemonic []string, passcode string,
) error {
	args := m.Called(ctx, mnemonic, passcode)
	return args.Error(0)
}

func (m *mockWalletService) Unlock(ctx context.Context, passcode string) error {
	args := m.Called(ctx, passcode)
	return args.Error(0)
}

func (m *mockWalletService) Lock(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockWalletService) ExportMnemonic(
	ctx context.Context, passcode string,
) ([]string, error) {
	args := m.Called(ctx, passcode)
	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockWalletService) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockWalletService) GetAndStoreAccounts(
	ctx context.Context, seed string, numAccounts int,
) ([]domain.Account, error) {
	args := m.Called(ctx, seed, numAccounts)
	var res []domain.Account
	if a := args.Get(0); a != nil {
		res = a.([]domain.Account)
	}
	return res, args.Error(1)
}

func (m *mockWalletService) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	var res []domain.Account
	if a := args.Get(0); a != nil {
		res = a.([]domain.Account)
	}
	return res, args.Error(1)
}

func (m *mockWalletService) FetchBalance(
	ctx context.Context, address string,
) (float64, error) {
	args := m.Called(ctx, address)
	var res float64
	if a := args.Get(0); a != nil {
		res = a.(float64)
	}
	return res, args.Error(1)
}

func (m *mockWalletService) Send(
	ctx context.Context, sendArgs application.SendArgs,
) (string, error) {
	args := m.Called(ctx, sendArgs)
	return args.String(0), args.Error(1)
}

func (m *mockWalletService) UpdateNetwork(ctx context.Context, network string) error {
	args := m.Called(ctx, network)
	return args.Error(0)
}

func (m *mockWalletService) Status(
	ctx context.Context,
) (*application.WalletStatus, error) {
	args := m.Called(ctx)
	var res *application.WalletStatus
	if a := args.Get(0); a != nil {
		res = a.(*application.WalletStatus)
	}
	return res, args.Error(1)
}

func (m *mockWalletService) AccountsUpdates() (string, <-chan []domain.Account) {
	args := m.Called()
	var res <-chan []domain.Account
	if a := args.Get(1); a != nil {
		res = a.(<-chan []domain.Account)
	}
	return args.String(0), res
}

func (m *mockWalletService) Unsubscribe(id string) {
	m.Called(id)
}

func (m *mockWalletService) Close() {
	m.Called()
}
