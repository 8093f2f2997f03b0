package crawler_test

import (
	"context"

	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/stretchr/testify/mock"
)

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) Connect(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *mockExplorer) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockExplorer) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockExplorer) GetBalanceByAddress(
	ctx context.Context, address string,
) (uint64, error) {
	args := m.Called(ctx, address)
	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetUtxosByAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.Utxo, error) {
	args := m.Called(ctx, addresses)
	var res []explorer.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]explorer.Utxo)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetMempoolEntriesByAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.MempoolEntry, error) {
	args := m.Called(ctx, addresses)
	var res []explorer.MempoolEntry
	if a := args.Get(0); a != nil {
		res = a.([]explorer.MempoolEntry)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetVirtualDaaScore(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) SubmitTransaction(
	ctx context.Context, tx *explorer.Transaction,
) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *mockExplorer) SubmitTransactionReplacement(
	ctx context.Context, tx *explorer.Transaction,
) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}
