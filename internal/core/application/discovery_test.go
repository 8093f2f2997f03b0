package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/stretchr/testify/require"
)

func testDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		ScanningWindow:  64,
		MaxScans:        1024,
		WindowLimit:     4,
		TrackingTimeout: time.Second,
	}
}

func TestDiscoverUnusedAccounts(t *testing.T) {
	factory := newFakeTrackerFactory(nil, nil)
	discoverer, err := NewDiscoverer(
		testDiscoveryConfig(), &mockExplorer{}, factory.newTracker,
	)
	require.NoError(t, err)

	handled := 0
	accounts, err := discoverer.DiscoverAccounts(
		ctx, fakeKeyManager{}, 3,
		func(_ domain.Account, _ []domain.Account) { handled++ },
	)
	require.NoError(t, err)

	// account 0 is kept even if never used.
	require.Len(t, accounts, 1)
	require.Equal(t, 1, handled)
	account := accounts[0]
	require.Equal(t, uint32(0), account.Index)
	require.Equal(t, "Account #1", account.Name)
	require.Equal(t, "xpub0/0/0", account.Address)
	require.Zero(t, account.Balance)
	require.Equal(t, -1, account.LastUsedReceiveIndex)
	require.Equal(t, -1, account.LastUsedChangeIndex)

	// every scan stops after 4 empty windows, way before max scans.
	trackers := factory.getTrackers()
	require.Len(t, trackers, 3)
	for _, tracker := range trackers {
		require.Equal(t, 4, tracker.windows)
		require.Len(t, tracker.Addresses(), 4*64*2)
	}
	require.Len(t, account.ReceiveAddresses, 4*64)
	require.Len(t, account.ChangeAddresses, 4*64)
}

func TestDiscoverFundedAccounts(t *testing.T) {
	factory := newFakeTrackerFactory(map[string]uint64{
		"xpub1/0/70":  200_000_000,
		"xpub1/1/100": 50_000_000,
		"xpub3/1/0":   1,
	}, nil)
	discoverer, err := NewDiscoverer(
		testDiscoveryConfig(), &mockExplorer{}, factory.newTracker,
	)
	require.NoError(t, err)

	snapshots := make([][]domain.Account, 0)
	accounts, err := discoverer.DiscoverAccounts(
		ctx, fakeKeyManager{}, 5,
		func(account domain.Account, accounts []domain.Account) {
			require.Equal(t, account, accounts[len(accounts)-1])
			snapshots = append(snapshots, accounts)
		},
	)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	require.Equal(t, uint32(0), accounts[0].Index)
	require.Equal(t, uint32(1), accounts[1].Index)
	require.Equal(t, uint32(3), accounts[2].Index)

	account := accounts[1]
	require.Equal(t, 2.5, account.Balance)
	require.Equal(t, 2, account.UtxoCount)
	require.Equal(t, 70, account.LastUsedReceiveIndex)
	require.Equal(t, 100, account.LastUsedChangeIndex)
	// the scan stops at the first window with funds.
	require.Len(t, account.ReceiveAddresses, 2*64)
	require.Equal(t, 2, factory.getTrackers()[1].windows)

	require.Equal(t, 0.00000001, accounts[2].Balance)
	require.Equal(t, -1, accounts[2].LastUsedReceiveIndex)
	require.Equal(t, 0, accounts[2].LastUsedChangeIndex)

	// the handler is called in index order with all accounts found so far.
	require.Len(t, snapshots, 3)
	for i, snapshot := range snapshots {
		require.Len(t, snapshot, i+1)
	}
}

func TestDiscoverAccountsMaxScans(t *testing.T) {
	cfg := testDiscoveryConfig()
	cfg.MaxScans = 100
	factory := newFakeTrackerFactory(nil, nil)
	discoverer, err := NewDiscoverer(cfg, &mockExplorer{}, factory.newTracker)
	require.NoError(t, err)

	accounts, err := discoverer.DiscoverAccounts(ctx, fakeKeyManager{}, 1, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Len(t, accounts[0].ReceiveAddresses, 100)
	require.Len(t, accounts[0].ChangeAddresses, 100)
	require.Equal(t, 2, factory.getTrackers()[0].windows)
}

func TestDiscoverAccountsTrackingFailure(t *testing.T) {
	factory := newFakeTrackerFactory(
		map[string]uint64{
			"xpub0/0/1": 100,
			"xpub1/0/1": 100,
			"xpub2/0/1": 100,
		},
		map[string]error{
			"xpub0/0/0": errors.New("tracking timeout"),
			"xpub1/0/0": errors.New("tracking timeout"),
		},
	)
	cfg := testDiscoveryConfig()
	discoverer, err := NewDiscoverer(cfg, &mockExplorer{}, factory.newTracker)
	require.NoError(t, err)

	accounts, err := discoverer.DiscoverAccounts(ctx, fakeKeyManager{}, 3, nil)
	require.NoError(t, err)

	// account 0 failed but is kept, unfunded, while the failure of account 1
	// doesn't prevent account 2 from being found.
	require.Len(t, accounts, 2)
	require.Equal(t, uint32(0), accounts[0].Index)
	require.Zero(t, accounts[0].Balance)
	require.Equal(t, uint32(2), accounts[1].Index)
	require.NotZero(t, accounts[1].Balance)

	factory = newFakeTrackerFactory(
		map[string]uint64{"xpub1/0/200": 100},
		map[string]error{"xpub1/0/128": errors.New("tracking timeout")},
	)
	discoverer, err = NewDiscoverer(cfg, &mockExplorer{}, factory.newTracker)
	require.NoError(t, err)

	accounts, err = discoverer.DiscoverAccounts(ctx, fakeKeyManager{}, 3, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, uint32(0), accounts[0].Index)
}

func TestDiscoverAccountsDerivationFailure(t *testing.T) {
	factory := newFakeTrackerFactory(map[string]uint64{"xpub1/0/1": 100}, nil)
	discoverer, err := NewDiscoverer(
		testDiscoveryConfig(), &mockExplorer{}, factory.newTracker,
	)
	require.NoError(t, err)

	keys := xpubFailingKeyManager{accounts: map[uint32]bool{0: true}}
	accounts, err := discoverer.DiscoverAccounts(ctx, keys, 3, nil)
	require.NoError(t, err)

	// account 0 without addresses is not kept.
	require.Len(t, accounts, 1)
	require.Equal(t, uint32(1), accounts[0].Index)
	require.Equal(t, "xpub1/0/0", accounts[0].Address)
	for _, account := range accounts {
		require.NotEmpty(t, account.Address)
	}
}

func TestDiscoverAccountsCanceled(t *testing.T) {
	factory := newFakeTrackerFactory(nil, nil)
	discoverer, err := NewDiscoverer(
		testDiscoveryConfig(), &mockExplorer{}, factory.newTracker,
	)
	require.NoError(t, err)

	canceledCtx, cancel := context.WithCancel(ctx)
	cancel()

	accounts, err := discoverer.DiscoverAccounts(
		canceledCtx, fakeKeyManager{}, 3, nil,
	)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, accounts)
}

func TestFailingNewDiscoverer(t *testing.T) {
	factory := newFakeTrackerFactory(nil, nil)

	tests := []struct {
		name        string
		cfg         DiscoveryConfig
		explorerSvc explorer.Service
	}{
		{"zero window", DiscoveryConfig{0, 256, 4, time.Second}, &mockExplorer{}},
		{"max scans below window", DiscoveryConfig{64, 32, 4, time.Second}, &mockExplorer{}},
		{"zero window limit", DiscoveryConfig{64, 256, 0, time.Second}, &mockExplorer{}},
		{"zero tracking timeout", DiscoveryConfig{64, 256, 4, 0}, &mockExplorer{}},
		{"missing explorer", DefaultDiscoveryConfig(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDiscoverer(tt.cfg, tt.explorerSvc, factory.newTracker)
			require.Error(t, err)
		})
	}
}
