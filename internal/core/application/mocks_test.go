package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
	"github.com/kspr-network/kspr-daemon/pkg/crawler"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
	"github.com/stretchr/testify/mock"
)

var (
	ctx          = context.Background()
	testMnemonic = strings.Split(
		"abandon abandon abandon abandon abandon abandon "+
			"abandon abandon abandon abandon abandon about", " ",
	)
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

type mockMassCalculator struct {
	mock.Mock
}

func (m *mockMassCalculator) CalculateMass(tx *explorer.Transaction) (uint64, error) {
	args := m.Called(tx)
	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) Sign(tx *explorer.Transaction, keys []*btcec.PrivateKey) error {
	args := m.Called(tx, keys)
	return args.Error(0)
}

// fakeKeyManager derives fake addresses in the form <xpub>/<chain>/<index>,
// with xpub<account> as extended public key.
type fakeKeyManager struct{}

func (fakeKeyManager) AccountExtendedPublicKey(account uint32) (string, error) {
	return fmt.Sprintf("xpub%d", account), nil
}

func (fakeKeyManager) DeriveAddresses(
	xpub string, chain, offset, count uint32,
) ([]string, error) {
	addresses := make([]string, 0, count)
	for i := offset; i < offset+count; i++ {
		addresses = append(addresses, fmt.Sprintf("%s/%d/%d", xpub, chain, i))
	}
	return addresses, nil
}

func (fakeKeyManager) SigningKey(_ wallet.DerivationPath) (*btcec.PrivateKey, error) {
	return nil, fmt.Errorf("not implemented")
}

// xpubFailingKeyManager is a fakeKeyManager that can't derive the extended
// public key of the given accounts.
type xpubFailingKeyManager struct {
	fakeKeyManager
	accounts map[uint32]bool
}

func (k xpubFailingKeyManager) AccountExtendedPublicKey(account uint32) (string, error) {
	if k.accounts[account] {
		return "", fmt.Errorf("failed to derive account %d", account)
	}
	return k.fakeKeyManager.AccountExtendedPublicKey(account)
}

// fakeTracker is an in memory crawler.Tracker whose mature utxos are the
// funded coins of the tracked addresses.
type fakeTracker struct {
	lock      *sync.Mutex
	funds     map[string]explorer.Utxo
	failures  map[string]error
	addresses []string
	windows   int
	started   bool
	stopOnce  *sync.Once
	eventChan chan crawler.Event
}

func (t *fakeTracker) TrackAddresses(ctx context.Context, addresses []string) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, addr := range addresses {
		if err, ok := t.failures[addr]; ok {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.windows++
	t.addresses = append(t.addresses, addresses...)
	return nil
}

func (t *fakeTracker) Addresses() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string{}, t.addresses...)
}

func (t *fakeTracker) MatureBalance() uint64 {
	return explorer.TotalAmount(t.utxos())
}

func (t *fakeTracker) MatureLength() int {
	return len(t.utxos())
}

func (t *fakeTracker) MatureRange(start, count int) []explorer.Utxo {
	utxos := t.utxos()
	if start >= len(utxos) {
		return nil
	}
	end := start + count
	if end > len(utxos) {
		end = len(utxos)
	}
	return utxos[start:end]
}

func (t *fakeTracker) Start() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.started = true
}

func (t *fakeTracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.eventChan)
	})
}

func (t *fakeTracker) GetEventChannel() chan crawler.Event {
	return t.eventChan
}

func (t *fakeTracker) isStarted() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.started
}

func (t *fakeTracker) utxos() []explorer.Utxo {
	t.lock.Lock()
	defer t.lock.Unlock()

	utxos := make([]explorer.Utxo, 0)
	for _, addr := range t.addresses {
		if u, ok := t.funds[addr]; ok {
			utxos = append(utxos, u)
		}
	}
	sort.SliceStable(utxos, func(i, j int) bool {
		return utxos[i].Address < utxos[j].Address
	})
	return utxos
}

// fakeTrackerFactory creates fakeTrackers sharing the same funded
// addresses and failures, and keeps track of all of them.
type fakeTrackerFactory struct {
	lock     *sync.Mutex
	funds    map[string]explorer.Utxo
	failures map[string]error
	trackers []*fakeTracker
	// onNewTracker, if set, is called with the number of trackers created
	// so far every time a new one is created.
	onNewTracker func(count int)
}

func newFakeTrackerFactory(
	funds map[string]uint64, failures map[string]error,
) *fakeTrackerFactory {
	utxos := make(map[string]explorer.Utxo, len(funds))
	i := uint32(0)
	for addr, amount := range funds {
		utxos[addr] = explorer.Utxo{
			Outpoint: explorer.Outpoint{TransactionID: fmt.Sprintf("%064x", i), Index: i},
			Address:  addr,
			Amount:   amount,
		}
		i++
	}
	if failures == nil {
		failures = make(map[string]error)
	}
	return &fakeTrackerFactory{
		lock:     &sync.Mutex{},
		funds:    utxos,
		failures: failures,
	}
}

func (f *fakeTrackerFactory) newTracker(_ explorer.Service) (crawler.Tracker, error) {
	f.lock.Lock()
	t := &fakeTracker{
		lock:      &sync.Mutex{},
		funds:     f.funds,
		failures:  f.failures,
		stopOnce:  &sync.Once{},
		eventChan: make(chan crawler.Event, 10),
	}
	f.trackers = append(f.trackers, t)
	count := len(f.trackers)
	f.lock.Unlock()

	if f.onNewTracker != nil {
		f.onNewTracker(count)
	}
	return t, nil
}

func (f *fakeTrackerFactory) getTrackers() []*fakeTracker {
	f.lock.Lock()
	defer f.lock.Unlock()

	return append([]*fakeTracker{}, f.trackers...)
}

// staleRepoManager serves an account repository whose lookups by address
// always return the given account, even if it doesn't own the address.
type staleRepoManager struct {
	ports.RepoManager
	account domain.Account
}

func (m staleRepoManager) AccountRepository() domain.AccountRepository {
	return staleAccountRepository{m.RepoManager.AccountRepository(), m.account}
}

type staleAccountRepository struct {
	domain.AccountRepository
	account domain.Account
}

func (r staleAccountRepository) GetAccountByAddress(
	_ context.Context, _ string,
) (*domain.Account, error) {
	account := r.account
	return &account, nil
}
