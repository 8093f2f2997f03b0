package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/mathutil"
	"github.com/kspr-network/kspr-daemon/pkg/stats"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// WalletService is the single owner of the node connection, the stored
// accounts, the vault and the passcode session. Discovery, transfers and
// any other operation mutating the wallet run one at a time.
type WalletService interface {
	GenSeed(ctx context.Context) ([]string, error)
	InitWallet(ctx context.Context, mnemonic []string, passcode string) error
	Unlock(ctx context.Context, passcode string) error
	Lock(ctx context.Context) error
	// ExportMnemonic returns the mnemonic of the wallet, decrypted with the
	// given passcode.
	ExportMnemonic(ctx context.Context, passcode string) ([]string, error)
	Reset(ctx context.Context) error
	GetAndStoreAccounts(
		ctx context.Context, seed string, numAccounts int,
	) ([]domain.Account, error)
	GetAccounts(ctx context.Context) ([]domain.Account, error)
	FetchBalance(ctx context.Context, address string) (float64, error)
	Send(ctx context.Context, args SendArgs) (string, error)
	UpdateNetwork(ctx context.Context, network string) error
	Status(ctx context.Context) (*WalletStatus, error)
	// AccountsUpdates returns the id of a new subscriber and the channel
	// where the list of accounts is pushed every time it changes.
	AccountsUpdates() (string, <-chan []domain.Account)
	Unsubscribe(id string)
	Close()
}

// SendArgs are the arguments of Send. If From is empty, the primary address
// of the first account is used. A zero FeeRate means DefaultFeeRate.
type SendArgs struct {
	From    string
	To      string
	Amount  float64
	FeeRate float64
}

// WalletStatus ...
type WalletStatus struct {
	Network     string
	Connected   bool
	Initialized bool
	Locked      bool
	NumAccounts int
}

// Config holds the dependencies and the params of the wallet service.
type Config struct {
	RepoManager    ports.RepoManager
	ExplorerSvc    explorer.Service
	TrackerFactory ports.TrackerFactory
	// Network is the default network, overridden by the one of the vault.
	Network string
	// RPCEndpoint is the node endpoint for Network. Defaults to the local
	// endpoint of the network in use.
	RPCEndpoint string

	Discovery             DiscoveryConfig
	Transfer              TransferConfig
	NumAccounts           int
	PasscodeTTL           time.Duration
	PasscodeCheckInterval time.Duration
}

func (c *Config) validate() error {
	if c.RepoManager == nil {
		return fmt.Errorf("missing repo manager")
	}
	if c.ExplorerSvc == nil {
		return fmt.Errorf("missing explorer service")
	}
	if c.TrackerFactory == nil {
		return fmt.Errorf("missing tracker factory")
	}
	if _, err := wallet.NetworkByName(c.Network); err != nil {
		return err
	}
	if err := c.Discovery.validate(); err != nil {
		return err
	}
	if err := c.Transfer.validate(); err != nil {
		return err
	}
	if c.NumAccounts <= 0 {
		c.NumAccounts = DefaultNumAccounts
	}
	if c.PasscodeTTL <= 0 {
		c.PasscodeTTL = DefaultPasscodeTTL
	}
	if c.PasscodeCheckInterval <= 0 {
		c.PasscodeCheckInterval = DefaultPasscodeCheckInterval
	}
	return nil
}

type walletService struct {
	cfg               Config
	accountRepository domain.AccountRepository
	vaultRepository   domain.VaultRepository
	explorerSvc       explorer.Service

	opLock      *semaphore.Weighted
	netLock     *sync.RWMutex
	network     *wallet.Network
	endpoint    string
	session     *session
	broadcaster *AccountsBroadcaster
	listener    *balanceListener

	quitChan chan struct{}
	wg       *sync.WaitGroup
}

// NewWalletService returns the wallet service and starts the watcher of the
// passcode session expiration.
func NewWalletService(cfg Config) (WalletService, error) {
	svc, err := newWalletService(cfg)
	if err != nil {
		return nil, err
	}

	svc.wg.Add(1)
	go svc.watchSession()

	return svc, nil
}

func newWalletService(cfg Config) (*walletService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	accountRepository := cfg.RepoManager.AccountRepository()
	vaultRepository := cfg.RepoManager.VaultRepository()

	networkName := cfg.Network
	vault, err := vaultRepository.GetVault(context.Background())
	if err != nil && err != domain.ErrVaultNotFound {
		return nil, err
	}
	if !vault.IsZero() {
		networkName = vault.Network
	}
	network, err := wallet.NetworkByName(networkName)
	if err != nil {
		return nil, err
	}

	broadcaster := NewAccountsBroadcaster()
	svc := &walletService{
		cfg:               cfg,
		accountRepository: accountRepository,
		vaultRepository:   vaultRepository,
		explorerSvc:       cfg.ExplorerSvc,
		opLock:            semaphore.NewWeighted(1),
		netLock:           &sync.RWMutex{},
		session:           newSession(cfg.PasscodeTTL),
		broadcaster:       broadcaster,
		listener: newBalanceListener(
			accountRepository, broadcaster, cfg.ExplorerSvc, cfg.TrackerFactory,
			cfg.Discovery.TrackingTimeout,
		),
		quitChan: make(chan struct{}),
		wg:       &sync.WaitGroup{},
	}
	svc.setNetwork(network)
	return svc, nil
}

func (s *walletService) GenSeed(ctx context.Context) ([]string, error) {
	mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{})
	if err != nil {
		return nil, s.failure(err)
	}
	return mnemonic, nil
}

func (s *walletService) InitWallet(
	ctx context.Context, mnemonic []string, passcode string,
) error {
	if err := s.acquire(ctx); err != nil {
		return s.failure(err)
	}
	defer s.release()

	vault, err := domain.NewVault(mnemonic, passcode, s.getNetwork().Name)
	if err != nil {
		return s.failure(err)
	}
	if err := s.vaultRepository.InsertVault(ctx, vault); err != nil {
		return s.failure(err)
	}
	s.session.open(passcode)

	log.Info("wallet initialized")
	return nil
}

func (s *walletService) Unlock(ctx context.Context, passcode string) error {
	if err := s.acquire(ctx); err != nil {
		return s.failure(err)
	}
	defer s.release()

	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil {
		return s.failure(err)
	}
	if _, err := vault.Mnemonic(passcode); err != nil {
		return s.failure(err)
	}
	s.session.open(passcode)

	accounts, err := s.accountRepository.GetAllAccounts(ctx)
	if err != nil {
		return s.failure(err)
	}
	if len(accounts) > 0 {
		if err := s.connect(ctx); err != nil {
			log.WithError(err).Warn("wallet unlocked without balance tracking")
			return nil
		}
		for _, account := range accounts {
			s.subscribe(account)
		}
	}

	log.Info("wallet unlocked")
	return nil
}

func (s *walletService) ExportMnemonic(
	ctx context.Context, passcode string,
) ([]string, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, s.failure(err)
	}
	defer s.release()

	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil {
		return nil, s.failure(err)
	}
	mnemonic, err := vault.Mnemonic(passcode)
	if err != nil {
		return nil, s.failure(err)
	}

	log.Info("wallet mnemonic exported")
	return mnemonic, nil
}

func (s *walletService) Lock(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return s.failure(err)
	}
	defer s.release()

	s.lock()
	return nil
}

func (s *walletService) Reset(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return s.failure(err)
	}
	defer s.release()

	s.lock()
	if err := s.accountRepository.DeleteAllAccounts(ctx); err != nil {
		return s.failure(err)
	}
	if err := s.vaultRepository.DeleteVault(ctx); err != nil {
		return s.failure(err)
	}
	s.broadcaster.Publish([]domain.Account{})

	log.Info("wallet reset")
	return nil
}

func (s *walletService) GetAndStoreAccounts(
	ctx context.Context, seed string, numAccounts int,
) ([]domain.Account, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, s.failure(err)
	}
	defer s.release()

	if numAccounts <= 0 {
		numAccounts = s.cfg.NumAccounts
	}

	secret := strings.TrimSpace(seed)
	if len(secret) <= 0 {
		mnemonic, err := s.unlockedVaultMnemonic(ctx)
		if err != nil {
			return nil, s.failure(err)
		}
		secret = mnemonic
	}

	network := s.getNetwork()
	keys, err := wallet.NewKeyManager(secret, network)
	if err != nil {
		return nil, s.failure(err)
	}
	if err := s.connect(ctx); err != nil {
		return nil, s.failure(err)
	}

	discoverer, err := NewDiscoverer(
		s.cfg.Discovery, s.explorerSvc, s.cfg.TrackerFactory,
	)
	if err != nil {
		return nil, s.failure(err)
	}

	s.listener.cancelAll()

	// The first discovered account replaces the stored ones, the next are
	// added one by one so that the balance updates applied meanwhile by the
	// subscriptions of the previous accounts are preserved.
	replaced := false
	accounts, err := discoverer.DiscoverAccounts(
		ctx, keys, numAccounts,
		func(account domain.Account, _ []domain.Account) {
			var err error
			if !replaced {
				err = s.accountRepository.ReplaceAccounts(
					ctx, []domain.Account{account},
				)
			} else {
				err = s.accountRepository.UpsertAccount(ctx, account)
			}
			if err != nil {
				log.WithError(err).Warnf(
					"failed to store discovered account %d", account.Index,
				)
				return
			}
			replaced = true

			stored, err := s.accountRepository.GetAllAccounts(ctx)
			if err != nil {
				log.WithError(err).Warn("failed to get stored accounts")
			} else {
				s.broadcaster.Publish(stored)
			}
			s.subscribe(account)
		},
	)
	if err != nil {
		return accounts, s.failure(err)
	}

	log.Infof("discovered %d accounts", len(accounts))

	if !replaced {
		return accounts, nil
	}
	// Return the stored accounts, including the balance updates received
	// during discovery.
	stored, err := s.accountRepository.GetAllAccounts(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to get stored accounts")
		return accounts, nil
	}
	return stored, nil
}

func (s *walletService) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepository.GetAllAccounts(ctx)
	if err != nil {
		return nil, s.failure(err)
	}
	return accounts, nil
}

func (s *walletService) FetchBalance(
	ctx context.Context, address string,
) (float64, error) {
	if _, err := wallet.DecodeAddress(address, s.getNetwork()); err != nil {
		return 0, s.failure(err)
	}
	if err := s.connect(ctx); err != nil {
		return 0, s.failure(err)
	}

	balance, err := s.explorerSvc.GetBalanceByAddress(ctx, address)
	if err != nil {
		return 0, s.failure(err)
	}
	return mathutil.FromSompi(balance), nil
}

func (s *walletService) Send(ctx context.Context, args SendArgs) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", s.failure(err)
	}
	defer s.release()

	passcode, ok := s.session.get()
	if !ok {
		return "", s.failure(ErrWalletLocked)
	}
	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil {
		return "", s.failure(err)
	}
	w, err := vault.Wallet(passcode)
	if err != nil {
		return "", s.failure(err)
	}

	from := args.From
	if len(from) <= 0 {
		account, err := s.accountRepository.GetAccountByIndex(ctx, 0)
		if err != nil {
			return "", s.failure(err)
		}
		from = account.Address
	}
	account, err := s.accountRepository.GetAccountByAddress(ctx, from)
	if err != nil {
		return "", s.failure(err)
	}
	path, ok := account.DerivationPath(from)
	if !ok {
		return "", s.failure(fmt.Errorf(
			"%w: address %s not found in account %d",
			domain.ErrAccountNotFound, from, account.Index,
		))
	}

	network := s.getNetwork()
	keys, err := wallet.NewKeyManagerFromWallet(w, network)
	if err != nil {
		return "", s.failure(err)
	}
	prvkey, err := keys.SigningKey(path)
	if err != nil {
		return "", s.failure(err)
	}
	// the stored accounts might have been discovered from another seed.
	if addr, _ := wallet.AddressFromPublicKey(prvkey.PubKey(), network); addr != from {
		return "", s.failure(fmt.Errorf(
			"%w: address %s does not belong to the wallet",
			domain.ErrAccountNotFound, from,
		))
	}

	if err := s.connect(ctx); err != nil {
		return "", s.failure(err)
	}

	massCalculator, err := wallet.NewMassCalculator(network)
	if err != nil {
		return "", s.failure(err)
	}
	transferer, err := NewTransferer(
		s.cfg.Transfer, network, s.explorerSvc, massCalculator, wallet.Signer{},
	)
	if err != nil {
		return "", s.failure(err)
	}

	feeRate := args.FeeRate
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	txid, err := transferer.Transfer(ctx, TransferArgs{
		From:       from,
		To:         args.To,
		Amount:     args.Amount,
		FeeRate:    feeRate,
		PrivateKey: prvkey,
	})
	if err != nil {
		return "", s.failure(err)
	}

	log.Infof("sent %f KAS to %s in tx %s", args.Amount, args.To, txid)
	return txid, nil
}

func (s *walletService) UpdateNetwork(ctx context.Context, name string) error {
	if err := s.acquire(ctx); err != nil {
		return s.failure(err)
	}
	defer s.release()

	network, err := wallet.NetworkByName(name)
	if err != nil {
		return s.failure(err)
	}
	if network.Name == s.getNetwork().Name {
		return nil
	}

	if err := s.vaultRepository.UpdateVault(
		ctx, func(v *domain.Vault) (*domain.Vault, error) {
			if err := v.SetNetwork(network.Name); err != nil {
				return nil, err
			}
			return v, nil
		},
	); err != nil && err != domain.ErrVaultNotFound {
		return s.failure(err)
	}

	// accounts are bound to the address prefix of the previous network.
	s.listener.cancelAll()
	if err := s.accountRepository.DeleteAllAccounts(ctx); err != nil {
		return s.failure(err)
	}
	if s.explorerSvc.IsConnected() {
		if err := s.explorerSvc.Disconnect(); err != nil {
			log.WithError(err).Warn("failed to disconnect from node")
		}
	}
	s.setNetwork(network)
	s.broadcaster.Publish([]domain.Account{})

	log.Infof("switched to network %s", network.Name)
	return nil
}

func (s *walletService) Status(ctx context.Context) (*WalletStatus, error) {
	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil && err != domain.ErrVaultNotFound {
		return nil, s.failure(err)
	}
	accounts, err := s.accountRepository.GetAllAccounts(ctx)
	if err != nil {
		return nil, s.failure(err)
	}

	return &WalletStatus{
		Network:     s.getNetwork().Name,
		Connected:   s.explorerSvc.IsConnected(),
		Initialized: !vault.IsZero(),
		Locked:      !s.session.isOpen(),
		NumAccounts: len(accounts),
	}, nil
}

func (s *walletService) AccountsUpdates() (string, <-chan []domain.Account) {
	return s.broadcaster.Subscribe()
}

func (s *walletService) Unsubscribe(id string) {
	s.broadcaster.Unsubscribe(id)
}

func (s *walletService) Close() {
	close(s.quitChan)
	s.wg.Wait()

	s.listener.cancelAll()
	s.broadcaster.Close()
	if s.explorerSvc.IsConnected() {
		if err := s.explorerSvc.Disconnect(); err != nil {
			log.WithError(err).Warn("failed to disconnect from node")
		}
	}
}

// watchSession locks the wallet once the passcode session expires. The
// check is skipped while an operation is in progress.
func (s *walletService) watchSession() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PasscodeCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.session.isExpired() || !s.opLock.TryAcquire(1) {
				continue
			}
			s.lock()
			s.release()
			log.Info("passcode expired, wallet locked")
		case <-s.quitChan:
			return
		}
	}
}

func (s *walletService) lock() {
	s.session.close()
	s.listener.cancelAll()
}

// subscribe opens the balance subscription of funded accounts and of the
// first one, where new funds are received by default.
func (s *walletService) subscribe(account domain.Account) {
	if account.Index != 0 && account.Balance <= 0 && account.UtxoCount <= 0 {
		return
	}
	if _, err := s.listener.subscribe(account); err != nil {
		log.WithError(err).Warnf(
			"failed to subscribe for balance of account %d", account.Index,
		)
	}
}

func (s *walletService) unlockedVaultMnemonic(ctx context.Context) (string, error) {
	passcode, ok := s.session.get()
	if !ok {
		return "", ErrWalletLocked
	}
	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil {
		return "", err
	}
	mnemonic, err := vault.Mnemonic(passcode)
	if err != nil {
		return "", err
	}
	return strings.Join(mnemonic, " "), nil
}

// connect opens the connection with the node if not already connected.
func (s *walletService) connect(ctx context.Context) error {
	if s.explorerSvc.IsConnected() {
		return nil
	}

	s.netLock.RLock()
	endpoint := s.endpoint
	s.netLock.RUnlock()

	if err := s.explorerSvc.Connect(ctx, endpoint); err != nil {
		return fmt.Errorf("failed to connect to node at %s: %w", endpoint, err)
	}
	log.Infof("connected to node at %s", endpoint)
	return nil
}

func (s *walletService) getNetwork() *wallet.Network {
	s.netLock.RLock()
	defer s.netLock.RUnlock()

	return s.network
}

func (s *walletService) setNetwork(network *wallet.Network) {
	s.netLock.Lock()
	defer s.netLock.Unlock()

	s.network = network
	s.endpoint = network.DefaultRPCEndpoint()
	if network.Name == s.cfg.Network && len(s.cfg.RPCEndpoint) > 0 {
		s.endpoint = s.cfg.RPCEndpoint
	}
}

func (s *walletService) acquire(ctx context.Context) error {
	if err := s.opLock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrOperationCanceled, err)
	}
	return nil
}

func (s *walletService) release() {
	s.opLock.Release(1)
}

// failure tags err with its error code and counts it.
func (s *walletService) failure(err error) error {
	e := WrapError(err)
	stats.OperationFailed(e.Code.String())
	log.WithError(err).Debug("operation failed")
	return e
}
