package application

import (
	"context"
	"fmt"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/mathutil"
	"github.com/kspr-network/kspr-daemon/pkg/stats"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

// AccountHandler is called every time an account is discovered, with the
// list of all accounts discovered so far, in index order.
type AccountHandler func(account domain.Account, accounts []domain.Account)

// Discoverer finds the accounts of an HD wallet that have been used
// on-chain by scanning windows of their receive and change addresses.
type Discoverer struct {
	cfg         DiscoveryConfig
	explorerSvc explorer.Service
	newTracker  ports.TrackerFactory
}

func NewDiscoverer(
	cfg DiscoveryConfig,
	explorerSvc explorer.Service,
	newTracker ports.TrackerFactory,
) (*Discoverer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if explorerSvc == nil {
		return nil, fmt.Errorf("missing explorer service")
	}
	if newTracker == nil {
		return nil, fmt.Errorf("missing tracker factory")
	}
	return &Discoverer{cfg, explorerSvc, newTracker}, nil
}

// DiscoverAccounts scans, strictly in index order, the first numAccounts
// accounts of the wallet. Funded accounts are returned and notified to
// handler as soon as they're found. Account 0 is always returned, even if
// not funded. Failures are localized to the account being scanned, while
// the returned error is not nil only if ctx is done.
func (d *Discoverer) DiscoverAccounts(
	ctx context.Context,
	keys ports.KeyManager,
	numAccounts int,
	handler AccountHandler,
) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, numAccounts)

	for i := 0; i < numAccounts; i++ {
		account, funded, err := d.scanAccount(ctx, keys, uint32(i))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return accounts, ctxErr
			}
			if i != 0 {
				log.WithError(err).Warnf("discovery: failed to scan account %d", i)
				continue
			}
			// account 0 is kept only if it has a usable receive address.
			if account == nil || len(account.Address) <= 0 {
				log.WithError(err).Error("discovery: failed to derive account 0")
				continue
			}
			log.WithError(err).Warn("discovery: failed to scan account 0")
		}
		if !funded && i != 0 {
			log.Debugf("discovery: account %d not used", i)
			continue
		}

		accounts = append(accounts, *account)
		stats.AccountsDiscovered(1)
		log.Debugf(
			"discovery: found account %d with balance %f KAS", i, account.Balance,
		)

		if handler != nil {
			snapshot := make([]domain.Account, len(accounts))
			copy(snapshot, accounts)
			handler(*account, snapshot)
		}
	}

	return accounts, nil
}

// scanAccount returns the account with the given index and whether it is
// funded. A tracking failure stops the scan and the account is returned as
// not funded along with the error.
func (d *Discoverer) scanAccount(
	ctx context.Context, keys ports.KeyManager, index uint32,
) (*domain.Account, bool, error) {
	account, err := domain.NewAccount(index)
	if err != nil {
		return nil, false, err
	}

	xpub, err := keys.AccountExtendedPublicKey(index)
	if err != nil {
		return account, false, err
	}

	tracker, err := d.newTracker(d.explorerSvc)
	if err != nil {
		return account, false, err
	}
	defer tracker.Stop()

	emptyWindows := 0
	for offset := 0; offset < d.cfg.MaxScans; offset += d.cfg.ScanningWindow {
		if err := ctx.Err(); err != nil {
			return account, false, err
		}

		count := d.cfg.ScanningWindow
		if offset+count > d.cfg.MaxScans {
			count = d.cfg.MaxScans - offset
		}

		receive, err := keys.DeriveAddresses(
			xpub, wallet.ReceiveChain, uint32(offset), uint32(count),
		)
		if err != nil {
			return account, false, err
		}
		change, err := keys.DeriveAddresses(
			xpub, wallet.ChangeChain, uint32(offset), uint32(count),
		)
		if err != nil {
			return account, false, err
		}
		account.AddAddresses(receive, change)

		window := make([]string, 0, len(receive)+len(change))
		window = append(window, receive...)
		window = append(window, change...)

		trackCtx, cancel := context.WithTimeout(ctx, d.cfg.TrackingTimeout)
		err = tracker.TrackAddresses(trackCtx, window)
		cancel()
		if err != nil {
			return account, false, fmt.Errorf(
				"failed to track window at offset %d: %w", offset, err,
			)
		}
		stats.AddressesScanned(len(window))

		if balance := tracker.MatureBalance(); balance > 0 {
			utxos := tracker.MatureRange(0, tracker.MatureLength())
			account.UpdateLastUsedIndexes(utxoAddresses(utxos))
			account.UpdateBalance(mathutil.FromSompi(balance), len(utxos))
			return account, true, nil
		}

		emptyWindows++
		if emptyWindows >= d.cfg.WindowLimit {
			break
		}
	}

	return account, false, nil
}

func utxoAddresses(utxos []explorer.Utxo) []string {
	addresses := make([]string, 0, len(utxos))
	for _, u := range utxos {
		addresses = append(addresses, u.Address)
	}
	return addresses
}
