package application

import (
	"context"
	"sync"
	"time"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
	"github.com/kspr-network/kspr-daemon/pkg/crawler"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/mathutil"
	"github.com/kspr-network/kspr-daemon/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// Subscription is the cancellable handle of the balance tracking of an
// account.
type Subscription struct {
	AccountIndex uint32

	tracker crawler.Tracker
	cancel  context.CancelFunc
	done    chan struct{}
}

// Cancel stops tracking the account and waits for pending updates to be
// applied.
func (s *Subscription) Cancel() {
	s.cancel()
	s.tracker.Stop()
	<-s.done
}

// balanceListener keeps the stored accounts in sync with the balance
// changes of their addresses.
type balanceListener struct {
	accountRepository domain.AccountRepository
	broadcaster       *AccountsBroadcaster
	explorerSvc       explorer.Service
	newTracker        ports.TrackerFactory
	trackingTimeout   time.Duration

	lock          *sync.Mutex
	subscriptions map[uint32]*Subscription
}

func newBalanceListener(
	accountRepository domain.AccountRepository,
	broadcaster *AccountsBroadcaster,
	explorerSvc explorer.Service,
	newTracker ports.TrackerFactory,
	trackingTimeout time.Duration,
) *balanceListener {
	return &balanceListener{
		accountRepository: accountRepository,
		broadcaster:       broadcaster,
		explorerSvc:       explorerSvc,
		newTracker:        newTracker,
		trackingTimeout:   trackingTimeout,
		lock:              &sync.Mutex{},
		subscriptions:     make(map[uint32]*Subscription),
	}
}

// subscribe starts tracking the addresses of the given account in the
// background, replacing any previous subscription for the same account.
func (l *balanceListener) subscribe(account domain.Account) (*Subscription, error) {
	tracker, err := l.newTracker(l.explorerSvc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		AccountIndex: account.Index,
		tracker:      tracker,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	l.lock.Lock()
	prev := l.subscriptions[account.Index]
	l.subscriptions[account.Index] = sub
	l.lock.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	go l.listen(ctx, sub, account.Addresses())
	return sub, nil
}

func (l *balanceListener) cancelAll() {
	l.lock.Lock()
	subs := l.subscriptions
	l.subscriptions = make(map[uint32]*Subscription)
	l.lock.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (l *balanceListener) count() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return len(l.subscriptions)
}

func (l *balanceListener) listen(
	ctx context.Context, sub *Subscription, addresses []string,
) {
	defer close(sub.done)

	trackCtx, cancel := context.WithTimeout(ctx, l.trackingTimeout)
	err := sub.tracker.TrackAddresses(trackCtx, addresses)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warnf(
				"listener: failed to track addresses of account %d", sub.AccountIndex,
			)
		}
		return
	}

	sub.tracker.Start()
	log.Debugf("listener: tracking balance of account %d", sub.AccountIndex)

	for event := range sub.tracker.GetEventChannel() {
		e, ok := event.(crawler.BalanceEvent)
		if !ok {
			continue
		}
		if err := l.updateAccount(ctx, sub.AccountIndex, e); err != nil {
			log.WithError(err).Warnf(
				"listener: failed to update balance of account %d", sub.AccountIndex,
			)
		}
	}
}

func (l *balanceListener) updateAccount(
	ctx context.Context, index uint32, event crawler.BalanceEvent,
) error {
	var address string
	if err := l.accountRepository.UpdateAccount(
		ctx, index, func(a *domain.Account) (*domain.Account, error) {
			a.UpdateBalance(mathutil.FromSompi(event.Balance), len(event.Utxos))
			a.UpdateLastUsedIndexes(utxoAddresses(event.Utxos))
			address = a.Address
			return a, nil
		},
	); err != nil {
		return err
	}
	stats.AccountBalance(address, event.Balance)

	accounts, err := l.accountRepository.GetAllAccounts(ctx)
	if err != nil {
		return err
	}
	l.broadcaster.Publish(accounts)

	log.Debugf(
		"listener: balance of account %d changed to %d sompi", index, event.Balance,
	)
	return nil
}
