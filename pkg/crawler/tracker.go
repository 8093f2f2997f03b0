package crawler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	eventQueueMaxSize = 100

	// DefaultInterval is the default polling interval in milliseconds.
	DefaultInterval = 5000
	// DefaultExplorerLimit is the default number of requests per second.
	DefaultExplorerLimit = 10
	// DefaultExplorerTokenBurst is the default burst of the rate limiter.
	DefaultExplorerTokenBurst = 1
)

// Opts defines the parameters needed for creating a tracker with NewTracker.
type Opts struct {
	ExplorerSvc            explorer.Service
	IntervalInMilliseconds int
	ExplorerLimit          int
	ExplorerTokenBurst     int
	ErrorHandler           func(err error)
}

func (o Opts) validate() error {
	if o.ExplorerSvc == nil {
		return fmt.Errorf("missing explorer service")
	}
	if o.IntervalInMilliseconds < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	if o.ExplorerLimit < 0 || o.ExplorerTokenBurst < 0 {
		return fmt.Errorf("explorer limit and token burst must not be negative")
	}
	return nil
}

type utxoTracker struct {
	explorerSvc  explorer.Service
	interval     int
	rateLimiter  *rate.Limiter
	errorHandler func(err error)

	lock            *sync.RWMutex
	addresses       []string
	addressSet      map[string]struct{}
	utxos           map[explorer.Outpoint]explorer.Utxo
	virtualDaaScore uint64
	lastBalance     uint64
	lastCount       int

	eventChan chan Event
	stopChan  chan struct{}
	wg        *sync.WaitGroup
	started   bool
	stopped   bool
}

// NewTracker returns a Tracker ready to register addresses. Use Start and
// Stop methods to manage its background polling.
func NewTracker(opts Opts) (Tracker, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	interval := opts.IntervalInMilliseconds
	if interval == 0 {
		interval = DefaultInterval
	}
	limit := opts.ExplorerLimit
	if limit == 0 {
		limit = DefaultExplorerLimit
	}
	burst := opts.ExplorerTokenBurst
	if burst == 0 {
		burst = DefaultExplorerTokenBurst
	}
	errorHandler := opts.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(err error) {
			log.WithError(err).Warn("tracker: failed to refresh utxos")
		}
	}

	return &utxoTracker{
		explorerSvc:  opts.ExplorerSvc,
		interval:     interval,
		rateLimiter:  rate.NewLimiter(rate.Limit(limit), burst),
		errorHandler: errorHandler,
		lock:         &sync.RWMutex{},
		addresses:    make([]string, 0),
		addressSet:   make(map[string]struct{}),
		utxos:        make(map[explorer.Outpoint]explorer.Utxo),
		eventChan:    make(chan Event, eventQueueMaxSize),
		stopChan:     make(chan struct{}),
		wg:           &sync.WaitGroup{},
	}, nil
}

func (t *utxoTracker) TrackAddresses(ctx context.Context, addresses []string) error {
	resultChan := make(chan error, 1)
	go func() {
		resultChan <- t.track(ctx, addresses)
	}()

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTrackingTimeout, ctx.Err())
	}
}

func (t *utxoTracker) Addresses() []string {
	t.lock.RLock()
	defer t.lock.RUnlock()

	addresses := make([]string, len(t.addresses))
	copy(addresses, t.addresses)
	return addresses
}

func (t *utxoTracker) MatureBalance() uint64 {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return explorer.TotalAmount(t.matureUtxos())
}

func (t *utxoTracker) MatureLength() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return len(t.matureUtxos())
}

func (t *utxoTracker) MatureRange(start, count int) []explorer.Utxo {
	t.lock.RLock()
	defer t.lock.RUnlock()

	mature := t.matureUtxos()
	if start < 0 || count <= 0 || start >= len(mature) {
		return []explorer.Utxo{}
	}
	end := start + count
	if end > len(mature) {
		end = len(mature)
	}
	return mature[start:end]
}

// Start starts polling the node at the configured interval. It's a no-op if
// the tracker is already started or stopped.
func (t *utxoTracker) Start() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.started || t.stopped {
		return
	}
	t.started = true
	t.lastBalance = explorer.TotalAmount(t.matureUtxos())
	t.lastCount = len(t.matureUtxos())

	t.wg.Add(1)
	go t.poll()
}

func (t *utxoTracker) Stop() {
	t.lock.Lock()
	if t.stopped {
		t.lock.Unlock()
		return
	}
	t.stopped = true
	t.lock.Unlock()

	close(t.stopChan)
	t.wg.Wait()

	t.eventChan <- CloseEvent{}
	close(t.eventChan)
}

func (t *utxoTracker) GetEventChannel() chan Event {
	return t.eventChan
}

func (t *utxoTracker) poll() {
	defer t.wg.Done()

	ticker := time.NewTicker(time.Duration(t.interval) * time.Millisecond)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-t.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-ticker.C:
			event, err := t.refresh(ctx)
			if err != nil {
				if ctx.Err() == nil {
					t.errorHandler(err)
				}
				continue
			}
			if event != nil {
				select {
				case t.eventChan <- *event:
				case <-t.stopChan:
					return
				}
			}
		case <-t.stopChan:
			return
		}
	}
}

func (t *utxoTracker) track(ctx context.Context, addresses []string) error {
	t.lock.RLock()
	stopped := t.stopped
	newAddresses := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if _, ok := t.addressSet[addr]; !ok {
			newAddresses = append(newAddresses, addr)
		}
	}
	t.lock.RUnlock()

	if stopped {
		return ErrTrackerStopped
	}
	if len(newAddresses) <= 0 {
		return nil
	}

	if err := t.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	virtualDaaScore, err := t.explorerSvc.GetVirtualDaaScore(ctx)
	if err != nil {
		return err
	}
	utxos, err := t.explorerSvc.GetUtxosByAddresses(ctx, newAddresses)
	if err != nil {
		return err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	// do not commit a registration that was abandoned by the caller
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, addr := range newAddresses {
		if _, ok := t.addressSet[addr]; !ok {
			t.addressSet[addr] = struct{}{}
			t.addresses = append(t.addresses, addr)
		}
	}
	for _, u := range utxos {
		t.utxos[u.Outpoint] = u
	}
	if virtualDaaScore > t.virtualDaaScore {
		t.virtualDaaScore = virtualDaaScore
	}

	log.Debugf("tracker: registered %d addresses", len(newAddresses))
	return nil
}

// refresh reloads the utxo set of all tracked addresses and returns an event
// if the mature balance or the number of mature utxos changed.
func (t *utxoTracker) refresh(ctx context.Context) (*BalanceEvent, error) {
	addresses := t.Addresses()
	if len(addresses) <= 0 {
		return nil, nil
	}

	if err := t.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	virtualDaaScore, err := t.explorerSvc.GetVirtualDaaScore(ctx)
	if err != nil {
		return nil, err
	}
	utxos, err := t.explorerSvc.GetUtxosByAddresses(ctx, addresses)
	if err != nil {
		return nil, err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.utxos = make(map[explorer.Outpoint]explorer.Utxo, len(utxos))
	for _, u := range utxos {
		t.utxos[u.Outpoint] = u
	}
	if virtualDaaScore > t.virtualDaaScore {
		t.virtualDaaScore = virtualDaaScore
	}

	mature := t.matureUtxos()
	balance := explorer.TotalAmount(mature)
	if balance == t.lastBalance && len(mature) == t.lastCount {
		return nil, nil
	}
	t.lastBalance, t.lastCount = balance, len(mature)

	log.Debugf("tracker: mature balance changed to %d sompi", balance)
	return &BalanceEvent{Balance: balance, Utxos: mature}, nil
}

// matureUtxos must be called with the lock held. Utxos are sorted by
// descending DAA score, then by outpoint, to make ranges stable.
func (t *utxoTracker) matureUtxos() []explorer.Utxo {
	mature := make([]explorer.Utxo, 0, len(t.utxos))
	for _, u := range t.utxos {
		if u.IsMature(t.virtualDaaScore) {
			mature = append(mature, u)
		}
	}
	sort.Slice(mature, func(i, j int) bool {
		if mature[i].BlockDaaScore != mature[j].BlockDaaScore {
			return mature[i].BlockDaaScore > mature[j].BlockDaaScore
		}
		if mature[i].TransactionID != mature[j].TransactionID {
			return mature[i].TransactionID < mature[j].TransactionID
		}
		return mature[i].Index < mature[j].Index
	})
	return mature
}
