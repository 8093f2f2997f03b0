package wrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kspr-network/kspr-daemon/pkg/circuitbreaker"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	// DefaultTimeout is applied to every call unless overridden.
	DefaultTimeout = 30 * time.Second
	// DefaultRateLimit is the default max number of calls per second.
	DefaultRateLimit = 50
)

// Opts defines the parameters to configure the wRPC node client.
type Opts struct {
	// Timeout bounds every call to the node.
	Timeout time.Duration
	// RateLimit is the max number of calls per second.
	RateLimit int
}

func (o Opts) validate() error {
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

type service struct {
	conn    *connection
	lock    *sync.RWMutex
	nextID  uint64
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewService returns the wRPC JSON implementation of explorer.Service. The
// returned service is not connected, Connect must be called before use.
func NewService(opts Opts) (explorer.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	rateLimit := opts.RateLimit
	if rateLimit == 0 {
		rateLimit = DefaultRateLimit
	}

	return &service{
		lock:    &sync.RWMutex{},
		timeout: timeout,
		cb:      circuitbreaker.NewCircuitBreaker("wrpc"),
		limiter: ratelimit.New(rateLimit),
	}, nil
}

func (s *service) Connect(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("missing endpoint")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := dial(ctx, endpoint)
	if err != nil {
		return err
	}

	s.lock.Lock()
	prev := s.conn
	s.conn = conn
	s.lock.Unlock()

	if prev != nil {
		// nolint
		prev.close()
	}
	log.Debugf("wrpc: connected to %s", endpoint)
	return nil
}

func (s *service) Disconnect() error {
	s.lock.Lock()
	conn := s.conn
	s.conn = nil
	s.lock.Unlock()

	if conn == nil {
		return nil
	}
	return conn.close()
}

func (s *service) IsConnected() bool {
	conn := s.connection()
	return conn != nil && !conn.isClosed()
}

func (s *service) GetBalanceByAddress(
	ctx context.Context, address string,
) (uint64, error) {
	resp := getBalanceByAddressResponse{}
	if err := s.call(
		ctx, "getBalanceByAddress", getBalanceByAddressRequest{address}, &resp,
	); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (s *service) GetUtxosByAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.Utxo, error) {
	resp := getUtxosByAddressesResponse{}
	if err := s.call(
		ctx, "getUtxosByAddresses", getUtxosByAddressesRequest{addresses}, &resp,
	); err != nil {
		return nil, err
	}

	utxos := make([]explorer.Utxo, 0, len(resp.Entries))
	for _, entry := range resp.Entries {
		utxo, err := entry.parse()
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}

func (s *service) GetMempoolEntriesByAddresses(
	ctx context.Context, addresses []string,
) ([]explorer.MempoolEntry, error) {
	resp := getMempoolEntriesByAddressesResponse{}
	if err := s.call(
		ctx, "getMempoolEntriesByAddresses",
		getMempoolEntriesByAddressesRequest{Addresses: addresses},
		&resp,
	); err != nil {
		return nil, err
	}

	entries := make([]explorer.MempoolEntry, 0)
	for _, byAddress := range resp.Entries {
		for _, e := range byAddress.Sending {
			tx, err := e.Transaction.parse()
			if err != nil {
				return nil, err
			}
			entries = append(entries, explorer.MempoolEntry{
				Address:     byAddress.Address,
				Fee:         e.Fee,
				IsOrphan:    e.IsOrphan,
				Transaction: tx,
			})
		}
	}
	return entries, nil
}

func (s *service) GetVirtualDaaScore(ctx context.Context) (uint64, error) {
	resp := getBlockDagInfoResponse{}
	if err := s.call(ctx, "getBlockDagInfo", struct{}{}, &resp); err != nil {
		return 0, err
	}
	return resp.VirtualDaaScore, nil
}

func (s *service) SubmitTransaction(
	ctx context.Context, tx *explorer.Transaction,
) (string, error) {
	resp := submitTransactionResponse{}
	if err := s.call(
		ctx, "submitTransaction",
		submitTransactionRequest{Transaction: toRPCTransaction(tx)},
		&resp,
	); err != nil {
		return "", err
	}
	return resp.TransactionID, nil
}

func (s *service) SubmitTransactionReplacement(
	ctx context.Context, tx *explorer.Transaction,
) (string, error) {
	resp := submitTransactionResponse{}
	if err := s.call(
		ctx, "submitTransactionReplacement",
		submitTransactionReplacementRequest{toRPCTransaction(tx)},
		&resp,
	); err != nil {
		return "", err
	}
	return resp.TransactionID, nil
}

func (s *service) connection() *connection {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.conn
}

// call sends a request and decodes its response into result. Only transport
// failures are accounted by the circuit breaker, errors returned by the node
// for well-formed requests are not.
func (s *service) call(
	ctx context.Context, method string, params, result interface{},
) error {
	conn := s.connection()
	if conn == nil {
		return explorer.ErrNotConnected
	}

	s.limiter.Take()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id := atomic.AddUint64(&s.nextID, 1)
	iResp, err := s.cb.Execute(func() (interface{}, error) {
		return conn.roundTrip(ctx, id, method, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) ||
			errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s", explorer.ErrNodeUnavailable, err)
		}
		return err
	}

	resp := iResp.(*response)
	if resp.Error != nil {
		return &explorer.RPCError{Method: method, Message: resp.Error.Message}
	}
	if result == nil || len(resp.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Params, result); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", method, err)
	}
	return nil
}
