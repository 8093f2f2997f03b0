package explorer

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNodeUnavailable is returned when the node can't be reached, the
	// connection is closed, or the circuit breaker is open.
	ErrNodeUnavailable = errors.New("node is unavailable")
	// ErrNotConnected is returned if a call is made before connecting.
	ErrNotConnected = fmt.Errorf("%w: not connected", ErrNodeUnavailable)
)

// RPCError is an error returned by the node itself for a well-formed request.
type RPCError struct {
	Method  string
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// MempoolEntry is a pending transaction the node has in its mempool and that
// spends or pays one of the queried addresses.
type MempoolEntry struct {
	Address     string
	Fee         uint64
	IsOrphan    bool
	Transaction *Transaction
}

// Service is representation of a Kaspa node that allows to fetch balances,
// unspents and mempool entries of addresses and to broadcast transactions.
type Service interface {
	// Connect opens the connection with the node at the given endpoint.
	Connect(ctx context.Context, endpoint string) error
	// Disconnect closes the connection with the node, if any.
	Disconnect() error
	// IsConnected returns whether the connection with the node is open.
	IsConnected() bool
	// GetBalanceByAddress returns the balance in sompi of the given address.
	GetBalanceByAddress(ctx context.Context, address string) (uint64, error)
	// GetUtxosByAddresses returns the unspents owned by the given list of
	// addresses.
	GetUtxosByAddresses(ctx context.Context, addresses []string) ([]Utxo, error)
	// GetMempoolEntriesByAddresses returns the mempool transactions spent by
	// the given list of addresses.
	GetMempoolEntriesByAddresses(
		ctx context.Context, addresses []string,
	) ([]MempoolEntry, error)
	// GetVirtualDaaScore returns the DAA score of the virtual block, used to
	// establish utxo maturity.
	GetVirtualDaaScore(ctx context.Context) (uint64, error)
	// SubmitTransaction adds the given signed tx to the node's mempool and
	// returns its id.
	SubmitTransaction(ctx context.Context, tx *Transaction) (string, error)
	// SubmitTransactionReplacement is like SubmitTransaction but replaces any
	// mempool transaction spending the same outpoints.
	SubmitTransactionReplacement(ctx context.Context, tx *Transaction) (string, error)
}
