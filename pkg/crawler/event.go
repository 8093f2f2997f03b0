package crawler

import "github.com/kspr-network/kspr-daemon/pkg/explorer"

const (
	CloseSignal EventType = iota
	BalanceChanged
)

type EventType int

func (et EventType) String() string {
	switch et {
	case CloseSignal:
		return "CloseSignal"
	case BalanceChanged:
		return "BalanceChanged"
	default:
		return "Unknown"
	}
}

type CloseEvent struct{}

func (q CloseEvent) Type() EventType {
	return CloseSignal
}

// BalanceEvent notifies a change in the mature utxo set of the tracked
// addresses.
type BalanceEvent struct {
	Balance uint64
	Utxos   []explorer.Utxo
}

func (b BalanceEvent) Type() EventType {
	return BalanceChanged
}
