package crawler

import (
	"context"
	"errors"

	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

var (
	// ErrTrackingTimeout is returned if the registration of addresses doesn't
	// complete before the given context is done.
	ErrTrackingTimeout = errors.New("address tracking timed out")
	// ErrTrackerStopped is returned when using a stopped tracker.
	ErrTrackerStopped = errors.New("tracker is stopped")
)

// Event are emitted through a channel during observation.
type Event interface {
	Type() EventType
}

// Tracker is an address-tracking context. It keeps the utxo set of a growing
// list of addresses and, once started, periodically refreshes it and
// notifies changes of the mature balance.
type Tracker interface {
	// TrackAddresses registers the given addresses and loads their utxos. It
	// returns as soon as ctx is done, even if the node doesn't reply.
	TrackAddresses(ctx context.Context, addresses []string) error
	// Addresses returns the list of tracked addresses in registration order.
	Addresses() []string
	// MatureBalance returns the sum of the mature utxos of all tracked
	// addresses.
	MatureBalance() uint64
	// MatureLength returns the number of mature utxos.
	MatureLength() int
	// MatureRange returns at most count mature utxos starting from start.
	MatureRange(start, count int) []explorer.Utxo
	// Start starts polling the node for changes in the background.
	Start()
	// Stop stops the tracker and closes its event channel.
	Stop()
	// GetEventChannel returns the channel where events are published.
	GetEventChannel() chan Event
}
