package application

import (
	"fmt"
	"time"

	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

const (
	// DefaultScanningWindow is the number of receive and change addresses
	// derived and registered at once during discovery.
	DefaultScanningWindow = 64
	// DefaultMaxScans is the derivation offset ceiling of an account scan.
	DefaultMaxScans = 256
	// DefaultDiscoveryWindowLimit is the number of consecutive empty windows
	// after which an account scan stops.
	DefaultDiscoveryWindowLimit = 4
	// DefaultTrackingTimeout bounds the registration of a window of addresses.
	DefaultTrackingTimeout = 30 * time.Second

	// DefaultMaxTxMass is the max mass of a transaction accepted by nodes.
	DefaultMaxTxMass = uint64(100_000)
	// DefaultProvisionalMassPerInput is the rough mass of a signed input,
	// used to size the change of the provisional transaction.
	DefaultProvisionalMassPerInput = uint64(1_000)
	// DefaultFeeRate is the fee rate, in sompi per gram of mass, used if none
	// is given.
	DefaultFeeRate = 1.0

	// DefaultNumAccounts is the number of accounts discovered if none is
	// given.
	DefaultNumAccounts = 5
	// DefaultPasscodeTTL is the duration of an unlocked session since the
	// last use of the passcode.
	DefaultPasscodeTTL = 5 * time.Minute
	// DefaultPasscodeCheckInterval is the interval at which the session
	// expiration is checked.
	DefaultPasscodeCheckInterval = 5 * time.Second
)

// DiscoveryConfig holds the bounds of the account discovery.
type DiscoveryConfig struct {
	ScanningWindow  int
	MaxScans        int
	WindowLimit     int
	TrackingTimeout time.Duration
}

// DefaultDiscoveryConfig returns the discovery bounds used by the wallet.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		ScanningWindow:  DefaultScanningWindow,
		MaxScans:        DefaultMaxScans,
		WindowLimit:     DefaultDiscoveryWindowLimit,
		TrackingTimeout: DefaultTrackingTimeout,
	}
}

func (c DiscoveryConfig) validate() error {
	if c.ScanningWindow <= 0 {
		return fmt.Errorf("scanning window must be a positive number")
	}
	if c.MaxScans < c.ScanningWindow {
		return fmt.Errorf("max scans must be equal or greater than scanning window")
	}
	if c.WindowLimit <= 0 {
		return fmt.Errorf("discovery window limit must be a positive number")
	}
	if c.TrackingTimeout <= 0 {
		return fmt.Errorf("tracking timeout must be a positive duration")
	}
	return nil
}

// TransferConfig holds the limits applied when building transactions.
type TransferConfig struct {
	MaxUtxos                int
	MaxTxMass               uint64
	ProvisionalMassPerInput uint64
}

// DefaultTransferConfig returns the limits used by the wallet.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		MaxUtxos:                explorer.DefaultMaxUtxos,
		MaxTxMass:               DefaultMaxTxMass,
		ProvisionalMassPerInput: DefaultProvisionalMassPerInput,
	}
}

func (c TransferConfig) validate() error {
	if c.MaxUtxos <= 0 {
		return fmt.Errorf("max utxos must be a positive number")
	}
	if c.MaxTxMass <= 0 {
		return fmt.Errorf("max tx mass must be a positive number")
	}
	return nil
}
