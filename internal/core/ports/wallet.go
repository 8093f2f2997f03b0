package ports

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/kspr-network/kspr-daemon/pkg/crawler"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
)

// KeyManager derives the keys and addresses of the accounts of an HD wallet.
type KeyManager interface {
	// AccountExtendedPublicKey returns the xpub at m/44'/111111'/account'.
	AccountExtendedPublicKey(account uint32) (string, error)
	// DeriveAddresses returns count sequential addresses of the given chain
	// starting from offset.
	DeriveAddresses(xpub string, chain, offset, count uint32) ([]string, error)
	// SigningKey returns the private key at the relative path
	// account'/chain/index.
	SigningKey(path wallet.DerivationPath) (*btcec.PrivateKey, error)
}

// MassCalculator computes the protocol mass of a transaction.
type MassCalculator interface {
	CalculateMass(tx *explorer.Transaction) (uint64, error)
}

// Signer signs every input of a transaction in place.
type Signer interface {
	Sign(tx *explorer.Transaction, keys []*btcec.PrivateKey) error
}

// TrackerFactory returns a new address-tracking context bound to the node
// client.
type TrackerFactory func(explorerSvc explorer.Service) (crawler.Tracker, error)
