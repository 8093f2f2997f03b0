package wallet

import "fmt"

// MassParams are the consensus parameters used to compute transaction mass.
type MassParams struct {
	MassPerTxByte           uint64
	MassPerScriptPubKeyByte uint64
	MassPerSigOp            uint64
	StorageMassParameter    uint64
	MaxTransactionMass      uint64
}

// Network holds the parameters of a Kaspa network the wallet can operate on.
type Network struct {
	Name           string
	AddressPrefix  string
	DefaultRPCPort int
	Mass           MassParams
}

var (
	defaultMassParams = MassParams{
		MassPerTxByte:           1,
		MassPerScriptPubKeyByte: 10,
		MassPerSigOp:            1000,
		StorageMassParameter:    100_000_000 * 10_000,
		MaxTransactionMass:      100_000,
	}

	// Mainnet ...
	Mainnet = &Network{
		Name:           "mainnet",
		AddressPrefix:  "kaspa",
		DefaultRPCPort: 18110,
		Mass:           defaultMassParams,
	}
	// Testnet10 ...
	Testnet10 = &Network{
		Name:           "testnet-10",
		AddressPrefix:  "kaspatest",
		DefaultRPCPort: 18210,
		Mass:           defaultMassParams,
	}
	// Testnet11 ...
	Testnet11 = &Network{
		Name:           "testnet-11",
		AddressPrefix:  "kaspatest",
		DefaultRPCPort: 18310,
		Mass:           defaultMassParams,
	}

	networks = map[string]*Network{
		Mainnet.Name:   Mainnet,
		Testnet10.Name: Testnet10,
		Testnet11.Name: Testnet11,
	}
)

// NetworkByName returns the params of the network with the given name.
func NetworkByName(name string) (*Network, error) {
	net, ok := networks[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownNetwork, name)
	}
	return net, nil
}

// DefaultRPCEndpoint returns the wRPC JSON endpoint of a local node.
func (n *Network) DefaultRPCEndpoint() string {
	return fmt.Sprintf("ws://127.0.0.1:%d", n.DefaultRPCPort)
}
