package wallet

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

const (
	// AddressVersionPubKey is the version of P2PK addresses with a 32-byte
	// schnorr public key.
	AddressVersionPubKey = byte(0)
	// AddressVersionPubKeyECDSA is the version of P2PK addresses with a
	// 33-byte ECDSA public key.
	AddressVersionPubKeyECDSA = byte(1)
	// AddressVersionScriptHash is the version of P2SH addresses.
	AddressVersionScriptHash = byte(8)

	opData32         = 0x20
	opData33         = 0x21
	opCheckSig       = 0xac
	opCheckSigECDSA  = 0xab
	opBlake2b        = 0xaa
	opEqual          = 0x87
	checksumLength   = 8
	addressSeparator = ":"
	charset          = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
)

var payloadLengthByVersion = map[byte]int{
	AddressVersionPubKey:      32,
	AddressVersionPubKeyECDSA: 33,
	AddressVersionScriptHash:  32,
}

// Address is a decoded Kaspa address.
type Address struct {
	Prefix  string
	Version byte
	Payload []byte
}

// AddressFromPublicKey returns the schnorr P2PK address of the given public
// key for the given network.
func AddressFromPublicKey(pubkey *btcec.PublicKey, net *Network) (string, error) {
	if net == nil {
		return "", ErrNullNetwork
	}
	return EncodeAddress(Address{
		Prefix:  net.AddressPrefix,
		Version: AddressVersionPubKey,
		Payload: schnorr.SerializePubKey(pubkey),
	})
}

// EncodeAddress encodes the given address into its cashaddr-like string
// representation prefix:payload+checksum.
func EncodeAddress(addr Address) (string, error) {
	if wantLen, ok := payloadLengthByVersion[addr.Version]; !ok ||
		wantLen != len(addr.Payload) {
		return "", ErrInvalidAddress
	}

	data := append([]byte{addr.Version}, addr.Payload...)
	converted, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	combined := append(converted, checksum(addr.Prefix, converted)...)

	sb := strings.Builder{}
	sb.WriteString(addr.Prefix)
	sb.WriteString(addressSeparator)
	for _, b := range combined {
		sb.WriteByte(charset[b])
	}
	return sb.String(), nil
}

// DecodeAddress parses and validates the given address. If net is not nil,
// the address prefix must match the network one.
func DecodeAddress(str string, net *Network) (*Address, error) {
	if strings.ToLower(str) != str {
		return nil, ErrInvalidAddress
	}
	parts := strings.Split(str, addressSeparator)
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) <= checksumLength {
		return nil, ErrInvalidAddress
	}
	prefix, encoded := parts[0], parts[1]
	if net != nil && prefix != net.AddressPrefix {
		return nil, ErrInvalidAddressPrefix
	}

	data := make([]byte, 0, len(encoded))
	for _, c := range encoded {
		i := strings.IndexRune(charset, c)
		if i < 0 {
			return nil, ErrInvalidAddress
		}
		data = append(data, byte(i))
	}
	if polymod(append(prefixToUint5(prefix), data...)) != 0 {
		return nil, ErrInvalidChecksum
	}

	decoded, err := bech32.ConvertBits(data[:len(data)-checksumLength], 5, 8, false)
	if err != nil || len(decoded) < 1 {
		return nil, ErrInvalidAddress
	}
	version, payload := decoded[0], decoded[1:]
	if wantLen, ok := payloadLengthByVersion[version]; !ok || wantLen != len(payload) {
		return nil, ErrInvalidAddress
	}
	return &Address{prefix, version, payload}, nil
}

// PayToAddrScript returns the locking script paying to the given address.
func PayToAddrScript(str string, net *Network) (explorer.ScriptPublicKey, error) {
	addr, err := DecodeAddress(str, net)
	if err != nil {
		return explorer.ScriptPublicKey{}, err
	}
	return addr.ScriptPublicKey(), nil
}

// ScriptPublicKey returns the locking script of the address.
func (a *Address) ScriptPublicKey() explorer.ScriptPublicKey {
	var script []byte
	switch a.Version {
	case AddressVersionPubKey:
		script = append([]byte{opData32}, a.Payload...)
		script = append(script, opCheckSig)
	case AddressVersionPubKeyECDSA:
		script = append([]byte{opData33}, a.Payload...)
		script = append(script, opCheckSigECDSA)
	case AddressVersionScriptHash:
		script = append([]byte{opBlake2b, opData32}, a.Payload...)
		script = append(script, opEqual)
	}
	return explorer.ScriptPublicKey{Version: 0, Script: script}
}

// PayToPubKeyScript returns the schnorr P2PK locking script of the given
// public key.
func PayToPubKeyScript(pubkey *btcec.PublicKey) explorer.ScriptPublicKey {
	addr := Address{Version: AddressVersionPubKey, Payload: schnorr.SerializePubKey(pubkey)}
	return addr.ScriptPublicKey()
}

func prefixToUint5(prefix string) []byte {
	out := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out = append(out, prefix[i]&0x1f)
	}
	return append(out, 0)
}

func checksum(prefix string, payload []byte) []byte {
	values := append(prefixToUint5(prefix), payload...)
	values = append(values, make([]byte, checksumLength)...)
	poly := polymod(values)

	out := make([]byte, checksumLength)
	for i := 0; i < checksumLength; i++ {
		out[i] = byte((poly >> (5 * (checksumLength - 1 - i))) & 0x1f)
	}
	return out
}

func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := c >> 35
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}
