package explorer

import "fmt"

const (
	// CoinbaseMaturity is the number of DAA scores after which a coinbase
	// output becomes spendable.
	CoinbaseMaturity = uint64(100)
	// UserTransactionMaturity is the number of DAA scores after which a
	// regular output is considered mature.
	UserTransactionMaturity = uint64(10)
)

// Outpoint identifies a previous transaction output.
type Outpoint struct {
	TransactionID string
	Index         uint32
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TransactionID, o.Index)
}

// Utxo represents an unspent transaction output owned by an address.
type Utxo struct {
	Outpoint
	Address         string
	Amount          uint64
	ScriptPublicKey ScriptPublicKey
	BlockDaaScore   uint64
	IsCoinbase      bool
}

// IsMature returns whether the utxo is spendable at the given virtual DAA
// score.
func (u Utxo) IsMature(virtualDaaScore uint64) bool {
	depth := UserTransactionMaturity
	if u.IsCoinbase {
		depth = CoinbaseMaturity
	}
	return u.BlockDaaScore+depth <= virtualDaaScore
}

// TotalAmount returns the sum of the amounts of the given utxos.
func TotalAmount(utxos []Utxo) uint64 {
	total := uint64(0)
	for _, u := range utxos {
		total += u.Amount
	}
	return total
}
