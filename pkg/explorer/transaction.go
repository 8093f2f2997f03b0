package explorer

// SubnetworkIDSize is the size in bytes of a subnetwork id.
const SubnetworkIDSize = 20

// SubnetworkIDNative is the default subnetwork of regular transactions.
var SubnetworkIDNative = [SubnetworkIDSize]byte{}

// ScriptPublicKey is a versioned locking script.
type ScriptPublicKey struct {
	Version uint16
	Script  []byte
}

// TxInput spends a previous output. Utxo holds the spent entry, needed for
// mass calculation and signing.
type TxInput struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint64
	SigOpCount       uint8
	Utxo             *Utxo
}

// TxOutput is a transaction output.
type TxOutput struct {
	Value           uint64
	ScriptPublicKey ScriptPublicKey
}

// Transaction is a Kaspa transaction, either unsigned or signed.
type Transaction struct {
	Version      uint16
	Inputs       []*TxInput
	Outputs      []*TxOutput
	LockTime     uint64
	SubnetworkID [SubnetworkIDSize]byte
	Gas          uint64
	Payload      []byte
}

// NewTransaction returns an empty native transaction.
func NewTransaction() *Transaction {
	return &Transaction{
		Inputs:       make([]*TxInput, 0),
		Outputs:      make([]*TxOutput, 0),
		SubnetworkID: SubnetworkIDNative,
		Payload:      []byte{},
	}
}

// AddInput adds an input spending the given utxo.
func (tx *Transaction) AddInput(utxo Utxo) {
	u := utxo
	tx.Inputs = append(tx.Inputs, &TxInput{
		PreviousOutpoint: utxo.Outpoint,
		SignatureScript:  []byte{},
		SigOpCount:       1,
		Utxo:             &u,
	})
}

// AddOutput adds an output paying value to the given script.
func (tx *Transaction) AddOutput(value uint64, script ScriptPublicKey) {
	tx.Outputs = append(tx.Outputs, &TxOutput{value, script})
}

// InputAmount returns the sum of the amounts spent by the inputs.
func (tx *Transaction) InputAmount() uint64 {
	total := uint64(0)
	for _, in := range tx.Inputs {
		if in.Utxo != nil {
			total += in.Utxo.Amount
		}
	}
	return total
}

// OutputAmount returns the sum of the output values.
func (tx *Transaction) OutputAmount() uint64 {
	total := uint64(0)
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}

// SpendsAnyOf returns whether any of the tx inputs spends one of the given
// outpoints.
func (tx *Transaction) SpendsAnyOf(outpoints []Outpoint) bool {
	spent := make(map[Outpoint]struct{}, len(tx.Inputs))
	for _, in := range tx.Inputs {
		spent[in.PreviousOutpoint] = struct{}{}
	}
	for _, o := range outpoints {
		if _, ok := spent[o]; ok {
			return true
		}
	}
	return false
}

// Outpoints returns the list of outpoints spent by the tx.
func (tx *Transaction) Outpoints() []Outpoint {
	outpoints := make([]Outpoint, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		outpoints = append(outpoints, in.PreviousOutpoint)
	}
	return outpoints
}
