package wallet

import (
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

const (
	// SchnorrSignatureScriptSize is the size of the signature script of a
	// schnorr P2PK input: OP_DATA_65 <64-byte signature> <sighash type>.
	SchnorrSignatureScriptSize = 66

	hashSize = 32
)

// MassCalculator computes the mass of transactions for a network.
type MassCalculator struct {
	params MassParams
}

// NewMassCalculator returns a mass calculator for the given network.
func NewMassCalculator(net *Network) (*MassCalculator, error) {
	if net == nil {
		return nil, ErrNullNetwork
	}
	return &MassCalculator{net.Mass}, nil
}

// MaxTransactionMass returns the max standard mass of a transaction.
func (m *MassCalculator) MaxTransactionMass() uint64 {
	return m.params.MaxTransactionMass
}

// CalculateMass returns the overall mass of the given tx, that is the max
// between its compute and storage mass. Unsigned inputs are accounted as if
// they were already signed with a schnorr signature.
func (m *MassCalculator) CalculateMass(tx *explorer.Transaction) (uint64, error) {
	if tx == nil {
		return 0, ErrNullTransaction
	}
	if len(tx.Inputs) <= 0 {
		return 0, ErrEmptyInputs
	}
	if len(tx.Outputs) <= 0 {
		return 0, ErrEmptyOutputs
	}

	computeMass := m.ComputeMass(tx)
	storageMass, err := m.StorageMass(tx)
	if err != nil {
		return 0, err
	}
	if storageMass > computeMass {
		return storageMass, nil
	}
	return computeMass, nil
}

// ComputeMass returns the mass derived from the tx size, the size of its
// output scripts and the number of signature operations.
func (m *MassCalculator) ComputeMass(tx *explorer.Transaction) uint64 {
	mass := estimatedSerializedSize(tx) * m.params.MassPerTxByte

	scriptPubKeySize := uint64(0)
	for _, out := range tx.Outputs {
		// version (uint16) + script
		scriptPubKeySize += 2 + uint64(len(out.ScriptPublicKey.Script))
	}
	mass += scriptPubKeySize * m.params.MassPerScriptPubKeyByte

	sigOps := uint64(0)
	for _, in := range tx.Inputs {
		sigOps += uint64(in.SigOpCount)
	}
	return mass + sigOps*m.params.MassPerSigOp
}

// StorageMass returns the storage mass of the tx (KIP-9). Outputs are
// accounted with their harmonic value, inputs with the arithmetic one unless
// the tx has a single input, a single output, or two of each.
func (m *MassCalculator) StorageMass(tx *explorer.Transaction) (uint64, error) {
	c := m.params.StorageMassParameter

	harmonicOuts := uint64(0)
	for _, out := range tx.Outputs {
		if out.Value == 0 {
			return 0, ErrZeroOutputAmount
		}
		harmonicOuts = saturatingAdd(harmonicOuts, c/out.Value)
	}

	insCount, outsCount := uint64(len(tx.Inputs)), uint64(len(tx.Outputs))
	totalIns := uint64(0)
	for _, in := range tx.Inputs {
		if in.Utxo == nil {
			return 0, ErrMissingPrevout
		}
		if in.Utxo.Amount == 0 {
			return 0, ErrZeroInputAmount
		}
		totalIns += in.Utxo.Amount
	}

	if outsCount == 1 || insCount == 1 || (outsCount == 2 && insCount == 2) {
		harmonicIns := uint64(0)
		for _, in := range tx.Inputs {
			harmonicIns = saturatingAdd(harmonicIns, c/in.Utxo.Amount)
		}
		return saturatingSub(harmonicOuts, harmonicIns), nil
	}

	meanIns := totalIns / insCount
	if meanIns == 0 {
		meanIns = 1
	}
	arithmeticIns := saturatingMul(insCount, c/meanIns)
	return saturatingSub(harmonicOuts, arithmeticIns), nil
}

func estimatedSerializedSize(tx *explorer.Transaction) uint64 {
	size := uint64(2) // version
	size += 8         // number of inputs
	for _, in := range tx.Inputs {
		sigScriptLen := uint64(len(in.SignatureScript))
		if sigScriptLen == 0 {
			sigScriptLen = SchnorrSignatureScriptSize
		}
		size += hashSize + 4 // outpoint
		size += 8 + sigScriptLen
		size += 8 // sequence
		size += 1 // sig op count
	}
	size += 8 // number of outputs
	for _, out := range tx.Outputs {
		size += 8 // value
		size += 2 // script version
		size += 8 + uint64(len(out.ScriptPublicKey.Script))
	}
	size += 8 // lock time
	size += explorer.SubnetworkIDSize
	size += 8        // gas
	size += hashSize // payload hash
	size += 8 + uint64(len(tx.Payload))
	return size
}

func saturatingAdd(a, b uint64) uint64 {
	if c := a + b; c >= a {
		return c
	}
	return ^uint64(0)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if c := a * b; c/b == a {
		return c
	}
	return ^uint64(0)
}
