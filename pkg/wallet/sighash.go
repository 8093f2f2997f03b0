package wallet

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"golang.org/x/crypto/blake2b"
)

// SigHashAll is the only sighash type used by the wallet.
const SigHashAll = byte(0x01)

var transactionSigningHashKey = []byte("TransactionSigningHash")

// CalculateSignatureHash returns the SigHashAll message committed to by the
// signature of the input at the given index.
func CalculateSignatureHash(tx *explorer.Transaction, inputIndex int) ([]byte, error) {
	if tx == nil {
		return nil, ErrNullTransaction
	}
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, fmt.Errorf("input index %d out of range", inputIndex)
	}
	in := tx.Inputs[inputIndex]
	if in.Utxo == nil {
		return nil, ErrMissingPrevout
	}

	previousOutputsHash, err := hashPreviousOutputs(tx)
	if err != nil {
		return nil, err
	}

	w := newSigningHasher()
	writeUint16(w, tx.Version)
	w.Write(previousOutputsHash)
	w.Write(hashSequences(tx))
	w.Write(hashSigOpCounts(tx))
	if err := writeOutpoint(w, in.PreviousOutpoint); err != nil {
		return nil, err
	}
	writeUint16(w, in.Utxo.ScriptPublicKey.Version)
	writeVarBytes(w, in.Utxo.ScriptPublicKey.Script)
	writeUint64(w, in.Utxo.Amount)
	writeUint64(w, in.Sequence)
	w.Write([]byte{in.SigOpCount})
	w.Write(hashOutputs(tx))
	writeUint64(w, tx.LockTime)
	w.Write(tx.SubnetworkID[:])
	writeUint64(w, tx.Gas)
	w.Write(hashPayload(tx))
	w.Write([]byte{SigHashAll})

	return w.Sum(nil), nil
}

func newSigningHasher() hash.Hash {
	// blake2b.New256 fails only for keys longer than 64 bytes.
	h, _ := blake2b.New256(transactionSigningHashKey)
	return h
}

func hashPreviousOutputs(tx *explorer.Transaction) ([]byte, error) {
	w := newSigningHasher()
	for _, in := range tx.Inputs {
		if err := writeOutpoint(w, in.PreviousOutpoint); err != nil {
			return nil, err
		}
	}
	return w.Sum(nil), nil
}

func hashSequences(tx *explorer.Transaction) []byte {
	w := newSigningHasher()
	for _, in := range tx.Inputs {
		writeUint64(w, in.Sequence)
	}
	return w.Sum(nil)
}

func hashSigOpCounts(tx *explorer.Transaction) []byte {
	w := newSigningHasher()
	for _, in := range tx.Inputs {
		w.Write([]byte{in.SigOpCount})
	}
	return w.Sum(nil)
}

func hashOutputs(tx *explorer.Transaction) []byte {
	w := newSigningHasher()
	for _, out := range tx.Outputs {
		writeUint64(w, out.Value)
		writeUint16(w, out.ScriptPublicKey.Version)
		writeVarBytes(w, out.ScriptPublicKey.Script)
	}
	return w.Sum(nil)
}

func hashPayload(tx *explorer.Transaction) []byte {
	if tx.SubnetworkID == explorer.SubnetworkIDNative && len(tx.Payload) == 0 {
		return make([]byte, hashSize)
	}
	w := newSigningHasher()
	writeVarBytes(w, tx.Payload)
	return w.Sum(nil)
}

func writeOutpoint(w hash.Hash, outpoint explorer.Outpoint) error {
	txid, err := hex.DecodeString(outpoint.TransactionID)
	if err != nil || len(txid) != hashSize {
		return fmt.Errorf("invalid outpoint transaction id %q", outpoint.TransactionID)
	}
	w.Write(txid)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, outpoint.Index)
	w.Write(buf)
	return nil
}

func writeUint16(w hash.Hash, v uint16) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	w.Write(buf)
}

func writeUint64(w hash.Hash, v uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	w.Write(buf)
}

func writeVarBytes(w hash.Hash, b []byte) {
	writeUint64(w, uint64(len(b)))
	w.Write(b)
}
