package wrpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kspr-network/kspr-daemon/pkg/explorer"
)

type request struct {
	ID     uint64      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

type response struct {
	ID     *uint64         `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Message string `json:"message"`
}

type rpcOutpoint struct {
	TransactionID string `json:"transactionId"`
	Index         uint32 `json:"index"`
}

type rpcScriptPublicKey struct {
	Version uint16 `json:"version"`
	Script  string `json:"script"`
}

type rpcUtxoEntry struct {
	Amount          uint64             `json:"amount"`
	ScriptPublicKey rpcScriptPublicKey `json:"scriptPublicKey"`
	BlockDaaScore   uint64             `json:"blockDaaScore"`
	IsCoinbase      bool               `json:"isCoinbase"`
}

type rpcUtxosByAddressesEntry struct {
	Address   string       `json:"address"`
	Outpoint  rpcOutpoint  `json:"outpoint"`
	UtxoEntry rpcUtxoEntry `json:"utxoEntry"`
}

type rpcTransactionInput struct {
	PreviousOutpoint rpcOutpoint `json:"previousOutpoint"`
	SignatureScript  string      `json:"signatureScript"`
	Sequence         uint64      `json:"sequence"`
	SigOpCount       uint8       `json:"sigOpCount"`
}

type rpcTransactionOutput struct {
	Value           uint64             `json:"value"`
	ScriptPublicKey rpcScriptPublicKey `json:"scriptPublicKey"`
}

type rpcTransaction struct {
	Version      uint16                 `json:"version"`
	Inputs       []rpcTransactionInput  `json:"inputs"`
	Outputs      []rpcTransactionOutput `json:"outputs"`
	LockTime     uint64                 `json:"lockTime"`
	SubnetworkID string                 `json:"subnetworkId"`
	Gas          uint64                 `json:"gas"`
	Payload      string                 `json:"payload"`
}

type rpcMempoolEntry struct {
	Fee         uint64         `json:"fee"`
	Transaction rpcTransaction `json:"transaction"`
	IsOrphan    bool           `json:"isOrphan"`
}

type rpcMempoolEntryByAddress struct {
	Address   string            `json:"address"`
	Sending   []rpcMempoolEntry `json:"sending"`
	Receiving []rpcMempoolEntry `json:"receiving"`
}

type getBalanceByAddressRequest struct {
	Address string `json:"address"`
}

type getBalanceByAddressResponse struct {
	Balance uint64 `json:"balance"`
}

type getUtxosByAddressesRequest struct {
	Addresses []string `json:"addresses"`
}

type getUtxosByAddressesResponse struct {
	Entries []rpcUtxosByAddressesEntry `json:"entries"`
}

type getMempoolEntriesByAddressesRequest struct {
	Addresses             []string `json:"addresses"`
	IncludeOrphanPool     bool     `json:"includeOrphanPool"`
	FilterTransactionPool bool     `json:"filterTransactionPool"`
}

type getMempoolEntriesByAddressesResponse struct {
	Entries []rpcMempoolEntryByAddress `json:"entries"`
}

type getBlockDagInfoResponse struct {
	NetworkName     string `json:"network"`
	VirtualDaaScore uint64 `json:"virtualDaaScore"`
}

type submitTransactionRequest struct {
	Transaction rpcTransaction `json:"transaction"`
	AllowOrphan bool           `json:"allowOrphan"`
}

type submitTransactionReplacementRequest struct {
	Transaction rpcTransaction `json:"transaction"`
}

type submitTransactionResponse struct {
	TransactionID string `json:"transactionId"`
}

func toRPCTransaction(tx *explorer.Transaction) rpcTransaction {
	inputs := make([]rpcTransactionInput, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		inputs = append(inputs, rpcTransactionInput{
			PreviousOutpoint: rpcOutpoint{
				TransactionID: in.PreviousOutpoint.TransactionID,
				Index:         in.PreviousOutpoint.Index,
			},
			SignatureScript: hex.EncodeToString(in.SignatureScript),
			Sequence:        in.Sequence,
			SigOpCount:      in.SigOpCount,
		})
	}
	outputs := make([]rpcTransactionOutput, 0, len(tx.Outputs))
	for _, out := range tx.Outputs {
		outputs = append(outputs, rpcTransactionOutput{
			Value: out.Value,
			ScriptPublicKey: rpcScriptPublicKey{
				Version: out.ScriptPublicKey.Version,
				Script:  hex.EncodeToString(out.ScriptPublicKey.Script),
			},
		})
	}
	return rpcTransaction{
		Version:      tx.Version,
		Inputs:       inputs,
		Outputs:      outputs,
		LockTime:     tx.LockTime,
		SubnetworkID: hex.EncodeToString(tx.SubnetworkID[:]),
		Gas:          tx.Gas,
		Payload:      hex.EncodeToString(tx.Payload),
	}
}

func (t rpcTransaction) parse() (*explorer.Transaction, error) {
	tx := explorer.NewTransaction()
	tx.Version = t.Version
	tx.LockTime = t.LockTime
	tx.Gas = t.Gas

	for _, in := range t.Inputs {
		sigScript, err := hex.DecodeString(in.SignatureScript)
		if err != nil {
			return nil, fmt.Errorf("invalid signature script: %w", err)
		}
		tx.Inputs = append(tx.Inputs, &explorer.TxInput{
			PreviousOutpoint: explorer.Outpoint{
				TransactionID: in.PreviousOutpoint.TransactionID,
				Index:         in.PreviousOutpoint.Index,
			},
			SignatureScript: sigScript,
			Sequence:        in.Sequence,
			SigOpCount:      in.SigOpCount,
		})
	}
	for _, out := range t.Outputs {
		spk, err := out.ScriptPublicKey.parse()
		if err != nil {
			return nil, err
		}
		tx.AddOutput(out.Value, spk)
	}
	if t.SubnetworkID != "" {
		buf, err := hex.DecodeString(t.SubnetworkID)
		if err != nil || len(buf) != explorer.SubnetworkIDSize {
			return nil, fmt.Errorf("invalid subnetwork id %s", t.SubnetworkID)
		}
		copy(tx.SubnetworkID[:], buf)
	}
	payload, err := hex.DecodeString(t.Payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	tx.Payload = payload
	return tx, nil
}

func (s rpcScriptPublicKey) parse() (explorer.ScriptPublicKey, error) {
	script, err := hex.DecodeString(s.Script)
	if err != nil {
		return explorer.ScriptPublicKey{}, fmt.Errorf("invalid script public key: %w", err)
	}
	return explorer.ScriptPublicKey{Version: s.Version, Script: script}, nil
}

func (e rpcUtxosByAddressesEntry) parse() (explorer.Utxo, error) {
	spk, err := e.UtxoEntry.ScriptPublicKey.parse()
	if err != nil {
		return explorer.Utxo{}, err
	}
	return explorer.Utxo{
		Outpoint: explorer.Outpoint{
			TransactionID: e.Outpoint.TransactionID,
			Index:         e.Outpoint.Index,
		},
		Address:         e.Address,
		Amount:          e.UtxoEntry.Amount,
		ScriptPublicKey: spk,
		BlockDaaScore:   e.UtxoEntry.BlockDaaScore,
		IsCoinbase:      e.UtxoEntry.IsCoinbase,
	}, nil
}
