package wsinterface

import (
	"encoding/json"

	"github.com/kspr-network/kspr-daemon/internal/core/application"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
)

// Message types accepted by the websocket interface. AccountsUpdated is only
// pushed by the daemon.
const (
	GenSeed             = "GEN_SEED"
	InitWallet          = "INIT_WALLET"
	Unlock              = "UNLOCK"
	Lock                = "LOCK"
	ExportSeed          = "EXPORT_SEED"
	Reset               = "RESET"
	GetAndStoreAccounts = "GET_AND_STORE_ACCOUNTS"
	GetAccounts         = "GET_ACCOUNTS"
	FetchBalance        = "FETCH_BALANCE"
	Send                = "SEND"
	NetworkUpdated      = "NETWORK_UPDATED"
	Status              = "STATUS"
	AccountsUpdated     = "ACCOUNTS_UPDATED"
)

// Message is the envelope of every request, response and push. Responses
// carry the id and type of the request.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type InitWalletRequest struct {
	Mnemonic []string `json:"mnemonic"`
	Passcode string   `json:"passcode"`
}

type UnlockRequest struct {
	Passcode string `json:"passcode"`
}

type ExportSeedRequest struct {
	Passcode string `json:"passcode"`
}

type GetAndStoreAccountsRequest struct {
	Seed        string `json:"seed"`
	NumAccounts int    `json:"numAccounts,omitempty"`
}

type FetchBalanceRequest struct {
	Address string `json:"address"`
}

type SendRequest struct {
	From    string  `json:"from,omitempty"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
	FeeRate float64 `json:"feeRate,omitempty"`
}

type NetworkUpdatedRequest struct {
	Network string `json:"network"`
}

type GenSeedReply struct {
	Mnemonic []string `json:"mnemonic"`
}

type AccountsReply struct {
	Accounts []Account `json:"accounts"`
}

type BalanceReply struct {
	Balance float64 `json:"balance"`
}

type SendReply struct {
	Success bool   `json:"success"`
	TxID    string `json:"txId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SuccessReply struct {
	Success bool `json:"success"`
}

type StatusReply struct {
	Network     string `json:"network"`
	Connected   bool   `json:"connected"`
	Initialized bool   `json:"initialized"`
	Locked      bool   `json:"locked"`
	NumAccounts int    `json:"numAccounts"`
}

type ErrorReply struct {
	Error string `json:"error"`
}

// Account is the wire format of domain.Account.
type Account struct {
	Index                uint32   `json:"index"`
	Name                 string   `json:"name"`
	Address              string   `json:"address"`
	ReceiveAddresses     []string `json:"receiveAddresses"`
	ChangeAddresses      []string `json:"changeAddresses"`
	LastUsedReceiveIndex int      `json:"lastUsedReceiveIndex"`
	LastUsedChangeIndex  int      `json:"lastUsedChangeIndex"`
	Balance              float64  `json:"balance"`
	UtxoCount            int      `json:"utxoCount"`
}

func toAccountsReply(accounts []domain.Account) AccountsReply {
	list := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		list = append(list, Account{
			Index:                a.Index,
			Name:                 a.Name,
			Address:              a.Address,
			ReceiveAddresses:     a.ReceiveAddresses,
			ChangeAddresses:      a.ChangeAddresses,
			LastUsedReceiveIndex: a.LastUsedReceiveIndex,
			LastUsedChangeIndex:  a.LastUsedChangeIndex,
			Balance:              a.Balance,
			UtxoCount:            a.UtxoCount,
		})
	}
	return AccountsReply{list}
}

func toStatusReply(status *application.WalletStatus) StatusReply {
	return StatusReply{
		Network:     status.Network,
		Connected:   status.Connected,
		Initialized: status.Initialized,
		Locked:      status.Locked,
		NumAccounts: status.NumAccounts,
	}
}
