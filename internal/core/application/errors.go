package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/pkg/crawler"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
)

var (
	// ErrNoUtxos is returned if the sender address owns no coins.
	ErrNoUtxos = errors.New("no utxos available")
	// ErrMassExceeded is returned if the mass of a transaction is above the
	// max allowed limit.
	ErrMassExceeded = errors.New("transaction mass exceeds max allowed limit")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a positive number with at most 8 decimals")
	// ErrInvalidFeeRate ...
	ErrInvalidFeeRate = errors.New("fee rate must not be negative")
	// ErrWalletLocked is returned for operations that need the passcode of
	// the wallet while the session is expired.
	ErrWalletLocked = errors.New("wallet is locked")
	// ErrOperationCanceled ...
	ErrOperationCanceled = errors.New("operation canceled")
)

// ErrorCode is the closed set of failures surfaced by the wallet service.
type ErrorCode int

const (
	ErrCodeInternal ErrorCode = iota
	ErrCodeNoUtxos
	ErrCodeInsufficientFunds
	ErrCodeTooManyInputs
	ErrCodeMassExceeded
	ErrCodeTrackingTimeout
	ErrCodeRpcUnavailable
	ErrCodeTxRejected
	ErrCodeInvalidAddress
	ErrCodeInvalidAmount
	ErrCodeInvalidSeed
	ErrCodeWalletLocked
	ErrCodeWalletNotInitialized
	ErrCodeWalletAlreadyInitialized
	ErrCodeInvalidPasscode
	ErrCodeAccountNotFound
	ErrCodeUnknownNetwork
	ErrCodeCanceled
)

var errorCodes = map[ErrorCode]struct {
	name    string
	message string
}{
	ErrCodeInternal:                 {"INTERNAL", "Internal error"},
	ErrCodeNoUtxos:                  {"NO_UTXOS", "No UTXOs available"},
	ErrCodeInsufficientFunds:        {"INSUFFICIENT_FUNDS", "Insufficient funds"},
	ErrCodeTooManyInputs:            {"TOO_MANY_INPUTS", "Too many UTXOs, please compound"},
	ErrCodeMassExceeded:             {"MASS_EXCEEDED", "Transaction exceeds maximum allowed limit"},
	ErrCodeTrackingTimeout:          {"TRACKING_TIMEOUT", "Address tracking timed out"},
	ErrCodeRpcUnavailable:           {"RPC_UNAVAILABLE", "Node is not connected"},
	ErrCodeTxRejected:               {"TX_REJECTED", "Transaction rejected by the node"},
	ErrCodeInvalidAddress:           {"INVALID_ADDRESS", "Invalid address"},
	ErrCodeInvalidAmount:            {"INVALID_AMOUNT", "Invalid amount"},
	ErrCodeInvalidSeed:              {"INVALID_SEED", "Invalid seed"},
	ErrCodeWalletLocked:             {"WALLET_LOCKED", "Wallet is locked"},
	ErrCodeWalletNotInitialized:     {"WALLET_NOT_INITIALIZED", "Wallet is not initialized"},
	ErrCodeWalletAlreadyInitialized: {"WALLET_ALREADY_INITIALIZED", "Wallet is already initialized"},
	ErrCodeInvalidPasscode:          {"INVALID_PASSCODE", "Invalid passcode"},
	ErrCodeAccountNotFound:          {"ACCOUNT_NOT_FOUND", "Account not found"},
	ErrCodeUnknownNetwork:           {"UNKNOWN_NETWORK", "Unknown network"},
	ErrCodeCanceled:                 {"CANCELED", "Operation canceled"},
}

func (c ErrorCode) String() string {
	if e, ok := errorCodes[c]; ok {
		return e.name
	}
	return errorCodes[ErrCodeInternal].name
}

// Message returns the human readable text of the error code.
func (c ErrorCode) Message() string {
	if e, ok := errorCodes[c]; ok {
		return e.message
	}
	return errorCodes[ErrCodeInternal].message
}

// Error is the tagged error returned by every operation of the wallet
// service.
type Error struct {
	Code ErrorCode
	Err  error
}

func NewError(code ErrorCode, err error) *Error {
	return &Error{code, err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.Message()
	}
	return fmt.Sprintf("%s: %s", e.Code.Message(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the text to display to the user. Rejections by the node
// carry the reason given by the node.
func (e *Error) Message() string {
	var rpcErr *explorer.RPCError
	if e.Code == ErrCodeTxRejected && errors.As(e.Err, &rpcErr) {
		return fmt.Sprintf("%s: %s", e.Code.Message(), rpcErr.Message)
	}
	return e.Code.Message()
}

// WrapError turns any error into an *Error, tagging it with the code of the
// package level error it wraps. It returns nil if err is nil.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{codeFromError(err), err}
}

func codeFromError(err error) ErrorCode {
	var rpcErr *explorer.RPCError

	switch {
	case errors.Is(err, ErrOperationCanceled), errors.Is(err, context.Canceled):
		return ErrCodeCanceled
	case errors.Is(err, ErrNoUtxos):
		return ErrCodeNoUtxos
	case errors.Is(err, explorer.ErrInsufficientFunds):
		return ErrCodeInsufficientFunds
	case errors.Is(err, explorer.ErrTooManyUtxos):
		return ErrCodeTooManyInputs
	case errors.Is(err, ErrMassExceeded):
		return ErrCodeMassExceeded
	case errors.Is(err, crawler.ErrTrackingTimeout):
		return ErrCodeTrackingTimeout
	case errors.Is(err, explorer.ErrNodeUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return ErrCodeRpcUnavailable
	case errors.As(err, &rpcErr):
		return ErrCodeTxRejected
	case errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrInvalidAddressPrefix),
		errors.Is(err, wallet.ErrInvalidChecksum):
		return ErrCodeInvalidAddress
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidFeeRate):
		return ErrCodeInvalidAmount
	case errors.Is(err, wallet.ErrInvalidMnemonic),
		errors.Is(err, wallet.ErrInvalidSeed),
		errors.Is(err, wallet.ErrNullSeed),
		errors.Is(err, wallet.ErrNullMnemonic),
		errors.Is(err, domain.ErrNullMnemonicOrPasscode):
		return ErrCodeInvalidSeed
	case errors.Is(err, ErrWalletLocked):
		return ErrCodeWalletLocked
	case errors.Is(err, domain.ErrVaultNotFound):
		return ErrCodeWalletNotInitialized
	case errors.Is(err, domain.ErrVaultAlreadyInitialized):
		return ErrCodeWalletAlreadyInitialized
	case errors.Is(err, domain.ErrInvalidPasscode):
		return ErrCodeInvalidPasscode
	case errors.Is(err, domain.ErrAccountNotFound):
		return ErrCodeAccountNotFound
	case errors.Is(err, wallet.ErrUnknownNetwork):
		return ErrCodeUnknownNetwork
	default:
		return ErrCodeInternal
	}
}
