package domain

import "errors"

var (
	// ErrAccountNotFound is returned when looking up an account that is not
	// stored.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidAccountIndex ...
	ErrInvalidAccountIndex = errors.New("account index must be a non negative number lower than 2^31")
	// ErrVaultNotFound is returned if the wallet has not been initialized yet.
	ErrVaultNotFound = errors.New("vault not found")
	// ErrVaultAlreadyInitialized ...
	ErrVaultAlreadyInitialized = errors.New("vault is already initialized")
	// ErrNullMnemonicOrPasscode ...
	ErrNullMnemonicOrPasscode = errors.New("mnemonic and/or passcode must not be null")
	// ErrInvalidPasscode is returned if the vault can't be opened with the
	// given passcode.
	ErrInvalidPasscode = errors.New("passcode is not valid")
)
