package domain

import "context"

// AccountRepository is the abstraction for any kind of database intended to
// persist discovered Accounts.
type AccountRepository interface {
	// GetAllAccounts returns the stored accounts sorted by index.
	GetAllAccounts(ctx context.Context) ([]Account, error)
	// GetAccountByIndex returns the account with the given index or
	// ErrAccountNotFound.
	GetAccountByIndex(ctx context.Context, index uint32) (*Account, error)
	// GetAccountByAddress returns the account owning the given receive or
	// change address, or ErrAccountNotFound.
	GetAccountByAddress(ctx context.Context, address string) (*Account, error)
	// ReplaceAccounts deletes all stored accounts and inserts the given ones.
	ReplaceAccounts(ctx context.Context, accounts []Account) error
	// UpsertAccount inserts the given account or overwrites the stored one
	// with the same index, leaving the others untouched.
	UpsertAccount(ctx context.Context, account Account) error
	// UpdateAccount applies updateFn to the account with the given index and
	// stores the result.
	UpdateAccount(
		ctx context.Context,
		index uint32,
		updateFn func(a *Account) (*Account, error),
	) error
	// DeleteAllAccounts removes every stored account.
	DeleteAllAccounts(ctx context.Context) error
}
