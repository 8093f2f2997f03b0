package domain

import "context"

// VaultRepository is the abstraction for any kind of database intended to
// persist the wallet Vault.
type VaultRepository interface {
	// GetVault returns the stored vault or ErrVaultNotFound.
	GetVault(ctx context.Context) (*Vault, error)
	// InsertVault stores the vault or fails with ErrVaultAlreadyInitialized.
	InsertVault(ctx context.Context, vault *Vault) error
	// UpdateVault applies updateFn to the stored vault and persists the
	// result.
	UpdateVault(
		ctx context.Context, updateFn func(v *Vault) (*Vault, error),
	) error
	// DeleteVault removes the stored vault, if any.
	DeleteVault(ctx context.Context) error
}
