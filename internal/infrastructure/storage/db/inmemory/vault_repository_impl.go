package inmemory

import (
	"context"
	"sync"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
)

type vaultRepositoryImpl struct {
	vault  *domain.Vault
	locker *sync.Mutex
}

// NewVaultRepositoryImpl returns a new empty in memory VaultRepository.
func NewVaultRepositoryImpl() domain.VaultRepository {
	return &vaultRepositoryImpl{
		locker: &sync.Mutex{},
	}
}

func (r *vaultRepositoryImpl) GetVault(_ context.Context) (*domain.Vault, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	if r.vault.IsZero() {
		return nil, domain.ErrVaultNotFound
	}
	vault := *r.vault
	return &vault, nil
}

func (r *vaultRepositoryImpl) InsertVault(
	_ context.Context, vault *domain.Vault,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if !r.vault.IsZero() {
		return domain.ErrVaultAlreadyInitialized
	}
	v := *vault
	r.vault = &v
	return nil
}

func (r *vaultRepositoryImpl) UpdateVault(
	_ context.Context, updateFn func(v *domain.Vault) (*domain.Vault, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if r.vault.IsZero() {
		return domain.ErrVaultNotFound
	}
	vault := *r.vault
	updatedVault, err := updateFn(&vault)
	if err != nil {
		return err
	}
	v := *updatedVault
	r.vault = &v
	return nil
}

func (r *vaultRepositoryImpl) DeleteVault(_ context.Context) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.vault = nil
	return nil
}
