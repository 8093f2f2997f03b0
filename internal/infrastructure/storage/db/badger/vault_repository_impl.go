package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const vaultKey = "vault"

type vaultRepositoryImpl struct {
	store *badgerhold.Store
}

func NewVaultRepositoryImpl(store *badgerhold.Store) domain.VaultRepository {
	return &vaultRepositoryImpl{store}
}

func (r *vaultRepositoryImpl) GetVault(_ context.Context) (*domain.Vault, error) {
	var vault domain.Vault
	if err := r.store.Get(vaultKey, &vault); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrVaultNotFound
		}
		return nil, err
	}
	return &vault, nil
}

func (r *vaultRepositoryImpl) InsertVault(
	_ context.Context, vault *domain.Vault,
) error {
	if err := r.store.Insert(vaultKey, *vault); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrVaultAlreadyInitialized
		}
		return err
	}
	return nil
}

func (r *vaultRepositoryImpl) UpdateVault(
	_ context.Context, updateFn func(v *domain.Vault) (*domain.Vault, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var vault domain.Vault
		if err := r.store.TxGet(tx, vaultKey, &vault); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrVaultNotFound
			}
			return err
		}

		updatedVault, err := updateFn(&vault)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, vaultKey, *updatedVault)
	})
}

func (r *vaultRepositoryImpl) DeleteVault(_ context.Context) error {
	if err := r.store.Delete(vaultKey, domain.Vault{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}
