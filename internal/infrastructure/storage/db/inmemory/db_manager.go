package inmemory

import (
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
)

type RepoManager struct {
	accountRepository domain.AccountRepository
	vaultRepository   domain.VaultRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		accountRepository: NewAccountRepositoryImpl(),
		vaultRepository:   NewVaultRepositoryImpl(),
	}
}

func (d *RepoManager) AccountRepository() domain.AccountRepository {
	return d.accountRepository
}

func (d *RepoManager) VaultRepository() domain.VaultRepository {
	return d.vaultRepository
}

func (d *RepoManager) Close() {}
