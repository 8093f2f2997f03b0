package ports

import "github.com/kspr-network/kspr-daemon/internal/core/domain"

// RepoManager interface defines the methods for accessing the repositories
// of accounts and vault.
type RepoManager interface {
	AccountRepository() domain.AccountRepository
	VaultRepository() domain.VaultRepository

	Close()
}
