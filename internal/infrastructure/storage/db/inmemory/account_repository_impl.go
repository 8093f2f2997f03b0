package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
)

type accountRepositoryImpl struct {
	store  map[uint32]domain.Account
	locker *sync.RWMutex
}

// NewAccountRepositoryImpl returns a new empty in memory AccountRepository.
func NewAccountRepositoryImpl() domain.AccountRepository {
	return &accountRepositoryImpl{
		store:  make(map[uint32]domain.Account),
		locker: &sync.RWMutex{},
	}
}

func (r *accountRepositoryImpl) GetAllAccounts(
	_ context.Context,
) ([]domain.Account, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	accounts := make([]domain.Account, 0, len(r.store))
	for _, a := range r.store {
		accounts = append(accounts, copyAccount(a))
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Index < accounts[j].Index
	})
	return accounts, nil
}

func (r *accountRepositoryImpl) GetAccountByIndex(
	_ context.Context, index uint32,
) (*domain.Account, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	a, ok := r.store[index]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account := copyAccount(a)
	return &account, nil
}

func (r *accountRepositoryImpl) GetAccountByAddress(
	_ context.Context, address string,
) (*domain.Account, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	for _, a := range r.store {
		if _, ok := a.DerivationPath(address); ok {
			account := copyAccount(a)
			return &account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepositoryImpl) ReplaceAccounts(
	_ context.Context, accounts []domain.Account,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.store = make(map[uint32]domain.Account, len(accounts))
	for _, a := range accounts {
		r.store[a.Index] = copyAccount(a)
	}
	return nil
}

func (r *accountRepositoryImpl) UpsertAccount(
	_ context.Context, account domain.Account,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.store[account.Index] = copyAccount(account)
	return nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context,
	index uint32,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	a, ok := r.store[index]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account := copyAccount(a)
	updatedAccount, err := updateFn(&account)
	if err != nil {
		return err
	}
	r.store[index] = copyAccount(*updatedAccount)
	return nil
}

func (r *accountRepositoryImpl) DeleteAllAccounts(_ context.Context) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.store = make(map[uint32]domain.Account)
	return nil
}

// copyAccount prevents callers from sharing the address slices of the
// stored accounts.
func copyAccount(a domain.Account) domain.Account {
	a.ReceiveAddresses = append([]string{}, a.ReceiveAddresses...)
	a.ChangeAddresses = append([]string{}, a.ChangeAddresses...)
	return a
}
