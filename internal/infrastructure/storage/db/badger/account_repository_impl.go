package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
}

func NewAccountRepositoryImpl(store *badgerhold.Store) domain.AccountRepository {
	return &accountRepositoryImpl{store}
}

func (r *accountRepositoryImpl) GetAllAccounts(
	_ context.Context,
) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := r.store.Find(&accounts, nil); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = make([]domain.Account, 0)
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Index < accounts[j].Index
	})
	return accounts, nil
}

func (r *accountRepositoryImpl) GetAccountByIndex(
	_ context.Context, index uint32,
) (*domain.Account, error) {
	var account domain.Account
	if err := r.store.Get(index, &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepositoryImpl) GetAccountByAddress(
	ctx context.Context, address string,
) (*domain.Account, error) {
	accounts, err := r.GetAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if _, ok := accounts[i].DerivationPath(address); ok {
			return &accounts[i], nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepositoryImpl) ReplaceAccounts(
	_ context.Context, accounts []domain.Account,
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if err := r.store.TxDeleteMatching(tx, &domain.Account{}, nil); err != nil {
			return err
		}
		for _, account := range accounts {
			if err := r.store.TxInsert(tx, account.Index, account); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *accountRepositoryImpl) UpsertAccount(
	_ context.Context, account domain.Account,
) error {
	return r.store.Upsert(account.Index, account)
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context,
	index uint32,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var account domain.Account
		if err := r.store.TxGet(tx, index, &account); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrAccountNotFound
			}
			return err
		}

		updatedAccount, err := updateFn(&account)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, index, *updatedAccount)
	})
}

func (r *accountRepositoryImpl) DeleteAllAccounts(_ context.Context) error {
	return r.store.DeleteMatching(&domain.Account{}, nil)
}
