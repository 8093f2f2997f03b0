package explorer

import (
	"errors"
	"sort"
)

// DefaultMaxUtxos is the default cap on the number of inputs selected to
// cover a target amount.
const DefaultMaxUtxos = 80

var (
	// ErrInsufficientFunds is returned if the total amount of the given utxos
	// doesn't cover the target amount.
	ErrInsufficientFunds = errors.New(
		"error on target amount: total utxo amount does not cover target amount",
	)
	// ErrTooManyUtxos is returned if the target amount can't be covered
	// without exceeding the max number of inputs.
	ErrTooManyUtxos = errors.New(
		"error on target amount: too many utxos required to cover target amount",
	)
)

// SelectUtxos performs a coin selection over the given list of utxos and
// returns a subset of them covering targetAmount, along with the change.
//
// Utxos are sorted by descending amount. If the largest and the smallest
// together cover the target, exactly those two are selected, so that every
// spend also consumes the smallest (dust) coin. Otherwise utxos are picked
// largest first until the target is met or maxUtxos is reached.
func SelectUtxos(
	utxos []Utxo,
	targetAmount uint64,
	maxUtxos int,
) (coins []Utxo, change uint64, err error) {
	if maxUtxos <= 0 {
		maxUtxos = DefaultMaxUtxos
	}

	sorted := make([]Utxo, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})

	if len(sorted) >= 2 {
		largest, smallest := sorted[0], sorted[len(sorted)-1]
		if largest.Amount+smallest.Amount >= targetAmount {
			coins = []Utxo{largest, smallest}
			change = largest.Amount + smallest.Amount - targetAmount
			return
		}
	}

	totalAmount := uint64(0)
	selected := make([]Utxo, 0)
	for _, u := range sorted {
		if totalAmount >= targetAmount {
			break
		}
		if len(selected) >= maxUtxos {
			err = ErrTooManyUtxos
			return
		}
		selected = append(selected, u)
		totalAmount += u.Amount
	}

	if totalAmount < targetAmount {
		err = ErrInsufficientFunds
		return
	}

	coins = selected
	change = totalAmount - targetAmount
	return
}
