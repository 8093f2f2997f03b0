package explorer

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectUtxos(t *testing.T) {
	tests := []struct {
		name        string
		amounts     []uint64
		target      uint64
		maxUtxos    int
		wantAmounts []uint64
		wantChange  uint64
	}{
		{
			name:        "largest and smallest",
			amounts:     []uint64{100, 100, 100, 1},
			target:      101,
			maxUtxos:    80,
			wantAmounts: []uint64{100, 1},
			wantChange:  0,
		},
		{
			name:        "unsorted input",
			amounts:     []uint64{3, 50, 7, 20},
			target:      30,
			maxUtxos:    80,
			wantAmounts: []uint64{50, 3},
			wantChange:  23,
		},
		{
			name:        "single utxo",
			amounts:     []uint64{500},
			target:      200,
			maxUtxos:    80,
			wantAmounts: []uint64{500},
			wantChange:  300,
		},
		{
			name:        "greedy fallback",
			amounts:     []uint64{10, 10, 10, 1},
			target:      25,
			maxUtxos:    80,
			wantAmounts: []uint64{10, 10, 10},
			wantChange:  5,
		},
		{
			name:        "exact greedy",
			amounts:     []uint64{40, 30, 20, 5},
			target:      90,
			maxUtxos:    3,
			wantAmounts: []uint64{40, 30, 20},
			wantChange:  0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			coins, change, err := SelectUtxos(newTestUtxos(tt.amounts...), tt.target, tt.maxUtxos)
			require.NoError(t, err)
			require.Equal(t, tt.wantAmounts, amountsOf(coins))
			require.Equal(t, tt.wantChange, change)
		})
	}
}

func TestFailingSelectUtxos(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []uint64
		target   uint64
		maxUtxos int
		err      error
	}{
		{
			name:     "no utxos",
			amounts:  nil,
			target:   1,
			maxUtxos: 80,
			err:      ErrInsufficientFunds,
		},
		{
			name:     "not enough funds",
			amounts:  []uint64{10, 10, 1},
			target:   22,
			maxUtxos: 80,
			err:      ErrInsufficientFunds,
		},
		{
			name:     "too many utxos",
			amounts:  []uint64{10, 10, 10, 10, 1},
			target:   35,
			maxUtxos: 3,
			err:      ErrTooManyUtxos,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			coins, _, err := SelectUtxos(newTestUtxos(tt.amounts...), tt.target, tt.maxUtxos)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, coins)
		})
	}
}

func TestSelectUtxosSufficiency(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	maxUtxos := 80

	for i := 0; i < 500; i++ {
		amounts := make([]uint64, r.Intn(200)+1)
		total := uint64(0)
		for j := range amounts {
			amounts[j] = uint64(r.Int63n(1_000_000) + 1)
			total += amounts[j]
		}
		target := uint64(r.Int63n(int64(total))) + 1

		coins, change, err := SelectUtxos(newTestUtxos(amounts...), target, maxUtxos)
		if err != nil {
			require.ErrorIs(t, err, ErrTooManyUtxos)
			continue
		}
		selected := TotalAmount(coins)
		require.GreaterOrEqual(t, selected, target)
		require.LessOrEqual(t, len(coins), maxUtxos)
		require.Equal(t, selected-target, change)
	}
}

func newTestUtxos(amounts ...uint64) []Utxo {
	utxos := make([]Utxo, 0, len(amounts))
	for i, a := range amounts {
		utxos = append(utxos, Utxo{
			Outpoint: Outpoint{
				TransactionID: fmt.Sprintf("%064x", i),
				Index:         uint32(i),
			},
			Amount: a,
		})
	}
	return utxos
}

func amountsOf(utxos []Utxo) []uint64 {
	amounts := make([]uint64, 0, len(utxos))
	for _, u := range utxos {
		amounts = append(amounts, u.Amount)
	}
	return amounts
}
