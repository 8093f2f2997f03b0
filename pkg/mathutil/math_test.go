package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToSompi(t *testing.T) {
	tests := []struct {
		amount float64
		want   uint64
	}{
		{0, 0},
		{1, 100000000},
		{0.00000001, 1},
		{1.23456789, 123456789},
		{0.1 + 0.2, 30000000},
		{21000000, 2100000000000000},
		{0.000000005, 1},
		{0.000000004, 0},
		{-1, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ToSompi(tt.amount), "amount %v", tt.amount)
	}
}

func TestAmountRoundTrip(t *testing.T) {
	t.Run("sompi", func(t *testing.T) {
		amounts := []uint64{
			0, 1, 7, 99, 100000000, 123456789, 999999999999, 2100000000000000,
		}
		for _, a := range amounts {
			require.Equal(t, a, ToSompi(FromSompi(a)))
		}
	})

	t.Run("kaspa", func(t *testing.T) {
		amounts := []float64{
			0, 0.00000001, 0.1, 0.3, 1, 1.5, 12.34567891, 99999.99999999,
		}
		for _, v := range amounts {
			require.Equal(t, v, FromSompi(ToSompi(v)))
		}
	})
}

func TestFee(t *testing.T) {
	require.Equal(t, uint64(2036), Fee(2036, 1))
	require.Equal(t, uint64(1018), Fee(2036, 0.5))
	require.Equal(t, uint64(611), Fee(2036, 0.3))
	require.Equal(t, uint64(0), Fee(2036, -1))
	require.Equal(t, uint64(0), Fee(0, 10))
}
