package stats_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kspr-network/kspr-daemon/pkg/stats"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	stats.AccountsDiscovered(2)
	stats.AddressesScanned(64)
	stats.TransactionSubmitted("standard")
	stats.TransactionSubmitted("replacement")
	stats.OperationFailed("INSUFFICIENT_FUNDS")
	stats.AccountBalance("kaspatest:qq", 1000)

	families, err := stats.Gatherer().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["kspr_accounts_discovered_total"])
	require.True(t, names["kspr_addresses_scanned_total"])
	require.True(t, names["kspr_transactions_submitted_total"])
	require.True(t, names["kspr_operation_errors_total"])
	require.True(t, names["kspr_account_balance_sompi"])
}

func TestDumpMetrics(t *testing.T) {
	stats.AccountsDiscovered(1)

	path := filepath.Join(t.TempDir(), "stats")
	require.NoError(t, stats.DumpMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(content), "kspr_accounts_discovered_total"))
}
