package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kspr-network/kspr-daemon/internal/config"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("KSPR_DATADIR", datadir)
	t.Setenv("KSPR_NETWORK", "testnet-10")
	t.Setenv("KSPR_MAX_SCANS", "1024")

	require.NoError(t, config.InitConfig())

	require.Equal(t, "testnet-10", config.GetString(config.NetworkKey))
	require.Equal(t, 1024, config.GetInt(config.MaxScansKey))
	require.Equal(t, 64, config.GetInt(config.ScanningWindowKey))
	require.Equal(t, 4, config.GetInt(config.DiscoveryWindowLimitKey))
	require.Equal(t, 30*time.Second, config.GetSeconds(config.TrackingTimeoutKey))
	require.Equal(t, 100000, config.GetInt(config.MaxTxMassKey))

	_, err := os.Stat(filepath.Join(datadir, config.DbLocation))
	require.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown db type", "KSPR_DB_TYPE", "postgres"},
		{"zero scanning window", "KSPR_SCANNING_WINDOW", "0"},
		{"max scans below window", "KSPR_MAX_SCANS", "10"},
		{"invalid port", "KSPR_LISTENING_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KSPR_DATADIR", t.TempDir())
			t.Setenv(tt.key, tt.value)

			require.Error(t, config.InitConfig())
		})
	}
}
