package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the Kaspa network the wallet operates on, one of mainnet,
	// testnet-10, testnet-11.
	NetworkKey = "NETWORK"
	// RPCAddrKey is the wRPC endpoint of the node, ie. ws://127.0.0.1:18210.
	// Defaults to the local endpoint of the selected network.
	RPCAddrKey = "RPC_ADDR"
	// RPCTimeoutKey is the timeout in seconds applied to every node call
	RPCTimeoutKey = "RPC_TIMEOUT"
	// RPCRateLimitKey is the max number of node calls per second
	RPCRateLimitKey = "RPC_RATE_LIMIT"
	// ListeningPortKey is the port where the websocket interface listens on
	ListeningPortKey = "LISTENING_PORT"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ScanningWindowKey is the number of receive and change addresses derived
	// per discovery window
	ScanningWindowKey = "SCANNING_WINDOW"
	// MaxScansKey is the address offset ceiling of discovery
	MaxScansKey = "MAX_SCANS"
	// DiscoveryWindowLimitKey is the number of consecutive empty windows after
	// which an account scan stops
	DiscoveryWindowLimitKey = "DISCOVERY_WINDOW_LIMIT"
	// NumAccountsKey is the default number of accounts to discover
	NumAccountsKey = "NUM_ACCOUNTS"
	// TrackingTimeoutKey is the timeout in seconds for registering a window
	// of addresses with the node
	TrackingTimeoutKey = "TRACKING_TIMEOUT"
	// TrackerIntervalKey is the polling interval in milliseconds of balance
	// subscriptions
	TrackerIntervalKey = "TRACKER_INTERVAL"
	// MaxUtxosKey is the max number of inputs selected for a transaction
	MaxUtxosKey = "MAX_UTXOS"
	// MaxTxMassKey is the max mass of a transaction accepted for submission
	MaxTxMassKey = "MAX_TX_MASS"
	// PasscodeTTLKey is the duration in seconds of an unlocked session since
	// the last use of the passcode
	PasscodeTTLKey = "PASSCODE_TTL"
	// PasscodeCheckIntervalKey is the interval in seconds at which the
	// session expiration is checked
	PasscodeCheckIntervalKey = "PASSCODE_CHECK_INTERVAL"
	// EnableMetricsKey enables the prometheus /metrics endpoint and the
	// periodic memory statistics
	EnableMetricsKey = "ENABLE_METRICS"
	// StatsIntervalKey defines interval in seconds for printing basic
	// statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation      = "db"
	StatsLocation   = "stats"
	DBTypeBadger    = "badger"
	DBTypeInmemory  = "inmemory"
	defaultNetwork  = "mainnet"
	defaultLogLevel = 4
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("ksprd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("KSPR")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, defaultLogLevel)
	vip.SetDefault(NetworkKey, defaultNetwork)
	vip.SetDefault(RPCTimeoutKey, 30)
	vip.SetDefault(RPCRateLimitKey, 50)
	vip.SetDefault(ListeningPortKey, 9140)
	vip.SetDefault(DBTypeKey, DBTypeBadger)
	vip.SetDefault(ScanningWindowKey, 64)
	vip.SetDefault(MaxScansKey, 256)
	vip.SetDefault(DiscoveryWindowLimitKey, 4)
	vip.SetDefault(NumAccountsKey, 5)
	vip.SetDefault(TrackingTimeoutKey, 30)
	vip.SetDefault(TrackerIntervalKey, 5000)
	vip.SetDefault(MaxUtxosKey, 80)
	vip.SetDefault(MaxTxMassKey, 100000)
	vip.SetDefault(PasscodeTTLKey, 300)
	vip.SetDefault(PasscodeCheckIntervalKey, 5)
	vip.SetDefault(EnableMetricsKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetSeconds returns the value of the given key, expressed in seconds, as a
// duration.
func GetSeconds(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Second
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetStatsFile() string {
	return filepath.Join(GetDatadir(), StatsLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBTypeBadger && dbType != DBTypeInmemory {
		return fmt.Errorf(
			"%s must be either %s or %s", DBTypeKey, DBTypeBadger, DBTypeInmemory,
		)
	}

	for _, key := range []string{
		RPCTimeoutKey, RPCRateLimitKey, ScanningWindowKey, MaxScansKey,
		DiscoveryWindowLimitKey, NumAccountsKey, TrackingTimeoutKey,
		TrackerIntervalKey, MaxUtxosKey, MaxTxMassKey, PasscodeTTLKey,
		PasscodeCheckIntervalKey, StatsIntervalKey,
	} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	}

	if GetInt(MaxScansKey) < GetInt(ScanningWindowKey) {
		return fmt.Errorf(
			"%s must be equal or greater than %s", MaxScansKey, ScanningWindowKey,
		)
	}

	port := GetInt(ListeningPortKey)
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number", ListeningPortKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == DBTypeBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
