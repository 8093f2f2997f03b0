package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/kspr-network/kspr-daemon/internal/config"
	"github.com/kspr-network/kspr-daemon/internal/core/application"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
	dbbadger "github.com/kspr-network/kspr-daemon/internal/infrastructure/storage/db/badger"
	"github.com/kspr-network/kspr-daemon/internal/infrastructure/storage/db/inmemory"
	wsinterface "github.com/kspr-network/kspr-daemon/internal/interfaces/ws"
	"github.com/kspr-network/kspr-daemon/pkg/crawler"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/explorer/wrpc"
	"github.com/kspr-network/kspr-daemon/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}
	defer repoManager.Close()

	explorerSvc, err := wrpc.NewService(wrpc.Opts{
		Timeout:   config.GetSeconds(config.RPCTimeoutKey),
		RateLimit: config.GetInt(config.RPCRateLimitKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create node client")
	}

	trackerInterval := config.GetInt(config.TrackerIntervalKey)
	trackerFactory := func(svc explorer.Service) (crawler.Tracker, error) {
		return crawler.NewTracker(crawler.Opts{
			ExplorerSvc:            svc,
			IntervalInMilliseconds: trackerInterval,
		})
	}

	walletSvc, err := application.NewWalletService(application.Config{
		RepoManager:    repoManager,
		ExplorerSvc:    explorerSvc,
		TrackerFactory: trackerFactory,
		Network:        config.GetString(config.NetworkKey),
		RPCEndpoint:    config.GetString(config.RPCAddrKey),
		Discovery: application.DiscoveryConfig{
			ScanningWindow:  config.GetInt(config.ScanningWindowKey),
			MaxScans:        config.GetInt(config.MaxScansKey),
			WindowLimit:     config.GetInt(config.DiscoveryWindowLimitKey),
			TrackingTimeout: config.GetSeconds(config.TrackingTimeoutKey),
		},
		Transfer: application.TransferConfig{
			MaxUtxos:                config.GetInt(config.MaxUtxosKey),
			MaxTxMass:               uint64(config.GetInt(config.MaxTxMassKey)),
			ProvisionalMassPerInput: application.DefaultProvisionalMassPerInput,
		},
		NumAccounts:           config.GetInt(config.NumAccountsKey),
		PasscodeTTL:           config.GetSeconds(config.PasscodeTTLKey),
		PasscodeCheckInterval: config.GetSeconds(config.PasscodeCheckIntervalKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create wallet service")
	}
	defer walletSvc.Close()

	enableMetrics := config.GetBool(config.EnableMetricsKey)
	wsSvc, err := wsinterface.NewService(wsinterface.ServiceOpts{
		Port:          config.GetInt(config.ListeningPortKey),
		EnableMetrics: enableMetrics,
		WalletSvc:     walletSvc,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create websocket interface")
	}

	if enableMetrics {
		stats.EnableMemoryStatistics(
			ctx, config.GetSeconds(config.StatsIntervalKey), config.GetStatsFile(),
		)
	}

	log.Debug("starting daemon")

	if err := wsSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start websocket interface")
	}
	defer wsSvc.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("exiting")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBTypeInmemory {
		return inmemory.NewRepoManager(), nil
	}
	return dbbadger.NewRepoManager(config.GetDbDir(), log.StandardLogger())
}
