package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kspr"

var (
	accountsDiscovered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_discovered_total",
		Help:      "Number of accounts persisted by discovery runs.",
	})
	addressesScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "addresses_scanned_total",
		Help:      "Number of addresses scanned during discovery.",
	})
	transactionsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_submitted_total",
		Help:      "Number of transactions broadcast, by submission mode.",
	}, []string{"mode"})
	operationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Number of failed wallet operations, by error code.",
	}, []string{"code"})
	trackedBalance = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "account_balance_sompi",
		Help:      "Last known mature balance of tracked accounts.",
	}, []string{"account"})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		prometheus.NewGoCollector(),
		accountsDiscovered,
		addressesScanned,
		transactionsSubmitted,
		operationErrors,
		trackedBalance,
	)
}

// Gatherer returns the registry holding all wallet metrics, to be exposed
// by the metrics endpoint.
func Gatherer() prometheus.Gatherer {
	return registry
}

func AccountsDiscovered(count int) {
	accountsDiscovered.Add(float64(count))
}

func AddressesScanned(count int) {
	addressesScanned.Add(float64(count))
}

// TransactionSubmitted increments the counter for the given mode, either
// "standard" or "replacement".
func TransactionSubmitted(mode string) {
	transactionsSubmitted.WithLabelValues(mode).Inc()
}

func OperationFailed(code string) {
	operationErrors.WithLabelValues(code).Inc()
}

func AccountBalance(account string, balance uint64) {
	trackedBalance.WithLabelValues(account).Set(float64(balance))
}
