// File: internal/infra/metrics/activations.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	activationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_activations_total",
			Help: "Activation attempts by result.",
		},
		[]string{"result"},
	)

	activationStars = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promo_activation_stars_total",
			Help: "Sum of the stars field reported by successful activations.",
		},
	)

	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promo_batch_duration_seconds",
			Help:    "Wall time of one mass activation batch.",
			Buckets: prometheus.DefBuckets,
		},
	)

	batchAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promo_batch_accounts",
			Help: "Account count of the most recent batch.",
		},
	)

	balancesRefreshed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_balances_refreshed_total",
			Help: "Accounts whose cached balance was overwritten by a refresh.",
		},
	)

	ledgerWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_write_errors_total",
			Help: "Failed activation ledger writes (batch continues).",
		},
	)
)

func init() {
	register(activationsTotal, activationStars, batchDuration, batchAccounts, balancesRefreshed, ledgerWriteErrors)
}

func IncActivation(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	activationsTotal.WithLabelValues(result).Inc()
}

func AddActivationStars(n int64) { activationStars.Add(float64(n)) }

func ObserveBatch(seconds float64, accounts int) {
	batchDuration.Observe(seconds)
	batchAccounts.Set(float64(accounts))
}

func AddBalancesRefreshed(n int) { balancesRefreshed.Add(float64(n)) }

func IncLedgerWriteError() { ledgerWriteErrors.Inc() }
