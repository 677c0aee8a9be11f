package txn

import (
	txkv "github.com/arwendowers/data-processing"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	promBegun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "txkv_transactions_begun_total",
		Help: "total number of transactions started",
	})

	promCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "txkv_transactions_committed_total",
		Help: "total number of transactions committed",
	})

	promRolledBack = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "txkv_transactions_rolled_back_total",
		Help: "total number of transactions rolled back",
	})

	promRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "txkv_operations_rejected_total",
		Help: "total number of operations rejected because of the transaction state",
	}, []string{"operation"})

	promKeys = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "txkv_committed_keys",
		Help: "number of keys in the committed state after the last commit",
	})
)

func init() {
	txkv.PromCollectors = append(txkv.PromCollectors, promBegun, promCommitted,
		promRolledBack, promRejected, promKeys)
}
