package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the hooks module.
type Metrics struct {
	SwapsObserved      *prometheus.CounterVec
	FeeAdjustments     *prometheus.CounterVec
	CurrentFee         *prometheus.GaugeVec
	RewardsMinted      *prometheus.CounterVec
	PenaltiesCollected *prometheus.CounterVec
	Rebalances         *prometheus.CounterVec
	LockedShares       *prometheus.GaugeVec
}

var (
	hookMetricsOnce sync.Once
	hookMetrics     *Metrics
)

// NewMetrics creates and registers hook metrics (singleton pattern).
func NewMetrics() *Metrics {
	hookMetricsOnce.Do(func() {
		hookMetrics = &Metrics{
			SwapsObserved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "swaps_observed_total",
					Help:      "Swaps observed by hook policies",
				},
				[]string{"pool_id", "policy"},
			),
			FeeAdjustments: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "fee_adjustments_total",
					Help:      "Dynamic fee changes applied",
				},
				[]string{"pool_id", "direction"},
			),
			CurrentFee: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "current_fee",
					Help:      "Live swap fee in hundredths of a basis point",
				},
				[]string{"pool_id"},
			),
			RewardsMinted: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "rewards_minted_total",
					Help:      "Reward tokens minted to lockers",
				},
				[]string{"pool_id"},
			),
			PenaltiesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "penalties_collected_total",
					Help:      "Early withdrawal penalties donated back to pools",
				},
				[]string{"pool_id", "token"},
			),
			Rebalances: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "rebalances_total",
					Help:      "Range rebalances executed",
				},
				[]string{"pool_id"},
			),
			LockedShares: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "crestdex",
					Subsystem: "hooks",
					Name:      "locked_shares",
					Help:      "Outstanding liquidity shares per locking pool",
				},
				[]string{"pool_id"},
			),
		}
	})
	return hookMetrics
}
