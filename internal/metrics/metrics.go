// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PointsCredited counts points added to user balances, by source.
	PointsCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskcash_points_credited_total",
		Help: "Points credited to user balances.",
	}, []string{"source"})

	// PointsDebited counts points removed from user balances, by reason.
	PointsDebited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskcash_points_debited_total",
		Help: "Points debited from user balances.",
	}, []string{"reason"})

	// TaskCompletions counts credited task completions.
	TaskCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskcash_task_completions_total",
		Help: "Task completions credited by the ledger.",
	})

	// Spins counts prize-wheel spins.
	Spins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskcash_wheel_spins_total",
		Help: "Prize wheel spins performed.",
	})

	// Settlements counts settlement outcomes, by kind and decision.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskcash_settlements_total",
		Help: "Withdrawal and upgrade settlement decisions.",
	}, []string{"kind", "decision"})
)
