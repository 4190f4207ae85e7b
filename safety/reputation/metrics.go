package reputation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var violationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whispermod_reputation_violations_applied",
	Help: "Number of violations applied to user reputations, by type",
}, []string{"type"})

var recoveriesApplied = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whispermod_reputation_recoveries_applied",
	Help: "Number of recovery sweeps that changed a score",
})

var adminOverrides = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whispermod_reputation_admin_overrides",
	Help: "Number of admin score overrides",
})
