package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whispermod_reports_submitted",
	Help: "Number of new reports created, by category and priority",
}, []string{"category", "priority"})

var reportsMerged = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whispermod_reports_merged",
	Help: "Number of repeat reports merged into an existing report",
})

var escalationsFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whispermod_report_escalations_fired",
	Help: "Number of auto-escalation tiers fired, by tier",
}, []string{"tier"})

var reportsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whispermod_reports_closed",
	Help: "Number of reports closed, by terminal status",
}, []string{"status"})
