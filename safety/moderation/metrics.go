package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var textsScored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whispermod_texts_scored",
	Help: "Number of texts run through the local moderation scorer",
})

var textsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whispermod_texts_rejected",
	Help: "Number of texts with a reject recommendation",
})

var violationsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whispermod_violations_detected",
	Help: "Number of violations detected, by type and severity",
}, []string{"type", "severity"})
