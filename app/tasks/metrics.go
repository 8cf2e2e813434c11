package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trendcomb_tasks_total",
	Help: "Background task executions by type and outcome.",
}, []string{"type", "outcome"})
