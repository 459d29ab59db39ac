package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workflowSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restobook_workflow_steps_total",
		Help: "Workflow steps executed, by workflow kind, step and outcome.",
	}, []string{"kind", "step", "outcome"})

	reconcileTouched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restobook_reconcile_documents_total",
		Help: "Documents changed by reconciliation, by pass.",
	}, []string{"pass"})
)
