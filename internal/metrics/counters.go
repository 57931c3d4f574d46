package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// QueueOperations counts queue lifecycle operations by operation name and outcome.
var QueueOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_queue_operations_total",
		Help: "Queue lifecycle operations executed, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ServiceOperations counts service control operations by unit, operation and outcome.
var ServiceOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_service_operations_total",
		Help: "Service control operations executed, by unit, operation and outcome.",
	},
	[]string{"unit", "operation", "outcome"},
)

// VirtualDomainOperations counts transport virtual domain map updates by operation and outcome.
var VirtualDomainOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_virtual_domain_operations_total",
		Help: "Virtual domain map updates executed, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// DirectoryOperations counts directory provisioning operations by operation and outcome.
var DirectoryOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_directory_operations_total",
		Help: "Directory provisioning operations executed, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// Outcome converts an operation result into a metric label value.
func Outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
