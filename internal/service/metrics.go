package service

import "github.com/prometheus/client_golang/prometheus"

const (
	opCreate       = "create"
	opList         = "list"
	opGet          = "get"
	opUpdate       = "update"
	opChangeStatus = "change_status"
	opDelete       = "delete"

	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
	resultTimeout  = "timeout"
	resultError    = "error"
)

var taskOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_operations_total",
		Help: "Task operations by outcome",
	},
	[]string{"operation", "result"},
)

func init() {
	prometheus.MustRegister(taskOps)
}
