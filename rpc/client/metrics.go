package client

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"time"
)

var (
	rpcDuration = metrics.NewHistogram(`erlmap_rpc_duration_seconds`)
)

func lookupsTotal(kind OutcomeKind) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`erlmap_lookups_total{outcome=%q}`, kind))
}

func connectFailures(node string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`erlmap_connect_failures_total{node=%q}`, node))
}

func observeRPC(start time.Time) {
	rpcDuration.UpdateDuration(start)
}
