package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler returns the mux serving the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

var (
	// HttpRequestDuration measures incoming HTTP request duration.
	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpc_gateway_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status_code", "endpoint"})

	// HttpRequestTotal counts total incoming HTTP requests.
	HttpRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_gateway_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "status_code", "endpoint"})

	// RpcProbeDuration measures RPC health probe duration.
	RpcProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpc_gateway_rpc_probe_duration_seconds",
		Help:    "Duration of RPC health probes.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"endpoint"})

	// RpcProbeErrorsTotal counts failed RPC health probes.
	RpcProbeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_gateway_rpc_probe_errors_total",
		Help: "Total number of failed RPC health probes.",
	}, []string{"endpoint", "reason"})

	// RpcRateLimitsTotal counts detected rate limits.
	RpcRateLimitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_gateway_rpc_rate_limits_total",
		Help: "Total number of rate limits detected.",
	}, []string{"endpoint", "source"}) // Source: 'probe' or 'proxy'

	// RpcEndpointBlockNumber shows the last observed block number per endpoint.
	RpcEndpointBlockNumber = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_gateway_rpc_endpoint_block_number",
		Help: "Last observed block number for each RPC endpoint.",
	}, []string{"endpoint"})

	// RpcEndpointLatency shows the moving-average latency per endpoint.
	RpcEndpointLatency = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_gateway_rpc_endpoint_latency_seconds",
		Help: "Moving-average latency for each RPC endpoint.",
	}, []string{"endpoint"})

	// RpcEndpointErroring shows whether an endpoint has tripped its
	// consecutive-failure threshold (1) or not (0).
	RpcEndpointErroring = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_gateway_rpc_endpoint_erroring",
		Help: "Whether an endpoint has tripped its failure threshold (1) or not (0).",
	}, []string{"endpoint"})

	// RpcEndpointConsecutiveFails shows the running consecutive-failure count.
	RpcEndpointConsecutiveFails = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_gateway_rpc_endpoint_consecutive_fails",
		Help: "Consecutive failed probes since the last success.",
	}, []string{"endpoint"})

	// RpcEndpointIsActive shows if an endpoint is considered active (1) or not (0).
	RpcEndpointIsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_gateway_rpc_endpoint_is_active",
		Help: "Whether an endpoint is currently considered active (1) or inactive (0).",
	}, []string{"endpoint"})

	// RpcEndpointIsCurrentBest shows if an endpoint is the current best (1) or not (0).
	RpcEndpointIsCurrentBest = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_gateway_rpc_endpoint_is_current_best",
		Help: "Whether an endpoint is the current best choice (1) or not (0).",
	}, []string{"endpoint"})
)

var RpcEndpointCurrentBestActive float64 = 1
var RpcEndpointCurrentBestNotActive float64 = 0
