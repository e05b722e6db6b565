package gateway

import (
	"context"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"rpc-node-gateway/internal/metrics"
	"rpc-node-gateway/internal/utils"
)

// ProxyHandler creates the reverse proxy handler. Incoming JSON-RPC traffic
// is forwarded to the current best endpoint; a 429 from upstream flags the
// endpoint rate-limited for the configured backoff and triggers reselection.
func (gw *Gateway) ProxyHandler() http.Handler {

	director := func(req *http.Request) {
		best := gw.GetBestEndpoint()
		targetURL, err := url.Parse(best.URL())
		if err != nil {
			log.Printf("Bad target URL %s: %v", best.URL(), err)
			return
		}

		req.URL.Scheme = targetURL.Scheme
		req.URL.Host = targetURL.Host
		req.URL.Path = targetURL.Path
		req.Host = targetURL.Host

		if gw.config.Verbose {
			log.Printf("  -> Forwarding %s %s to %s", req.Method, req.URL.Path, targetURL.String())
		}
	}

	modifyResponse := func(resp *http.Response) error {
		if resp.StatusCode == http.StatusTooManyRequests {
			best := gw.getBestNode()
			endpointURL := best.ep.URL()
			log.Printf("Rate limit detected during forward to %s", endpointURL)

			best.flagRateLimited(time.Now().Add(gw.config.RateLimitBackoff))
			metrics.RpcRateLimitsTotal.WithLabelValues(endpointURL, "proxy").Inc()

			go gw.SelectBestEndpoint(context.Background())
		}
		return nil
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Proxy error: %v", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}

	proxyHandler := &httputil.ReverseProxy{
		Director:       director,
		ModifyResponse: modifyResponse,
		ErrorHandler:   errorHandler,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ip := utils.GetRequestIP(r)
		rec := utils.NewStatusRecorder(w)

		// Best guess; selection may move mid-flight.
		currentEndpoint := gw.GetBestEndpoint().URL()

		log.Printf("[%s] --> %s %s (to %s)", ip, r.Method, r.URL.String(), currentEndpoint)

		proxyHandler.ServeHTTP(rec, r)

		duration := time.Since(startTime)
		statusCodeStr := strconv.Itoa(rec.StatusCode)

		metrics.HttpRequestDuration.WithLabelValues(r.Method, statusCodeStr, currentEndpoint).Observe(duration.Seconds())
		metrics.HttpRequestTotal.WithLabelValues(r.Method, statusCodeStr, currentEndpoint).Inc()

		log.Printf("[%s] <-- %s %s - Status %d (%v)", ip, r.Method, r.URL.String(), rec.StatusCode, duration)
	})
}
