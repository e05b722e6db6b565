package gateway

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"rpc-node-gateway/internal/endpoint"
	"rpc-node-gateway/internal/metrics"
)

// probeReason maps a probe error onto a metrics label.
func probeReason(err error) string {
	switch {
	case errors.Is(err, endpoint.ErrTransport):
		return "transport"
	case errors.Is(err, endpoint.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, endpoint.ErrMalformed):
		return "malformed"
	case errors.Is(err, endpoint.ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, endpoint.ErrParse):
		return "parse"
	default:
		return "unknown"
	}
}

// ProbeEndpoint performs one health probe: it times a block-number query,
// records the outcome on the endpoint, and feeds the latency sample into
// the moving average. All mutation of one endpoint's health state happens
// here, serialized by the probe loop.
func (gw *Gateway) ProbeEndpoint(ctx context.Context, n *node) {
	endpointURL := n.ep.URL()

	now := time.Now()
	if n.rateLimited(now) {
		metrics.RpcEndpointIsActive.WithLabelValues(endpointURL).Set(0)
		return
	}
	if n.limiter != nil && !n.limiter.Allow() {
		log.Printf("Skipping %s this round (client-side rate limit)", endpointURL)
		metrics.RpcRateLimitsTotal.WithLabelValues(endpointURL, "probe").Inc()
		return
	}

	start := time.Now()
	blockNumber, err := n.ep.BlockNumber(ctx)
	latency := time.Since(start)
	metrics.RpcProbeDuration.WithLabelValues(endpointURL).Observe(latency.Seconds())

	if err != nil {
		log.Printf("Error probing %s: %v", endpointURL, err)
		n.ep.RecordFailure()

		n.mu.Lock()
		n.reachable = false
		n.mu.Unlock()

		status := n.ep.Status()
		metrics.RpcProbeErrorsTotal.WithLabelValues(endpointURL, probeReason(err)).Inc()
		metrics.RpcEndpointConsecutiveFails.WithLabelValues(endpointURL).Set(float64(n.ep.Consecutive()))
		if status.Erroring {
			metrics.RpcEndpointErroring.WithLabelValues(endpointURL).Set(1)
		}
		metrics.RpcEndpointIsActive.WithLabelValues(endpointURL).Set(0)
		return
	}

	n.ep.RecordSuccess()
	n.ep.UpdateLatency(latency.Seconds(), gw.config.LatencyWindow)

	n.mu.Lock()
	n.blockNumber = blockNumber
	n.reachable = true
	n.mu.Unlock()

	status := n.ep.Status()
	metrics.RpcEndpointBlockNumber.WithLabelValues(endpointURL).Set(float64(blockNumber))
	metrics.RpcEndpointLatency.WithLabelValues(endpointURL).Set(status.Latency)
	metrics.RpcEndpointConsecutiveFails.WithLabelValues(endpointURL).Set(0)
	metrics.RpcEndpointErroring.WithLabelValues(endpointURL).Set(0)
	metrics.RpcEndpointIsActive.WithLabelValues(endpointURL).Set(1)
}

// SelectBestEndpoint probes every endpoint concurrently, then picks the
// lowest moving-average latency among those that are reachable, not
// erroring, not rate-limited, and within block tolerance of the highest
// observed block.
func (gw *Gateway) SelectBestEndpoint(ctx context.Context) {
	log.Println("Checking for the best RPC endpoint...")
	var wg sync.WaitGroup

	for _, n := range gw.nodes {
		wg.Add(1)
		go func(n *node) {
			defer wg.Done()
			gw.ProbeEndpoint(ctx, n)
		}(n)
	}
	wg.Wait()

	now := time.Now()
	var candidates []*node
	var highestBlock uint64

	for _, n := range gw.nodes {
		if n.ep.Status().Erroring || n.rateLimited(now) {
			continue
		}
		n.mu.RLock()
		reachable, block := n.reachable, n.blockNumber
		n.mu.RUnlock()
		if !reachable {
			continue
		}
		candidates = append(candidates, n)
		if block > highestBlock {
			highestBlock = block
		}
	}

	if len(candidates) == 0 {
		log.Println("No reachable, non-erroring endpoints found. Keeping current best.")
		for _, n := range gw.nodes {
			metrics.RpcEndpointIsCurrentBest.WithLabelValues(n.ep.URL()).Set(metrics.RpcEndpointCurrentBestNotActive)
		}
		return
	}

	var blockThreshold uint64
	if tolerance := uint64(gw.config.BlockTolerance); highestBlock > tolerance {
		blockThreshold = highestBlock - tolerance
	}
	log.Printf("Highest block found: %d. Threshold: >= %d", highestBlock, blockThreshold)

	var finalCandidates []*node
	for _, n := range candidates {
		n.mu.RLock()
		block := n.blockNumber
		n.mu.RUnlock()
		if block >= blockThreshold {
			finalCandidates = append(finalCandidates, n)
		}
	}

	if len(finalCandidates) == 0 {
		log.Println("No endpoints within block tolerance. Considering all reachable.")
		finalCandidates = candidates
	}

	sort.Slice(finalCandidates, func(i, j int) bool {
		return finalCandidates[i].ep.Status().Latency < finalCandidates[j].ep.Status().Latency
	})

	best := finalCandidates[0]
	bestURL := best.ep.URL()
	currentBestURL := gw.GetBestEndpoint().URL()

	if currentBestURL != bestURL {
		status := best.ep.Status()
		log.Printf("New best endpoint: %s (avg latency: %.4fs)", bestURL, status.Latency)
		gw.setBestNode(best)
		metrics.RpcEndpointIsCurrentBest.WithLabelValues(currentBestURL).Set(metrics.RpcEndpointCurrentBestNotActive)
	} else if gw.config.Verbose {
		log.Printf("Best endpoint remains: %s", bestURL)
	}
	metrics.RpcEndpointIsCurrentBest.WithLabelValues(bestURL).Set(metrics.RpcEndpointCurrentBestActive)

	for _, n := range gw.nodes {
		if n.ep.URL() != bestURL {
			metrics.RpcEndpointIsCurrentBest.WithLabelValues(n.ep.URL()).Set(metrics.RpcEndpointCurrentBestNotActive)
		}
	}
}

// StartChecker runs the probe/selection loop until ctx is cancelled.
func (gw *Gateway) StartChecker(ctx context.Context) {
	gw.SelectBestEndpoint(ctx)
	ticker := time.NewTicker(gw.config.CheckInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gw.SelectBestEndpoint(ctx)
			case <-ctx.Done():
				log.Println("Checker goroutine stopping.")
				return
			}
		}
	}()
	log.Printf("Periodic endpoint checker started (Interval: %v).", gw.config.CheckInterval)
}
