package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/headgrade/headgrade/internal/scanner"
)

// Runner scans multiple targets with bounded concurrency and a global rate
// limit. Every target produces a ScanResult: fetch failures become the
// degenerate score-0 result rather than an error.
type Runner struct {
	Concurrency int           // maximum in-flight fetches
	RateLimit   int           // requests per second, global
	Timeout     time.Duration // per-target fetch timeout
	Fetcher     *Fetcher
	Options     scanner.Options
}

// Run scans all targets and returns results in input order. Evaluations are
// pure, so parallel runs need no coordination beyond the result slice.
func (r *Runner) Run(ctx context.Context, targets []string) []scanner.ScanResult {
	limit, burst := rate.Inf, 1
	if r.RateLimit > 0 {
		limit, burst = rate.Limit(r.RateLimit), r.RateLimit
	}
	limiter := rate.NewLimiter(limit, burst)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	results := make([]scanner.ScanResult, len(targets))
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				results[idx] = scanner.ErrorResult(t, err)
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, r.Timeout)
			defer cancel()

			results[idx] = r.scanOne(fetchCtx, t)
		}(i, target)
	}

	wg.Wait()
	return results
}

func (r *Runner) scanOne(ctx context.Context, target string) scanner.ScanResult {
	resp, err := r.Fetcher.Fetch(ctx, target)
	if err != nil {
		return scanner.ErrorResult(target, err)
	}
	result := scanner.Evaluate(resp.URL, resp.StatusCode, scanner.NewHeaders(resp.Headers), r.Options)
	return result
}
