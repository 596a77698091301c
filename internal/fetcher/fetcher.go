package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	consts "github.com/headgrade/headgrade/internal/shared/constants"
)

// Response carries everything the scoring core needs from one fetch.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
}

// Fetcher retrieves response headers from a target over HTTP(S).
type Fetcher struct {
	Timeout   time.Duration
	Insecure  bool   // skip TLS verification (lab targets only)
	UserAgent string // empty means the default Go user agent
}

// Fetch performs the outbound request. A HEAD request is tried first (safe,
// minimal side effects) with a GET fallback for servers that reject HEAD.
// The response body is never read beyond discarding it.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Response, error) {
	u := NormalizeTarget(target)

	client := &http.Client{
		Timeout: f.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: f.Insecure},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= consts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", consts.MaxRedirects)
			}
			return nil
		},
	}

	resp, err := f.do(ctx, client, http.MethodHead, u)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		err = fmt.Errorf("HEAD not allowed")
	}
	if err != nil {
		resp, err = f.do(ctx, client, http.MethodGet, u)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, consts.BodyDiscardLimitBytes))

	return &Response{
		URL:        u,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}, nil
}

func (f *Fetcher) do(ctx context.Context, client *http.Client, method, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	return client.Do(req)
}
