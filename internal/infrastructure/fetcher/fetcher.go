// Package fetcher issues the outbound HTTP requests for listing and article
// pages. Failures are structured so the pipeline can log and skip per source.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"NewsRadar/internal/config"
	"NewsRadar/internal/domain"
	"NewsRadar/internal/ports"
)

// maxBodyBytes caps article pages; anything larger is not a news article.
const maxBodyBytes = 10 << 20

// Kind classifies a fetch failure.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindConnect Kind = "connect"
	KindStatus  Kind = "status"
	KindEmpty   Kind = "empty"
)

// Error is a structured fetch failure with enough context to diagnose a
// source without stopping the run.
type Error struct {
	Kind   Kind
	Source string
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s (%s): status %d", e.URL, e.Source, e.Status)
	}
	return fmt.Sprintf("fetch %s (%s): %s: %v", e.URL, e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher downloads pages with a bounded timeout and a per-host rate limit,
// so concurrent workers stay polite to each source site.
type Fetcher struct {
	client    *http.Client
	userAgent string
	perHost   rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var _ ports.Fetcher = (*Fetcher)(nil)

// New builds a fetcher from configuration; client may be nil.
func New(cfg config.FetchConfig, client *http.Client) *Fetcher {
	if client == nil {
		transport := http.DefaultTransport
		if cfg.ProxyURL != "" {
			if proxy, err := url.Parse(cfg.ProxyURL); err == nil {
				transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
			}
		}
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout, Transport: transport}
	}

	perHost := rate.Limit(cfg.PerHostRPS)
	if perHost <= 0 {
		perHost = rate.Inf
	}

	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		perHost:   perHost,
		limiters:  map[string]*rate.Limiter{},
	}
}

// Fetch downloads one page. Every failure path returns a *Error so callers
// can attribute it to the source.
func (f *Fetcher) Fetch(ctx context.Context, source, pageURL string) (*domain.RawFetchResult, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &Error{Kind: KindConnect, Source: source, URL: pageURL, Err: err}
	}

	if err := f.limiter(parsed.Host).Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTimeout, Source: source, URL: pageURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnect, Source: source, URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "kk-KZ,kk;q=0.9,ru-RU;q=0.8,ru;q=0.7,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		kind := KindConnect
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			kind = KindTimeout
		}
		return nil, &Error{Kind: kind, Source: source, URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindStatus, Source: source, URL: pageURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindConnect, Source: source, URL: pageURL, Err: err}
	}
	if len(body) == 0 {
		return nil, &Error{Kind: KindEmpty, Source: source, URL: pageURL, Err: errors.New("empty body")}
	}

	return &domain.RawFetchResult{
		Source:    source,
		URL:       pageURL,
		Status:    resp.StatusCode,
		Body:      body,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(f.perHost, 1)
	f.limiters[host] = l
	return l
}
