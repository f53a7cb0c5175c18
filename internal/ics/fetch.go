package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultFetchWorkers = 20
)

// Fetcher aggregates per-course calendar feeds from a single base URL.
// Fetches fan out concurrently up to a worker cap; any fetch that times
// out, errors or returns a non-2xx status contributes nothing and never
// aborts the batch.
type Fetcher struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	workers int
	log     *zap.SugaredLogger
}

// FetcherOptions tune a Fetcher. Zero values pick the defaults
// (10s per-fetch timeout, 20 workers, http.DefaultClient).
type FetcherOptions struct {
	Client  *http.Client
	Timeout time.Duration
	Workers int
}

// NewFetcher creates a Fetcher for feeds at <baseURL>/<courseID>.
func NewFetcher(baseURL string, opts FetcherOptions, log *zap.SugaredLogger) *Fetcher {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultFetchWorkers
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fetcher{
		baseURL: baseURL,
		client:  opts.Client,
		timeout: opts.Timeout,
		workers: opts.Workers,
		log:     log,
	}
}

// FetchAll fetches every course feed and returns the successful bodies
// keyed by course ID. Failed course IDs are simply absent; an all-failed
// batch yields an empty map.
func (f *Fetcher) FetchAll(ctx context.Context, courseIDs []string) map[string][]byte {
	var (
		mu   sync.Mutex
		docs = make(map[string][]byte, len(courseIDs))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for _, id := range courseIDs {
		id := id
		g.Go(func() error {
			body, err := f.fetchOne(ctx, id)
			if err != nil {
				f.log.Debugw("feed fetch failed", "course", id, "err", err)
				return nil // failure isolation: never abort the batch
			}
			mu.Lock()
			docs[id] = body
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	f.log.Infow("feed aggregation done",
		"requested", len(courseIDs), "ok", len(docs), "failed", len(courseIDs)-len(docs))
	return docs
}

func (f *Fetcher) fetchOne(ctx context.Context, courseID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/"+courseID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
