package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/go-quake-map/internal/config"
	"github.com/mr1hm/go-quake-map/internal/worker"
)

// Handler receives a source's Result once its fetch completes. Handlers run
// on worker goroutines, so handlers for different layers may run
// concurrently.
type Handler func(Result)

// Loader fetches each configured source as an independent job. Sources do
// not wait on each other and one failing never affects another.
type Loader struct {
	client   *http.Client
	timeout  time.Duration
	workers  config.WorkerConfig
	sources  []Source
	pool     *worker.Pool[Source]
	mu       sync.RWMutex
	handlers map[Layer][]Handler
	pending  atomic.Int64
	done     chan struct{}
}

func NewLoader(cfg *config.Config, client *http.Client) *Loader {
	sources := []Source{EarthquakeSource(cfg.Feeds.EarthquakeURL)}
	if cfg.Feeds.PlatesEnabled {
		sources = append(sources, PlatesSource(cfg.Feeds.PlatesURL))
	}
	return NewLoaderWithSources(cfg, client, sources...)
}

func NewLoaderWithSources(cfg *config.Config, client *http.Client, sources ...Source) *Loader {
	if client == nil {
		client = &http.Client{}
	}
	return &Loader{
		client:   client,
		timeout:  cfg.Feeds.FetchTimeout,
		workers:  cfg.Worker,
		sources:  sources,
		handlers: make(map[Layer][]Handler),
		done:     make(chan struct{}),
	}
}

func (l *Loader) Sources() []Source {
	return append([]Source(nil), l.sources...)
}

// Subscribe must be called before Start.
func (l *Loader) Subscribe(layer Layer, h Handler) {
	l.mu.Lock()
	l.handlers[layer] = append(l.handlers[layer], h)
	l.mu.Unlock()
}

// Start queues every source. It returns ctx's error if ctx is done before
// all sources are queued; sources that were never queued publish nothing.
func (l *Loader) Start(ctx context.Context) error {
	l.pool = worker.NewPool("feed", l.workers.Count, l.workers.BufferSize, l.process)
	l.pool.Start(ctx)

	l.pending.Store(int64(len(l.sources)))
	if len(l.sources) == 0 {
		close(l.done)
		return nil
	}
	for _, src := range l.sources {
		slog.Info("fetching feed", "layer", src.Layer, "url", src.URL)
		if err := l.pool.Submit(ctx, src); err != nil {
			return fmt.Errorf("error queueing %s feed: %w", src.Layer, err)
		}
	}
	return nil
}

// Wait blocks until every source has published a Result or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) Stop() {
	if l.pool != nil {
		l.pool.Stop()
	}
	slog.Debug("feed loader stopped")
}

func (l *Loader) process(ctx context.Context, src Source) error {
	defer func() {
		if l.pending.Add(-1) == 0 {
			close(l.done)
		}
	}()

	start := time.Now()
	res := l.fetch(ctx, src)
	if res.OK() {
		slog.Info("feed loaded",
			"layer", src.Layer,
			"earthquakes", len(res.Earthquakes),
			"plates", len(res.Plates),
			"elapsed", time.Since(start),
		)
	}

	l.publish(res)
	return res.Err
}

func (l *Loader) publish(res Result) {
	l.mu.RLock()
	handlers := l.handlers[res.Layer]
	l.mu.RUnlock()

	for _, h := range handlers {
		h(res)
	}
}

func (l *Loader) fetch(ctx context.Context, src Source) Result {
	fail := func(status int, err error) Result {
		return Result{
			Layer: src.Layer,
			Err:   &FetchError{Layer: src.Layer, URL: src.URL, StatusCode: status, Err: err},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return fail(0, fmt.Errorf("error creating request: %w", err))
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("error while doing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status))
	}

	res, err := src.decode(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("%w: %w", ErrDecode, err))
	}
	res.Layer = src.Layer

	return res
}
