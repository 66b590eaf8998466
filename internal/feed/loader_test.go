package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-quake-map/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const quakesBody = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "us7000abcd",
      "properties": {"mag": 4.6, "place": "10 km S of Somewhere", "time": 1700000000000, "url": "https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd"},
      "geometry": {"type": "Point", "coordinates": [142.5, 38.1, 35.2]}
    },
    {
      "type": "Feature",
      "id": "nc0001",
      "properties": {"mag": null, "place": "Geysers, CA", "time": 1700000001000},
      "geometry": {"type": "Point", "coordinates": [-122.8, 38.8, -1.5]}
    },
    {
      "type": "Feature",
      "id": "flat",
      "properties": {"mag": 1.2},
      "geometry": {"type": "Point", "coordinates": [10.0, 20.0]}
    }
  ]
}`

const platesBody = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"Name": "AF-AN"},
      "geometry": {"type": "LineString", "coordinates": [[-0.4379, -54.8518], [-0.0388, -54.6772], [0.443, -54.4669]]}
    },
    {
      "type": "Feature",
      "properties": {"Name": "PA-NA"},
      "geometry": {"type": "MultiLineString", "coordinates": [[[179.0, 51.0], [180.0, 51.5]], [[-180.0, 51.5], [-179.0, 52.0]]]}
    },
    {
      "type": "Feature",
      "properties": {"Name": "dot"},
      "geometry": {"type": "Point", "coordinates": [1.0, 2.0]}
    }
  ]
}`

func testConfig() *config.Config {
	return &config.Config{
		Feeds: config.FeedsConfig{
			FetchTimeout: 2 * time.Second,
		},
		Worker: config.WorkerConfig{
			Count:      2,
			BufferSize: 2,
		},
	}
}

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

type collector struct {
	mu      sync.Mutex
	results map[Layer]Result
}

func newCollector() *collector {
	return &collector{results: make(map[Layer]Result)}
}

func (c *collector) handle(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[res.Layer] = res
}

func runLoader(t *testing.T, l *Loader) *collector {
	t.Helper()
	c := newCollector()
	for _, src := range l.Sources() {
		l.Subscribe(src.Layer, c.handle)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	if err := l.Wait(waitCtx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	l.Stop()

	return c
}

func TestLoader_LoadsBothLayers(t *testing.T) {
	quakes := serve(http.StatusOK, quakesBody)
	defer quakes.Close()
	plates := serve(http.StatusOK, platesBody)
	defer plates.Close()

	cfg := testConfig()
	cfg.Feeds.EarthquakeURL = quakes.URL
	cfg.Feeds.PlatesURL = plates.URL
	cfg.Feeds.PlatesEnabled = true

	c := runLoader(t, NewLoader(cfg, quakes.Client()))

	eq, ok := c.results[LayerEarthquakes]
	if !ok || !eq.OK() {
		t.Fatalf("expected earthquake result, got %+v", eq)
	}
	// The 2-D point has no depth and is skipped.
	if len(eq.Earthquakes) != 2 {
		t.Fatalf("expected 2 earthquakes, got %d", len(eq.Earthquakes))
	}

	first := eq.Earthquakes[0]
	if first.ID != "us7000abcd" || first.Depth != 35.2 || first.Latitude != 38.1 || first.Longitude != 142.5 {
		t.Errorf("unexpected first earthquake: %+v", first)
	}
	if first.Magnitude == nil || *first.Magnitude != 4.6 {
		t.Errorf("expected magnitude 4.6, got %v", first.Magnitude)
	}
	if !first.Time.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("unexpected time: %v", first.Time)
	}
	if eq.Earthquakes[1].Magnitude != nil {
		t.Errorf("expected nil magnitude for null mag, got %v", *eq.Earthquakes[1].Magnitude)
	}

	pl, ok := c.results[LayerPlates]
	if !ok || !pl.OK() {
		t.Fatalf("expected plates result, got %+v", pl)
	}
	if len(pl.Plates) != 2 {
		t.Fatalf("expected 2 plate boundaries, got %d", len(pl.Plates))
	}
	if pl.Plates[0].Name != "AF-AN" || len(pl.Plates[0].Lines) != 1 || len(pl.Plates[0].Lines[0]) != 3 {
		t.Errorf("unexpected first boundary: %+v", pl.Plates[0])
	}
	if got := pl.Plates[0].Lines[0][0]; got.Lat != -54.8518 || got.Lng != -0.4379 {
		t.Errorf("expected lat/lng swap from GeoJSON order, got %+v", got)
	}
	if len(pl.Plates[1].Lines) != 2 {
		t.Errorf("expected multilinestring split into 2 lines, got %d", len(pl.Plates[1].Lines))
	}
}

func TestLoader_FailingSourceDoesNotBlockOther(t *testing.T) {
	quakes := serve(http.StatusOK, quakesBody)
	defer quakes.Close()

	release := make(chan struct{})
	plates := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer plates.Close()

	cfg := testConfig()
	l := NewLoaderWithSources(cfg, quakes.Client(), EarthquakeSource(quakes.URL), PlatesSource(plates.URL))

	quakesDone := make(chan Result, 1)
	platesDone := make(chan Result, 1)
	l.Subscribe(LayerEarthquakes, func(r Result) { quakesDone <- r })
	l.Subscribe(LayerPlates, func(r Result) { platesDone <- r })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Earthquakes complete while plates are still in flight.
	select {
	case r := <-quakesDone:
		if !r.OK() {
			t.Errorf("expected earthquakes ok, got %v", r.Err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("earthquake layer blocked on plates")
	}

	close(release)

	select {
	case r := <-platesDone:
		var fe *FetchError
		if !errors.As(r.Err, &fe) {
			t.Fatalf("expected *FetchError, got %v", r.Err)
		}
		if fe.StatusCode != http.StatusServiceUnavailable || fe.Layer != LayerPlates {
			t.Errorf("unexpected fetch error: %+v", fe)
		}
		if !errors.Is(r.Err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", r.Err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("plates never reported")
	}

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	l.Stop()
}

func TestLoader_MalformedBody(t *testing.T) {
	srv := serve(http.StatusOK, `{"type": "Feature"`)
	defer srv.Close()

	c := runLoader(t, NewLoaderWithSources(testConfig(), srv.Client(), EarthquakeSource(srv.URL)))

	res := c.results[LayerEarthquakes]
	if !errors.Is(res.Err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", res.Err)
	}
}

func TestLoader_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.Feeds.FetchTimeout = 50 * time.Millisecond

	c := runLoader(t, NewLoaderWithSources(cfg, srv.Client(), EarthquakeSource(srv.URL)))

	res := c.results[LayerEarthquakes]
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", res.Err)
	}
}

func TestLoader_PlatesDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Feeds.EarthquakeURL = "http://example.invalid"
	cfg.Feeds.PlatesEnabled = false

	l := NewLoader(cfg, nil)
	if n := len(l.Sources()); n != 1 {
		t.Errorf("expected 1 source, got %d", n)
	}
}

func TestLoader_NoSources(t *testing.T) {
	l := NewLoaderWithSources(testConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("expected immediate return, got %v", err)
	}
	l.Stop()
}

func TestLoader_CancelDuringFetchUnblocks(t *testing.T) {
	started := make(chan struct{}, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-r.Context().Done()
	}))
	defer srv.Close()

	// One worker and no buffer: the second source can only be queued once
	// the first fetch finishes.
	cfg := testConfig()
	cfg.Worker = config.WorkerConfig{Count: 1, BufferSize: 0}
	cfg.Feeds.FetchTimeout = time.Minute

	l := NewLoaderWithSources(cfg, srv.Client(), EarthquakeSource(srv.URL), PlatesSource(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErr := make(chan error, 1)
	go func() {
		startErr <- l.Start(ctx)
	}()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("first fetch never reached the server")
	}
	cancel()

	select {
	case <-startErr:
	case <-time.After(3 * time.Second):
		t.Fatal("Start blocked after cancel")
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer waitCancel()
	waitDone := make(chan error, 1)
	go func() {
		waitDone <- l.Wait(ctx)
	}()
	select {
	case <-waitDone:
	case <-waitCtx.Done():
		t.Fatal("Wait blocked after cancel")
	}

	stopped := make(chan struct{})
	go func() {
		l.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop blocked after cancel")
	}
}
