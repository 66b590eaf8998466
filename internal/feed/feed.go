package feed

import (
	"errors"
	"fmt"
	"io"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type Layer string

const (
	LayerEarthquakes Layer = "earthquakes"
	LayerPlates      Layer = "plates"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrDecode           = errors.New("malformed feed")
)

// Result is what one fetch task publishes when it completes. Exactly one of
// the collections is populated for a successful fetch; Err is a *FetchError
// otherwise.
type Result struct {
	Layer       Layer
	Earthquakes []models.Earthquake
	Plates      []models.PlateBoundary
	Err         error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type FetchError struct {
	Layer      Layer
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (%s): status %d: %v", e.Layer, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.Layer, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type decodeFunc func(r io.Reader) (Result, error)

// Source is one remote GeoJSON document backing one map layer.
type Source struct {
	Layer  Layer
	URL    string
	decode decodeFunc
}

func EarthquakeSource(url string) Source {
	return Source{Layer: LayerEarthquakes, URL: url, decode: decodeEarthquakes}
}

func PlatesSource(url string) Source {
	return Source{Layer: LayerPlates, URL: url, decode: decodePlates}
}
