package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mr1hm/go-quake-map/internal/models"
)

var (
	ErrNotPoint     = errors.New("geometry is not a point")
	ErrMissingDepth = errors.New("point has no depth coordinate")
)

// decodeEarthquakes reads a USGS summary feed. Features without a 3-D point
// geometry are skipped.
func decodeEarthquakes(r io.Reader) (Result, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return Result{}, fmt.Errorf("error decoding earthquakes: %w", err)
	}

	quakes := make([]models.Earthquake, 0, len(fc.Features))
	for _, f := range fc.Features {
		q, err := toEarthquake(f)
		if err != nil {
			slog.Warn("skipping earthquake feature", "id", f.ID, "error", err)
			continue
		}
		quakes = append(quakes, q)
	}

	return Result{Earthquakes: quakes}, nil
}

func toEarthquake(f *geojson.Feature) (models.Earthquake, error) {
	p, ok := f.Geometry.(*geom.Point)
	if !ok || p.Empty() {
		return models.Earthquake{}, ErrNotPoint
	}
	if p.Layout().ZIndex() == -1 {
		return models.Earthquake{}, ErrMissingDepth
	}

	q := models.Earthquake{
		ID:        f.ID,
		Place:     stringProp(f.Properties, "place"),
		URL:       stringProp(f.Properties, "url"),
		Longitude: p.X(),
		Latitude:  p.Y(),
		Depth:     p.Z(),
	}
	if mag, ok := numberProp(f.Properties, "mag"); ok {
		q.Magnitude = &mag
	}
	if ms, ok := numberProp(f.Properties, "time"); ok {
		q.Time = time.UnixMilli(int64(ms)).UTC()
	}

	return q, nil
}

func stringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

// numberProp reports false for missing and null values.
func numberProp(props map[string]any, key string) (float64, bool) {
	f, ok := props[key].(float64)
	return f, ok
}
