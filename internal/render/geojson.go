package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mr1hm/go-quake-map/internal/depth"
	"github.com/mr1hm/go-quake-map/internal/models"
)

// StyledGeoJSON returns the earthquakes as a FeatureCollection whose
// properties carry the marker style alongside the source fields.
func StyledGeoJSON(quakes []models.Earthquake) *geojson.FeatureCollection {
	features := make([]*geojson.Feature, 0, len(quakes))

	for _, q := range quakes {
		var mag any
		if q.Magnitude != nil {
			mag = *q.Magnitude
		}

		f := &geojson.Feature{
			ID:       q.ID,
			Geometry: geom.NewPointFlat(geom.XYZ, []float64{q.Longitude, q.Latitude, q.Depth}),
			Properties: map[string]any{
				"mag":       mag,
				"place":     q.Place,
				"url":       q.URL,
				"time":      q.Time.UnixMilli(),
				"radius":    depth.RadiusForMagnitude(q.Magnitude),
				"fillColor": string(depth.ColorForDepth(q.Depth)),
			},
		}
		features = append(features, f)
	}

	return &geojson.FeatureCollection{
		Features: features,
	}
}

func WriteGeoJSON(path string, quakes []models.Earthquake) error {
	data, err := json.Marshal(StyledGeoJSON(quakes))
	if err != nil {
		return fmt.Errorf("error encoding geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing geojson: %w", err)
	}
	return nil
}
