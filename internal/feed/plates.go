package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mr1hm/go-quake-map/internal/models"
)

func decodePlates(r io.Reader) (Result, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return Result{}, fmt.Errorf("error decoding plates: %w", err)
	}

	boundaries := make([]models.PlateBoundary, 0, len(fc.Features))
	for _, f := range fc.Features {
		lines := toLines(f.Geometry)
		if len(lines) == 0 {
			slog.Debug("skipping plate feature", "geometry", fmt.Sprintf("%T", f.Geometry))
			continue
		}
		boundaries = append(boundaries, models.PlateBoundary{
			Name:  stringProp(f.Properties, "Name"),
			Lines: lines,
		})
	}

	return Result{Plates: boundaries}, nil
}

func toLines(g geom.T) [][]models.LatLng {
	switch g := g.(type) {
	case *geom.LineString:
		if line := toLatLngs(g.Coords()); len(line) > 1 {
			return [][]models.LatLng{line}
		}
	case *geom.MultiLineString:
		lines := make([][]models.LatLng, 0, g.NumLineStrings())
		for i := 0; i < g.NumLineStrings(); i++ {
			if line := toLatLngs(g.LineString(i).Coords()); len(line) > 1 {
				lines = append(lines, line)
			}
		}
		return lines
	}
	return nil
}

func toLatLngs(coords []geom.Coord) []models.LatLng {
	line := make([]models.LatLng, 0, len(coords))
	for _, c := range coords {
		line = append(line, models.LatLng{Lat: c.Y(), Lng: c.X()})
	}
	return line
}
