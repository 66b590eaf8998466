package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGeoJSON(t *testing.T) {
	quakes := testQuakes()
	quakes[0].Time = time.UnixMilli(1700000000000)

	path := filepath.Join(t.TempDir(), "quakes.geojson")
	require.NoError(t, WriteGeoJSON(path, quakes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)

	first := fc.Features[0]
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "Point", first.Geometry.Type)
	assert.Equal(t, []float64{-117.5, 35.7, 8}, first.Geometry.Coordinates)
	assert.Equal(t, 2.5, first.Properties["mag"])
	assert.Equal(t, 10.0, first.Properties["radius"])
	assert.Equal(t, "#ADFF2F", first.Properties["fillColor"])
	assert.Equal(t, float64(1700000000000), first.Properties["time"])

	second := fc.Features[1]
	assert.Nil(t, second.Properties["mag"])
	assert.Equal(t, 1.0, second.Properties["radius"])
	assert.Equal(t, "#00FF00", second.Properties["fillColor"])
}
