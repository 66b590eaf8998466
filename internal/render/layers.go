package render

import (
	"fmt"
	"html"
	"strconv"

	"github.com/mr1hm/go-quake-map/internal/depth"
	"github.com/mr1hm/go-quake-map/internal/models"
)

const (
	EarthquakesOverlay = "Earthquakes"
	PlatesOverlay      = "Tectonic Plates"

	markerStroke      = "#000"
	markerWeight      = 1
	markerOpacity     = 1
	markerFillOpacity = 0.8

	plateColor  = "orange"
	plateWeight = 2

	legendSwatchAlpha = 0.8
)

type CircleMarker struct {
	Lat         float64         `json:"lat"`
	Lng         float64         `json:"lng"`
	Radius      float64         `json:"radius"`
	FillColor   depth.ColorCode `json:"fillColor"`
	Color       string          `json:"color"`
	Weight      float64         `json:"weight"`
	Opacity     float64         `json:"opacity"`
	FillOpacity float64         `json:"fillOpacity"`
	Popup       string          `json:"popup"`
}

type Polyline struct {
	Name   string            `json:"name"`
	Points [][]models.LatLng `json:"points"`
	Color  string            `json:"color"`
	Weight float64           `json:"weight"`
}

type LegendItem struct {
	Label  string          `json:"label"`
	Color  depth.ColorCode `json:"color"`
	Swatch string          `json:"swatch"`
}

type Legend struct {
	Title    string       `json:"title"`
	Position string       `json:"position"`
	Items    []LegendItem `json:"items"`
}

func NewMarker(q models.Earthquake) CircleMarker {
	return CircleMarker{
		Lat:         q.Latitude,
		Lng:         q.Longitude,
		Radius:      depth.RadiusForMagnitude(q.Magnitude),
		FillColor:   depth.ColorForDepth(q.Depth),
		Color:       markerStroke,
		Weight:      markerWeight,
		Opacity:     markerOpacity,
		FillOpacity: markerFillOpacity,
		Popup:       Popup(q),
	}
}

// Popup renders the marker popup. A null magnitude prints as "null".
func Popup(q models.Earthquake) string {
	mag := "null"
	if q.Magnitude != nil {
		mag = strconv.FormatFloat(*q.Magnitude, 'f', -1, 64)
	}
	return fmt.Sprintf("<h3>Magnitude: %s</h3><p>Location: %s</p><p>Depth: %s km</p>",
		mag,
		html.EscapeString(q.Place),
		strconv.FormatFloat(q.Depth, 'f', -1, 64),
	)
}

func EarthquakeLayer(quakes []models.Earthquake) Overlay {
	markers := make([]CircleMarker, 0, len(quakes))
	for _, q := range quakes {
		markers = append(markers, NewMarker(q))
	}
	return Overlay{Name: EarthquakesOverlay, Order: 0, Markers: markers}
}

func PlatesLayer(boundaries []models.PlateBoundary) Overlay {
	lines := make([]Polyline, 0, len(boundaries))
	for _, b := range boundaries {
		lines = append(lines, Polyline{
			Name:   b.Name,
			Points: b.Lines,
			Color:  plateColor,
			Weight: plateWeight,
		})
	}
	return Overlay{Name: PlatesOverlay, Order: 1, Lines: lines}
}

func NewLegend(entries []depth.LegendEntry) Legend {
	items := make([]LegendItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LegendItem{
			Label:  e.Label,
			Color:  e.Color,
			Swatch: e.Color.RGBA(legendSwatchAlpha),
		})
	}
	return Legend{
		Title:    "Earthquake Depth (km)",
		Position: "bottomright",
		Items:    items,
	}
}
