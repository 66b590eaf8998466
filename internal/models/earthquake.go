package models

import "time"

type Earthquake struct {
	ID        string   // USGS event ID
	Magnitude *float64 // nil when the feed reports null
	Place     string
	URL       string // USGS event page
	Time      time.Time
	Longitude float64
	Latitude  float64
	Depth     float64 // km, negative above sea level
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (e *Earthquake) LatLng() LatLng {
	return LatLng{
		Lat: e.Latitude,
		Lng: e.Longitude,
	}
}

// PlateBoundary is one tectonic plate boundary, possibly split into several
// polylines where it crosses the antimeridian.
type PlateBoundary struct {
	Name  string
	Lines [][]LatLng
}
