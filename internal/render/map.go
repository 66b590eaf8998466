// Package render assembles the earthquake map and writes it as a
// self-contained Leaflet page.
package render

import (
	"sort"
	"sync"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// DefaultBaseLayers lists the selectable base maps; the first is shown on load.
func DefaultBaseLayers() []TileLayer {
	return []TileLayer{
		{Name: "Satellite", URL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", Attribution: "&copy; Satellite Map contributors"},
		{Name: "Grayscale", URL: "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png", Attribution: "&copy; OpenStreetMap Grayscale"},
		{Name: "Outdoors", URL: "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png", Attribution: "&copy; OpenTopoMap contributors"},
	}
}

type Overlay struct {
	Name    string         `json:"name"`
	Order   int            `json:"-"`
	Markers []CircleMarker `json:"markers,omitempty"`
	Lines   []Polyline     `json:"lines,omitempty"`
}

// Map is the one map instance for a page. It is built once at startup and
// passed to whatever needs to add layers or controls. Overlays may be added
// concurrently.
type Map struct {
	mu         sync.Mutex
	center     models.LatLng
	zoom       int
	baseLayers []TileLayer
	overlays   []Overlay
	legend     *Legend
	collapsed  bool
}

func NewMap(center models.LatLng, zoom int, baseLayers []TileLayer) *Map {
	return &Map{
		center:     center,
		zoom:       zoom,
		baseLayers: baseLayers,
	}
}

// AddOverlay adds or replaces the overlay with the same name. Overlays keep
// their Order regardless of arrival order.
func (m *Map) AddOverlay(o Overlay) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.overlays {
		if m.overlays[i].Name == o.Name {
			m.overlays[i] = o
			return
		}
	}
	m.overlays = append(m.overlays, o)
	sort.SliceStable(m.overlays, func(i, j int) bool {
		return m.overlays[i].Order < m.overlays[j].Order
	})
}

func (m *Map) SetLegend(l Legend) {
	m.mu.Lock()
	m.legend = &l
	m.mu.Unlock()
}

// SetControlCollapsed controls whether the layer switcher starts collapsed.
func (m *Map) SetControlCollapsed(collapsed bool) {
	m.mu.Lock()
	m.collapsed = collapsed
	m.mu.Unlock()
}

func (m *Map) Overlays() []Overlay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Overlay(nil), m.overlays...)
}

type mapView struct {
	Center           models.LatLng `json:"center"`
	Zoom             int           `json:"zoom"`
	BaseLayers       []TileLayer   `json:"baseLayers"`
	Overlays         []Overlay     `json:"overlays"`
	Legend           *Legend       `json:"legend,omitempty"`
	ControlCollapsed bool          `json:"controlCollapsed"`
}

func (m *Map) view() mapView {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := mapView{
		Center:           m.center,
		Zoom:             m.zoom,
		BaseLayers:       append([]TileLayer(nil), m.baseLayers...),
		Overlays:         append([]Overlay(nil), m.overlays...),
		ControlCollapsed: m.collapsed,
	}
	if v.Overlays == nil {
		v.Overlays = []Overlay{}
	}
	if m.legend != nil {
		l := *m.legend
		v.Legend = &l
	}
	return v
}
