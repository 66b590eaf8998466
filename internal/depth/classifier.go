// Package depth maps earthquake depth to a display color and magnitude to a
// marker radius, and derives the map legend from the same bucket table.
package depth

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// MinRadius is used for absent, zero or NaN magnitudes.
	MinRadius = 1.0
	// ScaleFactor converts a magnitude into a marker radius.
	ScaleFactor = 4.0
)

var (
	ErrEmptyTable     = errors.New("bucket table is empty")
	ErrUnsortedBounds = errors.New("bucket upper bounds must be strictly increasing")
	ErrNoCatchAll     = errors.New("last bucket upper bound must be +Inf")
	ErrInvalidColor   = errors.New("invalid color code")
)

// ColorCode is a "#RRGGBB" color.
type ColorCode string

// RGBA renders the color as a CSS rgba() value with the given alpha.
func (c ColorCode) RGBA(alpha float64) string {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return fmt.Sprintf("rgba(156, 163, 175, %.2f)", alpha)
	}
	r, g, b := col.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, b, alpha)
}

func (c ColorCode) valid() bool {
	if len(c) != 7 {
		return false
	}
	_, err := colorful.Hex(string(c))
	return err == nil
}

type Bucket struct {
	UpperBound float64
	Color      ColorCode
}

type LegendEntry struct {
	Label string
	Color ColorCode
	Lower float64
	Upper float64 // +Inf for the catch-all bucket
}

// Table is an immutable, ordered list of depth buckets. Exactly one bucket
// matches any depth because bounds increase strictly and the last is +Inf.
type Table struct {
	buckets []Bucket
	legend  []LegendEntry
}

func NewTable(buckets []Bucket) (*Table, error) {
	if len(buckets) == 0 {
		return nil, ErrEmptyTable
	}
	for i, b := range buckets {
		if !b.Color.valid() {
			return nil, fmt.Errorf("bucket %d: %w: %q", i, ErrInvalidColor, b.Color)
		}
		if math.IsNaN(b.UpperBound) {
			return nil, fmt.Errorf("bucket %d: %w", i, ErrUnsortedBounds)
		}
		if i > 0 && b.UpperBound <= buckets[i-1].UpperBound {
			return nil, fmt.Errorf("bucket %d: %w", i, ErrUnsortedBounds)
		}
	}
	if !math.IsInf(buckets[len(buckets)-1].UpperBound, 1) {
		return nil, ErrNoCatchAll
	}

	t := &Table{buckets: append([]Bucket(nil), buckets...)}
	t.legend = t.buildLegend()
	return t, nil
}

func MustNewTable(buckets []Bucket) *Table {
	t, err := NewTable(buckets)
	if err != nil {
		panic("depth: " + err.Error())
	}
	return t
}

// ColorForDepth returns the color of the first bucket whose upper bound is
// >= depth. NaN falls through to the catch-all bucket.
func (t *Table) ColorForDepth(depth float64) ColorCode {
	return t.buckets[t.index(depth)].Color
}

func (t *Table) index(depth float64) int {
	for i, b := range t.buckets {
		if depth <= b.UpperBound {
			return i
		}
	}
	return len(t.buckets) - 1
}

// Rank returns the severity position of c in the table, or -1.
func (t *Table) Rank(c ColorCode) int {
	for i, b := range t.buckets {
		if b.Color == c {
			return i
		}
	}
	return -1
}

func (t *Table) Buckets() []Bucket {
	return append([]Bucket(nil), t.buckets...)
}

// LegendEntries returns one entry per bucket that has a lower bound, i.e.
// every bucket except the first.
func (t *Table) LegendEntries() []LegendEntry {
	return append([]LegendEntry(nil), t.legend...)
}

func (t *Table) buildLegend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(t.buckets)-1)
	for i := 1; i < len(t.buckets); i++ {
		lower := t.buckets[i-1].UpperBound
		upper := t.buckets[i].UpperBound

		to := "+"
		if !math.IsInf(upper, 1) {
			to = formatBound(upper)
		}

		entries = append(entries, LegendEntry{
			Label: fmt.Sprintf("%s - %s km", formatBound(lower), to),
			Color: t.buckets[i].Color,
			Lower: lower,
			Upper: upper,
		})
	}
	return entries
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Canonical is the depth table used across the map.
var Canonical = MustNewTable([]Bucket{
	{UpperBound: -10, Color: "#00FF00"},         // shallow
	{UpperBound: 10, Color: "#ADFF2F"},          // light green
	{UpperBound: 30, Color: "#FFD580"},          // light orange
	{UpperBound: 50, Color: "#FFA500"},          // orange
	{UpperBound: 70, Color: "#FF4500"},          // orange red
	{UpperBound: 90, Color: "#FF2400"},          // scarlet
	{UpperBound: math.Inf(1), Color: "#FF0000"}, // deep
})

func ColorForDepth(depth float64) ColorCode {
	return Canonical.ColorForDepth(depth)
}

func LegendEntries() []LegendEntry {
	return Canonical.LegendEntries()
}

// RadiusForMagnitude scales a magnitude into a marker radius. Absent, zero
// and NaN magnitudes all get MinRadius.
func RadiusForMagnitude(mag *float64) float64 {
	if mag == nil || *mag == 0 || math.IsNaN(*mag) {
		return MinRadius
	}
	return *mag * ScaleFactor
}
