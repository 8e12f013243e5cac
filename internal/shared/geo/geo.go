package geo

import (
	"math"
)

const earthRadiusKm = 6371.0

// Coords is a [lat, lng] pair. It marshals to a two element JSON array.
type Coords [2]float64

func (c Coords) Lat() float64 { return c[0] }
func (c Coords) Lng() float64 { return c[1] }

// Valid reports whether both components are finite numbers.
func (c Coords) Valid() bool {
	return isFinite(c[0]) && isFinite(c[1])
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Bounds is the smallest lat/lng box covering a set of points.
type Bounds struct {
	SouthWest Coords `json:"south_west"`
	NorthEast Coords `json:"north_east"`
}

// BoundsOf returns the box covering every point. ok is false for an empty input.
func BoundsOf(points ...Coords) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{SouthWest: points[0], NorthEast: points[0]}
	for _, p := range points[1:] {
		b.SouthWest[0] = math.Min(b.SouthWest[0], p[0])
		b.SouthWest[1] = math.Min(b.SouthWest[1], p[1])
		b.NorthEast[0] = math.Max(b.NorthEast[0], p[0])
		b.NorthEast[1] = math.Max(b.NorthEast[1], p[1])
	}
	return b, true
}

func (b Bounds) Center() Coords {
	return Coords{
		(b.SouthWest[0] + b.NorthEast[0]) / 2,
		(b.SouthWest[1] + b.NorthEast[1]) / 2,
	}
}

// FitZoom picks the largest tile zoom level, capped at maxZoom, at which the
// whole box still fits inside one 256px world tile span.
func (b Bounds) FitZoom(maxZoom int) int {
	latSpan := b.NorthEast[0] - b.SouthWest[0]
	lngSpan := b.NorthEast[1] - b.SouthWest[1]
	span := math.Max(latSpan*2, lngSpan)
	if span <= 0 {
		return maxZoom
	}
	zoom := int(math.Floor(math.Log2(360 / span)))
	if zoom < 1 {
		zoom = 1
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	return zoom
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
