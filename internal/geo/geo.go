package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/claimsat/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates using the Haversine formula
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm over two points
func Distance(a, b models.Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

func toRad(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// PointInPolygon runs a crossing-number (ray casting) test against the outer ring.
// Ring vertices are [lng, lat]. Points lying exactly on an edge may land either side.
func PointInPolygon(p models.Point, rings models.Polygon) bool {
	if len(rings) == 0 {
		return false
	}
	ring := rings[0]
	inside := false

	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		if len(ring[i]) < 2 || len(ring[j]) < 2 {
			continue
		}
		xi, yi := ring[i][1], ring[i][0]
		xj, yj := ring[j][1], ring[j][0]

		intersect := (yi > p.Lng) != (yj > p.Lng) &&
			p.Lat < (xj-xi)*(p.Lng-yi)/(yj-yi)+xi
		if intersect {
			inside = !inside
		}
	}

	return inside
}

// PolygonCentroid is the arithmetic mean of the outer ring's vertices as stored,
// closing vertex included. It is not an area-weighted centroid.
func PolygonCentroid(rings models.Polygon) models.Point {
	if len(rings) == 0 || len(rings[0]) == 0 {
		return models.Point{}
	}
	ring := rings[0]

	var latSum, lngSum float64
	for _, coord := range ring {
		if len(coord) < 2 {
			continue
		}
		lngSum += coord[0]
		latSum += coord[1]
	}

	n := float64(len(ring))
	return models.Point{Lat: latSum / n, Lng: lngSum / n}
}

// Bounds returns the lat/lng bounding rectangle of the outer ring
func Bounds(rings models.Polygon) s2.Rect {
	rect := s2.EmptyRect()
	if len(rings) == 0 {
		return rect
	}
	for _, coord := range rings[0] {
		if len(coord) < 2 {
			continue
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(coord[1], coord[0]))
	}
	return rect
}

// WithinRadius reports whether p lies inside rect grown by radiusKm on every side
func WithinRadius(rect s2.Rect, p models.Point, radiusKm float64) bool {
	if rect.IsEmpty() {
		return false
	}
	latMargin := s1.Angle(radiusKm / EarthRadiusKm)

	// Longitude degrees shrink towards the poles; widen the margin to compensate.
	cosLat := math.Cos(rect.Center().Lat.Radians())
	lngMargin := latMargin
	if cosLat > 1e-6 {
		lngMargin = s1.Angle(float64(latMargin) / cosLat)
	}

	grown := rect.Expanded(s2.LatLng{Lat: latMargin, Lng: lngMargin})
	return grown.ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng))
}
