package geo

import (
	"errors"
	"math"

	"walk-scheduler/internal/domain"
)

const earthRadiusKm = 6371.0

// ErrNoPoints is returned by aggregate functions given an empty input.
var ErrNoPoints = errors.New("geo: no points")

// Distance returns the great-circle distance in kilometers between two
// points, using the haversine formula.
func Distance(a, b domain.Location) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Bearing returns the initial bearing in degrees [0,360) from one point
// toward another.
func Bearing(from, to domain.Location) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	dLng := radians(to.Lng - from.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// Centroid returns the geographic center of the points, computed by
// averaging 3D unit vectors so it stays stable near the antimeridian
// and the poles. A single point is returned unchanged.
func Centroid(points []domain.Location) (domain.Location, error) {
	if len(points) == 0 {
		return domain.Location{}, ErrNoPoints
	}
	if len(points) == 1 {
		return points[0], nil
	}

	var x, y, z float64
	for _, p := range points {
		lat := radians(p.Lat)
		lng := radians(p.Lng)
		x += math.Cos(lat) * math.Cos(lng)
		y += math.Cos(lat) * math.Sin(lng)
		z += math.Sin(lat)
	}

	n := float64(len(points))
	x /= n
	y /= n
	z /= n

	lng := math.Atan2(y, x)
	hyp := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, hyp)

	return domain.Location{Lat: degrees(lat), Lng: degrees(lng)}, nil
}

// CoveringRadius returns the maximum distance in kilometers from the
// center to any of the points; 0 for an empty input.
func CoveringRadius(center domain.Location, points []domain.Location) float64 {
	var max float64
	for _, p := range points {
		if d := Distance(center, p); d > max {
			max = d
		}
	}
	return max
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
