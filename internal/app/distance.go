package app

import (
	"math"

	"eventhour/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle (Haversine) distance between a and b, rounded to 0.1 km.
// NaN inputs yield NaN.
func DistanceKm(a, b domain.Coords) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*10) / 10
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
