package util

import (
	"math"
)

const (
	earthRadiusKm = 6371.0
	// kmPerDegreeLat is the length of one degree of latitude
	kmPerDegreeLat = 111.0
)

// CalculateDistance returns the great-circle distance in kilometers between two
// points given in decimal degrees (Haversine formula)
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degToRad(lat1)
	lat2Rad := degToRad(lat2)
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// BoundingBox is an axis-aligned lat/lng rectangle
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround returns the square of ±radiusKm/111 degrees around a point.
// It is a coarse prefilter; callers needing exact radius use CalculateDistance.
func BoxAround(lat, lng, radiusKm float64) BoundingBox {
	delta := radiusKm / kmPerDegreeLat
	return BoundingBox{
		MinLat: lat - delta,
		MaxLat: lat + delta,
		MinLng: lng - delta,
		MaxLng: lng + delta,
	}
}

// RoundTo1 rounds half-up to one decimal place
func RoundTo1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
