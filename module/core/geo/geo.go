package geo

import (
	"math"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between a and b on a
// spherical Earth. NaN inputs yield NaN.
func DistanceMeters(a, b domain.Coord) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Offset returns the coordinate reached by moving north and east by the given
// number of meters from origin, using a local flat-earth approximation.
func Offset(origin domain.Coord, northMeters, eastMeters float64) domain.Coord {
	dLat := northMeters / earthRadiusMeters
	dLon := eastMeters / (earthRadiusMeters * math.Cos(toRad(origin.Lat)))
	return domain.Coord{
		Lat: origin.Lat + dLat*180/math.Pi,
		Lon: origin.Lon + dLon*180/math.Pi,
	}
}
