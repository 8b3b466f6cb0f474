// Package geomath provides the small amount of spherical geometry shared
// by the observation collector and the geographic heuristics.
package geomath

import "math"

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// points given in decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// StdDevKm approximates the spatial spread of a point set as the standard
// deviation of distances from the centroid, in kilometres. Returns 0 for
// fewer than two points.
func StdDevKm(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var cLat, cLon float64
	for _, p := range points {
		cLat += p.Lat
		cLon += p.Lon
	}
	cLat /= float64(len(points))
	cLon /= float64(len(points))

	var sumSq float64
	for _, p := range points {
		d := HaversineKm(cLat, cLon, p.Lat, p.Lon)
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(points)))
}
