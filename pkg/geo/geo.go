package geo

import "math"

const earthRadiusKM = 6371.0

// DistanceKM returns the great-circle distance between two coordinates
// using the haversine formula. Good enough for delivery radius checks;
// sub-meter geodesic accuracy is not needed here.
func DistanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
