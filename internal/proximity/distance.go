package proximity

import "math"

// earthRadiusM is the spherical Earth radius used for great-circle distances.
const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance in meters between two
// coordinates given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// DecayContribution converts a distance into a scoring contribution with
// linear falloff: 1.0 at the center, 0 at and beyond the radius.
func DecayContribution(distM float64, radiusM int) float64 {
	return math.Max(0, 1.0-distM/float64(radiusM))
}
