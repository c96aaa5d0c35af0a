package transform

import "math"

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Geodetic is a position on or above the WGS-84 ellipsoid.
// Latitude/longitude in degrees, altitude in meters above the ellipsoid.
type Geodetic struct {
	LatDeg float64
	LonDeg float64
	AltM   float64
}

// ECEFToGeodetic converts an ECEF position (meters) to geodetic coordinates
// using the iterative Bowring method. Converges in 2-3 iterations for Earth
// orbits; five are run for margin. Longitude is normalized into (-180, 180].
func ECEFToGeodetic(pos ECEF) Geodetic {
	lon := math.Atan2(pos.Y, pos.X)
	p := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)

	lat := math.Atan2(pos.Z, p*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(pos.Z+wgs84E2*n*sinLat, p)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		// Polar singularity: derive altitude from the Z component.
		alt = math.Abs(pos.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: NormalizeLongitude(lon * 180.0 / math.Pi),
		AltM:   alt,
	}
}

// NormalizeLongitude wraps a longitude in degrees into (-180, 180].
// The antimeridian maps to +180, never -180.
func NormalizeLongitude(deg float64) float64 {
	lon := math.Mod(deg, 360.0)
	if lon <= -180.0 {
		lon += 360.0
	} else if lon > 180.0 {
		lon -= 360.0
	}
	return lon
}
