package track

import (
	"math"

	"github.com/satrack/satrack/internal/transform"
)

const (
	// DefaultFOVDeg is the sensor field of view assumed when the request
	// doesn't specify one.
	DefaultFOVDeg = 60.0

	// footprintSegments is the number of ring segments approximating the
	// circular footprint.
	footprintSegments = 16

	earthRadiusM = 6371000.0
)

// footprintRing builds the visibility footprint around a sub-satellite point
// as a closed ring of [lon, lat] pairs: footprintSegments distinct vertices
// plus a closing copy of the first, wound counter-clockwise.
func footprintRing(pos transform.Geodetic, fovDeg float64) [][2]float64 {
	if fovDeg <= 0 {
		fovDeg = DefaultFOVDeg
	}

	radiusDeg := footprintRadiusDeg(pos.AltM, fovDeg)

	latRad := pos.LatDeg * math.Pi / 180.0
	cosLat := math.Cos(latRad)
	// Near the poles the longitude scaling blows up; clamp so the ring stays
	// finite and the polygon well-formed.
	if math.Abs(cosLat) < 0.01 {
		cosLat = math.Copysign(0.01, cosLat)
	}

	ring := make([][2]float64, 0, footprintSegments+1)
	for i := 0; i < footprintSegments; i++ {
		// Increasing angle traces the ring counter-clockwise in the lon/lat plane.
		angle := 2 * math.Pi * float64(i) / footprintSegments
		dLon := radiusDeg * math.Cos(angle) / cosLat
		dLat := radiusDeg * math.Sin(angle)

		lat := pos.LatDeg + dLat
		if lat > 90 {
			lat = 90
		} else if lat < -90 {
			lat = -90
		}
		lon := transform.NormalizeLongitude(pos.LonDeg + dLon)

		ring = append(ring, [2]float64{lon, lat})
	}
	ring = append(ring, ring[0])
	return ring
}

// footprintRadiusDeg computes the great-circle radius of the footprint in
// degrees from the satellite altitude and sensor field of view. When the cone
// is wider than the Earth subtends, the footprint is capped at the horizon.
func footprintRadiusDeg(altM, fovDeg float64) float64 {
	halfFOV := fovDeg / 2.0 * math.Pi / 180.0
	if altM <= 0 {
		return halfFOV * 180.0 / math.Pi
	}

	// Earth-central angle of the cone edge: asin((R+h)·sin(f)/R) − f.
	sinArg := (earthRadiusM + altM) * math.Sin(halfFOV) / earthRadiusM
	if sinArg >= 1 {
		// Cone misses the limb; the visible footprint ends at the horizon.
		return math.Acos(earthRadiusM/(earthRadiusM+altM)) * 180.0 / math.Pi
	}

	return (math.Asin(sinArg) - halfFOV) * 180.0 / math.Pi
}
