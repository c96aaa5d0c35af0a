package transform

import (
	"math"
	"time"
)

// TEME is a satellite position in the TEME frame, kilometers.
type TEME struct {
	X, Y, Z float64
}

// ECEF is a satellite position in the ECEF frame, meters.
type ECEF struct {
	X, Y, Z float64
}

// TEMEToECEF rotates a TEME position into ECEF at the given UTC time.
func TEMEToECEF(p TEME, t time.Time) ECEF {
	return TEMEToECEFAtGMST(p, GMST(t))
}

// TEMEToECEFAtGMST rotates a TEME position into ECEF using a precomputed
// GMST angle in radians: r_ECEF = R3(θ) · r_TEME. Output is in meters.
func TEMEToECEFAtGMST(p TEME, gmst float64) ECEF {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	return ECEF{
		X: (p.X*cosG + p.Y*sinG) * 1000.0,
		Y: (-p.X*sinG + p.Y*cosG) * 1000.0,
		Z: p.Z * 1000.0,
	}
}

// Orbit radius bounds for sanity checks, meters. Anything below ~6200 km is
// inside the atmosphere or the planet; anything above ~50000 km is beyond
// every catalogued Earth orbit.
const (
	minOrbitRadiusM = 6200.0 * 1000.0
	maxOrbitRadiusM = 50000.0 * 1000.0
)

// ValidOrbitRadius reports whether an ECEF position is finite and its
// magnitude lies within the plausible range for an Earth-orbiting satellite.
func ValidOrbitRadius(p ECEF) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return false
	}
	if math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
		return false
	}
	mag := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	return mag >= minOrbitRadiusM && mag <= maxOrbitRadiusM
}
