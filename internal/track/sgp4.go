package track

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/satrack/satrack/internal/tle"
	"github.com/satrack/satrack/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite (pure Go, no
// CGO, explicit TEME output). Its Propagate takes Satellite by value, so SGP4
// error codes never reach the caller; failures are detected by checking the
// output for NaN/Inf and implausible magnitudes instead.

// SGP4 propagates one validated element set.
type SGP4 struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4 initializes the SGP4 model for an element set. The element set has
// already passed structural validation, so the only remaining failure is the
// model itself rejecting the orbit.
func NewSGP4(es *tle.ElementSet) (*SGP4, error) {
	sat := satellite.TLEToSat(es.Line1, es.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init for catalog %d: code=%d %s", es.NORADID, sat.Error, sat.ErrorStr)
	}
	return &SGP4{sat: sat, noradID: es.NORADID}, nil
}

// PropagateAt computes the satellite's ECEF position at the given UTC instant.
func (p *SGP4) PropagateAt(t time.Time) (transform.ECEF, error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	teme := transform.TEME{X: pos.X, Y: pos.Y, Z: pos.Z}
	ecef := transform.TEMEToECEF(teme, t)
	if !transform.ValidOrbitRadius(ecef) {
		return transform.ECEF{}, fmt.Errorf("sgp4 output for catalog %d is NaN or outside plausible orbit radii", p.noradID)
	}
	return ecef, nil
}
