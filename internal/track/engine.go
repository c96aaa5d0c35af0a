// Package track computes time-stepped ground tracks: for each instant in a
// validated window it propagates the element set, converts the position to
// geodetic coordinates, and optionally derives a visibility footprint.
//
// The computation is fail-fast: the first propagation fault or out-of-range
// coordinate aborts the whole request. Ground tracks are contiguous or they
// are nothing; a silently truncated track would be indistinguishable from a
// short one.
package track

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/satrack/satrack/internal/metrics"
	"github.com/satrack/satrack/internal/timewin"
	"github.com/satrack/satrack/internal/tle"
	"github.com/satrack/satrack/internal/transform"
)

// Propagator yields positions for successive instants of one element set.
type Propagator interface {
	PropagateAt(t time.Time) (transform.ECEF, error)
}

// PropagatorFactory initializes a Propagator for an element set. The default
// is the SGP4 model; tests substitute fakes.
type PropagatorFactory func(es *tle.ElementSet) (Propagator, error)

// Options selects the optional outputs of a ground-track computation.
type Options struct {
	Footprint bool    // derive a visibility polygon per instant
	FOVDeg    float64 // sensor field of view; 0 selects DefaultFOVDeg
}

// Point is one computed ground-track sample.
type Point struct {
	Time      time.Time
	Position  transform.Geodetic
	Footprint [][2]float64 // closed [lon, lat] ring; nil unless requested
}

// PropagationError reports the propagator failing outright, either at
// initialization or at a specific instant.
type PropagationError struct {
	NORADID int
	Time    time.Time // zero when initialization failed
	Err     error
}

func (e *PropagationError) Error() string {
	if e.Time.IsZero() {
		return fmt.Sprintf("propagation failed for catalog %d: %v", e.NORADID, e.Err)
	}
	return fmt.Sprintf("propagation failed for catalog %d at %s: %v",
		e.NORADID, e.Time.UTC().Format(time.RFC3339), e.Err)
}

func (e *PropagationError) Unwrap() error { return e.Err }

// CoordinateValidationError reports a propagated position outside geodetic
// range invariants. This is a propagator/data fault, not a per-sample
// condition, so it aborts the request.
type CoordinateValidationError struct {
	Time  time.Time
	Field string
	Value float64
}

func (e *CoordinateValidationError) Error() string {
	return fmt.Sprintf("coordinate validation failed at %s: %s = %.4f out of range",
		e.Time.UTC().Format(time.RFC3339), e.Field, e.Value)
}

// Engine drives the per-instant computation.
type Engine struct {
	newPropagator PropagatorFactory
	logger        *slog.Logger
}

// NewEngine creates an Engine using the SGP4 propagator.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		newPropagator: func(es *tle.ElementSet) (Propagator, error) { return NewSGP4(es) },
		logger:        logger,
	}
}

// NewEngineWithFactory creates an Engine over a custom propagator factory.
func NewEngineWithFactory(factory PropagatorFactory, logger *slog.Logger) *Engine {
	return &Engine{newPropagator: factory, logger: logger}
}

// Compute produces one Point per instant of the window, strictly ascending.
// Any failure discards all partial work and returns an error.
func (e *Engine) Compute(ctx context.Context, es *tle.ElementSet, w timewin.Window, opts Options) ([]Point, error) {
	prop, err := e.newPropagator(es)
	if err != nil {
		return nil, &PropagationError{NORADID: es.NORADID, Err: err}
	}

	start := time.Now()
	points := make([]Point, 0, w.Count)

	for _, instant := range w.Instants() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ground track aborted: %w", err)
		}

		ecef, err := prop.PropagateAt(instant)
		if err != nil {
			return nil, &PropagationError{NORADID: es.NORADID, Time: instant, Err: err}
		}

		pos := transform.ECEFToGeodetic(ecef)
		if err := validatePosition(instant, pos); err != nil {
			return nil, err
		}

		p := Point{Time: instant.UTC(), Position: pos}
		if opts.Footprint {
			p.Footprint = footprintRing(pos, opts.FOVDeg)
		}
		points = append(points, p)
	}

	duration := time.Since(start)
	metrics.RecordGroundTrack(duration, len(points))
	e.logger.Debug("ground track computed",
		"norad_id", es.NORADID,
		"samples", len(points),
		"duration_ms", duration.Milliseconds(),
	)

	return points, nil
}

// validatePosition enforces the geodetic range invariants on one sample.
func validatePosition(t time.Time, pos transform.Geodetic) error {
	if math.IsNaN(pos.LatDeg) || pos.LatDeg < -90 || pos.LatDeg > 90 {
		return &CoordinateValidationError{Time: t, Field: "lat_deg", Value: pos.LatDeg}
	}
	if math.IsNaN(pos.LonDeg) || pos.LonDeg <= -180 || pos.LonDeg > 180 {
		return &CoordinateValidationError{Time: t, Field: "lon_deg", Value: pos.LonDeg}
	}
	if math.IsNaN(pos.AltM) || pos.AltM < 0 {
		return &CoordinateValidationError{Time: t, Field: "alt_m", Value: pos.AltM}
	}
	return nil
}
