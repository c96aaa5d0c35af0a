package track

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/satrack/satrack/internal/timewin"
	"github.com/satrack/satrack/internal/tle"
	"github.com/satrack/satrack/internal/transform"
)

// fakePropagator returns a fixed geodetic-ish orbit and can be scripted to
// fail at a specific call.
type fakePropagator struct {
	calls   int
	failAt  int   // 1-based call number to fail on; 0 disables
	failErr error // error returned at failAt
	pos     func(t time.Time) transform.ECEF
}

func (f *fakePropagator) PropagateAt(t time.Time) (transform.ECEF, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return transform.ECEF{}, f.failErr
	}
	if f.pos != nil {
		return f.pos(t), nil
	}
	// Roughly 400 km over the equator.
	return transform.ECEF{X: 6778137, Y: 0, Z: 0}, nil
}

func testWindow(t *testing.T, count int) timewin.Window {
	t.Helper()
	return timewin.Window{
		Start: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Step:  time.Minute,
		Count: count,
	}
}

func testElementSet() *tle.ElementSet {
	return &tle.ElementSet{NORADID: 25544}
}

func newFakeEngine(fake *fakePropagator) *Engine {
	factory := func(es *tle.ElementSet) (Propagator, error) { return fake, nil }
	return NewEngineWithFactory(factory, slog.New(slog.DiscardHandler))
}

func TestComputeAscendingSamples(t *testing.T) {
	fake := &fakePropagator{}
	engine := newFakeEngine(fake)

	w := testWindow(t, 5)
	points, err := engine.Compute(context.Background(), testElementSet(), w, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points, want 5", len(points))
	}
	for i, p := range points {
		want := w.Start.Add(time.Duration(i) * w.Step)
		if !p.Time.Equal(want) {
			t.Errorf("points[%d].Time = %v, want %v", i, p.Time, want)
		}
		if p.Footprint != nil {
			t.Errorf("points[%d] has a footprint without Options.Footprint", i)
		}
	}
	// The fixture sits on the equatorial X axis.
	if lat := points[0].Position.LatDeg; lat < -1 || lat > 1 {
		t.Errorf("equatorial fixture latitude = %v", lat)
	}
	if alt := points[0].Position.AltM; alt < 390000 || alt > 410000 {
		t.Errorf("fixture altitude = %v, want ~400 km", alt)
	}
}

func TestComputeFailFast(t *testing.T) {
	propErr := errors.New("model diverged")
	fake := &fakePropagator{failAt: 3, failErr: propErr}
	engine := newFakeEngine(fake)

	points, err := engine.Compute(context.Background(), testElementSet(), testWindow(t, 10), Options{})
	if points != nil {
		t.Errorf("got %d partial points, want none", len(points))
	}

	var pe *PropagationError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want PropagationError", err)
	}
	if !errors.Is(err, propErr) {
		t.Error("PropagationError does not unwrap to the cause")
	}
	wantTime := testWindow(t, 10).Start.Add(2 * time.Minute)
	if !pe.Time.Equal(wantTime) {
		t.Errorf("failure time = %v, want %v", pe.Time, wantTime)
	}
	// No instant after the failure was attempted.
	if fake.calls != 3 {
		t.Errorf("propagator called %d times, want 3", fake.calls)
	}
}

func TestComputeFactoryFailure(t *testing.T) {
	initErr := errors.New("bad elements")
	factory := func(es *tle.ElementSet) (Propagator, error) { return nil, initErr }
	engine := NewEngineWithFactory(factory, slog.New(slog.DiscardHandler))

	_, err := engine.Compute(context.Background(), testElementSet(), testWindow(t, 3), Options{})
	var pe *PropagationError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want PropagationError", err)
	}
	if !pe.Time.IsZero() {
		t.Errorf("init failure carries instant %v, want zero time", pe.Time)
	}
}

func TestComputeCoordinateValidation(t *testing.T) {
	// A position inside the Earth yields negative altitude.
	fake := &fakePropagator{pos: func(time.Time) transform.ECEF {
		return transform.ECEF{X: 6000000, Y: 0, Z: 0}
	}}
	engine := newFakeEngine(fake)

	_, err := engine.Compute(context.Background(), testElementSet(), testWindow(t, 3), Options{})
	var cve *CoordinateValidationError
	if !errors.As(err, &cve) {
		t.Fatalf("error = %v, want CoordinateValidationError", err)
	}
	if cve.Field != "alt_m" {
		t.Errorf("Field = %q, want alt_m", cve.Field)
	}
	if fake.calls != 1 {
		t.Errorf("propagator called %d times after validation failure, want 1", fake.calls)
	}
}

func TestComputeContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newFakeEngine(&fakePropagator{})
	_, err := engine.Compute(ctx, testElementSet(), testWindow(t, 100), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestComputeFootprint(t *testing.T) {
	engine := newFakeEngine(&fakePropagator{})

	points, err := engine.Compute(context.Background(), testElementSet(), testWindow(t, 2),
		Options{Footprint: true})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i, p := range points {
		ring := p.Footprint
		if len(ring) != footprintSegments+1 {
			t.Fatalf("points[%d] ring has %d vertices, want %d", i, len(ring), footprintSegments+1)
		}
		if ring[0] != ring[len(ring)-1] {
			t.Errorf("points[%d] ring not closed", i)
		}
		for _, v := range ring {
			if v[1] < -90 || v[1] > 90 {
				t.Errorf("points[%d] vertex latitude %v out of range", i, v[1])
			}
			if v[0] <= -180 || v[0] > 180 {
				t.Errorf("points[%d] vertex longitude %v out of range", i, v[0])
			}
		}
	}
}

func TestFootprintRingWinding(t *testing.T) {
	pos := transform.Geodetic{LatDeg: 10, LonDeg: 20, AltM: 400000}
	ring := footprintRing(pos, DefaultFOVDeg)

	// Shoelace area in the lon/lat plane; positive means counter-clockwise.
	var area float64
	for i := 0; i < len(ring)-1; i++ {
		area += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	if area <= 0 {
		t.Errorf("shoelace area = %v, want positive (counter-clockwise ring)", area)
	}
}

func TestFootprintRingPolar(t *testing.T) {
	pos := transform.Geodetic{LatDeg: 89.9, LonDeg: 0, AltM: 800000}
	ring := footprintRing(pos, DefaultFOVDeg)

	for _, v := range ring {
		if v[1] > 90 || v[1] < -90 {
			t.Errorf("polar ring latitude %v out of range", v[1])
		}
		if v[0] <= -180 || v[0] > 180 {
			t.Errorf("polar ring longitude %v out of range", v[0])
		}
	}
}

func TestFootprintRadiusDeg(t *testing.T) {
	// Narrow cone from low orbit intersects the surface.
	narrow := footprintRadiusDeg(400000, 30)
	if narrow <= 0 || narrow > 10 {
		t.Errorf("narrow-cone radius = %v deg, want small positive", narrow)
	}

	// A 150 degree cone from 400 km misses the limb; radius caps at the horizon.
	capped := footprintRadiusDeg(400000, 150)
	horizon := footprintRadiusDeg(400000, 179)
	if capped != horizon {
		t.Errorf("wide cones not capped at horizon: %v != %v", capped, horizon)
	}

	// Wider field of view sees more ground.
	if footprintRadiusDeg(400000, 60) <= narrow {
		t.Error("radius not monotonic in field of view")
	}
}
