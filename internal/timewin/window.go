// Package timewin turns human-friendly start/duration/step expressions into an
// exact, bounded sequence of UTC instants for the ground-track engine.
package timewin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxSamples bounds the number of instants in a single window. Requests above
// this ceiling are rejected before any propagation work is done.
const MaxSamples = 5000

// Step interval bounds, matching the remote catalog's data cadence: anything
// under a second is noise, anything over an hour produces a useless track.
const (
	minStep = time.Second
	maxStep = time.Hour
)

// maxDuration rejects windows long enough for TLE element sets to go stale.
const maxDuration = 30 * 24 * time.Hour

// Window is a validated sampling window: Count instants starting at Start,
// spaced Step apart, covering [Start, Start+duration].
type Window struct {
	Start time.Time
	Step  time.Duration
	Count int
}

// Instants expands the window into its ordered sequence of UTC instants.
func (w Window) Instants() []time.Time {
	out := make([]time.Time, w.Count)
	for i := range out {
		out[i] = w.Start.Add(time.Duration(i) * w.Step)
	}
	return out
}

// End returns the last instant of the window.
func (w Window) End() time.Time {
	return w.Start.Add(time.Duration(w.Count-1) * w.Step)
}

// InvalidTimeRangeError reports an unparsable or inconsistent time parameter.
type InvalidTimeRangeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range: %s %q: %s", e.Field, e.Value, e.Reason)
}

// RangeTooLargeError reports a window whose sample count exceeds MaxSamples.
type RangeTooLargeError struct {
	Count int
	Max   int
}

func (e *RangeTooLargeError) Error() string {
	return fmt.Sprintf("time range too large: %d samples exceeds limit of %d", e.Count, e.Max)
}

// Parse builds a Window from human-friendly expressions. start accepts "now",
// "current", "in N <unit>", or an RFC 3339 timestamp. duration and step accept
// "<magnitude> <unit>" with second/minute/hour/day units, or a bare number
// meaning minutes.
func Parse(start, duration, step string) (Window, error) {
	return parseAt(time.Now().UTC(), start, duration, step)
}

func parseAt(now time.Time, start, duration, step string) (Window, error) {
	startAt, err := parseStart(now, start)
	if err != nil {
		return Window{}, err
	}

	dur, err := parseInterval("duration", duration)
	if err != nil {
		return Window{}, err
	}
	if dur > maxDuration {
		return Window{}, &InvalidTimeRangeError{Field: "duration", Value: duration,
			Reason: fmt.Sprintf("exceeds maximum of %v", maxDuration)}
	}

	stepDur, err := parseInterval("step_interval", step)
	if err != nil {
		return Window{}, err
	}
	if stepDur < minStep || stepDur > maxStep {
		return Window{}, &InvalidTimeRangeError{Field: "step_interval", Value: step,
			Reason: fmt.Sprintf("must be between %v and %v", minStep, maxStep)}
	}
	if stepDur > dur {
		return Window{}, &InvalidTimeRangeError{Field: "step_interval", Value: step,
			Reason: fmt.Sprintf("step %v exceeds duration %v", stepDur, dur)}
	}

	count := int(math.Ceil(float64(dur)/float64(stepDur))) + 1
	if count > MaxSamples {
		return Window{}, &RangeTooLargeError{Count: count, Max: MaxSamples}
	}

	return Window{Start: startAt, Step: stepDur, Count: count}, nil
}

// parseStart resolves a start-time expression to a UTC instant.
func parseStart(now time.Time, s string) (time.Time, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "now", "current":
		return now, nil
	}

	// Relative form: "in 2 hours".
	if rest, ok := strings.CutPrefix(s, "in "); ok {
		offset, err := parseInterval("start_time", rest)
		if err != nil {
			return time.Time{}, &InvalidTimeRangeError{Field: "start_time", Value: raw,
				Reason: "unparsable relative time"}
		}
		return now.Add(offset), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &InvalidTimeRangeError{Field: "start_time", Value: raw,
		Reason: "expected RFC 3339 timestamp, \"now\", or \"in N <unit>\""}
}

// unitDurations maps normalized unit names to their base duration.
var unitDurations = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
}

// unitAliases folds common spellings onto the normalized unit names.
var unitAliases = map[string]string{
	"second": "seconds", "sec": "seconds", "secs": "seconds", "s": "seconds",
	"minute": "minutes", "min": "minutes", "mins": "minutes", "m": "minutes",
	"hour": "hours", "hr": "hours", "hrs": "hours", "h": "hours",
	"day": "days", "d": "days",
}

// parseInterval parses "<magnitude> <unit>" or a bare number of minutes.
func parseInterval(field, s string) (time.Duration, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, &InvalidTimeRangeError{Field: field, Value: raw, Reason: "empty"}
	}

	// Bare number means minutes.
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, &InvalidTimeRangeError{Field: field, Value: raw, Reason: "magnitude must be positive"}
		}
		return time.Duration(n) * time.Minute, nil
	}

	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, &InvalidTimeRangeError{Field: field, Value: raw,
			Reason: "expected \"<magnitude> <unit>\""}
	}

	mag, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, &InvalidTimeRangeError{Field: field, Value: raw,
			Reason: fmt.Sprintf("magnitude %q is not numeric", parts[0])}
	}
	if mag <= 0 {
		return 0, &InvalidTimeRangeError{Field: field, Value: raw, Reason: "magnitude must be positive"}
	}

	unit := parts[1]
	if canonical, ok := unitAliases[unit]; ok {
		unit = canonical
	}
	base, ok := unitDurations[unit]
	if !ok {
		return 0, &InvalidTimeRangeError{Field: field, Value: raw,
			Reason: fmt.Sprintf("unknown unit %q", parts[1])}
	}

	return time.Duration(mag * float64(base)), nil
}
