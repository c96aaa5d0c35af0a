// Package tle validates two-line element sets before they are trusted by the
// propagation pipeline. A raw TLE fetched from a remote catalog passes through
// Validate exactly once; only a validated ElementSet ever reaches SGP4.
package tle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// lineLength is the fixed length of each TLE line including the checksum digit.
const lineLength = 69

// ElementSet is a structurally validated two-line element set.
type ElementSet struct {
	NORADID int
	Line1   string
	Line2   string
	Epoch   time.Time

	InclinationDeg float64
	Eccentricity   float64
	MeanMotion     float64 // revolutions per day
}

// InvalidElementSetError reports a structural or range violation in a TLE,
// naming the field that failed.
type InvalidElementSetError struct {
	Field  string
	Reason string
}

func (e *InvalidElementSetError) Error() string {
	return fmt.Sprintf("invalid element set: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &InvalidElementSetError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks a raw TLE line pair and returns the parsed ElementSet.
// Checks run in order and short-circuit on the first failure: line length,
// line number markers, mod-10 checksums, matching NORAD IDs, then physical
// ranges (inclination, eccentricity, mean motion).
func Validate(line1, line2 string) (*ElementSet, error) {
	line1 = strings.TrimRight(line1, "\r\n ")
	line2 = strings.TrimRight(line2, "\r\n ")

	if len(line1) != lineLength {
		return nil, invalid("line1", "length %d, expected %d", len(line1), lineLength)
	}
	if len(line2) != lineLength {
		return nil, invalid("line2", "length %d, expected %d", len(line2), lineLength)
	}
	if line1[0] != '1' {
		return nil, invalid("line1", "line number marker %q, expected '1'", line1[0])
	}
	if line2[0] != '2' {
		return nil, invalid("line2", "line number marker %q, expected '2'", line2[0])
	}
	if got, want := checksum(line1), int(line1[68]-'0'); got != want {
		return nil, invalid("line1 checksum", "computed %d, embedded %d", got, want)
	}
	if got, want := checksum(line2), int(line2[68]-'0'); got != want {
		return nil, invalid("line2 checksum", "computed %d, embedded %d", got, want)
	}

	id1, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return nil, invalid("line1 catalog number", "%q is not numeric", strings.TrimSpace(line1[2:7]))
	}
	id2, err := strconv.Atoi(strings.TrimSpace(line2[2:7]))
	if err != nil {
		return nil, invalid("line2 catalog number", "%q is not numeric", strings.TrimSpace(line2[2:7]))
	}
	if id1 != id2 {
		return nil, invalid("catalog number", "line1 has %d, line2 has %d", id1, id2)
	}

	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return nil, invalid("epoch", "%v", err)
	}

	incl, err := strconv.ParseFloat(strings.TrimSpace(line2[8:16]), 64)
	if err != nil {
		return nil, invalid("inclination", "%q is not numeric", strings.TrimSpace(line2[8:16]))
	}
	if incl < 0 || incl > 180 {
		return nil, invalid("inclination", "%.4f° outside [0, 180]", incl)
	}

	// Eccentricity is stored with an implied leading decimal point.
	ecc, err := strconv.ParseFloat("0."+strings.TrimSpace(line2[26:33]), 64)
	if err != nil {
		return nil, invalid("eccentricity", "%q is not numeric", strings.TrimSpace(line2[26:33]))
	}
	if ecc < 0 || ecc >= 1 {
		return nil, invalid("eccentricity", "%.7f outside [0, 1)", ecc)
	}

	mm, err := strconv.ParseFloat(strings.TrimSpace(line2[52:63]), 64)
	if err != nil {
		return nil, invalid("mean motion", "%q is not numeric", strings.TrimSpace(line2[52:63]))
	}
	if mm <= 0 {
		return nil, invalid("mean motion", "%.8f rev/day, expected > 0", mm)
	}

	return &ElementSet{
		NORADID:        id1,
		Line1:          line1,
		Line2:          line2,
		Epoch:          epoch,
		InclinationDeg: incl,
		Eccentricity:   ecc,
		MeanMotion:     mm,
	}, nil
}

// checksum computes the TLE mod-10 checksum over the first 68 characters:
// digits count their value, minus signs count 1, everything else counts 0.
func checksum(line string) int {
	var sum int
	for i := 0; i < 68; i++ {
		c := line[i]
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// parseEpoch converts a TLE epoch in YYDDD.DDDDDDDD format to time.Time.
// Years 00-56 map to the 2000s, 57-99 to the 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}
	if dayOfYear < 1 || dayOfYear >= 367 {
		return time.Time{}, fmt.Errorf("epoch day %.8f out of range", dayOfYear)
	}

	// Day of year is 1-based: day 1.0 is Jan 1 00:00 UTC.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
