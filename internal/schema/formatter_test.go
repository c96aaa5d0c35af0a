package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/satrack/satrack/internal/track"
	"github.com/satrack/satrack/internal/transform"
)

func samplePoints() []track.Point {
	t0 := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	return []track.Point{
		{
			Time:     t0,
			Position: transform.Geodetic{LatDeg: 51.64123456, LonDeg: -94.78239999, AltM: 417234.56789},
		},
		{
			Time:     t0.Add(time.Minute),
			Position: transform.Geodetic{LatDeg: 50.12, LonDeg: -92.3, AltM: 416900},
		},
	}
}

func TestFormatBasicFields(t *testing.T) {
	msgs := Format("25544", samplePoints(), false)
	if len(msgs) != 2 {
		t.Fatalf("Format returned %d messages, want 2", len(msgs))
	}

	first := msgs[0]
	if first.ID != "25544" {
		t.Errorf("ID = %q, want %q", first.ID, "25544")
	}
	if first.Time != "2026-08-25T12:00:00Z" {
		t.Errorf("Time = %q, want %q", first.Time, "2026-08-25T12:00:00Z")
	}
	if first.PositionLLA.LatDeg != 51.6412 {
		t.Errorf("LatDeg = %v, want 51.6412 (4-decimal rounding)", first.PositionLLA.LatDeg)
	}
	if first.PositionLLA.LonDeg != -94.7824 {
		t.Errorf("LonDeg = %v, want -94.7824", first.PositionLLA.LonDeg)
	}
	if first.PositionLLA.AltM != 417234.5679 {
		t.Errorf("AltM = %v, want 417234.5679", first.PositionLLA.AltM)
	}
	if msgs[1].Time != "2026-08-25T12:01:00Z" {
		t.Errorf("second Time = %q, want %q", msgs[1].Time, "2026-08-25T12:01:00Z")
	}
}

func TestFormatOptionalFieldsOmitted(t *testing.T) {
	msgs := Format("25544", samplePoints(), false)

	raw, err := json.Marshal(msgs[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "time", "position_lla"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("required key %q missing from output", key)
		}
	}
	// Absent optionals must be omitted entirely, not emitted as null.
	for _, key := range []string{"footprint_geojson", "trajectory_batches"} {
		if _, ok := fields[key]; ok {
			t.Errorf("optional key %q present without data", key)
		}
	}
}

func TestFormatFootprintFeature(t *testing.T) {
	points := samplePoints()
	points[0].Footprint = [][2]float64{
		{10.12345678, 20.98765432},
		{11, 21},
		{12, 20},
		{10.12345678, 20.98765432},
	}

	msgs := Format("25544", points, false)
	feat := msgs[0].FootprintGeoJSON
	if feat == nil {
		t.Fatal("FootprintGeoJSON is nil for a point carrying a footprint")
	}
	if feat.Type != "Feature" || feat.Geometry.Type != "Polygon" {
		t.Errorf("feature types = %q/%q, want Feature/Polygon", feat.Type, feat.Geometry.Type)
	}
	if feat.Properties == nil || len(feat.Properties) != 0 {
		t.Errorf("Properties = %v, want empty non-nil map", feat.Properties)
	}

	ring := feat.Geometry.Coordinates[0]
	if len(ring) != 4 {
		t.Fatalf("ring has %d vertices, want 4", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("ring not closed after rounding: first %v last %v", ring[0], ring[len(ring)-1])
	}
	if ring[0][0] != 10.1235 || ring[0][1] != 20.9877 {
		t.Errorf("ring[0] = %v, want [10.1235 20.9877]", ring[0])
	}

	// A message without a footprint stays bare.
	if msgs[1].FootprintGeoJSON != nil {
		t.Error("second message has a footprint it was never given")
	}

	raw, err := json.Marshal(feat)
	if err != nil {
		t.Fatalf("marshal feature: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal feature: %v", err)
	}
	if string(fields["properties"]) != "{}" {
		t.Errorf("properties serialized as %s, want {}", fields["properties"])
	}
}

func TestFormatTrajectoryBatches(t *testing.T) {
	points := samplePoints()
	msgs := Format("iss", points, true)

	for i, msg := range msgs {
		if len(msg.TrajectoryBatches) != len(points) {
			t.Fatalf("message %d carries %d batch samples, want %d", i, len(msg.TrajectoryBatches), len(points))
		}
	}

	batch := msgs[0].TrajectoryBatches
	if batch[0].Time != "2026-08-25T12:00:00Z" || batch[1].Time != "2026-08-25T12:01:00Z" {
		t.Errorf("batch times = %q, %q; want ascending window instants", batch[0].Time, batch[1].Time)
	}
	if batch[0].PositionLLA != msgs[0].PositionLLA {
		t.Errorf("batch position %v differs from message position %v", batch[0].PositionLLA, msgs[0].PositionLLA)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	points := samplePoints()
	points[0].Footprint = [][2]float64{{1, 2}, {3, 4}, {5, 6}, {1, 2}}
	msgs := Format("25544", points, true)

	raw, err := json.Marshal(msgs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []TelemetryMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != len(msgs) {
		t.Fatalf("round trip changed message count: %d != %d", len(decoded), len(msgs))
	}
	// 4-decimal values survive a marshal/parse cycle bit-exact.
	if decoded[0].PositionLLA != msgs[0].PositionLLA {
		t.Errorf("position changed in round trip: %v != %v", decoded[0].PositionLLA, msgs[0].PositionLLA)
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1.23456, 1.2346},
		{-1.23454, -1.2345},
		{180.0, 180.0},
		{-94.78239999, -94.7824},
		{417234.56789, 417234.5679},
	}
	for _, tc := range cases {
		if got := Round(tc.in); got != tc.want {
			t.Errorf("Round(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
