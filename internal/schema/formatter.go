// Package schema assembles computed ground-track points into the fixed
// telemetry output schema. Formatting is pure: range validation happened in
// the engine, so the only work here is field naming, timestamp rendering,
// fixed-precision rounding, and optional-field omission.
package schema

import (
	"math"
	"time"

	"github.com/satrack/satrack/internal/track"
)

// coordPrecision is the serialization precision for coordinates and
// altitudes: values are rounded to this many decimal places once, here, so a
// format/parse round trip reproduces them exactly.
const coordPrecision = 4

// PositionLLA is a geodetic position in the output schema.
type PositionLLA struct {
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	AltM   float64 `json:"alt_m"`
}

// TrajectorySample is one entry of a trajectory batch.
type TrajectorySample struct {
	Time        string      `json:"time"`
	PositionLLA PositionLLA `json:"position_lla"`
}

// PolygonGeometry is an RFC 7946 Polygon geometry.
type PolygonGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Feature is an RFC 7946 Feature wrapping a polygon, with empty properties.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   PolygonGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// TelemetryMessage is one record of the output array. Optional fields are
// omitted when absent, never emitted as null.
type TelemetryMessage struct {
	ID                string             `json:"id"`
	Time              string             `json:"time"`
	PositionLLA       PositionLLA        `json:"position_lla"`
	FootprintGeoJSON  *Feature           `json:"footprint_geojson,omitempty"`
	TrajectoryBatches []TrajectorySample `json:"trajectory_batches,omitempty"`
}

// Format renders one TelemetryMessage per computed point, in input order.
// When includeBatches is set, every message carries the full sample sequence
// as trajectory_batches. Batches are a presentation of the already-computed
// points, never a second computation.
func Format(id string, points []track.Point, includeBatches bool) []TelemetryMessage {
	var batches []TrajectorySample
	if includeBatches {
		batches = make([]TrajectorySample, len(points))
		for i, p := range points {
			batches[i] = TrajectorySample{
				Time:        Timestamp(p.Time),
				PositionLLA: positionLLA(p),
			}
		}
	}

	messages := make([]TelemetryMessage, len(points))
	for i, p := range points {
		msg := TelemetryMessage{
			ID:          id,
			Time:        Timestamp(p.Time),
			PositionLLA: positionLLA(p),
		}
		if p.Footprint != nil {
			msg.FootprintGeoJSON = footprintFeature(p.Footprint)
		}
		if includeBatches {
			msg.TrajectoryBatches = batches
		}
		messages[i] = msg
	}
	return messages
}

// Timestamp renders a UTC instant as ISO-8601 with an explicit Z suffix.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func positionLLA(p track.Point) PositionLLA {
	return PositionLLA{
		LatDeg: Round(p.Position.LatDeg),
		LonDeg: Round(p.Position.LonDeg),
		AltM:   Round(p.Position.AltM),
	}
}

// footprintFeature wraps a closed [lon, lat] ring as a Feature<Polygon>.
func footprintFeature(ring [][2]float64) *Feature {
	rounded := make([][2]float64, len(ring))
	for i, c := range ring {
		rounded[i] = [2]float64{Round(c[0]), Round(c[1])}
	}
	// Rounding must not unclose the ring.
	rounded[len(rounded)-1] = rounded[0]

	return &Feature{
		Type: "Feature",
		Geometry: PolygonGeometry{
			Type:        "Polygon",
			Coordinates: [][][2]float64{rounded},
		},
		Properties: map[string]any{},
	}
}

// Round applies the fixed serialization precision.
func Round(v float64) float64 {
	shift := math.Pow(10, coordPrecision)
	return math.Round(v*shift) / shift
}
