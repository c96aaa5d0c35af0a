package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/satrack/satrack/internal/catalog"
	"github.com/satrack/satrack/internal/celestrak"
	"github.com/satrack/satrack/internal/schema"
	"github.com/satrack/satrack/internal/timewin"
	"github.com/satrack/satrack/internal/tle"
	"github.com/satrack/satrack/internal/track"
)

var trackFlags struct {
	satellite string
	start     string
	duration  string
	step      string
	footprint bool
	fovDeg    float64
	batches   bool
	timeout   time.Duration
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Compute one ground track and print it as JSON",
	Long: `Compute a ground track for a single satellite and print the telemetry
messages to stdout as a JSON array.

Examples:
  satrack track --satellite ISS
  satrack track --satellite 25544 --start "in 30 minutes" --duration "2 hours" --step "30 sec"
  satrack track --satellite hubble --footprint --fov 45`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack()
	},
}

func init() {
	f := trackCmd.Flags()
	f.StringVar(&trackFlags.satellite, "satellite", "", "satellite name, alias, or NORAD catalog number (required)")
	f.StringVar(&trackFlags.start, "start", "now", "window start: now, RFC 3339, or \"in N <unit>\"")
	f.StringVar(&trackFlags.duration, "duration", "1 hour", "window length, e.g. \"90\" (minutes) or \"2 hours\"")
	f.StringVar(&trackFlags.step, "step", "1 minute", "sampling interval, e.g. \"30 sec\"")
	f.BoolVar(&trackFlags.footprint, "footprint", false, "include visibility footprint polygons")
	f.Float64Var(&trackFlags.fovDeg, "fov", 0, "sensor field of view in degrees (default 60)")
	f.BoolVar(&trackFlags.batches, "batches", false, "include trajectory batches in each message")
	f.DurationVar(&trackFlags.timeout, "timeout", 60*time.Second, "overall timeout")
	trackCmd.MarkFlagRequired("satellite")
}

func runTrack() error {
	logger := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), trackFlags.timeout)
	defer cancel()

	client := celestrak.NewClient(os.Getenv("SATRACK_CELESTRAK_URL"), logger)
	resolver := catalog.NewResolver(client, loadResolverConfig(logger), logger)
	engine := track.NewEngine(logger)

	entry, err := resolver.Resolve(ctx, trackFlags.satellite)
	if err != nil {
		return err
	}

	line1, line2, err := client.FetchTLE(ctx, entry.NORADID)
	if err != nil {
		return err
	}

	es, err := tle.Validate(line1, line2)
	if err != nil {
		return err
	}

	window, err := timewin.Parse(trackFlags.start, trackFlags.duration, trackFlags.step)
	if err != nil {
		return err
	}

	points, err := engine.Compute(ctx, es, window, track.Options{
		Footprint: trackFlags.footprint,
		FOVDeg:    trackFlags.fovDeg,
	})
	if err != nil {
		return err
	}

	messages := schema.Format(strconv.Itoa(entry.NORADID), points, trackFlags.batches)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(messages)
}
