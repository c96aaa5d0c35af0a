package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/satrack/satrack/internal/catalog"
	"github.com/satrack/satrack/internal/celestrak"
	"github.com/satrack/satrack/internal/schema"
	"github.com/satrack/satrack/internal/timewin"
	"github.com/satrack/satrack/internal/tle"
	"github.com/satrack/satrack/internal/track"
)

// Resolver maps satellite identifiers to catalog entries.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (catalog.Entry, error)
}

// Searcher queries the remote catalog by free-text name.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.Entry, error)
}

// TLEFetcher retrieves the current element-set lines for a catalog number.
type TLEFetcher interface {
	FetchTLE(ctx context.Context, noradID int) (line1, line2 string, err error)
}

// maxRequestBytes caps the ground-track request body.
const maxRequestBytes = 64 << 10

// Default request parameters applied when the body omits them.
const (
	defaultStart    = "now"
	defaultDuration = "1 hour"
	defaultStep     = "1 minute"
)

type groundTrackRequest struct {
	Satellite    string  `json:"satellite"`
	StartTime    string  `json:"start_time"`
	Duration     string  `json:"duration"`
	StepInterval string  `json:"step_interval"`
	Footprint    bool    `json:"footprint"`
	FOVDeg       float64 `json:"fov_deg"`
	Batches      bool    `json:"batches"`
}

type satelliteInfoResponse struct {
	NORADID    int                `json:"norad_id"`
	Name       string             `json:"name"`
	ObjectType catalog.ObjectType `json:"object_type"`
	Country    string             `json:"country,omitempty"`
	LaunchDate string             `json:"launch_date,omitempty"`
	TLELine1   string             `json:"tle_line1"`
	TLELine2   string             `json:"tle_line2"`
}

// handleGroundTrack runs the full pipeline: resolve the identifier, fetch and
// validate the element set, parse the time window, compute, format.
func (s *Server) handleGroundTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req groundTrackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Satellite == "" {
		writeError(w, http.StatusBadRequest, "satellite identifier is required")
		return
	}
	if req.StartTime == "" {
		req.StartTime = defaultStart
	}
	if req.Duration == "" {
		req.Duration = defaultDuration
	}
	if req.StepInterval == "" {
		req.StepInterval = defaultStep
	}

	entry, err := s.resolver.Resolve(ctx, req.Satellite)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	line1, line2, err := s.tleFetcher.FetchTLE(ctx, entry.NORADID)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	es, err := tle.Validate(line1, line2)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	window, err := timewin.Parse(req.StartTime, req.Duration, req.StepInterval)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	points, err := s.engine.Compute(ctx, es, window, track.Options{
		Footprint: req.Footprint,
		FOVDeg:    req.FOVDeg,
	})
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	messages := schema.Format(strconv.Itoa(entry.NORADID), points, req.Batches)
	writeJSON(w, http.StatusOK, messages)
}

// handleSatelliteInfo returns the catalog record and current element set for
// one identifier.
func (s *Server) handleSatelliteInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entry, err := s.resolver.Resolve(ctx, r.PathValue("id"))
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	line1, line2, err := s.tleFetcher.FetchTLE(ctx, entry.NORADID)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, satelliteInfoResponse{
		NORADID:    entry.NORADID,
		Name:       entry.Name,
		ObjectType: entry.ObjectType,
		Country:    entry.Country,
		LaunchDate: entry.LaunchDate,
		TLELine1:   line1,
		TLELine2:   line2,
	})
}

// handleSearch proxies a name search against the remote catalog.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := s.searcher.Search(r.Context(), query, limit)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// writeMappedError translates the error taxonomy onto HTTP statuses. Client
// mistakes are 4xx; upstream and propagation faults are 502.
func (s *Server) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *catalog.NotFoundError
		ambiguous  *catalog.AmbiguousError
		badElems   *tle.InvalidElementSetError
		badRange   *timewin.InvalidTimeRangeError
		tooLarge   *timewin.RangeTooLargeError
		propFailed *track.PropagationError
		badCoord   *track.CoordinateValidationError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":       notFound.Error(),
			"suggestions": suggestionList(notFound.Suggestions),
		})
	case errors.As(err, &ambiguous):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      ambiguous.Error(),
			"candidates": suggestionList(ambiguous.Candidates),
		})
	case errors.Is(err, celestrak.ErrNoElements):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &badElems), errors.As(err, &badRange), errors.As(err, &tooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, celestrak.ErrUnavailable):
		s.logger.Warn("remote catalog unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "remote satellite catalog unavailable")
	case errors.As(err, &propFailed), errors.As(err, &badCoord):
		s.logger.Error("ground track computation failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		s.logger.Error("unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// suggestionList keeps the payload a JSON array even when empty.
func suggestionList(entries []catalog.Entry) []catalog.Entry {
	if entries == nil {
		return []catalog.Entry{}
	}
	return entries
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
