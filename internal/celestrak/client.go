// Package celestrak is the HTTP client for the CelesTrak satellite catalog:
// SATCAT record search and GP element-set retrieval. It is the only package
// that talks to the network; transport failures surface as ErrUnavailable so
// callers can tell "catalog unreachable" apart from "no such satellite".
package celestrak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/satrack/satrack/internal/catalog"
	"github.com/satrack/satrack/internal/metrics"
)

const defaultBaseURL = "https://celestrak.org"

// maxResponseBytes caps catalog responses; SATCAT pages and GP element sets
// are far smaller than this.
const maxResponseBytes = 10 << 20

// searchRetryBackoff is the single retry delay after a transport failure.
const searchRetryBackoff = 250 * time.Millisecond

// ErrUnavailable marks transport-level failures of the remote catalog.
var ErrUnavailable = errors.New("remote satellite catalog unavailable")

// ErrNoElements marks a catalog number with no published GP element set
// (decayed, never tracked, or simply absent).
var ErrNoElements = errors.New("no element set published for catalog number")

// Client talks to the CelesTrak SATCAT and GP endpoints. Requests are
// rate-limited client-side so bursts of tool calls stay polite.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client for the given base URL ("" selects CelesTrak).
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
}

// satcatRecord mirrors the SATCAT JSON schema, including the legacy field
// names older snapshots use.
type satcatRecord struct {
	ObjectName  string `json:"OBJECT_NAME"`
	Name        string `json:"NAME"`
	NoradCatID  any    `json:"NORAD_CAT_ID"`
	CatNr       any    `json:"CATNR"`
	ObjectType  string `json:"OBJECT_TYPE"`
	Country     string `json:"COUNTRY"`
	Owner       string `json:"OWNER"`
	LaunchDate  string `json:"LAUNCH_DATE"`
	ObjectID    string `json:"OBJECT_ID"`
	OpsStatus   string `json:"OPS_STATUS_CODE"`
	DecayDate   string `json:"DECAY_DATE"`
	Inclination any    `json:"INCLINATION"`
}

// Search queries the SATCAT database by name. Results are ordered by NORAD ID
// ascending so a fixed catalog snapshot always yields the same sequence.
// A transport failure is retried once with a short backoff.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]catalog.Entry, error) {
	u := fmt.Sprintf("%s/satcat/records.php?NAME=%s&FORMAT=json", c.baseURL, url.QueryEscape(query))

	body, err := c.get(ctx, u, "search")
	if err != nil && errors.Is(err, ErrUnavailable) && ctx.Err() == nil {
		c.logger.Warn("catalog search failed, retrying once", "query", query, "error", err)
		select {
		case <-time.After(searchRetryBackoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("catalog search: %w", ctx.Err())
		}
		body, err = c.get(ctx, u, "search")
	}
	if err != nil {
		return nil, err
	}

	entries, err := parseSatcat(body)
	if err != nil {
		return nil, fmt.Errorf("parsing SATCAT response: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].NORADID < entries[j].NORADID })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Lookup fetches the SATCAT record for an exact catalog number.
func (c *Client) Lookup(ctx context.Context, noradID int) (catalog.Entry, bool, error) {
	u := fmt.Sprintf("%s/satcat/records.php?CATNR=%d&FORMAT=json", c.baseURL, noradID)

	body, err := c.get(ctx, u, "lookup")
	if err != nil {
		return catalog.Entry{}, false, err
	}

	entries, err := parseSatcat(body)
	if err != nil {
		return catalog.Entry{}, false, fmt.Errorf("parsing SATCAT response: %w", err)
	}
	for _, e := range entries {
		if e.NORADID == noradID {
			return e, true, nil
		}
	}
	return catalog.Entry{}, false, nil
}

// FetchTLE retrieves the current two-line element set for a catalog number.
// The response is either NAME+line1+line2 or just the two lines; both forms
// are handled. The lines are returned raw; validation is the caller's job.
func (c *Client) FetchTLE(ctx context.Context, noradID int) (line1, line2 string, err error) {
	// FORMAT=tle is deliberately omitted: the GP endpoint defaults to TLE and
	// rejects the explicit parameter for some catalog numbers.
	u := fmt.Sprintf("%s/NORAD/elements/gp.php?CATNR=%d", c.baseURL, noradID)

	body, err := c.get(ctx, u, "gp")
	if err != nil {
		return "", "", err
	}

	text := strings.TrimSpace(string(body))
	if text == "" || strings.Contains(text, "No GP data found") ||
		strings.Contains(strings.ToLower(text), "not found") {
		return "", "", fmt.Errorf("catalog number %d: %w", noradID, ErrNoElements)
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	switch {
	case len(lines) >= 3:
		return lines[1], lines[2], nil
	case len(lines) == 2:
		return lines[0], lines[1], nil
	default:
		return "", "", fmt.Errorf("catalog number %d: GP response has %d lines: %w", noradID, len(lines), ErrNoElements)
	}
}

// get performs one rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, u, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRemoteRequest(endpoint, "transport_error")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordRemoteRequest(endpoint, "http_"+strconv.Itoa(resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, u)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		metrics.RecordRemoteRequest(endpoint, "read_error")
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if len(body) > maxResponseBytes {
		metrics.RecordRemoteRequest(endpoint, "oversize")
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", u, maxResponseBytes)
	}

	metrics.RecordRemoteRequest(endpoint, "ok")
	return body, nil
}

// parseSatcat decodes a SATCAT JSON array into catalog entries. Records
// without a usable catalog number are skipped.
func parseSatcat(body []byte) ([]catalog.Entry, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}

	var records []satcatRecord
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, err
	}

	entries := make([]catalog.Entry, 0, len(records))
	for _, rec := range records {
		id := numericID(rec.NoradCatID)
		if id == 0 {
			id = numericID(rec.CatNr)
		}
		if id == 0 {
			continue
		}

		name := rec.ObjectName
		if name == "" {
			name = rec.Name
		}
		country := rec.Country
		if country == "" {
			country = rec.Owner
		}

		entries = append(entries, catalog.Entry{
			NORADID:    id,
			Name:       name,
			ObjectType: objectType(rec.ObjectType),
			Country:    country,
			LaunchDate: rec.LaunchDate,
		})
	}
	return entries, nil
}

// numericID extracts a catalog number that may arrive as a JSON number or string.
func numericID(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return id
	default:
		return 0
	}
}

// objectType maps SATCAT type codes onto the catalog enum.
func objectType(code string) catalog.ObjectType {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "PAY", "PAYLOAD":
		return catalog.ObjectPayload
	case "DEB", "DEBRIS":
		return catalog.ObjectDebris
	case "R/B", "ROCKET BODY":
		return catalog.ObjectRocketBody
	default:
		return catalog.ObjectUnknown
	}
}
