package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/satrack/satrack/internal/metrics"
)

// NORAD catalog numbers are positive and at most six digits (alpha-5 era).
const maxNORADID = 999999

// Remote is the searchable fallback catalog behind the local table.
type Remote interface {
	// Search returns candidate entries for a free-text query, ordered by
	// NORAD ID ascending.
	Search(ctx context.Context, query string, limit int) ([]Entry, error)
	// Lookup fetches the entry for an exact NORAD catalog number.
	// ok is false when the catalog has no such object.
	Lookup(ctx context.Context, noradID int) (entry Entry, ok bool, err error)
}

// Config tunes the resolver. Zero values select defaults.
type Config struct {
	SuggestionLimit int       // ranked near-matches carried on failures (default 5)
	CacheSize       int       // bound on memoized remote resolutions (default 1024)
	Score           ScoreFunc // matching heuristic (default DefaultScore)
}

// Resolver maps identifier strings to catalog entries through the two-tier
// chain. Safe for concurrent use.
type Resolver struct {
	table           *localTable
	remote          Remote
	cache           *lookupCache
	score           ScoreFunc
	suggestionLimit int
	logger          *slog.Logger
}

// NewResolver builds a Resolver over the built-in local table and the given
// remote catalog.
func NewResolver(remote Remote, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = 5
	}
	if cfg.Score == nil {
		cfg.Score = DefaultScore
	}
	table := newLocalTable()
	metrics.SetLocalCatalogSize(table.size())
	return &Resolver{
		table:           table,
		remote:          remote,
		cache:           newLookupCache(cfg.CacheSize),
		score:           cfg.Score,
		suggestionLimit: cfg.SuggestionLimit,
		logger:          logger,
	}
}

// Resolve maps an identifier to a catalog entry. Numeric identifiers are
// NORAD IDs and bypass fuzzy scoring entirely; names go through the local
// table, then the remote catalog with scoring.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Entry, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return Entry{}, &NotFoundError{Identifier: identifier}
	}

	if id, err := strconv.Atoi(trimmed); err == nil {
		return r.resolveID(ctx, identifier, id)
	}
	return r.resolveName(ctx, identifier)
}

func (r *Resolver) resolveID(ctx context.Context, identifier string, id int) (Entry, error) {
	if id < 1 || id > maxNORADID {
		metrics.RecordCatalogResolution("none", "not_found")
		return Entry{}, &NotFoundError{Identifier: identifier}
	}

	if e, ok := r.table.lookupID(id); ok {
		metrics.RecordCatalogResolution("local", "hit")
		return e, nil
	}

	key := strconv.Itoa(id)
	if e, ok := r.cache.get(key); ok {
		metrics.RecordCatalogResolution("cache", "hit")
		return e, nil
	}

	e, ok, err := r.remote.Lookup(ctx, id)
	if err != nil {
		metrics.RecordCatalogResolution("remote", "error")
		return Entry{}, fmt.Errorf("remote catalog lookup for %d: %w", id, err)
	}
	if !ok {
		metrics.RecordCatalogResolution("remote", "not_found")
		return Entry{}, &NotFoundError{Identifier: identifier}
	}

	r.cache.put(key, e)
	metrics.RecordCatalogResolution("remote", "hit")
	return e, nil
}

func (r *Resolver) resolveName(ctx context.Context, identifier string) (Entry, error) {
	normalized := normalize(identifier)

	if e, ok := r.table.lookupName(normalized); ok {
		metrics.RecordCatalogResolution("local", "hit")
		return e, nil
	}

	if e, ok := r.cache.get(normalized); ok {
		metrics.RecordCatalogResolution("cache", "hit")
		return e, nil
	}

	candidates, err := r.remote.Search(ctx, normalized, r.suggestionLimit*4)
	if err != nil {
		metrics.RecordCatalogResolution("remote", "error")
		return Entry{}, fmt.Errorf("remote catalog search for %q: %w", identifier, err)
	}
	if len(candidates) == 0 {
		metrics.RecordCatalogResolution("remote", "not_found")
		return Entry{}, &NotFoundError{Identifier: identifier}
	}

	ranked := r.rank(normalized, candidates)

	var confident []Entry
	for _, sc := range ranked {
		if sc.score >= scoreAccept {
			confident = append(confident, sc.entry)
		}
	}

	switch len(confident) {
	case 1:
		r.cache.put(normalized, confident[0])
		metrics.RecordCatalogResolution("remote", "hit")
		r.logger.Debug("resolved via remote catalog",
			"identifier", identifier,
			"norad_id", confident[0].NORADID,
			"name", confident[0].Name,
		)
		return confident[0], nil
	case 0:
		metrics.RecordCatalogResolution("remote", "not_found")
		return Entry{}, &NotFoundError{
			Identifier:  identifier,
			Suggestions: r.top(ranked),
		}
	default:
		metrics.RecordCatalogResolution("remote", "ambiguous")
		return Entry{}, &AmbiguousError{
			Identifier: identifier,
			Candidates: r.top(ranked),
		}
	}
}

type scored struct {
	entry Entry
	score float64
}

// rank scores candidates and orders them by score descending, breaking ties
// by NORAD ID ascending so results are deterministic for a fixed snapshot.
func (r *Resolver) rank(query string, candidates []Entry) []scored {
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{entry: c, score: r.score(query, c.Name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].entry.NORADID < ranked[j].entry.NORADID
	})
	return ranked
}

// top returns up to the configured suggestion limit of ranked entries.
func (r *Resolver) top(ranked []scored) []Entry {
	n := len(ranked)
	if n > r.suggestionLimit {
		n = r.suggestionLimit
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].entry
	}
	return out
}

// LocalTableSize reports how many entries the built-in table carries.
func (r *Resolver) LocalTableSize() int {
	return r.table.size()
}

// CachedLookups reports how many remote resolutions are currently memoized.
func (r *Resolver) CachedLookups() int {
	return r.cache.len()
}
