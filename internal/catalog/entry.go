// Package catalog resolves user-supplied satellite identifiers (names,
// aliases, partial names, or NORAD catalog numbers) to canonical catalog
// entries. Resolution runs through an ordered chain: a local fast table of
// well-known satellites and aliases first, then a remote searchable catalog
// with fuzzy scoring. Remote hits are memoized in a bounded in-process cache.
package catalog

import "fmt"

// ObjectType classifies a catalogued object.
type ObjectType string

const (
	ObjectPayload    ObjectType = "PAYLOAD"
	ObjectDebris     ObjectType = "DEBRIS"
	ObjectRocketBody ObjectType = "ROCKET_BODY"
	ObjectUnknown    ObjectType = "UNKNOWN"
)

// Entry is a canonical satellite catalog record.
type Entry struct {
	NORADID    int        `json:"norad_id"`
	Name       string     `json:"name"`
	ObjectType ObjectType `json:"object_type"`
	Country    string     `json:"country,omitempty"`
	LaunchDate string     `json:"launch_date,omitempty"` // YYYY-MM-DD, empty when unknown
}

// NotFoundError reports an identifier that matched nothing with confidence.
// Suggestions carry the best-scoring near misses, ranked.
type NotFoundError struct {
	Identifier  string
	Suggestions []Entry
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("satellite %q not found", e.Identifier)
	}
	return fmt.Sprintf("satellite %q not found (%d near matches available)", e.Identifier, len(e.Suggestions))
}

// AmbiguousError reports an identifier with several equally plausible matches.
type AmbiguousError struct {
	Identifier string
	Candidates []Entry
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("satellite %q is ambiguous: %d candidates match", e.Identifier, len(e.Candidates))
}
