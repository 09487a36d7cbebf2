// Package agents implements the domain retrieval agents. Each agent
// owns one knowledge collection and answers ProcessQuery with an
// AgentResult, degrading through the search cascade instead of
// returning store errors to the caller.
package agents

import (
	"context"

	"sanjeevani/internal/store"
)

// DefaultLimit bounds results when the caller passes limit <= 0.
const DefaultLimit = 5

// Agent is the contract shared by the research, geography and
// conservation agents.
type Agent interface {
	// ProcessQuery runs the domain search cascade. It never returns an
	// error: total backend failure is reported through the result's
	// Err field with an apologetic summary.
	ProcessQuery(ctx context.Context, query string, limit int) AgentResult
	Capabilities() Capabilities
}

// Capabilities describes what an agent can answer, served verbatim by
// the HTTP API.
type Capabilities struct {
	Domain      string   `json:"domain"`
	Specialties []string `json:"specialties"`
}

// Source is the slice of the knowledge store the agents consume. It is
// satisfied by *store.Store; tests substitute failing or canned
// implementations.
type Source interface {
	FilteredSearch(ctx context.Context, collection, field string, mode store.MatchMode, values []string, limit int) ([]store.PlantRow, error)
	SemanticSearch(ctx context.Context, collection, text string, limit int) ([]store.PlantRow, error)
	KeywordSearch(ctx context.Context, collection, text string, fields []string, limit int) ([]store.PlantRow, error)
	LocationsByPlants(ctx context.Context, values []string, limit int) ([]store.LocationRow, error)
	LocationKeywordSearch(ctx context.Context, text string, limit int) ([]store.LocationRow, error)
	Reconnect() error
	State() store.ConnState
}

// AgentResult is the output of one ProcessQuery call.
type AgentResult struct {
	// Agent identifies which agent produced the result.
	Agent string `json:"agent"`

	// Plants holds research or conservation records; Locations holds
	// geography records. At most one of the two is populated.
	Plants    []PlantRecord    `json:"plants,omitempty"`
	Locations []LocationRecord `json:"locations,omitempty"`

	Summary    string   `json:"summary"`
	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`

	// Err carries a backend failure description. When set, the result
	// set is empty and Summary is user-presentable.
	Err string `json:"error,omitempty"`
}

// Empty reports whether the result carries no records.
func (r AgentResult) Empty() bool {
	return len(r.Plants) == 0 && len(r.Locations) == 0
}

// PlantRecord is one plant presented to the synthesizer. Absent fields
// use documented defaults so downstream formatting never hits missing
// keys.
type PlantRecord struct {
	BotanicalName string   `json:"botanical_name"`
	CommonNames   []string `json:"common_names"`
	Family        string   `json:"family,omitempty"`

	TraditionalUses   []string `json:"traditional_uses,omitempty"`
	MajorConstituents []string `json:"major_constituents,omitempty"`
	Pharmacology      string   `json:"pharmacology,omitempty"`
	SafetyInfo        string   `json:"safety_info,omitempty"`

	ConservationStatus string `json:"conservation_status,omitempty"`
	ThreatInfo         string `json:"threat_info,omitempty"`
}

// LocationRecord is one geographic hit.
type LocationRecord struct {
	District  string   `json:"district"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Plants    []string `json:"plants"`
	Soils     string   `json:"soils,omitempty"`
}

// confidence maps a result count onto [0,1] against the requested
// limit.
func confidence(count, limit int) float64 {
	if limit <= 0 {
		limit = DefaultLimit
	}
	c := float64(count) / float64(limit)
	if c > 1 {
		c = 1
	}
	return c
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
