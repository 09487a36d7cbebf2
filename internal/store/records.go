package store

import "encoding/json"

// PlantRow is one knowledge-base record for the research and
// conservation collections. Fields that do not apply to a collection
// stay at their zero values; callers apply the documented defaults
// ("Unknown", empty list) when presenting records.
type PlantRow struct {
	ID            int64
	Collection    string
	PlantID       string
	BotanicalName string
	CommonNames   []string
	Family        string

	// Research fields
	TraditionalUses   []string
	MajorConstituents []string
	Pharmacology      string
	SafetyInfo        string

	// Conservation fields
	ConservationStatus string
	ThreatInfo         string

	// Free text used for semantic and keyword search.
	TextContent string

	// Similarity is populated by SemanticSearch only.
	Similarity float64
}

// LocationRow is one record of the geographic distribution collection:
// a district together with the plants recorded in it.
type LocationRow struct {
	ID        int64
	District  string
	Latitude  float64
	Longitude float64
	Plants    []string
	Soils     string
}

// encodeList stores a string list as a JSON array column.
func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeList reads a JSON array column back into a string list.
func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
