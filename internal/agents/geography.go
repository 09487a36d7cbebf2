package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sanjeevani/internal/botany"
	"sanjeevani/internal/logging"
	"sanjeevani/internal/store"
)

// maxNamedDistricts bounds how many district names a summary spells
// out before collapsing the remainder into a count.
const maxNamedDistricts = 10

// GeographyAgent answers "where does it grow" questions from the
// location collection. The plants column is matched case-sensitively,
// so the structural filter tries each candidate in both lower-case and
// title-case form before degrading to a keyword search.
type GeographyAgent struct {
	source    Source
	extractor *botany.Extractor
}

// NewGeographyAgent binds the agent to the location collection of src.
func NewGeographyAgent(src Source, extractor *botany.Extractor) *GeographyAgent {
	if extractor == nil {
		extractor = botany.NewExtractor(nil)
	}
	return &GeographyAgent{source: src, extractor: extractor}
}

func (a *GeographyAgent) Capabilities() Capabilities {
	return Capabilities{
		Domain: "geography",
		Specialties: []string{
			"distribution by district",
			"habitat and soil",
			"map coordinates",
		},
	}
}

// ProcessQuery runs the structural filter, falls back to a keyword
// search, then summarizes the matched districts.
func (a *GeographyAgent) ProcessQuery(ctx context.Context, query string, limit int) AgentResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates := a.extractor.ExtractList(query)
	subject := query
	if len(candidates) > 0 {
		// Prefer the alias the user actually typed for the summary.
		subject = candidates[0]
		lower := strings.ToLower(query)
		for _, c := range candidates {
			if strings.Contains(lower, c) {
				subject = c
				break
			}
		}
	}
	logging.AgentsDebug("geography: query=%q candidates=%v", query, candidates)

	rows, err := a.structuralFilter(ctx, candidates, limit)
	if err == nil && len(rows) == 0 {
		rows, err = a.source.LocationKeywordSearch(ctx, query, limit)
	}
	if err != nil {
		logging.Agents("geography: search failed (%v), reconnecting", err)
		if rerr := a.source.Reconnect(); rerr != nil {
			return failureResult("geography", "geography", rerr)
		}
		rows, err = a.source.LocationKeywordSearch(ctx, query, limit)
		if err != nil {
			return failureResult("geography", "geography", err)
		}
	}

	locations := make([]LocationRecord, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, LocationRecord{
			District:  row.District,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			Plants:    row.Plants,
			Soils:     row.Soils,
		})
	}
	return AgentResult{
		Agent:      "geography",
		Locations:  locations,
		Summary:    locationSummary(subject, locations),
		Confidence: confidence(len(locations), limit),
	}
}

// structuralFilter matches candidates against the plants column in
// lower-case and title-case forms. No candidates means no structural
// tier.
func (a *GeographyAgent) structuralFilter(ctx context.Context, candidates []string, limit int) ([]store.LocationRow, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	forms := make([]string, 0, len(candidates)*2)
	seen := make(map[string]struct{})
	for _, c := range candidates {
		for _, form := range []string{strings.ToLower(c), titleCase(c)} {
			if _, ok := seen[form]; ok {
				continue
			}
			seen[form] = struct{}{}
			forms = append(forms, form)
		}
	}
	return a.source.LocationsByPlants(ctx, forms, limit)
}

// locationSummary names up to maxNamedDistricts unique districts,
// sorted, with a remainder count.
func locationSummary(subject string, locations []LocationRecord) string {
	if len(locations) == 0 {
		return fmt.Sprintf("No recorded locations found for '%s'.", subject)
	}
	seen := make(map[string]struct{})
	var districts []string
	for _, loc := range locations {
		if _, ok := seen[loc.District]; ok {
			continue
		}
		seen[loc.District] = struct{}{}
		districts = append(districts, loc.District)
	}
	sort.Strings(districts)

	named := districts
	var remainder string
	if len(districts) > maxNamedDistricts {
		named = districts[:maxNamedDistricts]
		remainder = fmt.Sprintf(" and %d others", len(districts)-maxNamedDistricts)
	}
	return fmt.Sprintf("Found '%s' in %d district(s): %s%s.",
		subject, len(districts), strings.Join(named, ", "), remainder)
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
