package agents

import (
	"context"
	"fmt"
	"strings"

	"sanjeevani/internal/botany"
	"sanjeevani/internal/logging"
	"sanjeevani/internal/store"
)

// cascade holds the search logic shared by the research and
// conservation agents. Tiers, highest precision first:
//
//  1. filtered search on botanical_name (extracted aliases, LIKE)
//  2. filtered search on common_names (contains-any)
//  3. semantic search over text content, validated against the aliases
//  4. keyword search fallback when the store errors twice
//
// Store failures trigger one reconnect before degrading a tier. The
// caller always gets a result, possibly empty with Err set.
type cascade struct {
	name       string
	collection string
	source     Source
	extractor  *botany.Extractor
}

// run executes the cascade and returns matched rows plus validation
// warnings. A nil row slice with a non-nil error means every tier
// failed.
func (c *cascade) run(ctx context.Context, query string, limit int) ([]store.PlantRow, []string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	aliases := c.extractor.ExtractList(query)
	logging.AgentsDebug("%s: query=%q aliases=%v", c.name, query, aliases)

	if len(aliases) > 0 {
		rows, err := c.filtered(ctx, aliases, limit)
		if err == nil && len(rows) > 0 {
			return rows, nil, nil
		}
		if err != nil {
			logging.Agents("%s: filtered search failed, continuing cascade: %v", c.name, err)
		}
	}

	rows, err := c.semanticWithRetry(ctx, query, limit)
	if err != nil {
		rows, err = c.source.KeywordSearch(ctx, c.collection, query,
			[]string{store.FieldBotanicalName, store.FieldCommonNames, store.FieldTextContent}, limit)
		if err != nil {
			logging.Agents("%s: all search tiers failed: %v", c.name, err)
			return nil, nil, err
		}
	}

	if len(aliases) == 0 {
		return rows, nil, nil
	}
	return validateRows(rows, aliases)
}

// filtered tries the precision tiers: botanical name LIKE, then
// common-names contains-any.
func (c *cascade) filtered(ctx context.Context, aliases []string, limit int) ([]store.PlantRow, error) {
	rows, err := c.source.FilteredSearch(ctx, c.collection, store.FieldBotanicalName, store.MatchLike, aliases, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}
	return c.source.FilteredSearch(ctx, c.collection, store.FieldCommonNames, store.MatchContainsAny, aliases, limit)
}

// semanticWithRetry reconnects once before giving up on the semantic
// tier.
func (c *cascade) semanticWithRetry(ctx context.Context, query string, limit int) ([]store.PlantRow, error) {
	rows, err := c.source.SemanticSearch(ctx, c.collection, query, limit)
	if err == nil {
		return rows, nil
	}
	logging.Agents("%s: semantic search failed (%v), reconnecting", c.name, err)
	if rerr := c.source.Reconnect(); rerr != nil {
		return nil, fmt.Errorf("semantic search failed and reconnect failed: %w", rerr)
	}
	return c.source.SemanticSearch(ctx, c.collection, query, limit)
}

// validateRows keeps rows whose names mention an extracted alias.
// Mismatches become warnings. If validation would empty the set, the
// unvalidated rows are returned with a single explanatory warning.
func validateRows(rows []store.PlantRow, aliases []string) ([]store.PlantRow, []string, error) {
	var kept []store.PlantRow
	var warnings []string
	for _, row := range rows {
		if rowMatchesAlias(row, aliases) {
			kept = append(kept, row)
		} else {
			warnings = append(warnings, fmt.Sprintf("%q may not match the plant asked about", displayName(row)))
		}
	}
	if len(kept) == 0 && len(rows) > 0 {
		warning := fmt.Sprintf("no direct matches found for %s; showing semantically similar results",
			strings.Join(aliases, ", "))
		return rows, []string{warning}, nil
	}
	return kept, warnings, nil
}

func rowMatchesAlias(row store.PlantRow, aliases []string) bool {
	botanical := strings.ToLower(row.BotanicalName)
	for _, alias := range aliases {
		if botanical != "" && strings.Contains(botanical, alias) {
			return true
		}
		for _, name := range row.CommonNames {
			if strings.Contains(strings.ToLower(name), alias) {
				return true
			}
		}
	}
	return false
}

func displayName(row store.PlantRow) string {
	if row.BotanicalName != "" {
		return row.BotanicalName
	}
	if len(row.CommonNames) > 0 {
		return row.CommonNames[0]
	}
	return "Unknown"
}

// failureResult builds the result returned when every tier failed.
func failureResult(name, domain string, err error) AgentResult {
	return AgentResult{
		Agent:   name,
		Summary: fmt.Sprintf("I'm sorry, the %s knowledge base is currently unavailable. Please try again shortly.", domain),
		Err:     err.Error(),
	}
}
