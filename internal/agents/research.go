package agents

import (
	"context"
	"fmt"
	"strings"

	"sanjeevani/internal/botany"
	"sanjeevani/internal/store"
)

const (
	// Pharmacology blurbs in the corpus run to multiple pages; the
	// synthesizer only ever sees the head.
	maxPharmacologyChars   = 500
	maxTraditionalUseChars = 100
)

// ResearchAgent answers questions about traditional uses, chemistry
// and pharmacology of medicinal plants.
type ResearchAgent struct {
	cascade cascade
}

// NewResearchAgent binds the agent to the research collection of src.
func NewResearchAgent(src Source, collection string, extractor *botany.Extractor) *ResearchAgent {
	if extractor == nil {
		extractor = botany.NewExtractor(nil)
	}
	return &ResearchAgent{cascade: cascade{
		name:       "research",
		collection: collection,
		source:     src,
		extractor:  extractor,
	}}
}

func (a *ResearchAgent) Capabilities() Capabilities {
	return Capabilities{
		Domain: "research",
		Specialties: []string{
			"traditional uses",
			"phytochemistry",
			"pharmacology",
			"safety and contraindications",
		},
	}
}

// ProcessQuery runs the shared cascade and shapes research records.
func (a *ResearchAgent) ProcessQuery(ctx context.Context, query string, limit int) AgentResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, warnings, err := a.cascade.run(ctx, query, limit)
	if err != nil {
		return failureResult("research", "research", err)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	plants := make([]PlantRecord, 0, len(rows))
	for _, row := range rows {
		plants = append(plants, researchRecord(row))
	}
	return AgentResult{
		Agent:      "research",
		Plants:     plants,
		Summary:    plantSummary("research", query, plants),
		Confidence: confidence(len(plants), limit),
		Warnings:   warnings,
	}
}

func researchRecord(row store.PlantRow) PlantRecord {
	rec := PlantRecord{
		BotanicalName:     row.BotanicalName,
		CommonNames:       row.CommonNames,
		Family:            row.Family,
		MajorConstituents: row.MajorConstituents,
		Pharmacology:      truncate(row.Pharmacology, maxPharmacologyChars),
		SafetyInfo:        row.SafetyInfo,
	}
	if rec.BotanicalName == "" {
		rec.BotanicalName = "Unknown"
	}
	if rec.CommonNames == nil {
		rec.CommonNames = []string{}
	}
	for _, use := range row.TraditionalUses {
		rec.TraditionalUses = append(rec.TraditionalUses, truncate(use, maxTraditionalUseChars))
	}
	return rec
}

// plantSummary is shared with the conservation agent.
func plantSummary(domain, query string, plants []PlantRecord) string {
	if len(plants) == 0 {
		return fmt.Sprintf("No %s records matched %q.", domain, query)
	}
	names := make([]string, 0, len(plants))
	for _, p := range plants {
		names = append(names, p.BotanicalName)
	}
	return fmt.Sprintf("Found %d %s record(s): %s.", len(plants), domain, strings.Join(names, ", "))
}
