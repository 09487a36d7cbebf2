package agents

import (
	"context"

	"sanjeevani/internal/botany"
	"sanjeevani/internal/store"
)

// ConservationAgent answers questions about conservation status and
// threats, backed by IUCN-style assessment records.
type ConservationAgent struct {
	cascade cascade
}

// NewConservationAgent binds the agent to the conservation collection
// of src.
func NewConservationAgent(src Source, collection string, extractor *botany.Extractor) *ConservationAgent {
	if extractor == nil {
		extractor = botany.NewExtractor(nil)
	}
	return &ConservationAgent{cascade: cascade{
		name:       "conservation",
		collection: collection,
		source:     src,
		extractor:  extractor,
	}}
}

func (a *ConservationAgent) Capabilities() Capabilities {
	return Capabilities{
		Domain: "conservation",
		Specialties: []string{
			"conservation status",
			"threat assessment",
			"endangered species",
		},
	}
}

func (a *ConservationAgent) ProcessQuery(ctx context.Context, query string, limit int) AgentResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, warnings, err := a.cascade.run(ctx, query, limit)
	if err != nil {
		return failureResult("conservation", "conservation", err)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	plants := make([]PlantRecord, 0, len(rows))
	for _, row := range rows {
		plants = append(plants, conservationRecord(row))
	}
	return AgentResult{
		Agent:      "conservation",
		Plants:     plants,
		Summary:    plantSummary("conservation", query, plants),
		Confidence: confidence(len(plants), limit),
		Warnings:   warnings,
	}
}

func conservationRecord(row store.PlantRow) PlantRecord {
	rec := PlantRecord{
		BotanicalName:      row.BotanicalName,
		CommonNames:        row.CommonNames,
		Family:             row.Family,
		ConservationStatus: row.ConservationStatus,
		ThreatInfo:         row.ThreatInfo,
	}
	if rec.BotanicalName == "" {
		rec.BotanicalName = "Unknown"
	}
	if rec.CommonNames == nil {
		rec.CommonNames = []string{}
	}
	if rec.ConservationStatus == "" {
		rec.ConservationStatus = "Unknown"
	}
	return rec
}
