// Package ingest loads seed data files into the knowledge base.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"sanjeevani/internal/logging"
	"sanjeevani/internal/store"
)

// ingestConcurrency bounds parallel plant writes; each write may call
// the embedding provider.
const ingestConcurrency = 4

// SeedFile is the on-disk seed format.
type SeedFile struct {
	Plants    []SeedPlant    `json:"plants"`
	Locations []SeedLocation `json:"locations"`
}

// SeedPlant is one plant entry. Domain selects the target collection:
// "research" or "conservation".
type SeedPlant struct {
	Domain            string   `json:"domain"`
	PlantID           string   `json:"plant_id"`
	BotanicalName     string   `json:"botanical_name"`
	CommonNames       []string `json:"common_names"`
	Family            string   `json:"family"`
	TraditionalUses   []string `json:"traditional_uses"`
	MajorConstituents []string `json:"major_constituents"`
	Pharmacology      string   `json:"pharmacology"`
	SafetyInfo        string   `json:"safety_info"`
	Status            string   `json:"conservation_status"`
	ThreatInfo        string   `json:"threat_info"`
	TextContent       string   `json:"text_content"`
}

// SeedLocation is one district entry.
type SeedLocation struct {
	District  string   `json:"district"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Plants    []string `json:"plants"`
	Soils     string   `json:"soils"`
}

// Load reads and validates a seed file.
func Load(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	for i, p := range seed.Plants {
		switch strings.ToLower(p.Domain) {
		case "research", "conservation":
		default:
			return nil, fmt.Errorf("plant %d (%s): unknown domain %q", i, p.BotanicalName, p.Domain)
		}
	}
	return &seed, nil
}

// Collections maps seed domains to store collection names.
type Collections struct {
	Research     string
	Conservation string
}

// Apply writes the seed into the knowledge base. Plant writes run
// concurrently since each may embed text; location writes are cheap
// and run serially.
func Apply(ctx context.Context, kb *store.Store, seed *SeedFile, cols Collections) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)

	for _, p := range seed.Plants {
		p := p
		g.Go(func() error {
			collection := cols.Research
			if strings.ToLower(p.Domain) == "conservation" {
				collection = cols.Conservation
			}
			row := store.PlantRow{
				PlantID:            p.PlantID,
				BotanicalName:      p.BotanicalName,
				CommonNames:        p.CommonNames,
				Family:             p.Family,
				TraditionalUses:    p.TraditionalUses,
				MajorConstituents:  p.MajorConstituents,
				Pharmacology:       p.Pharmacology,
				SafetyInfo:         p.SafetyInfo,
				ConservationStatus: p.Status,
				ThreatInfo:         p.ThreatInfo,
				TextContent:        p.TextContent,
			}
			if row.TextContent == "" {
				row.TextContent = defaultTextContent(p)
			}
			if err := kb.PutPlant(ctx, collection, row); err != nil {
				return fmt.Errorf("seeding %s: %w", p.BotanicalName, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, l := range seed.Locations {
		row := store.LocationRow{
			District:  l.District,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Plants:    l.Plants,
			Soils:     l.Soils,
		}
		if err := kb.PutLocation(ctx, row); err != nil {
			return fmt.Errorf("seeding location %s: %w", l.District, err)
		}
	}

	logging.Store("seeded %d plant(s) and %d location(s)", len(seed.Plants), len(seed.Locations))
	return nil
}

// defaultTextContent builds searchable text when the seed entry omits
// it.
func defaultTextContent(p SeedPlant) string {
	parts := []string{p.BotanicalName}
	parts = append(parts, p.CommonNames...)
	parts = append(parts, p.TraditionalUses...)
	if p.Pharmacology != "" {
		parts = append(parts, p.Pharmacology)
	}
	if p.ThreatInfo != "" {
		parts = append(parts, p.ThreatInfo)
	}
	return strings.Join(parts, " ")
}
