package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanjeevani/internal/embedding"
	"sanjeevani/internal/store"
)

const seedJSON = `{
  "plants": [
    {
      "domain": "research",
      "plant_id": "p1",
      "botanical_name": "Ocimum sanctum",
      "common_names": ["Tulsi", "Holy Basil"],
      "family": "Lamiaceae",
      "traditional_uses": ["respiratory ailments"],
      "pharmacology": "Adaptogenic activity"
    },
    {
      "domain": "conservation",
      "plant_id": "c1",
      "botanical_name": "Saraca asoca",
      "common_names": ["Ashoka"],
      "conservation_status": "Vulnerable",
      "threat_info": "Bark over-harvesting"
    }
  ],
  "locations": [
    {"district": "Bangalore", "latitude": 12.97, "longitude": 77.59, "plants": ["Tulsi"], "soils": "Red loamy"}
  ]
}`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndApply(t *testing.T) {
	seed, err := Load(writeSeed(t, seedJSON))
	require.NoError(t, err)
	require.Len(t, seed.Plants, 2)
	require.Len(t, seed.Locations, 1)

	kb, err := store.Open(filepath.Join(t.TempDir(), "kb.db"), embedding.NewHashEngine())
	require.NoError(t, err)
	defer kb.Close()

	cols := Collections{Research: "research_plants", Conservation: "conservation_plants"}
	require.NoError(t, Apply(context.Background(), kb, seed, cols))

	ctx := context.Background()
	research, err := kb.CountPlants(ctx, cols.Research)
	require.NoError(t, err)
	assert.Equal(t, 1, research)

	conservation, err := kb.CountPlants(ctx, cols.Conservation)
	require.NoError(t, err)
	assert.Equal(t, 1, conservation)

	locations, err := kb.LocationsByPlants(ctx, []string{"Tulsi"}, 10)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Bangalore", locations[0].District)

	// Omitted text content is synthesized, so semantic search still
	// finds the record.
	rows, err := kb.SemanticSearch(ctx, cols.Research, "respiratory adaptogen tulsi", 5)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Ocimum sanctum", rows[0].BotanicalName)
}

func TestLoadRejectsUnknownDomain(t *testing.T) {
	_, err := Load(writeSeed(t, `{"plants": [{"domain": "folklore", "botanical_name": "X"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown domain")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
