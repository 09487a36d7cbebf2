package agents

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanjeevani/internal/embedding"
	"sanjeevani/internal/store"
)

const (
	researchCollection     = "research_plants"
	conservationCollection = "conservation_plants"
)

func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "kb.db"), embedding.NewHashEngine())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	research := []store.PlantRow{
		{
			PlantID:       "r1",
			BotanicalName: "Ocimum sanctum",
			CommonNames:   []string{"Tulsi", "Holy Basil"},
			Family:        "Lamiaceae",
			TraditionalUses: []string{
				"respiratory ailments", "stress relief",
			},
			Pharmacology: "Adaptogenic and anti-inflammatory activity",
			TextContent:  "Tulsi holy basil sacred plant respiratory ailments stress relief adaptogen",
		},
		{
			PlantID:       "r2",
			BotanicalName: "Azadirachta indica",
			CommonNames:   []string{"Neem"},
			Family:        "Meliaceae",
			Pharmacology:  "Antimicrobial and antifungal activity",
			TextContent:   "Neem tree bark leaves antimicrobial antifungal skin conditions",
		},
	}
	for _, r := range research {
		require.NoError(t, s.PutPlant(ctx, researchCollection, r))
	}

	require.NoError(t, s.PutPlant(ctx, conservationCollection, store.PlantRow{
		PlantID:            "c1",
		BotanicalName:      "Saraca asoca",
		CommonNames:        []string{"Ashoka"},
		ConservationStatus: "Vulnerable",
		ThreatInfo:         "Bark over-harvesting for traditional medicine",
		TextContent:        "Ashoka tree vulnerable bark over-harvesting traditional medicine",
	}))

	locations := []store.LocationRow{
		{District: "Bangalore", Latitude: 12.97, Longitude: 77.59, Plants: []string{"Tulsi", "Neem"}, Soils: "Red loamy"},
		{District: "Belgaum", Latitude: 15.85, Longitude: 74.50, Plants: []string{"Tulsi"}, Soils: "Black"},
		{District: "Mysore", Latitude: 12.30, Longitude: 76.65, Plants: []string{"Ashwagandha"}, Soils: "Red sandy"},
	}
	for _, l := range locations {
		require.NoError(t, s.PutLocation(ctx, l))
	}
	return s
}

func TestResearchAgentFilteredPath(t *testing.T) {
	s := newSeededStore(t)
	agent := NewResearchAgent(s, researchCollection, nil)

	res := agent.ProcessQuery(context.Background(), "Tell me about tulsi", 5)
	require.Empty(t, res.Err)
	require.Len(t, res.Plants, 1)
	assert.Equal(t, "Ocimum sanctum", res.Plants[0].BotanicalName)
	assert.Contains(t, res.Plants[0].CommonNames, "Tulsi")
	assert.Greater(t, res.Confidence, 0.0)
	assert.Contains(t, res.Summary, "Ocimum sanctum")
}

func TestResearchAgentUnknownPlantFallsThroughToSemantic(t *testing.T) {
	s := newSeededStore(t)
	agent := NewResearchAgent(s, researchCollection, nil)

	// No extracted entities: the cascade must go straight to semantic
	// search without raising.
	res := agent.ProcessQuery(context.Background(), "antimicrobial remedy for skin conditions", 5)
	require.Empty(t, res.Err)
	require.NotEmpty(t, res.Plants)
}

func TestResearchAgentIdempotent(t *testing.T) {
	s := newSeededStore(t)
	agent := NewResearchAgent(s, researchCollection, nil)

	first := agent.ProcessQuery(context.Background(), "Tell me about neem", 5)
	second := agent.ProcessQuery(context.Background(), "Tell me about neem", 5)
	require.Equal(t, len(first.Plants), len(second.Plants))
	assert.ElementsMatch(t, first.Plants, second.Plants)
}

func TestConservationAgent(t *testing.T) {
	s := newSeededStore(t)
	agent := NewConservationAgent(s, conservationCollection, nil)

	res := agent.ProcessQuery(context.Background(), "Is ashoka endangered?", 5)
	require.Empty(t, res.Err)
	require.Len(t, res.Plants, 1)
	assert.Equal(t, "Vulnerable", res.Plants[0].ConservationStatus)
	assert.NotEmpty(t, res.Plants[0].ThreatInfo)
}

func TestGeographyAgentStructuralFilter(t *testing.T) {
	s := newSeededStore(t)
	agent := NewGeographyAgent(s, nil)

	res := agent.ProcessQuery(context.Background(), "Where does Tulsi grow?", 5)
	require.Empty(t, res.Err)
	require.Len(t, res.Locations, 2)
	assert.Equal(t, "Bangalore", res.Locations[0].District)
	assert.Contains(t, res.Summary, "2 district(s)")
	assert.Contains(t, res.Summary, "Bangalore")
	assert.Contains(t, res.Summary, "Belgaum")
}

func TestGeographyAgentTitleCaseForm(t *testing.T) {
	s := newSeededStore(t)
	agent := NewGeographyAgent(s, nil)

	// Ashwagandha is in the alias dictionary but the location rows
	// store it title-cased only; the structural filter still matches
	// via the title-case form.
	res := agent.ProcessQuery(context.Background(), "ashwagandha districts", 5)
	require.Empty(t, res.Err)
	require.Len(t, res.Locations, 1)
	assert.Equal(t, "Mysore", res.Locations[0].District)
}

func TestGeographyAgentNoMatches(t *testing.T) {
	s := newSeededStore(t)
	agent := NewGeographyAgent(s, nil)

	res := agent.ProcessQuery(context.Background(), "galangal distribution", 5)
	require.Empty(t, res.Err)
	assert.Empty(t, res.Locations)
	assert.Contains(t, res.Summary, "No recorded locations")
}

func TestAgentsSurviveUnreachableBackend(t *testing.T) {
	src := &erroringSource{reconnectErr: errors.New("backend unreachable")}

	for _, agent := range []Agent{
		NewResearchAgent(src, researchCollection, nil),
		NewConservationAgent(src, conservationCollection, nil),
		NewGeographyAgent(src, nil),
	} {
		res := agent.ProcessQuery(context.Background(), "tell me about tulsi", 5)
		assert.NotEmpty(t, res.Err, "%s should report backend failure", agent.Capabilities().Domain)
		assert.True(t, res.Empty())
		assert.Contains(t, res.Summary, "unavailable")
	}
}

func TestCapabilities(t *testing.T) {
	s := newSeededStore(t)
	domains := map[string]bool{}
	for _, agent := range []Agent{
		NewResearchAgent(s, researchCollection, nil),
		NewConservationAgent(s, conservationCollection, nil),
		NewGeographyAgent(s, nil),
	} {
		caps := agent.Capabilities()
		assert.NotEmpty(t, caps.Specialties)
		domains[caps.Domain] = true
	}
	assert.Len(t, domains, 3)
}

// erroringSource fails every call, for exercising the degradation
// tiers without a real database.
type erroringSource struct {
	reconnectErr error
	keywordRows  []store.PlantRow
}

func (e *erroringSource) FilteredSearch(context.Context, string, string, store.MatchMode, []string, int) ([]store.PlantRow, error) {
	return nil, errors.New("filtered: connection reset")
}

func (e *erroringSource) SemanticSearch(context.Context, string, string, int) ([]store.PlantRow, error) {
	return nil, errors.New("semantic: connection reset")
}

func (e *erroringSource) KeywordSearch(context.Context, string, string, []string, int) ([]store.PlantRow, error) {
	if e.keywordRows != nil {
		return e.keywordRows, nil
	}
	return nil, errors.New("keyword: connection reset")
}

func (e *erroringSource) LocationsByPlants(context.Context, []string, int) ([]store.LocationRow, error) {
	return nil, errors.New("locations: connection reset")
}

func (e *erroringSource) LocationKeywordSearch(context.Context, string, int) ([]store.LocationRow, error) {
	return nil, errors.New("locations: connection reset")
}

func (e *erroringSource) Reconnect() error       { return e.reconnectErr }
func (e *erroringSource) State() store.ConnState { return store.StateDegraded }

func TestCascadeDegradesToKeywordTier(t *testing.T) {
	src := &erroringSource{
		keywordRows: []store.PlantRow{{BotanicalName: "Azadirachta indica", CommonNames: []string{"Neem"}}},
	}
	agent := NewResearchAgent(src, researchCollection, nil)

	res := agent.ProcessQuery(context.Background(), "neem benefits", 5)
	require.Empty(t, res.Err)
	require.Len(t, res.Plants, 1)
	assert.Equal(t, "Azadirachta indica", res.Plants[0].BotanicalName)
}

func TestValidationWarningOnMismatch(t *testing.T) {
	rows := []store.PlantRow{
		{BotanicalName: "Ocimum sanctum", CommonNames: []string{"Tulsi"}},
		{BotanicalName: "Curcuma longa", CommonNames: []string{"Turmeric"}},
	}
	kept, warnings, err := validateRows(rows, []string{"tulsi"})
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "Ocimum sanctum", kept[0].BotanicalName)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Curcuma longa")
}

func TestValidationFallsBackWhenAllMismatch(t *testing.T) {
	rows := []store.PlantRow{
		{BotanicalName: "Curcuma longa", CommonNames: []string{"Turmeric"}},
	}
	kept, warnings, err := validateRows(rows, []string{"tulsi"})
	require.NoError(t, err)
	require.Len(t, kept, 1, "unvalidated rows should be preserved")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no direct matches found")
}
