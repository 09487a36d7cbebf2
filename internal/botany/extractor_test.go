package botany

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtract_ExactCommonName(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("Tell me about Tulsi benefits")
	if _, ok := got["tulsi"]; !ok {
		t.Fatalf("expected 'tulsi' in %v", got)
	}
	// All aliases of the matched key come along.
	if _, ok := got["ocimum sanctum"]; !ok {
		t.Errorf("expected botanical alias 'ocimum sanctum' in %v", got)
	}
	if _, ok := got["holy basil"]; !ok {
		t.Errorf("expected alias 'holy basil' in %v", got)
	}
}

func TestExtract_BotanicalName(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("What are the uses of Azadirachta indica?")
	if _, ok := got["neem"]; !ok {
		t.Fatalf("expected 'neem' in %v", got)
	}
}

func TestExtract_FuzzyTransposition(t *testing.T) {
	e := NewExtractor(nil)

	// One-character transposition must still resolve.
	got := e.Extract("Where does Tusli grow?")
	if _, ok := got["tulsi"]; !ok {
		t.Fatalf("expected fuzzy match 'tulsi' in %v", got)
	}
}

func TestExtract_GenericTextEmpty(t *testing.T) {
	e := NewExtractor(nil)

	for _, text := range []string{
		"Is it raining today?",
		"Hello there",
		"What is the meaning of life?",
		"Show me a map please",
	} {
		if got := e.Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want empty set", text, got)
		}
	}
}

func TestExtract_Deduplicated(t *testing.T) {
	e := NewExtractor(nil)

	got := e.ExtractList("tulsi tulsi holy basil")
	seen := map[string]int{}
	for _, a := range got {
		seen[a]++
		if seen[a] > 1 {
			t.Fatalf("alias %q duplicated in %v", a, got)
		}
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"tulsi", "tulsi", 1.0, 1.0},
		{"tusli", "tulsi", 0.79, 0.81}, // transposition counts as two edits
		{"plant", "tulsi", 0.0, 0.5},
		{"", "", 1.0, 1.0},
		{"a", "", 0.0, 0.0},
	}
	for _, c := range cases {
		got := similarity(c.a, c.b)
		if got < c.min || got > c.max {
			t.Errorf("similarity(%q,%q) = %.3f, want in [%.2f,%.2f]", c.a, c.b, got, c.min, c.max)
		}
	}
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	yaml := "Brahmi:\n  - brahmi\n  - Bacopa Monnieri\nvetiver:\n  - khus\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	dict, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	aliases, ok := dict["brahmi"]
	if !ok {
		t.Fatalf("missing key 'brahmi' in %v", dict)
	}
	found := false
	for _, a := range aliases {
		if a == "bacopa monnieri" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected lower-cased alias 'bacopa monnieri' in %v", aliases)
	}

	// Canonical key is always its own alias.
	if dict["vetiver"][0] != "vetiver" {
		t.Errorf("canonical key missing from aliases: %v", dict["vetiver"])
	}

	e := NewExtractor(dict)
	if got := e.Extract("tell me about brahmi"); len(got) == 0 {
		t.Error("custom dictionary extractor found nothing for 'brahmi'")
	}
}
