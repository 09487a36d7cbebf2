package botany

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dictionary maps a canonical plant key to its known aliases (common
// names and botanical names). All entries are lower-cased.
type Dictionary map[string][]string

// DefaultDictionary returns the built-in alias dictionary covering the
// plants present in the seed dataset.
func DefaultDictionary() Dictionary {
	return Dictionary{
		"tulsi":       {"tulsi", "holy basil", "ocimum sanctum"},
		"neem":        {"neem", "azadirachta indica"},
		"turmeric":    {"turmeric", "curcuma longa"},
		"ashwagandha": {"ashwagandha", "withania somnifera"},
		"moringa":     {"moringa", "drumstick tree", "moringa oleifera"},
		"galangal":    {"galangal", "greater galangal", "alpinia galanga"},
		"karonda":     {"karonda", "christ's thorn", "carissa carandas"},
		"jasmine":     {"jasmine", "jasminum"},
		"ashoka":      {"ashoka", "saraca asoca"},
		"kalmegh":     {"kalmegh", "green chiretta", "andrographis paniculata"},
	}
}

// LoadDictionary reads an alias dictionary from a YAML file of the form:
//
//	tulsi:
//	  - tulsi
//	  - holy basil
//	  - ocimum sanctum
//
// Keys and aliases are lower-cased on load. The canonical key is always
// included among its own aliases.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias dictionary: %w", err)
	}

	raw := map[string][]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse alias dictionary: %w", err)
	}

	dict := make(Dictionary, len(raw))
	for key, aliases := range raw {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		seen := map[string]struct{}{key: {}}
		list := []string{key}
		for _, a := range aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			list = append(list, a)
		}
		dict[key] = list
	}
	if len(dict) == 0 {
		return nil, fmt.Errorf("alias dictionary %s is empty", path)
	}
	return dict, nil
}
