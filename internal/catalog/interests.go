package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed interests.toml
var interestsTOML []byte

// Interest is a selectable tag used to bias the search query.
type Interest struct {
	Label string `toml:"label"`
	Group string `toml:"group"`
}

type interestsFile struct {
	Interests []Interest `toml:"interest"`
}

// DefaultInterests returns the built-in interest tags.
func DefaultInterests() ([]Interest, error) {
	var f interestsFile
	if err := toml.Unmarshal(interestsTOML, &f); err != nil {
		return nil, fmt.Errorf("parsing interests table: %w", err)
	}
	return f.Interests, nil
}

// Interests returns the configured override labels when present, otherwise
// the built-in table. Blank and duplicate labels are skipped.
func Interests(override []string) ([]Interest, error) {
	if len(override) == 0 {
		return DefaultInterests()
	}

	seen := make(map[string]bool, len(override))
	out := make([]Interest, 0, len(override))
	for _, label := range override {
		label = strings.TrimSpace(label)
		if label == "" || seen[strings.ToLower(label)] {
			continue
		}
		seen[strings.ToLower(label)] = true
		out = append(out, Interest{Label: label, Group: "custom"})
	}
	return out, nil
}
