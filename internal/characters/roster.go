package characters

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var rosterYAML []byte

type RosterEntry struct {
	Name         string `yaml:"name"`
	SpeciesIndex int    `yaml:"species_index"`
}

type rosterFile struct {
	Characters []RosterEntry `yaml:"characters"`
}

// Roster returns the built-in character list.
func Roster() ([]RosterEntry, error) {
	var f rosterFile
	if err := yaml.Unmarshal(rosterYAML, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return f.Characters, nil
}
