package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

var ErrUnknownPreset = errors.New("unknown tournament preset")

type Preset struct {
	ID    string         `yaml:"id" json:"id"`
	Name  string         `yaml:"name" json:"name"`
	Teams []bracket.Team `yaml:"teams" json:"teams"`
}

type file struct {
	Presets []Preset `yaml:"presets"`
}

var (
	loadOnce sync.Once
	loaded   []Preset
	loadErr  error
)

// Parse reads a presets document. Team ids must be unique inside a preset.
func Parse(data []byte) ([]Preset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for _, p := range f.Presets {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("preset without id or name")
		}
		seen := make(map[string]bool, len(p.Teams))
		for _, t := range p.Teams {
			if seen[t.ID] {
				return nil, fmt.Errorf("preset %s: duplicate team id %s", p.ID, t.ID)
			}
			seen[t.ID] = true
		}
	}
	return f.Presets, nil
}

// All returns the built-in presets in display order
func All() ([]Preset, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(presetsYAML)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]Preset, len(loaded))
	for i, p := range loaded {
		out[i] = Preset{ID: p.ID, Name: p.Name, Teams: append([]bracket.Team(nil), p.Teams...)}
	}
	return out, nil
}

// Get looks a preset up by id or by display name
func Get(key string) (Preset, error) {
	all, err := All()
	if err != nil {
		return Preset{}, err
	}
	for _, p := range all {
		if p.ID == key || p.Name == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, key)
}
