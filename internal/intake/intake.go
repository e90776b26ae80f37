// Package intake reads candidate files handed over by the interview
// platform and turns them into engine input.
package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
)

// Candidate is one interview export. JSON files are read as YAML.
type Candidate struct {
	ID           string              `mapstructure:"id" yaml:"id" json:"id"`
	Position     string              `mapstructure:"position" yaml:"position,omitempty" json:"position,omitempty"`
	RoleCategory string              `mapstructure:"role-category" yaml:"role-category,omitempty" json:"role-category,omitempty"`
	Tenant       string              `mapstructure:"tenant" yaml:"tenant,omitempty" json:"tenant,omitempty"`
	Source       string              `mapstructure:"source" yaml:"source,omitempty" json:"source,omitempty"`
	Ratings      map[string]float64  `mapstructure:"ratings" yaml:"ratings,omitempty" json:"ratings,omitempty"`
	Percentages  map[string]float64  `mapstructure:"percentages" yaml:"percentages,omitempty" json:"percentages,omitempty"`
	Answers      []competency.Answer `mapstructure:"answers" yaml:"answers,omitempty" json:"answers,omitempty"`
	FreeText     []string            `mapstructure:"free-text" yaml:"free-text,omitempty" json:"free-text,omitempty"`

	Path string `mapstructure:"-" yaml:"-" json:"-"`
}

// Input converts the candidate into engine input.
func (c *Candidate) Input() engine.Input {
	return engine.Input{
		CandidateID:  c.ID,
		PositionCode: c.Position,
		RoleCategory: c.RoleCategory,
		Ratings:      c.Ratings,
		Percentages:  c.Percentages,
		Answers:      c.Answers,
		FreeText:     c.FreeText,
		Source:       competency.SourceKind(strings.ToLower(strings.TrimSpace(c.Source))),
	}
}

// Decode maps a loosely typed payload onto a candidate. Numbers given as
// strings are accepted; unknown keys are rejected.
func Decode(raw map[string]any) (*Candidate, error) {
	var c Candidate
	cfg := &mapstructure.DecoderConfig{
		Result:           &c,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads one candidate file. A missing id falls back to the file name.
func Load(path string) (*Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate file %q: %w", path, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing candidate file %q: %w", path, err)
	}

	c, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding candidate file %q: %w", path, err)
	}

	c.Path = path
	if strings.TrimSpace(c.ID) == "" {
		c.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Discover expands a glob, with ** support, into candidate files in sorted
// order. A plain file path is returned as is.
func Discover(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid candidate pattern %q", pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".yaml", ".yml", ".json":
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no candidate files match pattern: %s", pattern)
	}

	sort.Strings(files)
	return files, nil
}
