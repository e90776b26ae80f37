package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/decision"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/redflag"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/risk"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/skillgate"
)

// DefaultProfile is the profile used when no role category matches.
const DefaultProfile = "default"

var ErrInvalidSnapshot = errors.New("invalid configuration snapshot")

// Profile is the scoring setup of one role category.
type Profile struct {
	Weights *competency.WeightProfile
	// Source forces a score source. The zero value picks one from the
	// signals present on the input.
	Source competency.SourceKind
	// GateCompetency is the score the skill gate is checked against.
	GateCompetency string
}

// Options are the parts a snapshot is assembled from.
type Options struct {
	Version    string
	Profiles   map[string]Profile
	Categories map[string]string
	Risk       *risk.Scorer
	RedFlags   *redflag.Dictionary
	Gates      *skillgate.Table
	Policy     decision.Policy
}

// Snapshot is an immutable, validated configuration. A single evaluation
// only ever sees one snapshot.
type Snapshot struct {
	version    string
	profiles   map[string]Profile
	categories map[string]string
	risk       *risk.Scorer
	redFlags   *redflag.Dictionary
	gates      *skillgate.Table
	resolver   *decision.Resolver
}

// NewSnapshot validates opts. Every configuration error surfaces here, so
// evaluation itself never fails.
func NewSnapshot(opts Options) (*Snapshot, error) {
	if len(opts.Profiles) == 0 {
		return nil, fmt.Errorf("%w: no weight profiles", ErrInvalidSnapshot)
	}
	if opts.Risk == nil {
		return nil, fmt.Errorf("%w: risk scorer is not set", ErrInvalidSnapshot)
	}
	if opts.RedFlags == nil {
		return nil, fmt.Errorf("%w: red flag dictionary is not set", ErrInvalidSnapshot)
	}
	if opts.Gates == nil {
		return nil, fmt.Errorf("%w: skill gate table is not set", ErrInvalidSnapshot)
	}

	resolver, err := decision.NewResolver(opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	s := &Snapshot{
		version:    strings.TrimSpace(opts.Version),
		profiles:   make(map[string]Profile, len(opts.Profiles)),
		categories: make(map[string]string, len(opts.Categories)),
		risk:       opts.Risk,
		redFlags:   opts.RedFlags,
		gates:      opts.Gates,
		resolver:   resolver,
	}

	for name, p := range opts.Profiles {
		key := normalizeKey(name)
		if key == "" {
			return nil, fmt.Errorf("%w: profile name must be set", ErrInvalidSnapshot)
		}
		if _, ok := s.profiles[key]; ok {
			return nil, fmt.Errorf("%w: profile %q declared twice", ErrInvalidSnapshot, key)
		}
		if p.Weights == nil {
			return nil, fmt.Errorf("%w: profile %q has no weights", ErrInvalidSnapshot, key)
		}
		if _, err := competency.ParseSourceKind(string(p.Source)); err != nil {
			return nil, fmt.Errorf("%w: profile %q: %w", ErrInvalidSnapshot, key, err)
		}
		p.GateCompetency = competency.NormalizeCode(p.GateCompetency)
		if p.GateCompetency == "" {
			p.GateCompetency = competency.RoleCompetence
		}
		s.profiles[key] = p
	}
	if _, ok := s.profiles[DefaultProfile]; !ok {
		return nil, fmt.Errorf("%w: %q profile is required", ErrInvalidSnapshot, DefaultProfile)
	}

	for code, cat := range opts.Categories {
		s.categories[competency.NormalizeCode(code)] = competency.NormalizeCode(cat)
	}

	return s, nil
}

// Version returns the configuration version label.
func (s *Snapshot) Version() string { return s.version }

// Profile returns the profile for a role category and the name it was
// found under, falling back to the default profile.
func (s *Snapshot) Profile(roleCategory string) (string, Profile) {
	if p, ok := s.profiles[normalizeKey(roleCategory)]; ok {
		return normalizeKey(roleCategory), p
	}
	return DefaultProfile, s.profiles[DefaultProfile]
}

// ProfileNames returns the profile names in sorted order.
func (s *Snapshot) ProfileNames() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns a copy of the competency to category map.
func (s *Snapshot) Categories() map[string]string {
	out := make(map[string]string, len(s.categories))
	for k, v := range s.categories {
		out[k] = v
	}
	return out
}

// Risk returns the risk scorer.
func (s *Snapshot) Risk() *risk.Scorer { return s.risk }

// RedFlags returns the red flag dictionary.
func (s *Snapshot) RedFlags() *redflag.Dictionary { return s.redFlags }

// Gates returns the skill gate table.
func (s *Snapshot) Gates() *skillgate.Table { return s.gates }

// Policy returns the decision bands.
func (s *Snapshot) Policy() decision.Policy { return s.resolver.Policy() }

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
