package competency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Canonical competency codes of the fixed interview profile.
const (
	Communication    = "communication"
	Accountability   = "accountability"
	Teamwork         = "teamwork"
	StressResilience = "stress_resilience"
	Adaptability     = "adaptability"
	LearningAgility  = "learning_agility"
	Integrity        = "integrity"
	RoleCompetence   = "role_competence"
)

// Priority marks how strongly an item of a profile is enforced.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// weightTolerance is the allowed drift of a normalized profile sum from 100.
const weightTolerance = 0.01

var (
	ErrEmptyProfile = errors.New("weight profile is empty")
	ErrZeroWeight   = errors.New("weight profile total weight is zero")
)

// Codes returns the eight canonical competency codes in profile order.
func Codes() []string {
	return []string{
		Communication,
		Accountability,
		Teamwork,
		StressResilience,
		Adaptability,
		LearningAgility,
		Integrity,
		RoleCompetence,
	}
}

// WeightEntry is a raw, not yet normalized, profile item.
type WeightEntry struct {
	Code     string
	Weight   float64
	Priority Priority
	MinScore float64
}

// Weight is a normalized profile item. Weight is a percentage.
type Weight struct {
	Code     string   `json:"code"`
	Weight   float64  `json:"weight"`
	Priority Priority `json:"priority,omitempty"`
	MinScore float64  `json:"min_score,omitempty"`
}

// WeightProfile is an immutable table of competency code to normalized weight.
type WeightProfile struct {
	name  string
	items []Weight
	index map[string]int
}

// NewWeightProfile normalizes raw weights so that they sum to 100.
// Entries with the same code are merged by summing their raw weights.
func NewWeightProfile(name string, entries []WeightEntry) (*WeightProfile, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("profile %q: %w", name, ErrEmptyProfile)
	}

	merged := make([]WeightEntry, 0, len(entries))
	seen := make(map[string]int, len(entries))
	var total float64
	for _, e := range entries {
		code := NormalizeCode(e.Code)
		if code == "" {
			return nil, fmt.Errorf("profile %q: competency code must not be empty", name)
		}
		if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, fmt.Errorf("profile %q: competency %q has invalid weight %v", name, code, e.Weight)
		}
		if e.MinScore < 0 || e.MinScore > 100 {
			return nil, fmt.Errorf("profile %q: competency %q min_score %v out of range 0-100", name, code, e.MinScore)
		}
		total += e.Weight

		if i, ok := seen[code]; ok {
			merged[i].Weight += e.Weight
			continue
		}
		e.Code = code
		seen[code] = len(merged)
		merged = append(merged, e)
	}

	if total == 0 {
		return nil, fmt.Errorf("profile %q: %w", name, ErrZeroWeight)
	}

	p := &WeightProfile{
		name:  name,
		items: make([]Weight, 0, len(merged)),
		index: make(map[string]int, len(merged)),
	}
	for _, e := range merged {
		p.index[e.Code] = len(p.items)
		p.items = append(p.items, Weight{
			Code:     e.Code,
			Weight:   e.Weight / total * 100,
			Priority: e.Priority,
			MinScore: e.MinScore,
		})
	}

	if sum := p.Sum(); math.Abs(sum-100) > weightTolerance {
		return nil, fmt.Errorf("profile %q: normalized weights sum to %.4f, must sum to 100", name, sum)
	}

	return p, nil
}

// Name returns the profile name.
func (p *WeightProfile) Name() string { return p.name }

// Sum returns the total of the normalized weights.
func (p *WeightProfile) Sum() float64 {
	var sum float64
	for _, w := range p.items {
		sum += w.Weight
	}
	return sum
}

// Weight returns the normalized weight of a competency.
func (p *WeightProfile) Weight(code string) (float64, bool) {
	i, ok := p.index[NormalizeCode(code)]
	if !ok {
		return 0, false
	}
	return p.items[i].Weight, true
}

// Item returns the full profile item of a competency.
func (p *WeightProfile) Item(code string) (Weight, bool) {
	i, ok := p.index[NormalizeCode(code)]
	if !ok {
		return Weight{}, false
	}
	return p.items[i], true
}

// Items returns a copy of the profile items in declaration order.
func (p *WeightProfile) Items() []Weight {
	out := make([]Weight, len(p.items))
	copy(out, p.items)
	return out
}

// Codes returns the profile codes in declaration order.
func (p *WeightProfile) Codes() []string {
	out := make([]string, 0, len(p.items))
	for _, w := range p.items {
		out = append(out, w.Code)
	}
	return out
}

// Len returns the number of items in the profile.
func (p *WeightProfile) Len() int { return len(p.items) }

// NormalizeCode lower-cases and trims a competency code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// sortedKeys returns map keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
