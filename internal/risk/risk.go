// Package risk derives behavioral risk dimensions from competency scores.
//
// A dimension is an inverse combination of competencies: strong integrity
// and accountability mean low integrity risk. Each dimension is classified
// against warning and critical thresholds and the classification alone
// decides the penalty.
package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
)

// Status is the classification of a computed risk value.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Default thresholds and penalties.
const (
	DefaultWarningThreshold  = 35
	DefaultCriticalThreshold = 55
	DefaultWarningPenalty    = 1
	DefaultCriticalPenalty   = 3
)

// Canonical dimension names.
const (
	IntegrityRisk = "integrity_risk"
	TeamRisk      = "team_risk"
	StabilityRisk = "stability_risk"
)

var ErrInvalidThresholds = errors.New("invalid risk thresholds")

// Input is one competency and its mixing ratio in a dimension formula.
type Input struct {
	Code  string  `json:"code"`
	Ratio float64 `json:"ratio"`
}

// Dimension is a configured risk formula.
type Dimension struct {
	Name   string  `json:"name"`
	Inputs []Input `json:"inputs"`
}

// Penalties maps every status to its penalty points.
type Penalties struct {
	Normal   float64 `json:"normal"`
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// For returns the penalty of a status.
func (p Penalties) For(s Status) float64 {
	switch s {
	case StatusCritical:
		return p.Critical
	case StatusWarning:
		return p.Warning
	default:
		return p.Normal
	}
}

// Thresholds are inclusive lower bounds of the warning and critical bands.
type Thresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// Classify maps a risk value onto a status.
func (t Thresholds) Classify(value float64) Status {
	switch {
	case value >= t.Critical:
		return StatusCritical
	case value >= t.Warning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Assessment is the evaluated state of one dimension.
type Assessment struct {
	Name              string   `json:"name"`
	Value             float64  `json:"value"`
	WarningThreshold  float64  `json:"warning_threshold"`
	CriticalThreshold float64  `json:"critical_threshold"`
	Status            Status   `json:"status"`
	Penalty           float64  `json:"penalty"`
	Skipped           bool     `json:"skipped,omitempty"`
	Missing           []string `json:"missing,omitempty"`
}

// Result aggregates every dimension of one evaluation.
type Result struct {
	Dimensions []Assessment `json:"dimensions"`
	Penalty    float64      `json:"penalty"`
}

// HasCritical reports whether any dimension is critical.
func (r Result) HasCritical() bool {
	for _, d := range r.Dimensions {
		if d.Status == StatusCritical {
			return true
		}
	}
	return false
}

// Critical returns the names of critical dimensions.
func (r Result) Critical() []string {
	var names []string
	for _, d := range r.Dimensions {
		if d.Status == StatusCritical {
			names = append(names, d.Name)
		}
	}
	return names
}

// Scorer evaluates a fixed set of dimensions. It is immutable once built.
type Scorer struct {
	dimensions []Dimension
	thresholds Thresholds
	penalties  Penalties
}

// DefaultThresholds returns the 35/55 bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: DefaultWarningThreshold, Critical: DefaultCriticalThreshold}
}

// DefaultPenalties returns 0/1/3.
func DefaultPenalties() Penalties {
	return Penalties{Warning: DefaultWarningPenalty, Critical: DefaultCriticalPenalty}
}

// CanonicalDimensions returns the integrity, team and stability formulas.
func CanonicalDimensions() []Dimension {
	return []Dimension{
		{Name: IntegrityRisk, Inputs: []Input{
			{Code: competency.Integrity, Ratio: 0.7},
			{Code: competency.Accountability, Ratio: 0.3},
		}},
		{Name: TeamRisk, Inputs: []Input{
			{Code: competency.Teamwork, Ratio: 0.6},
			{Code: competency.Communication, Ratio: 0.4},
		}},
		{Name: StabilityRisk, Inputs: []Input{
			{Code: competency.StressResilience, Ratio: 0.6},
			{Code: competency.Adaptability, Ratio: 0.4},
		}},
	}
}

// NewScorer validates the configuration and builds a scorer.
func NewScorer(dimensions []Dimension, thresholds Thresholds, penalties Penalties) (*Scorer, error) {
	if thresholds.Warning < 0 || thresholds.Critical > 100 || thresholds.Warning > thresholds.Critical {
		return nil, fmt.Errorf("%w: warning %v, critical %v", ErrInvalidThresholds, thresholds.Warning, thresholds.Critical)
	}
	if penalties.Normal < 0 || penalties.Warning < 0 || penalties.Critical < 0 {
		return nil, fmt.Errorf("risk penalties must not be negative")
	}

	seen := make(map[string]bool, len(dimensions))
	dims := make([]Dimension, 0, len(dimensions))
	for _, d := range dimensions {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("risk dimension name must be set")
		}
		if seen[name] {
			return nil, fmt.Errorf("risk dimension %q declared twice", name)
		}
		seen[name] = true

		if len(d.Inputs) == 0 {
			return nil, fmt.Errorf("risk dimension %q has no inputs", name)
		}
		var ratios float64
		inputs := make([]Input, 0, len(d.Inputs))
		for _, in := range d.Inputs {
			code := competency.NormalizeCode(in.Code)
			if code == "" {
				return nil, fmt.Errorf("risk dimension %q has an input without a code", name)
			}
			if in.Ratio <= 0 {
				return nil, fmt.Errorf("risk dimension %q input %q ratio must be positive", name, code)
			}
			ratios += in.Ratio
			inputs = append(inputs, Input{Code: code, Ratio: in.Ratio})
		}
		if math.Abs(ratios-1) > 0.001 {
			return nil, fmt.Errorf("risk dimension %q ratios sum to %.3f, must sum to 1", name, ratios)
		}
		dims = append(dims, Dimension{Name: name, Inputs: inputs})
	}

	return &Scorer{dimensions: dims, thresholds: thresholds, penalties: penalties}, nil
}

// Dimensions returns a copy of the configured dimensions.
func (s *Scorer) Dimensions() []Dimension {
	out := make([]Dimension, len(s.dimensions))
	copy(out, s.dimensions)
	return out
}

// Score evaluates every dimension against scores. A dimension with any
// unscored input is skipped: it is normal and carries no penalty.
func (s *Scorer) Score(scores competency.Scores) Result {
	res := Result{Dimensions: make([]Assessment, 0, len(s.dimensions))}

	for _, d := range s.dimensions {
		a := Assessment{
			Name:              d.Name,
			WarningThreshold:  s.thresholds.Warning,
			CriticalThreshold: s.thresholds.Critical,
			Status:            StatusNormal,
		}

		var mix float64
		for _, in := range d.Inputs {
			v, ok := scores[in.Code]
			if !ok {
				a.Missing = append(a.Missing, in.Code)
				continue
			}
			mix += competency.Clamp(v, 0, 100) * in.Ratio
		}

		if len(a.Missing) > 0 {
			a.Skipped = true
			a.Penalty = s.penalties.For(StatusNormal)
		} else {
			raw := competency.Clamp(100-mix, 0, 100)
			a.Status = s.thresholds.Classify(raw)
			a.Value = competency.Round2(raw)
			a.Penalty = s.penalties.For(a.Status)
		}

		res.Penalty += a.Penalty
		res.Dimensions = append(res.Dimensions, a)
	}

	return res
}
