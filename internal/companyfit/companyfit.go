// Package companyfit scores how well a candidate matches a tenant's own
// competency model. It produces a score and review flags, never a hiring
// decision.
package companyfit

import (
	"errors"
	"fmt"
	"math"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
)

var ErrEmptyModel = errors.New("company competency model is empty")

// Item is one entry of a tenant competency model.
type Item struct {
	Code     string              `json:"code" mapstructure:"code"`
	Weight   float64             `json:"weight" mapstructure:"weight"`
	Priority competency.Priority `json:"priority" mapstructure:"priority"`
	MinScore float64             `json:"min_score" mapstructure:"min_score"`
}

// Line is one row of the fit breakdown.
type Line struct {
	Code     string              `json:"code"`
	Priority competency.Priority `json:"priority,omitempty"`
	Weight   float64             `json:"weight"`
	Score    float64             `json:"score"`
	Weighted float64             `json:"weighted"`
}

// Flag asks a human to review a critical item scored under its minimum.
type Flag struct {
	Code     string  `json:"code"`
	Score    float64 `json:"score"`
	MinScore float64 `json:"min_score"`
}

// Result is the fit of one candidate.
type Result struct {
	Tenant          string   `json:"tenant"`
	CompanyFitScore float64  `json:"company_fit_score"`
	Matched         int      `json:"matched"`
	Skipped         []string `json:"skipped,omitempty"`
	Breakdown       []Line   `json:"breakdown"`
	Flags           []Flag   `json:"flags"`
}

// Model is a validated tenant competency model.
type Model struct {
	tenant  string
	profile *competency.WeightProfile
}

// NewModel normalizes the items of a tenant model.
func NewModel(tenant string, items []Item) (*Model, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("tenant %q: %w", tenant, ErrEmptyModel)
	}

	entries := make([]competency.WeightEntry, 0, len(items))
	for _, it := range items {
		prio := it.Priority
		switch prio {
		case "", competency.PriorityCritical, competency.PriorityHigh, competency.PriorityMedium, competency.PriorityLow:
		default:
			return nil, fmt.Errorf("tenant %q: competency %q has unknown priority %q", tenant, it.Code, prio)
		}
		entries = append(entries, competency.WeightEntry{
			Code:     it.Code,
			Weight:   it.Weight,
			Priority: prio,
			MinScore: it.MinScore,
		})
	}

	profile, err := competency.NewWeightProfile(tenant, entries)
	if err != nil {
		return nil, err
	}

	return &Model{tenant: tenant, profile: profile}, nil
}

// Tenant returns the tenant the model belongs to.
func (m *Model) Tenant() string { return m.tenant }

// Items returns the normalized items.
func (m *Model) Items() []competency.Weight { return m.profile.Items() }

// Score rates 0-100 competency scores against the model. Items without a
// score are skipped and left out of both sides of the average.
func (m *Model) Score(scores competency.Scores) Result {
	res := Result{
		Tenant:    m.tenant,
		Breakdown: []Line{},
		Flags:     []Flag{},
	}

	var weighted, total float64
	for _, item := range m.profile.Items() {
		score, ok := scores[item.Code]
		if !ok || math.IsNaN(score) {
			res.Skipped = append(res.Skipped, item.Code)
			continue
		}
		score = competency.Clamp(score, 0, 100)

		res.Matched++
		weighted += score * item.Weight
		total += item.Weight
		res.Breakdown = append(res.Breakdown, Line{
			Code:     item.Code,
			Priority: item.Priority,
			Weight:   competency.Round2(item.Weight),
			Score:    score,
			Weighted: competency.Round2(score * item.Weight / 100),
		})

		if item.Priority == competency.PriorityCritical && score < item.MinScore {
			res.Flags = append(res.Flags, Flag{Code: item.Code, Score: score, MinScore: item.MinScore})
		}
	}

	if total > 0 {
		res.CompanyFitScore = competency.Round2(competency.Clamp(weighted/total, 0, 100))
	}

	return res
}
