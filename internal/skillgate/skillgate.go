// Package skillgate resolves the minimum role competence a position demands.
package skillgate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Action is what the decision chain does when a gate fails.
type Action string

const (
	ActionHold   Action = "HOLD"
	ActionReject Action = "REJECT"
)

// FallbackKey is the generic entry used when nothing more specific matches.
const FallbackKey = "*"

var (
	ErrNoFallback    = errors.New("skill gate table has no fallback entry")
	ErrUnknownAction = errors.New("unknown skill gate action")
)

// ParseAction validates a configured action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionHold, ActionReject:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Gate is one table entry. Key is a position code, a role category or the
// fallback key.
type Gate struct {
	Key            string  `json:"key"`
	Threshold      float64 `json:"threshold"`
	Action         Action  `json:"action"`
	SafetyCritical bool    `json:"safety_critical"`
}

// Resolution is the gate chosen for a candidate.
type Resolution struct {
	Gate
	MatchedBy string `json:"matched_by"`
}

// Result is a resolved gate evaluated against a role competence score.
type Result struct {
	Resolution
	Score  float64 `json:"score"`
	Scored bool    `json:"scored"`
	Passed bool    `json:"passed"`
}

// Evaluate applies the gate to a role competence percentage. An unscored
// competence counts as zero.
func (r Resolution) Evaluate(score float64, scored bool) Result {
	if !scored || math.IsNaN(score) {
		score = 0
	}
	return Result{
		Resolution: r,
		Score:      score,
		Scored:     scored,
		Passed:     score >= r.Threshold,
	}
}

// Table is an immutable lookup of gates by key.
type Table struct {
	gates map[string]Gate
}

// NewTable validates the gates. Keys are case-insensitive and a fallback
// entry must be present.
func NewTable(gates []Gate) (*Table, error) {
	t := &Table{gates: make(map[string]Gate, len(gates))}

	for _, g := range gates {
		key := normalizeKey(g.Key)
		if key == "" {
			return nil, errors.New("skill gate key must be set")
		}
		if _, ok := t.gates[key]; ok {
			return nil, fmt.Errorf("skill gate %q declared twice", key)
		}
		if g.Threshold < 0 || g.Threshold > 100 || math.IsNaN(g.Threshold) {
			return nil, fmt.Errorf("skill gate %q threshold %v out of range 0-100", key, g.Threshold)
		}
		action, err := ParseAction(string(g.Action))
		if err != nil {
			return nil, fmt.Errorf("skill gate %q: %w", key, err)
		}

		g.Key = key
		g.Action = action
		t.gates[key] = g
	}

	if _, ok := t.gates[FallbackKey]; !ok {
		return nil, ErrNoFallback
	}

	return t, nil
}

// Resolve looks up the position code, then the role category, then the
// fallback entry.
func (t *Table) Resolve(positionCode, category string) Resolution {
	if g, ok := t.gates[normalizeKey(positionCode)]; ok {
		return Resolution{Gate: g, MatchedBy: "position"}
	}
	if g, ok := t.gates[normalizeKey(category)]; ok {
		return Resolution{Gate: g, MatchedBy: "category"}
	}
	return Resolution{Gate: t.gates[FallbackKey], MatchedBy: "fallback"}
}

// Gates returns every entry ordered by key.
func (t *Table) Gates() []Gate {
	keys := make([]string, 0, len(t.gates))
	for k := range t.gates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Gate, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.gates[k])
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
