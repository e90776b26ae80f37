// Package decision turns scores, risks, red flags and the skill gate into a
// HIRE, HOLD or REJECT recommendation.
//
// The resolver is an ordered list of rules and the first rule that matches
// wins. Safety and compliance rules always come before score rules.
package decision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/skillgate"
)

// Decision is the terminal recommendation.
type Decision string

const (
	Hire   Decision = "HIRE"
	Hold   Decision = "HOLD"
	Reject Decision = "REJECT"
)

// Default score bands.
const (
	DefaultHireThreshold = 75
	DefaultHoldThreshold = 60
)

// Rule names.
const (
	RuleAutoReject       = "auto_reject"
	RuleSkillGate        = "skill_gate"
	RuleHighScoreFlagged = "high_score_flagged"
	RuleHighScore        = "high_score"
	RuleHoldBand         = "hold_band"
	RuleLowScore         = "low_score"
)

var ErrInvalidPolicy = errors.New("invalid decision policy")

// Policy holds the score bands of the chain.
type Policy struct {
	HireThreshold float64 `json:"hire_threshold"`
	HoldThreshold float64 `json:"hold_threshold"`
}

// DefaultPolicy returns the 75/60 bands.
func DefaultPolicy() Policy {
	return Policy{HireThreshold: DefaultHireThreshold, HoldThreshold: DefaultHoldThreshold}
}

// Validate checks that 0 <= hold <= hire <= 100.
func (p Policy) Validate() error {
	if p.HoldThreshold < 0 || p.HireThreshold > 100 || p.HoldThreshold > p.HireThreshold {
		return fmt.Errorf("%w: hire %v, hold %v", ErrInvalidPolicy, p.HireThreshold, p.HoldThreshold)
	}
	return nil
}

// Facts are everything the rules look at.
type Facts struct {
	FinalScore    float64
	AutoReject    bool
	RejectFlag    string
	Gate          skillgate.Result
	CriticalRisks []string
	SevereFlags   []string
}

// Outcome is the decision with the rule that produced it.
type Outcome struct {
	Decision     Decision `json:"decision"`
	Reason       string   `json:"reason"`
	Rule         string   `json:"rule"`
	GateOverride bool     `json:"gate_override"`
	AutoReject   bool     `json:"auto_reject"`
}

// Rule is one step of the chain.
type Rule struct {
	Name     string
	Match    func(f Facts) bool
	Decision func(f Facts) Decision
	Reason   func(f Facts) string
}

// Resolver evaluates rules top to bottom.
type Resolver struct {
	policy Policy
	rules  []Rule
}

// NewResolver builds the chain for a validated policy.
func NewResolver(p Policy) (*Resolver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{policy: p, rules: Rules(p)}, nil
}

// Policy returns the bands of the resolver.
func (r *Resolver) Policy() Policy { return r.policy }

// Rules returns the ordered chain for p.
func Rules(p Policy) []Rule {
	return []Rule{
		{
			Name:     RuleAutoReject,
			Match:    func(f Facts) bool { return f.AutoReject },
			Decision: always(Reject),
			Reason: func(f Facts) string {
				return "auto-reject red flag: " + f.RejectFlag
			},
		},
		{
			Name:     RuleSkillGate,
			Match:    func(f Facts) bool { return !f.Gate.Passed },
			Decision: func(f Facts) Decision { return Decision(f.Gate.Action) },
			Reason: func(f Facts) string {
				return fmt.Sprintf("role competence %s%% < gate %s%%", percent(f.Gate.Score), percent(f.Gate.Threshold))
			},
		},
		{
			Name: RuleHighScoreFlagged,
			Match: func(f Facts) bool {
				return f.FinalScore >= p.HireThreshold && (len(f.CriticalRisks) > 0 || len(f.SevereFlags) > 0)
			},
			Decision: always(Hold),
			Reason: func(f Facts) string {
				signals := append(append([]string(nil), f.CriticalRisks...), f.SevereFlags...)
				return "score high but risk/flag present: " + strings.Join(signals, ", ")
			},
		},
		{
			Name:     RuleHighScore,
			Match:    func(f Facts) bool { return f.FinalScore >= p.HireThreshold },
			Decision: always(Hire),
			Reason: func(f Facts) string {
				return fmt.Sprintf("final score %s >= %s", percent(f.FinalScore), percent(p.HireThreshold))
			},
		},
		{
			Name:     RuleHoldBand,
			Match:    func(f Facts) bool { return f.FinalScore >= p.HoldThreshold },
			Decision: always(Hold),
			Reason: func(f Facts) string {
				return fmt.Sprintf("final score %s in hold band %s-%s", percent(f.FinalScore), percent(p.HoldThreshold), percent(p.HireThreshold))
			},
		},
		{
			Name:     RuleLowScore,
			Match:    func(Facts) bool { return true },
			Decision: always(Reject),
			Reason: func(f Facts) string {
				return fmt.Sprintf("final score %s < %s", percent(f.FinalScore), percent(p.HoldThreshold))
			},
		},
	}
}

// Resolve runs the chain. The last rule always matches, so a decision is
// always set.
func (r *Resolver) Resolve(f Facts) Outcome {
	for _, rule := range r.rules {
		if !rule.Match(f) {
			continue
		}
		return Outcome{
			Decision:     rule.Decision(f),
			Reason:       rule.Reason(f),
			Rule:         rule.Name,
			GateOverride: rule.Name == RuleSkillGate,
			AutoReject:   f.AutoReject,
		}
	}

	return Outcome{Decision: Reject, Reason: "no rule matched", Rule: RuleLowScore, AutoReject: f.AutoReject}
}

func always(d Decision) func(Facts) Decision {
	return func(Facts) Decision { return d }
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
