package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/skillgate"
)

func passedGate() skillgate.Result {
	return skillgate.Result{
		Resolution: skillgate.Resolution{Gate: skillgate.Gate{Key: "*", Threshold: 50, Action: skillgate.ActionHold}},
		Score:      90,
		Scored:     true,
		Passed:     true,
	}
}

func failedGate(action skillgate.Action) skillgate.Result {
	g := passedGate()
	g.Action = action
	g.Score = 40
	g.Passed = false
	return g
}

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultPolicy())
	require.NoError(t, err)
	return r
}

func TestResolveChain(t *testing.T) {
	r := defaultResolver(t)

	tests := []struct {
		name         string
		facts        Facts
		decision     Decision
		rule         string
		reason       string
		gateOverride bool
	}{
		{
			name:     "auto reject beats perfect score and passed gate",
			facts:    Facts{FinalScore: 100, AutoReject: true, RejectFlag: "RF_AGGRESSION", Gate: passedGate()},
			decision: Reject,
			rule:     RuleAutoReject,
			reason:   "auto-reject red flag: RF_AGGRESSION",
		},
		{
			name:     "auto reject beats failed gate",
			facts:    Facts{FinalScore: 100, AutoReject: true, RejectFlag: "RF_THEFT", Gate: failedGate(skillgate.ActionHold)},
			decision: Reject,
			rule:     RuleAutoReject,
			reason:   "auto-reject red flag: RF_THEFT",
		},
		{
			name:         "gate hold",
			facts:        Facts{FinalScore: 90, Gate: failedGate(skillgate.ActionHold)},
			decision:     Hold,
			rule:         RuleSkillGate,
			reason:       "role competence 40% < gate 50%",
			gateOverride: true,
		},
		{
			name:         "gate reject beats high score",
			facts:        Facts{FinalScore: 95, Gate: failedGate(skillgate.ActionReject)},
			decision:     Reject,
			rule:         RuleSkillGate,
			reason:       "role competence 40% < gate 50%",
			gateOverride: true,
		},
		{
			name:     "critical risk holds high score",
			facts:    Facts{FinalScore: 80, Gate: passedGate(), CriticalRisks: []string{"team_risk"}},
			decision: Hold,
			rule:     RuleHighScoreFlagged,
			reason:   "score high but risk/flag present: team_risk",
		},
		{
			name:     "severe flag holds high score",
			facts:    Facts{FinalScore: 80, Gate: passedGate(), CriticalRisks: []string{"integrity_risk"}, SevereFlags: []string{"RF_BLAME"}},
			decision: Hold,
			rule:     RuleHighScoreFlagged,
			reason:   "score high but risk/flag present: integrity_risk, RF_BLAME",
		},
		{
			name:     "hire at threshold",
			facts:    Facts{FinalScore: 75, Gate: passedGate()},
			decision: Hire,
			rule:     RuleHighScore,
			reason:   "final score 75 >= 75",
		},
		{
			name:     "hold band",
			facts:    Facts{FinalScore: 68, Gate: passedGate()},
			decision: Hold,
			rule:     RuleHoldBand,
			reason:   "final score 68 in hold band 60-75",
		},
		{
			name:     "hold band ignores critical risk",
			facts:    Facts{FinalScore: 60, Gate: passedGate(), CriticalRisks: []string{"team_risk"}},
			decision: Hold,
			rule:     RuleHoldBand,
		},
		{
			name:     "low score",
			facts:    Facts{FinalScore: 59.99, Gate: passedGate()},
			decision: Reject,
			rule:     RuleLowScore,
			reason:   "final score 59.99 < 60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Resolve(tt.facts)
			assert.Equal(t, tt.decision, out.Decision)
			assert.Equal(t, tt.rule, out.Rule)
			assert.Equal(t, tt.gateOverride, out.GateOverride)
			assert.Equal(t, tt.facts.AutoReject, out.AutoReject)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, out.Reason)
			}
		})
	}
}

func TestRulesInIsolation(t *testing.T) {
	rules := Rules(DefaultPolicy())
	require.Len(t, rules, 6)

	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{RuleAutoReject, RuleSkillGate, RuleHighScoreFlagged, RuleHighScore, RuleHoldBand, RuleLowScore}, names)

	gate := rules[1]
	assert.False(t, gate.Match(Facts{Gate: passedGate()}))
	assert.True(t, gate.Match(Facts{Gate: failedGate(skillgate.ActionReject)}))
	assert.Equal(t, Reject, gate.Decision(Facts{Gate: failedGate(skillgate.ActionReject)}))

	high := rules[3]
	assert.True(t, high.Match(Facts{FinalScore: 75}))
	assert.False(t, high.Match(Facts{FinalScore: 74.99}))

	last := rules[len(rules)-1]
	assert.True(t, last.Match(Facts{}))
}

func TestCustomPolicy(t *testing.T) {
	r, err := NewResolver(Policy{HireThreshold: 85, HoldThreshold: 70})
	require.NoError(t, err)

	assert.Equal(t, Hold, r.Resolve(Facts{FinalScore: 80, Gate: passedGate()}).Decision)
	assert.Equal(t, Reject, r.Resolve(Facts{FinalScore: 69, Gate: passedGate()}).Decision)
	assert.Equal(t, Hire, r.Resolve(Facts{FinalScore: 85, Gate: passedGate()}).Decision)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.ErrorIs(t, Policy{HireThreshold: 50, HoldThreshold: 60}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{HireThreshold: 120, HoldThreshold: 60}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{HireThreshold: 50, HoldThreshold: -1}.Validate(), ErrInvalidPolicy)

	_, err := NewResolver(Policy{HireThreshold: 10, HoldThreshold: 20})
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}
