// Package engine evaluates one candidate against a configuration snapshot.
//
// Evaluate is a pure function: it does no I/O, keeps no state and returns
// the same result for the same input and snapshot. Missing data degrades the
// score but never fails the evaluation.
package engine

import (
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/decision"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/redflag"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/risk"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/skillgate"
)

// Input is everything collaborators supply about a candidate.
type Input struct {
	CandidateID  string                `json:"candidate_id,omitempty"`
	PositionCode string                `json:"position_code,omitempty"`
	RoleCategory string                `json:"role_category,omitempty"`
	Ratings      map[string]float64    `json:"ratings,omitempty"`
	Percentages  map[string]float64    `json:"percentages,omitempty"`
	Answers      []competency.Answer   `json:"answers,omitempty"`
	FreeText     []string              `json:"free_text,omitempty"`
	Source       competency.SourceKind `json:"source,omitempty"`
}

// Texts returns every free-text fragment in input order: answers first,
// then the extra free text.
func (in Input) Texts() []string {
	out := make([]string, 0, len(in.Answers)+len(in.FreeText))
	for _, a := range in.Answers {
		out = append(out, a.Text)
	}
	return append(out, in.FreeText...)
}

func (in Input) signals() competency.Signals {
	return competency.Signals{
		Ratings:     in.Ratings,
		Percentages: in.Percentages,
		Answers:     in.Answers,
	}
}

// SkillGateResult is the gate part of a decision.
type SkillGateResult struct {
	Passed    bool             `json:"passed"`
	Threshold float64          `json:"threshold"`
	Action    skillgate.Action `json:"action"`
}

// DecisionResult is the stable output contract.
type DecisionResult struct {
	BaseScore      float64           `json:"base_score"`
	RiskPenalty    float64           `json:"risk_penalty"`
	RedFlagPenalty float64           `json:"red_flag_penalty"`
	FinalScore     float64           `json:"final_score"`
	SkillGate      SkillGateResult   `json:"skill_gate"`
	Decision       decision.Decision `json:"decision"`
	Reason         string            `json:"reason"`
	GateOverride   bool              `json:"gate_override"`
	AutoReject     bool              `json:"auto_reject"`
}

// Evaluation is a DecisionResult with the breakdown that explains it.
type Evaluation struct {
	CandidateID string                `json:"candidate_id,omitempty"`
	Snapshot    string                `json:"snapshot,omitempty"`
	Profile     string                `json:"profile"`
	Source      competency.SourceKind `json:"source"`
	Result      DecisionResult        `json:"result"`
	Scores      competency.Scores     `json:"scores"`
	Base        competency.BaseScore  `json:"base"`
	Risk        risk.Result           `json:"risk"`
	RedFlags    redflag.Result        `json:"red_flags"`
	Gate        skillgate.Result      `json:"gate"`
	Rule        string                `json:"rule"`
}

// Evaluate runs the whole pipeline. It only fails for a nil snapshot.
func Evaluate(snap *Snapshot, in Input) (Evaluation, error) {
	if snap == nil {
		return Evaluation{}, ErrInvalidSnapshot
	}

	profileName, profile := snap.Profile(in.RoleCategory)
	scores, kind := scoreInput(snap, profile, in)

	base := competency.CalculateBase(profile.Weights, scores)
	riskRes := snap.risk.Score(scores)
	flags := snap.redFlags.Detect(in.Texts())

	gateScore, scored := scores[profile.GateCompetency]
	gate := snap.gates.Resolve(in.PositionCode, in.RoleCategory).Evaluate(gateScore, scored)

	final := competency.Clamp(base.Score-riskRes.Penalty-flags.Penalty, 0, 100)

	outcome := snap.resolver.Resolve(decision.Facts{
		FinalScore:    final,
		AutoReject:    flags.AutoReject,
		RejectFlag:    flags.RejectFlag,
		Gate:          gate,
		CriticalRisks: riskRes.Critical(),
		SevereFlags:   flags.CodesAtLeast(redflag.SeverityHigh),
	})

	return Evaluation{
		CandidateID: in.CandidateID,
		Snapshot:    snap.version,
		Profile:     profileName,
		Source:      kind,
		Result: DecisionResult{
			BaseScore:      base.Score,
			RiskPenalty:    riskRes.Penalty,
			RedFlagPenalty: flags.Penalty,
			FinalScore:     final,
			SkillGate: SkillGateResult{
				Passed:    gate.Passed,
				Threshold: gate.Threshold,
				Action:    gate.Action,
			},
			Decision:     outcome.Decision,
			Reason:       outcome.Reason,
			GateOverride: outcome.GateOverride,
			AutoReject:   outcome.AutoReject,
		},
		Scores:   scores,
		Base:     base,
		Risk:     riskRes,
		RedFlags: flags,
		Gate:     gate,
		Rule:     outcome.Rule,
	}, nil
}

// scoreInput picks the score source: the input's own kind, then the
// profile's, then whatever signals are present.
func scoreInput(snap *Snapshot, profile Profile, in Input) (competency.Scores, competency.SourceKind) {
	sig := in.signals()

	kind := in.Source
	if kind == competency.SourceAuto {
		kind = profile.Source
	}
	if kind == competency.SourceAuto {
		kind = competency.SelectKind(sig)
	}

	src, err := competency.NewSource(kind, snap.categories)
	if err != nil {
		return competency.Scores{}, kind
	}
	return src.Score(sig), kind
}
