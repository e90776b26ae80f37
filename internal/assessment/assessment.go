// Package assessment decides where competency scores come from before a
// candidate reaches the engine.
//
// Ratings or percentages supplied by the interview platform are used as is.
// Otherwise free-text answers go to the AI scorer; when that fails the
// engine's text heuristic takes over. A candidate with neither is reported
// as analysis_failed and never evaluated, though any free text is still
// scanned for red flags.
package assessment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/ai"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/logger"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/redflag"
)

// Status tells how the scores of an assessment were obtained.
type Status string

const (
	StatusProvided       Status = "provided"
	StatusAIScored       Status = "ai_scored"
	StatusHeuristic      Status = "heuristic"
	StatusAnalysisFailed Status = "analysis_failed"
)

// Report is the outcome for one candidate. Evaluation is nil when the
// status is analysis_failed; RedFlags is then set if the free text matched.
type Report struct {
	CandidateID string             `json:"candidate_id"`
	Status      Status             `json:"status"`
	AIError     string             `json:"ai_error,omitempty"`
	RedFlags    *redflag.Result    `json:"red_flags,omitempty"`
	Evaluation  *engine.Evaluation `json:"evaluation,omitempty"`
}

// Decision returns the decision of the evaluation, or the status when there
// is none.
func (r Report) Decision() string {
	if r.Evaluation == nil {
		return string(r.Status)
	}
	return string(r.Evaluation.Result.Decision)
}

// Assessor runs the scoring workflow. The AI scorer is optional.
type Assessor struct {
	scorer    ai.CompetencyScorer
	evaluator *engine.Evaluator
	logger    *zap.Logger
}

func New(scorer ai.CompetencyScorer, log *zap.Logger) *Assessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assessor{
		scorer:    scorer,
		evaluator: engine.NewEvaluator(log),
		logger:    log,
	}
}

// Prepare resolves the score source and returns the input the engine should
// see. It does not evaluate.
func (a *Assessor) Prepare(ctx context.Context, snap *engine.Snapshot, in engine.Input) (engine.Input, Report) {
	report := Report{CandidateID: in.CandidateID}

	if len(in.Ratings) > 0 || len(in.Percentages) > 0 {
		report.Status = StatusProvided
		return in, report
	}

	if !hasText(in.Answers) {
		report.Status = StatusAnalysisFailed
		return in, report
	}

	if a.scorer == nil || snap == nil {
		report.Status = StatusHeuristic
		return in, report
	}

	log := logger.WithCandidate(a.logger, in.CandidateID, in.PositionCode, snap.Version())

	_, profile := snap.Profile(in.RoleCategory)
	scores, err := a.scorer.ScoreAnswers(ctx, ai.Request{
		CandidateID:  in.CandidateID,
		Position:     in.PositionCode,
		Competencies: profile.Weights.Codes(),
		Answers:      in.Answers,
	})
	if err != nil {
		log.Warn("ai scoring failed, using text heuristic", zap.Error(err))
		report.Status = StatusHeuristic
		report.AIError = err.Error()
		return in, report
	}

	in.Percentages = scores
	in.Source = competency.SourceExternalPercentage
	report.Status = StatusAIScored
	return in, report
}

// Assess prepares and evaluates one candidate.
func (a *Assessor) Assess(ctx context.Context, snap *engine.Snapshot, in engine.Input) (Report, error) {
	prepared, report := a.Prepare(ctx, snap, in)
	if report.Status == StatusAnalysisFailed {
		a.logger.Info("analysis failed: no ratings, percentages or answers",
			zap.String(logger.FieldCandidate, in.CandidateID))
		if snap != nil && snap.RedFlags() != nil {
			if flags := snap.RedFlags().Detect(in.Texts()); len(flags.Matches) > 0 {
				a.logger.Warn("red flags in unscored text",
					zap.String(logger.FieldCandidate, in.CandidateID),
					zap.Strings("flags", flags.Codes()),
					zap.Bool("auto_reject", flags.AutoReject),
				)
				report.RedFlags = &flags
			}
		}
		return report, nil
	}

	ev, err := a.evaluator.Evaluate(snap, prepared)
	if err != nil {
		return report, err
	}
	report.Evaluation = &ev
	return report, nil
}

func hasText(answers []competency.Answer) bool {
	for _, a := range answers {
		if strings.TrimSpace(a.Text) != "" {
			return true
		}
	}
	return false
}
