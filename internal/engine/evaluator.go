package engine

import (
	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/logger"
)

// Evaluator wraps Evaluate with structured logging.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator returns an evaluator. A nil logger disables logging.
func NewEvaluator(log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{logger: log}
}

// Evaluate runs the pipeline and logs every step.
func (e *Evaluator) Evaluate(snap *Snapshot, in Input) (Evaluation, error) {
	var version string
	if snap != nil {
		version = snap.Version()
	}
	log := logger.WithCandidate(e.logger, in.CandidateID, in.PositionCode, version)

	ev, err := Evaluate(snap, in)
	if err != nil {
		log.Error("evaluation failed", zap.Error(err))
		return ev, err
	}

	log.Debug("competencies scored",
		zap.String("profile", ev.Profile),
		zap.String("source", string(ev.Source)),
		zap.Int("scored", len(ev.Scores)),
		zap.Float64("base_score", ev.Result.BaseScore),
	)
	log.Debug("risk assessed",
		zap.Float64("risk_penalty", ev.Result.RiskPenalty),
		zap.Strings("critical", ev.Risk.Critical()),
	)
	log.Debug("red flags scanned",
		zap.Strings("flags", ev.RedFlags.Codes()),
		zap.Float64("red_flag_penalty", ev.Result.RedFlagPenalty),
		zap.Bool("auto_reject", ev.Result.AutoReject),
	)
	log.Debug("skill gate resolved",
		zap.String("gate", ev.Gate.Key),
		zap.String("matched_by", ev.Gate.MatchedBy),
		zap.Float64("threshold", ev.Gate.Threshold),
		zap.Bool("passed", ev.Gate.Passed),
		zap.Bool("safety_critical", ev.Gate.SafetyCritical),
	)
	log.Info("decision",
		zap.String("decision", string(ev.Result.Decision)),
		zap.Float64("final_score", ev.Result.FinalScore),
		zap.String("rule", ev.Rule),
		zap.String("reason", ev.Result.Reason),
	)

	return ev, nil
}
