// Package ai defines the contract of AI collaborators that turn free-text
// interview answers into competency percentages.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
)

var ErrInvalidScores = errors.New("ai scores failed validation")

// Request describes the answers to score.
type Request struct {
	CandidateID  string
	Position     string
	Competencies []string
	Answers      []competency.Answer
}

// CompetencyScorer scores answers per competency on a 0-100 scale.
type CompetencyScorer interface {
	ScoreAnswers(ctx context.Context, req Request) (competency.Scores, error)
}

// ValidateScores checks that every score is a number in 0-100 and that only
// requested competencies are present. An empty result is invalid.
func ValidateScores(scores competency.Scores, allowed []string) error {
	if len(scores) == 0 {
		return fmt.Errorf("%w: no scores returned", ErrInvalidScores)
	}

	known := make(map[string]bool, len(allowed))
	for _, code := range allowed {
		known[competency.NormalizeCode(code)] = true
	}

	codes := make([]string, 0, len(scores))
	for code := range scores {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		v := scores[code]
		if len(known) > 0 && !known[code] {
			return fmt.Errorf("%w: unexpected competency %q", ErrInvalidScores, code)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return fmt.Errorf("%w: competency %q score %v out of range 0-100", ErrInvalidScores, code, v)
		}
	}
	return nil
}
