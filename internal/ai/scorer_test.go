package ai

import (
	"errors"
	"math"
	"testing"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
)

func TestValidateScores(t *testing.T) {
	t.Parallel()

	allowed := []string{competency.Integrity, competency.Teamwork}

	tests := []struct {
		name    string
		scores  competency.Scores
		wantErr bool
	}{
		{name: "valid", scores: competency.Scores{competency.Integrity: 0, competency.Teamwork: 100}},
		{name: "empty", scores: competency.Scores{}, wantErr: true},
		{name: "above range", scores: competency.Scores{competency.Integrity: 100.5}, wantErr: true},
		{name: "negative", scores: competency.Scores{competency.Teamwork: -1}, wantErr: true},
		{name: "nan", scores: competency.Scores{competency.Teamwork: math.NaN()}, wantErr: true},
		{name: "unexpected code", scores: competency.Scores{"charisma": 50}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateScores(tt.scores, allowed)
			if tt.wantErr && !errors.Is(err, ErrInvalidScores) {
				t.Fatalf("expected ErrInvalidScores, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateScoresWithoutAllowList(t *testing.T) {
	if err := ValidateScores(competency.Scores{"anything": 42}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
