package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/ai"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
)

type stubScorer struct {
	scores   competency.Scores
	err      error
	requests []ai.Request
}

func (s *stubScorer) ScoreAnswers(_ context.Context, req ai.Request) (competency.Scores, error) {
	s.requests = append(s.requests, req)
	return s.scores, s.err
}

func defaultSnapshot(t *testing.T) *engine.Snapshot {
	t.Helper()
	snap, err := config.Default().Snapshot()
	require.NoError(t, err)
	return snap
}

func answersInput() engine.Input {
	return engine.Input{
		CandidateID:  "c-7",
		PositionCode: "mid",
		Answers: []competency.Answer{
			{Competency: competency.Communication, Text: "Müşteri şikayetini dinledim, çözüm önerdim ve takibini yaptım."},
			{Competency: competency.Teamwork, Text: "Vardiya değişiminde ekibe devir notu bıraktım."},
		},
	}
}

func TestAssessProvidedScoresSkipAI(t *testing.T) {
	scorer := &stubScorer{}
	in := engine.Input{CandidateID: "c-1", Ratings: map[string]float64{competency.RoleCompetence: 4}}

	report, err := New(scorer, nil).Assess(context.Background(), defaultSnapshot(t), in)
	require.NoError(t, err)

	assert.Equal(t, StatusProvided, report.Status)
	require.NotNil(t, report.Evaluation)
	assert.Equal(t, competency.SourceExplicitRating, report.Evaluation.Source)
	assert.Empty(t, scorer.requests)
}

func TestAssessUsesAIScores(t *testing.T) {
	snap := defaultSnapshot(t)
	scores := competency.Scores{}
	for _, code := range competency.Codes() {
		scores[code] = 80
	}
	scorer := &stubScorer{scores: scores}

	report, err := New(scorer, zap.NewNop()).Assess(context.Background(), snap, answersInput())
	require.NoError(t, err)

	assert.Equal(t, StatusAIScored, report.Status)
	require.NotNil(t, report.Evaluation)
	assert.Equal(t, competency.SourceExternalPercentage, report.Evaluation.Source)
	assert.Equal(t, 80.0, report.Evaluation.Result.BaseScore)

	require.Len(t, scorer.requests, 1)
	req := scorer.requests[0]
	assert.Equal(t, "c-7", req.CandidateID)
	assert.Equal(t, "mid", req.Position)
	_, profile := snap.Profile("")
	assert.Equal(t, profile.Weights.Codes(), req.Competencies)
	assert.Len(t, req.Answers, 2)
}

func TestAssessFallsBackToHeuristic(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	scorer := &stubScorer{err: errors.New("gemini unavailable")}

	report, err := New(scorer, zap.New(core)).Assess(context.Background(), defaultSnapshot(t), answersInput())
	require.NoError(t, err)

	assert.Equal(t, StatusHeuristic, report.Status)
	assert.Equal(t, "gemini unavailable", report.AIError)
	require.NotNil(t, report.Evaluation)
	assert.Equal(t, competency.SourceTextLength, report.Evaluation.Source)

	require.Equal(t, 1, observed.Len())
	entry := observed.All()[0]
	assert.Equal(t, "ai scoring failed, using text heuristic", entry.Message)
	assert.Equal(t, "c-7", entry.ContextMap()["candidate_id"])
}

func TestAssessWithoutScorerUsesHeuristic(t *testing.T) {
	report, err := New(nil, nil).Assess(context.Background(), defaultSnapshot(t), answersInput())
	require.NoError(t, err)
	assert.Equal(t, StatusHeuristic, report.Status)
	assert.Empty(t, report.AIError)
	require.NotNil(t, report.Evaluation)
}

func TestAssessAnalysisFailed(t *testing.T) {
	tests := []struct {
		name string
		in   engine.Input
	}{
		{name: "empty", in: engine.Input{CandidateID: "x"}},
		{name: "blank answers", in: engine.Input{CandidateID: "x", Answers: []competency.Answer{{Competency: "teamwork", Text: "  "}}}},
		{name: "free text only", in: engine.Input{CandidateID: "x", FreeText: []string{"Merhaba"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &stubScorer{}
			report, err := New(scorer, nil).Assess(context.Background(), defaultSnapshot(t), tt.in)
			require.NoError(t, err)

			assert.Equal(t, StatusAnalysisFailed, report.Status)
			assert.Nil(t, report.Evaluation)
			assert.Equal(t, "analysis_failed", report.Decision())
			assert.Nil(t, report.RedFlags)
			assert.Empty(t, scorer.requests)
		})
	}
}

func TestAssessAnalysisFailedStillScansFreeText(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	in := engine.Input{CandidateID: "c-9", FreeText: []string{"Bir daha olursa DÖVERİM."}}

	report, err := New(&stubScorer{}, zap.New(core)).Assess(context.Background(), defaultSnapshot(t), in)
	require.NoError(t, err)

	assert.Equal(t, StatusAnalysisFailed, report.Status)
	assert.Nil(t, report.Evaluation)
	require.NotNil(t, report.RedFlags)
	assert.Equal(t, []string{"RF_AGGRESSION"}, report.RedFlags.Codes())
	assert.True(t, report.RedFlags.AutoReject)
	assert.Equal(t, "RF_AGGRESSION", report.RedFlags.RejectFlag)

	require.Equal(t, 1, observed.Len())
	entry := observed.All()[0]
	assert.Equal(t, "red flags in unscored text", entry.Message)
	assert.Equal(t, "c-9", entry.ContextMap()["candidate_id"])
}

func TestAssessNilSnapshot(t *testing.T) {
	_, err := New(nil, nil).Assess(context.Background(), nil, answersInput())
	assert.ErrorIs(t, err, engine.ErrInvalidSnapshot)
}
