package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/ai"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/logger"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultMaxAttempts  = 2

	systemInstruction = "You score interview answers. Reply with a single JSON object and nothing else."
)

// Scorer asks Gemini for per-competency percentages and validates the reply
// before handing it to the engine.
type Scorer struct {
	generator   contentGenerator
	logger      *zap.Logger
	maxLogLen   int
	maxAttempts int
}

var _ ai.CompetencyScorer = (*Scorer)(nil)

func NewScorer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if g, ok := generator.(*Generator); ok {
		model = g.Model()
	}

	return &Scorer{
		generator:   generator,
		logger:      logger.WithCommonFields(log, providerName, model),
		maxLogLen:   maxLogLength,
		maxAttempts: defaultMaxAttempts,
	}
}

// ScoreAnswers returns validated 0-100 scores for req.Competencies. A reply
// that fails to parse or validate is asked for again once.
func (s *Scorer) ScoreAnswers(ctx context.Context, req ai.Request) (competency.Scores, error) {
	if s == nil || s.generator == nil {
		return nil, errors.New("gemini scorer is not initialized")
	}
	if len(req.Answers) == 0 {
		return nil, errors.New("answers are required")
	}

	codes := req.Competencies
	if len(codes) == 0 {
		codes = competency.Codes()
	}

	answersJSON, err := json.MarshalIndent(req.Answers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal answers payload: %w", err)
	}
	prompt := buildPrompt(req.Position, codes, string(answersJSON))

	log := logger.WithFields(s.logger, zap.String(logger.FieldCandidate, req.CandidateID))

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		log.Debug("gemini generate content request",
			zap.Int("attempt", attempt),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
		)

		raw, err := s.generator.GenerateContent(ctx, systemInstruction, prompt)
		if err != nil {
			return nil, err
		}

		log.Debug("gemini generate content response",
			zap.Int("attempt", attempt),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)

		scores, err := parseScores(raw)
		if err == nil {
			err = ai.ValidateScores(scores, codes)
		}
		if err == nil {
			return scores, nil
		}

		lastErr = err
		log.Warn("gemini returned unusable scores", zap.Int("attempt", attempt), zap.Error(err))
	}

	return nil, lastErr
}

func buildPrompt(position string, codes []string, answersJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Position: {{POSITION}}\n\nCompetencies:\n{{COMPETENCIES}}\n\nAnswers:\n{{ANSWERS_JSON}}\n\nJSON Response:"
	}

	position = strings.TrimSpace(position)
	if position == "" {
		position = "unspecified"
	}

	var list strings.Builder
	for _, code := range codes {
		list.WriteString("- ")
		list.WriteString(competency.NormalizeCode(code))
		list.WriteString("\n")
	}

	prompt := strings.ReplaceAll(template, "{{POSITION}}", position)
	prompt = strings.ReplaceAll(prompt, "{{COMPETENCIES}}", strings.TrimRight(list.String(), "\n"))
	prompt = strings.ReplaceAll(prompt, "{{ANSWERS_JSON}}", answersJSON)
	return prompt
}

func parseScores(raw string) (competency.Scores, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Scores map[string]any `json:"scores"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	scores := make(competency.Scores, len(data.Scores))
	for code, v := range data.Scores {
		scores[competency.NormalizeCode(code)] = coerceFloat(v)
	}
	return scores, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
