package competency

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// SourceKind selects the strategy that turns raw signals into percentages.
type SourceKind string

const (
	SourceAuto                SourceKind = ""
	SourceExplicitRating      SourceKind = "explicit_rating"
	SourceExternalPercentage  SourceKind = "external_percentage"
	SourceTextLength          SourceKind = "text_length"
	SourceCategoryAggregation SourceKind = "category_aggregation"
)

// Maritime categories used by the category aggregation strategy.
const (
	CategoryCoreDuty              = "core_duty"
	CategoryRiskSafety            = "risk_safety"
	CategoryProcedureDiscipline   = "procedure_discipline"
	CategoryCommunicationJudgment = "communication_judgment"
)

// MaxRating is the top of the explicit rating scale.
const MaxRating = 5

// Categories returns the maritime categories in round-robin order.
func Categories() []string {
	return []string{
		CategoryCoreDuty,
		CategoryRiskSafety,
		CategoryProcedureDiscipline,
		CategoryCommunicationJudgment,
	}
}

// ParseSourceKind validates a configured source kind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch kind := SourceKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case SourceAuto, SourceExplicitRating, SourceExternalPercentage, SourceTextLength, SourceCategoryAggregation:
		return kind, nil
	default:
		return SourceAuto, fmt.Errorf("unknown score source %q", s)
	}
}

// Answer is a free-text interview answer attributed to a competency.
type Answer struct {
	Competency string `json:"competency" yaml:"competency" mapstructure:"competency"`
	Text       string `json:"text" yaml:"text" mapstructure:"text"`
}

// Signals holds every raw form a competency signal may arrive in.
type Signals struct {
	Ratings     map[string]float64
	Percentages map[string]float64
	Answers     []Answer
}

// Scores maps competency (or category) codes to a 0-100 percentage.
type Scores map[string]float64

// Source converts raw signals into competency percentages.
type Source interface {
	Kind() SourceKind
	Score(sig Signals) Scores
}

// SelectKind picks a strategy from the signals that are present.
func SelectKind(sig Signals) SourceKind {
	switch {
	case len(sig.Ratings) > 0:
		return SourceExplicitRating
	case len(sig.Percentages) > 0:
		return SourceExternalPercentage
	case hasAnswerText(sig.Answers):
		return SourceTextLength
	default:
		return SourceAuto
	}
}

// NewSource builds the strategy for kind. categories is only used by the
// category aggregation strategy.
func NewSource(kind SourceKind, categories map[string]string) (Source, error) {
	switch kind {
	case SourceExplicitRating:
		return RatingSource{}, nil
	case SourceExternalPercentage:
		return PercentageSource{}, nil
	case SourceTextLength:
		return TextLengthSource{}, nil
	case SourceCategoryAggregation:
		return NewCategorySource(categories), nil
	default:
		return nil, fmt.Errorf("no score source for kind %q", kind)
	}
}

// RatingSource converts explicit 0-5 ratings.
type RatingSource struct{}

func (RatingSource) Kind() SourceKind { return SourceExplicitRating }

func (RatingSource) Score(sig Signals) Scores {
	out := make(Scores, len(sig.Ratings))
	for code, raw := range sig.Ratings {
		if math.IsNaN(raw) {
			continue
		}
		out[NormalizeCode(code)] = RatingToPercent(raw)
	}
	return out
}

// RatingToPercent maps a 0-5 rating onto 0-100.
func RatingToPercent(raw5 float64) float64 {
	return Clamp(math.Round(raw5*20), 0, 100)
}

// PercentageSource passes externally computed percentages through.
type PercentageSource struct{}

func (PercentageSource) Kind() SourceKind { return SourceExternalPercentage }

func (PercentageSource) Score(sig Signals) Scores {
	out := make(Scores, len(sig.Percentages))
	for code, pct := range sig.Percentages {
		if math.IsNaN(pct) {
			continue
		}
		out[NormalizeCode(code)] = Clamp(pct, 0, 100)
	}
	return out
}

// TextLengthSource is a coarse fallback used when only free-text answers
// exist. It scores answer length, not answer quality.
type TextLengthSource struct{}

func (TextLengthSource) Kind() SourceKind { return SourceTextLength }

func (TextLengthSource) Score(sig Signals) Scores {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range sig.Answers {
		code := NormalizeCode(a.Competency)
		if code == "" {
			continue
		}
		sums[code] += LengthBucket(a.Text)
		counts[code]++
	}

	out := make(Scores, len(sums))
	for code, sum := range sums {
		out[code] = math.Round(sum / float64(counts[code]))
	}
	return out
}

// LengthBucket returns the heuristic percentage for an answer of the given
// text, measured in runes after trimming.
func LengthBucket(text string) float64 {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n == 0:
		return 0
	case n < 30:
		return 35
	case n < 80:
		return 50
	case n < 180:
		return 70
	case n < 350:
		return 85
	default:
		return 95
	}
}

// CategorySource groups 0-5 ratings into the four maritime categories.
type CategorySource struct {
	categories map[string]string
}

// NewCategorySource copies the competency to category map.
func NewCategorySource(categories map[string]string) CategorySource {
	m := make(map[string]string, len(categories))
	for code, cat := range categories {
		m[NormalizeCode(code)] = NormalizeCode(cat)
	}
	return CategorySource{categories: m}
}

func (CategorySource) Kind() SourceKind { return SourceCategoryAggregation }

func (s CategorySource) Score(sig Signals) Scores {
	known := make(map[string]bool, 4)
	for _, c := range Categories() {
		known[c] = true
	}

	ratings := make(map[string]float64, len(sig.Ratings))
	for code, raw := range sig.Ratings {
		if math.IsNaN(raw) {
			continue
		}
		ratings[NormalizeCode(code)] = Clamp(raw, 0, MaxRating)
	}

	sums := make(map[string]float64, 4)
	counts := make(map[string]int, 4)
	unresolved := 0
	for _, code := range sortedKeys(ratings) {
		cat, ok := s.categories[code]
		if !ok || !known[cat] {
			cat = Categories()[unresolved%len(Categories())]
			unresolved++
		}
		sums[cat] += ratings[code]
		counts[cat]++
	}

	out := make(Scores, len(sums))
	for cat, sum := range sums {
		out[cat] = Round2(sum / float64(MaxRating*counts[cat]) * 100)
	}
	return out
}

func hasAnswerText(answers []Answer) bool {
	for _, a := range answers {
		if strings.TrimSpace(a.Text) != "" {
			return true
		}
	}
	return false
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
