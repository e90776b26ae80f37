// Package redflag scans free-text interview answers for trigger phrases.
//
// Matching is exact phrase matching on Unicode word boundaries: a phrase
// never matches inside a longer token, so "asla" does not fire on
// "aslan". There is no stemming and no fuzzy matching.
package redflag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Severity of a red flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var ErrUnknownSeverity = errors.New("unknown red flag severity")

// ParseSeverity validates a configured severity.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// Rank orders severities from low (1) to critical (4). Unknown is 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Definition is an immutable red flag entry of a dictionary.
type Definition struct {
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Penalty    float64  `json:"penalty"`
	AutoReject bool     `json:"auto_reject"`
	Phrases    []string `json:"trigger_phrases"`
}

// Match is a triggered flag with the phrases that fired it.
type Match struct {
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Penalty    float64  `json:"penalty"`
	AutoReject bool     `json:"auto_reject"`
	Evidence   []string `json:"evidence"`
}

// Result is the outcome of scanning one candidate's text.
type Result struct {
	Matches    []Match `json:"matches"`
	Penalty    float64 `json:"penalty"`
	AutoReject bool    `json:"auto_reject"`
	RejectFlag string  `json:"reject_flag,omitempty"`
}

// CodesAtLeast returns, in dictionary order, the codes of matches at least
// as severe as s.
func (r Result) CodesAtLeast(s Severity) []string {
	var codes []string
	for _, m := range r.Matches {
		if m.Severity.Rank() >= s.Rank() {
			codes = append(codes, m.Code)
		}
	}
	return codes
}

// Codes returns the codes of all matches in dictionary order.
func (r Result) Codes() []string {
	codes := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		codes = append(codes, m.Code)
	}
	return codes
}

type trigger struct {
	phrase string
	re     *regexp.Regexp
}

type entry struct {
	def      Definition
	triggers []trigger
}

// Dictionary is a compiled, read-only set of definitions.
type Dictionary struct {
	entries []entry
}

// NewDictionary validates definitions and compiles their phrases. Phrases
// that are blank or hold no letters or digits are dropped and never match.
func NewDictionary(defs []Definition) (*Dictionary, error) {
	d := &Dictionary{entries: make([]entry, 0, len(defs))}
	seen := make(map[string]bool, len(defs))

	for _, def := range defs {
		code := strings.TrimSpace(def.Code)
		if code == "" {
			return nil, errors.New("red flag code must be set")
		}
		if seen[code] {
			return nil, fmt.Errorf("red flag %q declared twice", code)
		}
		seen[code] = true

		sev, err := ParseSeverity(string(def.Severity))
		if err != nil {
			return nil, fmt.Errorf("red flag %q: %w", code, err)
		}
		if def.Penalty < 0 {
			return nil, fmt.Errorf("red flag %q penalty must not be negative", code)
		}

		phrases := normalizePhrases(def.Phrases)
		e := entry{
			def: Definition{
				Code:       code,
				Severity:   sev,
				Penalty:    def.Penalty,
				AutoReject: def.AutoReject,
				Phrases:    phrases,
			},
			triggers: make([]trigger, 0, len(phrases)),
		}
		for _, p := range phrases {
			re, ok := compilePhrase(Fold(p))
			if !ok {
				continue
			}
			e.triggers = append(e.triggers, trigger{phrase: p, re: re})
		}
		d.entries = append(d.entries, e)
	}

	return d, nil
}

// Definitions returns copies of the normalized definitions.
func (d *Dictionary) Definitions() []Definition {
	out := make([]Definition, 0, len(d.entries))
	for _, e := range d.entries {
		def := e.def
		def.Phrases = append([]string(nil), e.def.Phrases...)
		out = append(out, def)
	}
	return out
}

// Len returns the number of definitions.
func (d *Dictionary) Len() int { return len(d.entries) }

// Detect scans the concatenated texts against every definition.
func (d *Dictionary) Detect(texts []string) Result {
	res := Result{Matches: []Match{}}

	text := NormalizeText(texts)
	if text == "" {
		return res
	}

	for _, e := range d.entries {
		var evidence []string
		for _, t := range e.triggers {
			if t.re.MatchString(text) {
				evidence = append(evidence, t.phrase)
			}
		}
		if len(evidence) == 0 {
			continue
		}

		res.Matches = append(res.Matches, Match{
			Code:       e.def.Code,
			Severity:   e.def.Severity,
			Penalty:    e.def.Penalty,
			AutoReject: e.def.AutoReject,
			Evidence:   evidence,
		})
		res.Penalty += e.def.Penalty

		if e.def.AutoReject && !res.AutoReject {
			res.AutoReject = true
			res.RejectFlag = e.def.Code
		}
	}

	return res
}

// NormalizeText folds every answer, collapses its whitespace and joins the
// answers with newlines.
func NormalizeText(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		fields := strings.Fields(Fold(t))
		if len(fields) == 0 {
			continue
		}
		parts = append(parts, strings.Join(fields, " "))
	}
	return strings.Join(parts, "\n")
}

// Fold case-folds s and merges the Turkish dotted and dotless i, so
// "KAFASINI", "kafasını" and "KAFASİNİ" all compare equal. Text and
// phrases go through the same folding.
func Fold(s string) string {
	// A Caser keeps state and must not be shared.
	folded := cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case 'ı':
			return 'i'
		case '\u0307': // combining dot left behind by İ
			return -1
		}
		return r
	}, folded)
}

// normalizePhrases trims, lower-cases, collapses whitespace and dedupes on
// the folded form, keeping the first occurrence order.
func normalizePhrases(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))

	for _, p := range phrases {
		norm := strings.Join(strings.Fields(strings.ToLower(p)), " ")
		if norm == "" {
			continue
		}
		key := Fold(norm)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, norm)
	}

	return out
}

const (
	boundaryStart = `(?:^|[^\p{L}\p{N}\p{M}_])`
	boundaryEnd   = `(?:$|[^\p{L}\p{N}\p{M}_])`
)

// compilePhrase builds a boundary-anchored pattern for a normalized phrase.
func compilePhrase(phrase string) (*regexp.Regexp, bool) {
	if !strings.ContainsFunc(phrase, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) {
		return nil, false
	}

	words := strings.Fields(phrase)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}

	re, err := regexp.Compile(boundaryStart + strings.Join(quoted, `\s+`) + boundaryEnd)
	if err != nil {
		return nil, false
	}
	return re, true
}
