package config

import (
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/decision"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/risk"
)

// DefaultVersion labels snapshots built without a version in the file.
const DefaultVersion = "builtin"

// Default returns the built-in tables.
func Default() *File {
	return &File{
		Version: DefaultVersion,
		Profiles: map[string]ProfileFile{
			engine.DefaultProfile: {
				Weights: []WeightFile{
					{Code: competency.Communication, Weight: 15},
					{Code: competency.Accountability, Weight: 15},
					{Code: competency.Teamwork, Weight: 10},
					{Code: competency.StressResilience, Weight: 10},
					{Code: competency.Adaptability, Weight: 10},
					{Code: competency.LearningAgility, Weight: 10},
					{Code: competency.Integrity, Weight: 15},
					{Code: competency.RoleCompetence, Weight: 15},
				},
			},
			"maritime": {
				Source:         string(competency.SourceCategoryAggregation),
				GateCompetency: competency.CategoryCoreDuty,
				Weights: []WeightFile{
					{Code: competency.CategoryCoreDuty, Weight: 35},
					{Code: competency.CategoryRiskSafety, Weight: 30},
					{Code: competency.CategoryProcedureDiscipline, Weight: 20},
					{Code: competency.CategoryCommunicationJudgment, Weight: 15},
				},
			},
		},
		Categories: map[string]string{
			"navigation":            competency.CategoryCoreDuty,
			"watchkeeping":          competency.CategoryCoreDuty,
			"cargo_handling":        competency.CategoryCoreDuty,
			"engine_operations":     competency.CategoryCoreDuty,
			"fire_fighting":         competency.CategoryRiskSafety,
			"emergency_response":    competency.CategoryRiskSafety,
			"safety_awareness":      competency.CategoryRiskSafety,
			"checklists":            competency.CategoryProcedureDiscipline,
			"ism_compliance":        competency.CategoryProcedureDiscipline,
			"documentation":         competency.CategoryProcedureDiscipline,
			"reporting":             competency.CategoryCommunicationJudgment,
			"bridge_communication":  competency.CategoryCommunicationJudgment,
			"english_communication": competency.CategoryCommunicationJudgment,
		},
		Risk:       defaultRisk(),
		RedFlags:   defaultRedFlags(),
		SkillGates: defaultGates(),
		Decision: &DecisionFile{
			HireThreshold: decision.DefaultHireThreshold,
			HoldThreshold: decision.DefaultHoldThreshold,
		},
		Batch: &BatchConfig{Workers: 4},
	}
}

func defaultRisk() *RiskFile {
	th := risk.DefaultThresholds()
	pen := risk.DefaultPenalties()

	dims := make([]DimensionFile, 0, 3)
	for _, d := range risk.CanonicalDimensions() {
		df := DimensionFile{Name: d.Name}
		for _, in := range d.Inputs {
			df.Inputs = append(df.Inputs, InputFile{Code: in.Code, Ratio: in.Ratio})
		}
		dims = append(dims, df)
	}

	return &RiskFile{
		Thresholds: &RiskThresholdsFile{Warning: th.Warning, Critical: th.Critical},
		Penalties:  &RiskPenaltiesFile{Normal: pen.Normal, Warning: pen.Warning, Critical: pen.Critical},
		Dimensions: dims,
	}
}

func defaultRedFlags() []RedFlagFile {
	return []RedFlagFile{
		{
			Code:       "RF_AGGRESSION",
			Severity:   "critical",
			Penalty:    20,
			AutoReject: true,
			Phrases:    []string{"döverim", "kafasını kırarım", "kavga ederim", "hit him", "punch him", "beat him up"},
		},
		{
			Code:       "RF_SUBSTANCE",
			Severity:   "critical",
			Penalty:    20,
			AutoReject: true,
			Phrases:    []string{"içkili çalıştım", "sarhoş çalıştım", "drunk at work", "drunk on watch"},
		},
		{
			Code:       "RF_SAFETY_DISREGARD",
			Severity:   "critical",
			Penalty:    20,
			AutoReject: true,
			Phrases:    []string{"prosedürü atladım", "kontrol listesini atladım", "skipped the checklist", "ignored the safety"},
		},
		{
			Code:     "RF_DISHONESTY",
			Severity: "high",
			Penalty:  10,
			Phrases:  []string{"yalan söyledim", "kimse fark etmez", "lied to my manager", "nobody would notice"},
		},
		{
			Code:     "RF_BLAME",
			Severity: "high",
			Penalty:  10,
			Phrases:  []string{"benim suçum değil", "onların hatası", "not my fault", "their fault"},
		},
		{
			Code:     "RF_INFLEXIBLE",
			Severity: "medium",
			Penalty:  5,
			Phrases:  []string{"asla", "kesinlikle yapmam", "i would never", "not my job"},
		},
		{
			Code:     "RF_DISENGAGED",
			Severity: "low",
			Penalty:  2,
			Phrases:  []string{"umurumda değil", "bana ne", "i don't care", "whatever"},
		},
	}
}

func defaultGates() []GateFile {
	return []GateFile{
		{Key: "*", Threshold: 40, Action: "HOLD"},
		{Key: "entry", Threshold: 35, Action: "HOLD"},
		{Key: "mid", Threshold: 50, Action: "HOLD"},
		{Key: "senior", Threshold: 65, Action: "HOLD"},
		{Key: "maritime", Threshold: 60, Action: "HOLD"},
		{Key: "master", Threshold: 70, Action: "REJECT", SafetyCritical: true},
		{Key: "chief_officer", Threshold: 70, Action: "REJECT", SafetyCritical: true},
		{Key: "chief_engineer", Threshold: 70, Action: "REJECT", SafetyCritical: true},
		{Key: "second_engineer", Threshold: 65, Action: "REJECT", SafetyCritical: true},
	}
}
