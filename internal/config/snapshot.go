package config

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/companyfit"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/decision"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/redflag"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/risk"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/skillgate"
)

// Effective returns a copy of f with every empty section taken from Default.
func (f *File) Effective() *File {
	def := Default()
	if f == nil {
		return def
	}

	out := *f
	if strings.TrimSpace(out.Version) == "" {
		out.Version = def.Version
	}
	if len(out.Profiles) == 0 {
		out.Profiles = def.Profiles
	}
	if len(out.Categories) == 0 {
		out.Categories = def.Categories
	}
	if out.Risk == nil {
		out.Risk = def.Risk
	} else {
		r := *out.Risk
		if r.Thresholds == nil {
			r.Thresholds = def.Risk.Thresholds
		}
		if r.Penalties == nil {
			r.Penalties = def.Risk.Penalties
		}
		if len(r.Dimensions) == 0 {
			r.Dimensions = def.Risk.Dimensions
		}
		out.Risk = &r
	}
	if len(out.RedFlags) == 0 {
		out.RedFlags = def.RedFlags
	}
	if len(out.SkillGates) == 0 {
		out.SkillGates = def.SkillGates
	}
	if out.Decision == nil {
		out.Decision = def.Decision
	}
	if out.Batch == nil {
		out.Batch = def.Batch
	}

	return &out
}

// Snapshot builds a validated engine snapshot.
func (f *File) Snapshot() (*engine.Snapshot, error) {
	eff := f.Effective()

	profiles := make(map[string]engine.Profile, len(eff.Profiles))
	for _, name := range sortedKeys(eff.Profiles) {
		pf := eff.Profiles[name]

		entries := make([]competency.WeightEntry, 0, len(pf.Weights))
		for _, w := range pf.Weights {
			entries = append(entries, competency.WeightEntry{
				Code:     w.Code,
				Weight:   w.Weight,
				Priority: competency.Priority(strings.ToLower(strings.TrimSpace(w.Priority))),
				MinScore: w.MinScore,
			})
		}
		weights, err := competency.NewWeightProfile(name, entries)
		if err != nil {
			return nil, errors.Wrap(err, "invalid weight profile")
		}

		kind, err := competency.ParseSourceKind(pf.Source)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %q", name)
		}

		profiles[name] = engine.Profile{
			Weights:        weights,
			Source:         kind,
			GateCompetency: pf.GateCompetency,
		}
	}

	scorer, err := eff.riskScorer()
	if err != nil {
		return nil, errors.Wrap(err, "invalid risk section")
	}

	defs := make([]redflag.Definition, 0, len(eff.RedFlags))
	for _, rf := range eff.RedFlags {
		defs = append(defs, redflag.Definition{
			Code:       rf.Code,
			Severity:   redflag.Severity(rf.Severity),
			Penalty:    rf.Penalty,
			AutoReject: rf.AutoReject,
			Phrases:    rf.Phrases,
		})
	}
	dict, err := redflag.NewDictionary(defs)
	if err != nil {
		return nil, errors.Wrap(err, "invalid red-flags section")
	}

	gates := make([]skillgate.Gate, 0, len(eff.SkillGates))
	for _, g := range eff.SkillGates {
		gates = append(gates, skillgate.Gate{
			Key:            g.Key,
			Threshold:      g.Threshold,
			Action:         skillgate.Action(g.Action),
			SafetyCritical: g.SafetyCritical,
		})
	}
	table, err := skillgate.NewTable(gates)
	if err != nil {
		return nil, errors.Wrap(err, "invalid skill-gates section")
	}

	snap, err := engine.NewSnapshot(engine.Options{
		Version:    eff.Version,
		Profiles:   profiles,
		Categories: eff.Categories,
		Risk:       scorer,
		RedFlags:   dict,
		Gates:      table,
		Policy: decision.Policy{
			HireThreshold: eff.Decision.HireThreshold,
			HoldThreshold: eff.Decision.HoldThreshold,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return snap, nil
}

func (f *File) riskScorer() (*risk.Scorer, error) {
	dims := make([]risk.Dimension, 0, len(f.Risk.Dimensions))
	for _, d := range f.Risk.Dimensions {
		dim := risk.Dimension{Name: d.Name}
		for _, in := range d.Inputs {
			dim.Inputs = append(dim.Inputs, risk.Input{Code: in.Code, Ratio: in.Ratio})
		}
		dims = append(dims, dim)
	}

	return risk.NewScorer(
		dims,
		risk.Thresholds{Warning: f.Risk.Thresholds.Warning, Critical: f.Risk.Thresholds.Critical},
		risk.Penalties{
			Normal:   f.Risk.Penalties.Normal,
			Warning:  f.Risk.Penalties.Warning,
			Critical: f.Risk.Penalties.Critical,
		},
	)
}

// TenantModels builds the company fit models keyed by lower-cased tenant id.
func (f *File) TenantModels() (map[string]*companyfit.Model, error) {
	if f == nil {
		return map[string]*companyfit.Model{}, nil
	}

	out := make(map[string]*companyfit.Model, len(f.Tenants))
	for _, tenant := range sortedKeys(f.Tenants) {
		id := normalizeTenant(tenant)
		items := make([]companyfit.Item, 0, len(f.Tenants[tenant]))
		for _, it := range f.Tenants[tenant] {
			items = append(items, companyfit.Item{
				Code:     it.Code,
				Weight:   it.Weight,
				Priority: competency.Priority(strings.ToLower(strings.TrimSpace(it.Priority))),
				MinScore: it.MinScore,
			})
		}
		model, err := companyfit.NewModel(id, items)
		if err != nil {
			return nil, errors.Wrap(err, "invalid tenants section")
		}
		out[id] = model
	}

	return out, nil
}

// Validate builds everything the file describes and reports the first error.
func (f *File) Validate() error {
	if _, err := f.Snapshot(); err != nil {
		return err
	}
	_, err := f.TenantModels()
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
