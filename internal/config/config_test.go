package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/competency"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/decision"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/skillgate"
)

const sampleConfig = `
version: "2026-10"
profiles:
  default:
    weights:
      - {code: communication, weight: 1}
      - {code: integrity, weight: 1}
      - {code: role_competence, weight: 2}
  Sales:
    source: external_percentage
    weights:
      - {code: communication, weight: 3}
      - {code: role_competence, weight: 1}
red-flags:
  - code: RF_AGGRESSION
    severity: critical
    penalty: 25
    auto-reject: true
    trigger-phrases: ["döverim"]
skill-gates:
  - {key: "*", threshold: 45, action: hold}
  - {key: captain, threshold: 80, action: reject, safety-critical: true}
decision:
  hire-threshold: 80
  hold-threshold: 65
tenants:
  Acme:
    - {code: communication, weight: 2, priority: critical, min-score: 70}
    - {code: sales, weight: 1}
ai:
  enabled: true
  gemini:
    model: gemini-2.5-flash
    max-retries: 2
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "talentqx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultBuildsSnapshot(t *testing.T) {
	snap, err := Default().Snapshot()
	require.NoError(t, err)

	assert.Equal(t, DefaultVersion, snap.Version())
	assert.Equal(t, []string{engine.DefaultProfile, "maritime"}, snap.ProfileNames())
	assert.Equal(t, decision.DefaultPolicy(), snap.Policy())
	assert.Equal(t, 7, snap.RedFlags().Len())

	_, maritime := snap.Profile("maritime")
	assert.Equal(t, competency.SourceCategoryAggregation, maritime.Source)
	assert.Equal(t, competency.CategoryCoreDuty, maritime.GateCompetency)

	gate := snap.Gates().Resolve("master", "maritime")
	assert.True(t, gate.SafetyCritical)
	assert.Equal(t, skillgate.ActionReject, gate.Action)
}

func TestDefaultRedFlagsRespectWordBoundaries(t *testing.T) {
	snap, err := Default().Snapshot()
	require.NoError(t, err)

	assert.Empty(t, snap.RedFlags().Detect([]string{"arkadaşlarımla çalıştım"}).Matches)
	assert.Equal(t, []string{"RF_INFLEXIBLE"}, snap.RedFlags().Detect([]string{"ben asla yapmam"}).Codes())
}

func TestDefaultAutoRejectFlagsMatchCapitals(t *testing.T) {
	snap, err := Default().Snapshot()
	require.NoError(t, err)

	tests := []struct {
		text string
		flag string
	}{
		{text: "KAFASINI KIRARIM", flag: "RF_AGGRESSION"},
		{text: "SARHOŞ ÇALIŞTIM", flag: "RF_SUBSTANCE"},
		{text: "İÇKİLİ ÇALIŞTIM", flag: "RF_SUBSTANCE"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := snap.RedFlags().Detect([]string{tt.text})
			assert.True(t, res.AutoReject, "matches: %+v", res.Matches)
			assert.Equal(t, tt.flag, res.RejectFlag)
		})
	}
}

func TestNilFileUsesDefaults(t *testing.T) {
	var f *File
	snap, err := f.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, snap.Version())

	tenants, err := f.TenantModels()
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2026-10", f.Version)
	require.Contains(t, f.Profiles, "sales")
	assert.Equal(t, "external_percentage", f.Profiles["sales"].Source)
	require.Len(t, f.RedFlags, 1)
	assert.True(t, f.RedFlags[0].AutoReject)
	assert.Equal(t, []string{"döverim"}, f.RedFlags[0].Phrases)
	require.NotNil(t, f.AI)
	assert.True(t, f.AI.Enabled)
	assert.Equal(t, 2, f.AI.Gemini.MaxRetries)

	snap, err := f.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2026-10", snap.Version())
	assert.Equal(t, decision.Policy{HireThreshold: 80, HoldThreshold: 65}, snap.Policy())

	name, sales := snap.Profile("SALES")
	assert.Equal(t, "sales", name)
	w, ok := sales.Weights.Weight(competency.Communication)
	require.True(t, ok)
	assert.Equal(t, 75.0, w)

	// Empty sections fall back to the built-in tables.
	assert.Len(t, snap.Risk().Dimensions(), 3)
	assert.Len(t, snap.Categories(), len(Default().Categories))

	tenants, err := f.TenantModels()
	require.NoError(t, err)
	require.Contains(t, tenants, "acme")
	res := tenants["acme"].Score(competency.Scores{"communication": 60})
	assert.Len(t, res.Flags, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestSnapshotConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		target error
		msg    string
	}{
		{
			name:   "zero weights",
			body:   "profiles:\n  default:\n    weights:\n      - {code: integrity, weight: 0}\n",
			target: competency.ErrZeroWeight,
		},
		{
			name:   "no fallback gate",
			body:   "skill-gates:\n  - {key: mid, threshold: 50, action: HOLD}\n",
			target: skillgate.ErrNoFallback,
		},
		{
			name:   "no default profile",
			body:   "profiles:\n  sales:\n    weights:\n      - {code: integrity, weight: 1}\n",
			target: engine.ErrInvalidSnapshot,
		},
		{
			name: "unknown severity",
			body: "red-flags:\n  - {code: X, severity: severe, penalty: 1, trigger-phrases: [a]}\n",
			msg:  "invalid red-flags section",
		},
		{
			name: "inverted risk thresholds",
			body: "risk:\n  thresholds: {warning: 70, critical: 20}\n",
			msg:  "invalid risk section",
		},
		{
			name:   "inverted decision bands",
			body:   "decision: {hire-threshold: 50, hold-threshold: 60}\n",
			target: decision.ErrInvalidPolicy,
		},
		{
			name: "unknown source",
			body: "profiles:\n  default:\n    source: vibes\n    weights:\n      - {code: integrity, weight: 1}\n",
			msg:  "unknown score source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(writeConfig(t, t.TempDir(), tt.body))
			require.NoError(t, err)

			err = f.Validate()
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "expected %v in chain, got %v", tt.target, err)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestReadWithoutFileFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v := viper.New()
	Setup(v, "")
	require.NoError(t, Read(v, false))

	store, err := NewStore(v, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, store.Snapshot().Version())
}

func TestReadExplicitMissingFileFails(t *testing.T) {
	v := viper.New()
	Setup(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, Read(v, true))
}

func TestStoreReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: one\n")

	v := viper.New()
	Setup(v, path)
	require.NoError(t, Read(v, true))

	core, observed := observer.New(zapcore.InfoLevel)
	store, err := NewStore(v, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, "one", store.Snapshot().Version())

	var seen []string
	store.OnChange(func(s *State) { seen = append(seen, s.Snapshot.Version()) })

	writeConfig(t, dir, "version: two\ndecision: {hire-threshold: 90, hold-threshold: 70}\n")
	require.NoError(t, store.Reload())
	assert.Equal(t, "two", store.Snapshot().Version())
	assert.Equal(t, 90.0, store.Snapshot().Policy().HireThreshold)

	writeConfig(t, dir, "version: three\nskill-gates:\n  - {key: mid, threshold: 50, action: HOLD}\n")
	err = store.Reload()
	assert.ErrorIs(t, err, skillgate.ErrNoFallback)
	assert.Equal(t, "two", store.Snapshot().Version())

	assert.Equal(t, []string{"two"}, seen)
	assert.Zero(t, observed.Len())
}

func TestStateTenantLookup(t *testing.T) {
	f, err := Load(writeConfig(t, t.TempDir(), sampleConfig))
	require.NoError(t, err)

	state, err := NewState(f)
	require.NoError(t, err)

	_, ok := state.Tenant(" ACME ")
	assert.True(t, ok)
	_, ok = state.Tenant("globex")
	assert.False(t, ok)
	assert.NotNil(t, state.File.Risk)
}
