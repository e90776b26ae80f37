// Package config loads talentqx.yaml and turns it into evaluation snapshots.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// Name is the config file base name looked up in the working directory.
	Name = "talentqx"
	// EnvPrefix prefixes environment overrides, e.g. TALENTQX_VERSION.
	EnvPrefix = "TALENTQX"
)

// File is the on-disk configuration. Empty sections fall back to Default.
type File struct {
	Version    string                  `mapstructure:"version" yaml:"version,omitempty"`
	Profiles   map[string]ProfileFile  `mapstructure:"profiles" yaml:"profiles,omitempty"`
	Categories map[string]string       `mapstructure:"categories" yaml:"categories,omitempty"`
	Risk       *RiskFile               `mapstructure:"risk" yaml:"risk,omitempty"`
	RedFlags   []RedFlagFile           `mapstructure:"red-flags" yaml:"red-flags,omitempty"`
	SkillGates []GateFile              `mapstructure:"skill-gates" yaml:"skill-gates,omitempty"`
	Decision   *DecisionFile           `mapstructure:"decision" yaml:"decision,omitempty"`
	Tenants    map[string][]TenantItem `mapstructure:"tenants" yaml:"tenants,omitempty"`
	AI         *AIConfig               `mapstructure:"ai" yaml:"ai,omitempty"`
	Batch      *BatchConfig            `mapstructure:"batch" yaml:"batch,omitempty"`
}

// ProfileFile is the weight profile of one role category.
type ProfileFile struct {
	Source         string       `mapstructure:"source" yaml:"source,omitempty"`
	GateCompetency string       `mapstructure:"gate-competency" yaml:"gate-competency,omitempty"`
	Weights        []WeightFile `mapstructure:"weights" yaml:"weights"`
}

type WeightFile struct {
	Code     string  `mapstructure:"code" yaml:"code"`
	Weight   float64 `mapstructure:"weight" yaml:"weight"`
	Priority string  `mapstructure:"priority" yaml:"priority,omitempty"`
	MinScore float64 `mapstructure:"min-score" yaml:"min-score,omitempty"`
}

type RiskFile struct {
	Thresholds *RiskThresholdsFile `mapstructure:"thresholds" yaml:"thresholds,omitempty"`
	Penalties  *RiskPenaltiesFile  `mapstructure:"penalties" yaml:"penalties,omitempty"`
	Dimensions []DimensionFile     `mapstructure:"dimensions" yaml:"dimensions,omitempty"`
}

type RiskThresholdsFile struct {
	Warning  float64 `mapstructure:"warning" yaml:"warning"`
	Critical float64 `mapstructure:"critical" yaml:"critical"`
}

type RiskPenaltiesFile struct {
	Normal   float64 `mapstructure:"normal" yaml:"normal"`
	Warning  float64 `mapstructure:"warning" yaml:"warning"`
	Critical float64 `mapstructure:"critical" yaml:"critical"`
}

type DimensionFile struct {
	Name   string      `mapstructure:"name" yaml:"name"`
	Inputs []InputFile `mapstructure:"inputs" yaml:"inputs"`
}

type InputFile struct {
	Code  string  `mapstructure:"code" yaml:"code"`
	Ratio float64 `mapstructure:"ratio" yaml:"ratio"`
}

type RedFlagFile struct {
	Code       string   `mapstructure:"code" yaml:"code"`
	Severity   string   `mapstructure:"severity" yaml:"severity"`
	Penalty    float64  `mapstructure:"penalty" yaml:"penalty"`
	AutoReject bool     `mapstructure:"auto-reject" yaml:"auto-reject,omitempty"`
	Phrases    []string `mapstructure:"trigger-phrases" yaml:"trigger-phrases"`
}

type GateFile struct {
	Key            string  `mapstructure:"key" yaml:"key"`
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold"`
	Action         string  `mapstructure:"action" yaml:"action"`
	SafetyCritical bool    `mapstructure:"safety-critical" yaml:"safety-critical,omitempty"`
}

type DecisionFile struct {
	HireThreshold float64 `mapstructure:"hire-threshold" yaml:"hire-threshold"`
	HoldThreshold float64 `mapstructure:"hold-threshold" yaml:"hold-threshold"`
}

// TenantItem is one competency of a tenant model.
type TenantItem struct {
	Code     string  `mapstructure:"code" yaml:"code"`
	Weight   float64 `mapstructure:"weight" yaml:"weight"`
	Priority string  `mapstructure:"priority" yaml:"priority,omitempty"`
	MinScore float64 `mapstructure:"min-score" yaml:"min-score,omitempty"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Provider string        `mapstructure:"provider" yaml:"provider,omitempty"`
	Gemini   *GeminiConfig `mapstructure:"gemini" yaml:"gemini,omitempty"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" yaml:"-"`
	APIKeyFile   string `mapstructure:"api-key-file" yaml:"api-key-file,omitempty"`
	APIKeyEnv    string `mapstructure:"api-key-env" yaml:"api-key-env,omitempty"`
	Model        string `mapstructure:"model" yaml:"model,omitempty"`
	MaxRetries   int    `mapstructure:"max-retries" yaml:"max-retries,omitempty"`
	MaxLogLength int    `mapstructure:"max-log-length" yaml:"max-log-length,omitempty"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers,omitempty"`
}

// Setup points v at the config file. An empty path looks for talentqx.yaml
// in the working directory.
func Setup(v *viper.Viper, path string) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Read reads the config file. A missing talentqx.yaml is not an error when
// no explicit path was given; defaults are used instead.
func Read(v *viper.Viper, explicit bool) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !explicit && errors.As(err, &notFound) {
		return nil
	}
	return errors.Wrap(err, "failed to read config file")
}

// Decode unmarshals the current viper state.
func Decode(v *viper.Viper) (*File, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return &f, nil
}

// Load reads and decodes path with a private viper instance.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("config file not found: %s", path)
		}
		return nil, errors.Wrapf(err, "failed to stat config file: %s", path)
	}

	v := viper.New()
	Setup(v, path)
	if err := Read(v, true); err != nil {
		return nil, err
	}
	return Decode(v)
}
