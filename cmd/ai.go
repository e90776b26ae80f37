package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/ai"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/ai/gemini"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/secrets"
)

const defaultGeminiKeyEnv = "GEMINI_API_KEY"

// newAIScorer builds the competency scorer. force enables it even when the
// config leaves ai.enabled off.
func newAIScorer(ctx context.Context, cfg *config.AIConfig, force bool, logger *zap.Logger) (ai.CompetencyScorer, error) {
	if cfg == nil {
		cfg = &config.AIConfig{}
	}
	if !cfg.Enabled && !force {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &config.GeminiConfig{}
	}

	keyEnv := gcfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = defaultGeminiKeyEnv
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  gcfg.APIKeyFile,
		Env:   keyEnv,
		Value: gcfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, keyEnv)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	return gemini.NewScorer(generator, logger, gcfg.MaxLogLength), nil
}
