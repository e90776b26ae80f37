package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/assessment"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/intake"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <candidate-file>",
	Short: "Evaluate one candidate and print the decision as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Bool("full", false, "print the full breakdown instead of the decision only")
	evaluateCmd.Flags().Bool("ai", false, "score free-text answers with the AI provider even if ai.enabled is off")
}

func evaluate(cmd *cobra.Command, path string) {
	ctx := context.Background()
	logger := newLogger()
	store := newStore(logger)

	candidate, err := intake.Load(path)
	if err != nil {
		logger.Fatal("loading candidate", zap.Error(err))
	}

	assessor := newAssessor(ctx, cmd, store.Current().File, logger)

	report, err := assessor.Assess(ctx, store.Snapshot(), candidate.Input())
	if err != nil {
		logger.Fatal("evaluating candidate", zap.Error(err))
	}

	full, _ := cmd.Flags().GetBool("full")

	var out any = report
	if !full && report.Evaluation != nil {
		out = report.Evaluation.Result
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
}

// newAssessor wires the optional AI scorer. A scorer that cannot be built
// is skipped with a warning and the text heuristic is used.
func newAssessor(ctx context.Context, cmd *cobra.Command, f *config.File, logger *zap.Logger) *assessment.Assessor {
	// Commands without the flag get false.
	force, _ := cmd.Flags().GetBool("ai")

	var aiCfg *config.AIConfig
	if f != nil {
		aiCfg = f.AI
	}

	scorer, err := newAIScorer(ctx, aiCfg, force, logger)
	if err != nil {
		logger.Warn("skipping AI scoring", zap.Error(err))
		return assessment.New(nil, logger)
	}
	if scorer != nil {
		logger.Debug("AI scoring enabled", zap.Bool("forced", force))
	}
	return assessment.New(scorer, logger)
}
