package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/companyfit"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/intake"
)

var fitCmd = &cobra.Command{
	Use:   "fit <candidate-file>",
	Short: "Score a candidate against a tenant's competency model",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fit(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().StringP("tenant", "t", "", "tenant id from the tenants section (default is the candidate's tenant)")
	fitCmd.Flags().Bool("ai", false, "score free-text answers with the AI provider even if ai.enabled is off")
}

type fitOutput struct {
	CandidateID string            `json:"candidate_id"`
	Status      string            `json:"status"`
	Decision    string            `json:"decision"`
	CompanyFit  companyfit.Result `json:"company_fit"`
}

func fit(cmd *cobra.Command, path string) {
	ctx := context.Background()
	logger := newLogger()
	store := newStore(logger)
	state := store.Current()

	candidate, err := intake.Load(path)
	if err != nil {
		logger.Fatal("loading candidate", zap.Error(err))
	}

	tenant, _ := cmd.Flags().GetString("tenant")
	if tenant == "" {
		tenant = candidate.Tenant
	}
	if tenant == "" {
		logger.Fatal("tenant is required", zap.String("hint", "pass --tenant or set tenant in the candidate file"))
	}

	model, ok := state.Tenant(tenant)
	if !ok {
		logger.Fatal("unknown tenant", zap.String("tenant", tenant))
	}

	report, err := newAssessor(ctx, cmd, state.File, logger).Assess(ctx, state.Snapshot, candidate.Input())
	if err != nil {
		logger.Fatal("evaluating candidate", zap.Error(err))
	}
	if report.Evaluation == nil {
		logger.Fatal("no competency scores", zap.String("status", string(report.Status)))
	}

	out := fitOutput{
		CandidateID: candidate.ID,
		Status:      string(report.Status),
		Decision:    report.Decision(),
		CompanyFit:  model.Score(report.Evaluation.Scores),
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
}
