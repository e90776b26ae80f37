package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/batch"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/export"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/intake"
)

const (
	PromptReport = "Report by decision"
	PromptExport = "Export to Excel"
	PromptDump   = "Dump results to file"
	PromptRerun  = "Re-run with current config"
	PromptExit   = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Next step?",
	Items: []string{PromptReport, PromptExport, PromptDump, PromptRerun, PromptExit},
}

var batchCmd = &cobra.Command{
	Use:   "batch <glob>",
	Short: "Evaluate every candidate file matching a glob (** supported)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for next steps, print the report and exit")
	batchCmd.Flags().IntP("workers", "w", 0, "parallel evaluations (default from batch.workers)")
	batchCmd.Flags().String("xlsx", "", "write the results to this Excel workbook")
	batchCmd.Flags().Bool("watch-config", false, "reload the config file when it changes; re-runs use the new snapshot")
	batchCmd.Flags().Bool("ai", false, "score free-text answers with the AI provider even if ai.enabled is off")

	viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
}

func runBatch(cmd *cobra.Command, pattern string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()
	store := newStore(logger)

	logger.Info("starting the talentqx batch", zap.String("version", version))

	if watch, _ := cmd.Flags().GetBool("watch-config"); watch {
		if viper.ConfigFileUsed() == "" {
			logger.Warn("nothing to watch", zap.String("reason", "no config file in use"))
		} else {
			store.Watch()
		}
	}

	paths, err := intake.Discover(pattern)
	if err != nil {
		logger.Fatal("discovering candidate files", zap.Error(err))
	}

	workers := viper.GetInt("batch.workers")
	if workers <= 0 {
		if b := store.Current().File.Batch; b != nil {
			workers = b.Workers
		}
	}

	runner := batch.NewRunner(store, newAssessor(ctx, cmd, store.Current().File, logger), workers, logger)

	run, err := runner.Run(ctx, paths)
	if err != nil {
		logger.Fatal("batch failed", zap.Error(err))
	}

	if xlsx, _ := cmd.Flags().GetString("xlsx"); xlsx != "" {
		if err := exportRun(run, xlsx, logger); err != nil {
			logger.Fatal("exporting results", zap.Error(err))
		}
	}

	if auto, _ := cmd.Flags().GetBool("auto-approve"); auto {
		reportRun(run, logger)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		next, err := handleAction(ctx, action, runner, paths, run, store, logger)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
		run = next
	}
}

func handleAction(ctx context.Context, action string, runner *batch.Runner, paths []string, run *batch.Run, store *config.Store, logger *zap.Logger) (*batch.Run, error) {
	switch action {
	case PromptReport:
		reportRun(run, logger)
		return run, nil
	case PromptExport:
		exportPrompt := promptui.Prompt{
			Label:   "Workbook path",
			Default: fmt.Sprintf("talentqx_%s.xlsx", run.ID[:8]),
		}
		path, err := exportPrompt.Run()
		if err != nil {
			return nil, err
		}
		return run, exportRun(run, path, logger)
	case PromptDump:
		filename, err := dumpRun(run)
		if err != nil {
			return nil, fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return run, nil
	case PromptRerun:
		logger.Info("re-running batch", zap.String("snapshot", store.Snapshot().Version()))
		return runner.Run(ctx, paths)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return nil, errExit
	default:
		return nil, fmt.Errorf("invalid action: %s", action)
	}
}

func reportRun(run *batch.Run, logger *zap.Logger) {
	byDecision := make(map[string][]string, len(run.Summary.Counts))
	for _, it := range run.Items {
		name := it.Report.CandidateID
		if name == "" {
			name = it.Path
		}
		byDecision[it.Decision()] = append(byDecision[it.Decision()], name)
	}

	pretty, _ := json.MarshalIndent(byDecision, "", "  ")
	logger.Info(string(pretty),
		zap.String("run_id", run.ID),
		zap.String("snapshot", run.Snapshot),
		zap.Int("candidates", run.Summary.Total),
		zap.Int("errors", run.Summary.Errors),
	)
}

func exportRun(run *batch.Run, path string, logger *zap.Logger) error {
	written, err := export.WriteXLSX(run, path)
	if err != nil {
		return err
	}
	logger.Info("results exported", zap.String("filename", written))
	return nil
}

func dumpRun(run *batch.Run) (string, error) {
	file, err := os.CreateTemp("", "talentqx_run_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return "", err
	}
	return file.Name(), nil
}
