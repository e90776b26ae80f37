package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and optionally print the effective tables",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		validate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolP("print", "p", false, "print the effective configuration as YAML")
}

func validate(cmd *cobra.Command) {
	logger := newLogger()
	state := newStore(logger).Current()
	snap := state.Snapshot

	logger.Info("configuration is valid",
		zap.String("file", viper.ConfigFileUsed()),
		zap.String("snapshot", snap.Version()),
		zap.Strings("profiles", snap.ProfileNames()),
		zap.Int("red_flags", snap.RedFlags().Len()),
		zap.Int("skill_gates", len(snap.Gates().Gates())),
		zap.Int("tenants", len(state.Tenants)),
		zap.Float64("hire_threshold", snap.Policy().HireThreshold),
		zap.Float64("hold_threshold", snap.Policy().HoldThreshold),
	)

	if p, _ := cmd.Flags().GetBool("print"); !p {
		return
	}

	out, err := yaml.Marshal(state.File)
	if err != nil {
		logger.Fatal("encoding configuration", zap.Error(err))
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
}
