package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/logger"
)

const (
	app = "talentqx"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentqx turns interview results into HIRE / HOLD / REJECT decisions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentqx.yaml in current directory, built-in tables when absent)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without any config.
	if versionCmd.CalledAs() != "" {
		return
	}

	config.Setup(viper.GetViper(), cfgFile)

	// We can't proceed if the config file parsed with error.
	if err := config.Read(viper.GetViper(), cfgFile != ""); err != nil {
		log.Fatal(err)
	}
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// newStore validates the loaded configuration. An invalid config is fatal.
func newStore(l *zap.Logger) *config.Store {
	store, err := config.NewStore(viper.GetViper(), l)
	if err != nil {
		l.Fatal("loading configuration", zap.Error(err))
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "built-in defaults"
	}
	l.Debug("configuration loaded",
		zap.String("file", configFile),
		zap.String("snapshot", store.Snapshot().Version()),
	)
	return store
}
