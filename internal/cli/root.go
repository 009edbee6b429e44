package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rangetrader/config"
	"github.com/rustyeddy/rangetrader/internal/logging"
)

var version = "dev"

// RootConfig holds the persistent flags and what PersistentPreRunE derives
// from them.
type RootConfig struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	LogFormat  string

	Config *config.Config
	Log    *zap.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "rangetrader",
		Short:         "rangetrader: range breakout backtests on minute bars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.EnvFile, "env-file", ".env", "Environment overrides file (optional)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rc.LogFormat, "log-format", "", "Log format: console|json")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.setup()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if rc.Log != nil {
			_ = rc.Log.Sync()
		}
	}

	cmd.AddCommand(
		newBacktestCmd(rc),
		newLevelsCmd(rc),
		newSummaryCmd(rc),
		newRunsCmd(rc),
		newConfigCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rangetrader (%s)\n", version)
		},
	})

	return cmd
}

// setup loads the config file (or defaults), applies the environment and
// builds the logger. Validation is left to the commands that run.
func (rc *RootConfig) setup() error {
	cfg := config.Default()
	if rc.ConfigPath != "" {
		loaded, err := config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(rc.EnvFile); err != nil {
		return err
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.LogFormat != "" {
		cfg.Log.Format = rc.LogFormat
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	rc.Config = cfg
	rc.Log = log
	return nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
