package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/pkg/core/config"
	"github.com/msto63/cdlc/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *mdwlog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cdlc",
	Short: "cdlc - CDL compiler front-end",
	Long: `cdlc tokenizes, parses and resolves CDL dashboard scripts.

Commands:
  parse    - print the Ast as JSON, YAML or an indented tree
  check    - report diagnostics, optionally re-checking on change
  select   - query properties and entities
  stats    - node counts and phase timings
  serve    - HTTP and websocket compile service
  view     - interactive Ast browser
  history  - recorded compile runs`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CDLC_CONFIG or ./configs/cdlc.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration and creates the logger. Without a
// config file the defaults are used.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	appConfig = cfg

	logCfg := logging.ConfigFor("cdlc", cfg.General)
	if verbose {
		logCfg.Level = "debug"
	}
	logCfg.Output = cmd.ErrOrStderr()
	logger = logging.NewLogger(logCfg)
	return nil
}

func resolveConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	cfg, err := config.LoadFromEnv()
	if mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		return config.Default(), nil
	}
	return cfg, err
}

func printError(cmd *cobra.Command, msg string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", msg, err)
}
