// defender is a terminal arcade game about shooting down falling arithmetic
// problems before they reach the defense line.
//
// Usage:
//
//	defender play            - Play in this terminal
//	defender serve           - Start SSH server for remote play
//	defender web             - Start web socket server for browser clients
//	defender categories      - List filters, tiers and their category keys
//	defender config          - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible problem sequences
//	--config <path>      - Use a custom config YAML
//	--log-level <level>  - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-defender/internal/config"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagConfig   string
	flagLogLevel string

	// Environment settings, filled before any command runs
	env config.Env
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "defender",
	Short: "Math Defender - shoot down falling arithmetic problems",
	Long: `Math Defender drops arithmetic problems toward your defense line.
Type the answer to fire the laser; every problem that crosses the line
costs a life.

Available commands:
  play        - Play in this terminal
  serve       - Start SSH server for remote play
  web         - Start web socket server for browser clients
  categories  - List filters and tiers
  config      - Print the effective configuration

Examples:
  defender play
  defender play --filter x --tier hard
  defender serve --ssh :2222
  defender web --addr :8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		env, err = config.LoadEnv()
		if err != nil {
			return err
		}
		if flagConfig == "" {
			flagConfig = env.ConfigPath
		}
		if !cmd.Flags().Changed("log-level") && env.LogLevel != "" {
			flagLogLevel = env.LogLevel
		}
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML (env "+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the root logger for servers and the log file.
func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "defender",
		Level:           level,
	}), nil
}

// loadConfig loads the defender configuration or exits.
func loadConfig() (config.DefenderConfig, string) {
	cfg, source, err := config.Load(flagConfig)
	if err != nil {
		fail(err)
	}
	return cfg, source
}

// fail prints the error the way every command reports it and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
