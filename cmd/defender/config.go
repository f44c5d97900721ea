package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-defender/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration the other commands would use, as YAML.

Search order: --config / DEFENDER_CONFIG, ~/.defender/config.yaml,
./configs/defender.yaml, then the built-in defaults. Redirect the output
to a file to start a custom config.`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func runConfig(_ *cobra.Command, _ []string) {
	cfg, source := loadConfig()

	data, err := config.Marshal(cfg)
	if err != nil {
		fail(err)
	}
	fmt.Printf("# source: %s\n", source)
	fmt.Print(string(data))
}
