package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quorumlabs/simcore/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "simcore",
	Short: "Multi-agent simulation orchestration",
	Long: `Simcore turns a single user request into an orchestrated multi-agent
simulation. Requests are normalized into an execution plan, executed either
directly against the reasoning engine or through protocol-mediated teams
with bounded recursion, and aggregated into one deterministic response.

Configuration is read from simcore.yaml and SIMCORE_* environment
variables; API keys come from ANTHROPIC_API_KEY / OPENAI_API_KEY.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a simcore.yaml configuration file")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromPath(cfgFile)
	}
	return config.Load()
}
