package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cottand/motifsat/cmd"
	"github.com/cottand/motifsat/internal/log"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "motifsat [subcommand]",
	Short:             "motifsat finds the cheapest way to count a set of graph motifs",
	Args:              cobra.MinimumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel    *int
	logSections *[]string
)

func init() {
	rootCmd.PersistentFlags().String("config", "motifsat.yaml", "config file, missing files are ignored")
	logLevel = rootCmd.PersistentFlags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	logSections = rootCmd.PersistentFlags().StringSlice("log-sections", nil, "sections to log, or 'all'")

	rootCmd.AddCommand(cmd.OptimizeCmd)
	rootCmd.AddCommand(cmd.CanonCmd)
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	log.SetLevel(slog.Level(*logLevel))
	if cmd.Flags().Changed("log-sections") {
		log.EnableSections(*logSections...)
	}
	return nil
}
