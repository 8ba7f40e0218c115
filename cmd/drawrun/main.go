package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	appName = "DrawRun"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     "drawrun",
		Short:   "Adaptive 14-of-25 draw prediction engine",
		Version: version,
		Long: `DrawRun learns per-number, pair and triplet weights from historical draw
series and searches for high-scoring candidate draws with a multi-seed
ensemble and bounded local search.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (defaults used when empty)")

	// Accept snake_case flag spellings alongside the dashed names, matching
	// the YAML config keys.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newBacktestCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
