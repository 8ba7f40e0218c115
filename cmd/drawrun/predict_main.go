package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/drawrun/internal/artifacts"
	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/dataset"
	"github.com/sawpanic/drawrun/internal/ensemble"
	httpops "github.com/sawpanic/drawrun/internal/interfaces/http"
	"github.com/sawpanic/drawrun/internal/persistence"
	"github.com/sawpanic/drawrun/internal/persistence/sqlite"
	"github.com/sawpanic/drawrun/internal/report"
	"github.com/sawpanic/drawrun/internal/score"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Train on history and emit ranked candidate draws",
		Long:  "Replays the training stream per ensemble seed, generates weighted candidate pools, refines the best draws and prints the diversity-filtered ranking.",
		RunE:  runPredict,
	}

	cmd.Flags().String("data", "", "Training dataset (CSV or JSON)")
	cmd.Flags().String("preset", "balanced", fmt.Sprintf("Scoring preset (%s)", strings.Join(score.PresetNames(), "|")))
	cmd.Flags().Int("seeds", 0, "Override number of ensemble seeds")
	cmd.Flags().Int("top-n", 0, "Override number of ranked candidates")
	cmd.Flags().Bool("no-persist", false, "Skip run-history database and artifacts")
	cmd.MarkFlagRequired("data")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Defaults(), nil
	}
	return config.Load(path)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		scoring, err := score.Preset(preset)
		if err != nil {
			return err
		}
		cfg.Scoring = scoring
	}
	if n, _ := cmd.Flags().GetInt("seeds"); n > 0 {
		cfg.Ensemble.NumSeeds = n
		cfg.Ensemble.Seeds = nil
	}
	if n, _ := cmd.Flags().GetInt("top-n"); n > 0 {
		cfg.Ensemble.TopN = n
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataPath, _ := cmd.Flags().GetString("data")
	stream, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}
	log.Info().Int("series", len(stream)).Str("path", dataPath).Msg("training stream loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := httpops.NewMetricsRegistry()
	metrics.TotalRuns.Inc()
	metrics.ActiveRuns.Inc()
	start := time.Now()

	driver := ensemble.New(cfg, metrics)
	res, err := driver.Run(ctx, stream)

	metrics.ActiveRuns.Dec()
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	printRanking(res)

	if noPersist, _ := cmd.Flags().GetBool("no-persist"); !noPersist {
		if err := persistRun(ctx, cfg, res, len(stream)); err != nil {
			// Persistence is best-effort: the prediction already happened.
			log.Warn().Err(err).Msg("failed to persist run")
		}
	}

	return nil
}

func printRanking(res *ensemble.Result) {
	fmt.Printf("\n%s run %s — %d candidates (%d seeds failed)\n\n",
		appName, res.RunID, len(res.Ranked), res.FailedSeeds)
	for i, c := range res.Ranked {
		refined := ""
		if c.Refined {
			refined = " (refined)"
		}
		fmt.Printf("%2d. %v  score=%.2f seed=%d%s\n", i+1, []int(c.Event), c.Score, c.Seed, refined)
	}
	fmt.Println()
}

func persistRun(ctx context.Context, cfg *config.Config, res *ensemble.Result, seriesCount int) error {
	writer := artifacts.NewWriter(cfg.Output.ArtifactsDir)
	path, err := writer.WriteResult(res)
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("result artifact written")

	// Persist the learned weights of the seed that produced the winner.
	if len(res.Ranked) > 0 {
		for _, sr := range res.SeedResults {
			if sr.Err != nil || sr.Seed != res.Ranked[0].Seed {
				continue
			}
			wpath, err := writer.WriteWeights(sr.Seed, sr.Weights)
			if err != nil {
				return err
			}
			log.Info().Str("path", wpath).Int64("seed", sr.Seed).Msg("weights artifact written")
			break
		}
	}

	if cfg.Output.ReportPath != "" {
		artifact, err := artifacts.ReadResult(path)
		if err != nil {
			return err
		}
		if err := report.Write(artifact, cfg.Output.ReportPath); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Output.ReportPath).Msg("report written")
	}

	if cfg.Output.DatabasePath == "" {
		return nil
	}
	repo, err := sqlite.NewRunRepo(cfg.Output.DatabasePath, 5*time.Second)
	if err != nil {
		return err
	}
	defer repo.Close()

	run := persistence.RunRecord{
		RunID:       res.RunID.String(),
		CreatedAt:   time.Now().UTC(),
		SeriesCount: seriesCount,
		SeedCount:   len(res.SeedResults),
		FailedSeeds: res.FailedSeeds,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	if len(res.Ranked) > 0 {
		run.TopScore = res.Ranked[0].Score
	}

	candidates := make([]persistence.CandidateRecord, 0, len(res.Ranked))
	for i, c := range res.Ranked {
		candidates = append(candidates, persistence.CandidateRecord{
			RunID:   run.RunID,
			Rank:    i + 1,
			Numbers: formatNumbersJSON(c.Event),
			Score:   c.Score,
			Seed:    c.Seed,
			Refined: c.Refined,
		})
	}

	return repo.SaveRun(ctx, run, candidates)
}

func formatNumbersJSON(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
