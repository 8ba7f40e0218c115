package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawpanic/drawrun/internal/persistence/sqlite"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored prediction runs",
		RunE:  runRuns,
	}

	cmd.Flags().Int("limit", 20, "Maximum runs to list")
	cmd.Flags().String("run-id", "", "Show one run with its full ranking")

	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Output.DatabasePath == "" {
		return fmt.Errorf("run history disabled: output.database_path is empty")
	}

	repo, err := sqlite.NewRunRepo(cfg.Output.DatabasePath, 5*time.Second)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()

	if runID, _ := cmd.Flags().GetString("run-id"); runID != "" {
		run, candidates, err := repo.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s — %s, %d/%d seeds ok, top score %.2f\n\n",
			run.RunID, run.CreatedAt.Format(time.RFC3339),
			run.SeedCount-run.FailedSeeds, run.SeedCount, run.TopScore)
		for _, c := range candidates {
			refined := ""
			if c.Refined {
				refined = " (refined)"
			}
			fmt.Printf("%2d. %s  score=%.2f seed=%d%s\n", c.Rank, c.Numbers, c.Score, c.Seed, refined)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := repo.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %6s  %5s  %9s\n", "RUN ID", "CREATED", "SERIES", "SEEDS", "TOP SCORE")
	for _, r := range runs {
		fmt.Printf("%-36s  %-20s  %6d  %5d  %9.2f\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.SeriesCount, r.SeedCount, r.TopScore)
	}
	return nil
}
