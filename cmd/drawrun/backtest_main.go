package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sawpanic/drawrun/internal/dataset"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/ensemble"
	progresslog "github.com/sawpanic/drawrun/internal/log"
	"github.com/sawpanic/drawrun/internal/refine"
)

func newBacktestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Walk-forward evaluation against known history",
		Long: `For each held-out series, trains only on the series before it, predicts,
and scores the prediction against the actually revealed draw. Also probes
whether the revealed draw was reachable from the prediction by one k-swap.`,
		RunE: runBacktest,
	}

	cmd.Flags().String("data", "", "Training dataset (CSV or JSON)")
	cmd.Flags().Int("holdout", 10, "Number of trailing series to evaluate")
	cmd.Flags().Bool("early-stop", false, "Stop a holdout's seeds once an exact match is found")
	cmd.MarkFlagRequired("data")

	return cmd
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dataPath, _ := cmd.Flags().GetString("data")
	stream, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}

	holdout, _ := cmd.Flags().GetInt("holdout")
	if holdout >= len(stream) {
		return fmt.Errorf("holdout %d leaves no training data (%d series total)", holdout, len(stream))
	}
	earlyStop, _ := cmd.Flags().GetBool("early-stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plain := !term.IsTerminal(int(os.Stdout.Fd()))
	progress := progresslog.NewProgressIndicator("backtest", holdout, plain)

	var totalBest, exactMatches, swapReachable int
	for i := len(stream) - holdout; i < len(stream); i++ {
		if err := ctx.Err(); err != nil {
			progress.Fail("interrupted")
			return err
		}

		actual := stream[i].Last()

		driver := ensemble.New(cfg, nil)
		if earlyStop {
			driver.SetOracle(actual)
		}

		res, err := driver.Run(ctx, stream[:i])
		if err != nil {
			progress.Fail(err.Error())
			return fmt.Errorf("holdout series %d: %w", stream[i].ID, err)
		}

		best := 0
		for _, c := range res.Ranked {
			if m := domain.Overlap(c.Event, actual); m > best {
				best = m
			}
		}
		totalBest += best
		if best == domain.EventSize {
			exactMatches++
		}

		// Reachability probe: was the truth inside the prediction's k-swap
		// neighborhood?
		top := res.Ranked[0].Event
		probe := refine.Refine(top, cfg.Ensemble.LocalSearchK, refine.ExactMatchEval(actual))
		if int(probe.Score) == domain.EventSize {
			swapReachable++
		}

		log.Info().
			Int("series", stream[i].ID).
			Int("best_match", best).
			Bool("swap_reachable", int(probe.Score) == domain.EventSize).
			Msg("holdout evaluated")
		progress.Increment()
	}
	progress.Finish()

	fmt.Printf("\nBacktest over %d series:\n", holdout)
	fmt.Printf("  mean best match : %.2f / %d\n", float64(totalBest)/float64(holdout), domain.EventSize)
	fmt.Printf("  exact matches   : %d\n", exactMatches)
	fmt.Printf("  %d-swap reachable: %d\n", cfg.Ensemble.LocalSearchK, swapReachable)

	return nil
}
