package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sawpanic/drawrun/internal/artifacts"
	"github.com/sawpanic/drawrun/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a stored result artifact as markdown",
		RunE:  runReport,
	}

	cmd.Flags().String("artifact", "", "Path to a result_*.json artifact")
	cmd.Flags().String("out", "", "Write markdown here instead of stdout")
	cmd.MarkFlagRequired("artifact")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("artifact")
	artifact, err := artifacts.ReadResult(path)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return report.Write(artifact, out)
	}

	fmt.Print(report.Render(artifact))
	return nil
}
