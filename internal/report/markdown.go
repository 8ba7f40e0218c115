// Package report renders a completed run as a markdown document.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sawpanic/drawrun/internal/artifacts"
	"github.com/sawpanic/drawrun/internal/domain"
)

// Render formats a result artifact as markdown.
func Render(artifact *artifacts.ResultArtifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# DrawRun Prediction Report\n\n")
	fmt.Fprintf(&b, "- **Run ID**: `%s`\n", artifact.RunID)
	fmt.Fprintf(&b, "- **Generated**: %s\n", artifact.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Candidates**: %d\n", len(artifact.Ranked))
	fmt.Fprintf(&b, "- **Failed seeds**: %d\n", artifact.FailedSeeds)
	fmt.Fprintf(&b, "- **Elapsed**: %dms\n\n", artifact.ElapsedMS)

	b.WriteString("## Ranked Candidates\n\n")
	b.WriteString("| Rank | Numbers | Score | Seed | Refined |\n")
	b.WriteString("|------|---------|-------|------|---------|\n")
	for i, c := range artifact.Ranked {
		refined := ""
		if c.Refined {
			refined = "yes"
		}
		fmt.Fprintf(&b, "| %d | %s | %.2f | %d | %s |\n",
			i+1, formatEvent(c.Event), c.Score, c.Seed, refined)
	}

	if len(artifact.Ranked) > 1 {
		b.WriteString("\n## Pairwise Diversity\n\n")
		b.WriteString("| A | B | Jaccard distance |\n")
		b.WriteString("|---|---|------------------|\n")
		for i := 0; i < len(artifact.Ranked); i++ {
			for j := i + 1; j < len(artifact.Ranked); j++ {
				fmt.Fprintf(&b, "| %d | %d | %.3f |\n", i+1, j+1,
					domain.Jaccard(artifact.Ranked[i].Event, artifact.Ranked[j].Event))
			}
		}
	}

	return b.String()
}

// Write renders the artifact and writes it to path.
func Write(artifact *artifacts.ResultArtifact, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Render(artifact)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func formatEvent(ev domain.Event) string {
	parts := make([]string, len(ev))
	for i, n := range ev {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, " ")
}
