package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/drawrun/internal/artifacts"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/ensemble"
)

func sampleArtifact(t *testing.T) *artifacts.ResultArtifact {
	t.Helper()
	a, err := domain.NewEvent([]int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	require.NoError(t, err)
	b, err := domain.NewEvent([]int{3, 10, 13, 14, 15, 19, 20, 22, 23, 24, 25, 1, 2, 4})
	require.NoError(t, err)

	return &artifacts.ResultArtifact{
		RunID:     "6f1c0a2e-test",
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Ranked: []ensemble.Candidate{
			{Event: a, Score: 812.4, Seed: 1337, Refined: true},
			{Event: b, Score: 640.0, Seed: 1338},
		},
		ElapsedMS: 2100,
	}
}

func TestRender(t *testing.T) {
	md := Render(sampleArtifact(t))

	assert.Contains(t, md, "# DrawRun Prediction Report")
	assert.Contains(t, md, "6f1c0a2e-test")
	assert.Contains(t, md, "| 1 | 1 2 4 5 6 7 8 9 11 12 16 17 18 21 | 812.40 | 1337 | yes |")
	assert.Contains(t, md, "## Pairwise Diversity")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.md")
	require.NoError(t, Write(sampleArtifact(t), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# DrawRun Prediction Report"))
}
