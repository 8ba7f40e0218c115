// Package artifacts persists run outputs as timestamped JSON files so a
// run can be inspected or re-reported after the process exits.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/drawrun/internal/ensemble"
	"github.com/sawpanic/drawrun/internal/weights"
)

// Writer drops artifacts into a base directory, creating it on demand.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// ResultArtifact is the serialized form of a completed run.
type ResultArtifact struct {
	RunID       string               `json:"run_id"`
	CreatedAt   time.Time            `json:"created_at"`
	Ranked      []ensemble.Candidate `json:"ranked"`
	FailedSeeds int                  `json:"failed_seeds"`
	ElapsedMS   int64                `json:"elapsed_ms"`
}

// WriteResult persists the ranked outcome of a run and returns the path.
func (w *Writer) WriteResult(res *ensemble.Result) (string, error) {
	artifact := ResultArtifact{
		RunID:       res.RunID.String(),
		CreatedAt:   time.Now().UTC(),
		Ranked:      res.Ranked,
		FailedSeeds: res.FailedSeeds,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}

	name := fmt.Sprintf("result_%s_%s.json", artifact.CreatedAt.Format("20060102_150405"), res.RunID.String()[:8])
	return w.write(name, artifact)
}

// WeightsArtifact pairs an exported store with its seed.
type WeightsArtifact struct {
	Seed      int64                   `json:"seed"`
	CreatedAt time.Time               `json:"created_at"`
	Weights   weights.ExportedWeights `json:"weights"`
}

// WriteWeights persists one seed's learned weights and returns the path.
func (w *Writer) WriteWeights(seed int64, exported weights.ExportedWeights) (string, error) {
	artifact := WeightsArtifact{
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
		Weights:   exported,
	}

	name := fmt.Sprintf("weights_seed%d_%s.json", seed, artifact.CreatedAt.Format("20060102_150405"))
	return w.write(name, artifact)
}

func (w *Writer) write(name string, v any) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifacts dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal artifact: %w", err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	log.Debug().Str("path", path).Msg("artifact written")
	return path, nil
}

// ReadResult loads a previously written result artifact.
func ReadResult(path string) (*ResultArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result artifact: %w", err)
	}

	var artifact ResultArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse result artifact: %w", err)
	}
	return &artifact, nil
}
