package score

import (
	"fmt"

	"github.com/sawpanic/drawrun/internal/config"
)

// Preset returns a named multiplier profile. The old strategy zoo
// (frequency-weighted, hot/cold, pattern-penalized) collapses into these
// profiles over the one scorer instead of separate code paths.
func Preset(name string) (config.ScoringConfig, error) {
	base := config.Defaults().Scoring

	switch name {
	case "balanced", "":
		return base, nil
	case "frequency":
		// Pure learned-frequency play: co-occurrence and recency muted.
		base.PairMultiplier = 0
		base.TripleMultiplier = 0
		base.HotBoost = 0
		base.ColdBoost = 0
		base.CriticalBoost = 0
		return base, nil
	case "hotcold":
		base.HotBoost *= 2
		base.ColdBoost *= 2
		base.PairMultiplier /= 2
		base.TripleMultiplier = 0
		return base, nil
	case "affinity":
		// Lean on pair/triplet structure over raw frequency.
		base.PairMultiplier *= 2
		base.TripleMultiplier *= 2
		base.HotBoost /= 2
		base.ColdBoost /= 2
		return base, nil
	default:
		return config.ScoringConfig{}, fmt.Errorf("unknown scoring preset %q", name)
	}
}

// PresetNames lists the recognized profiles for CLI help output.
func PresetNames() []string {
	return []string{"balanced", "frequency", "hotcold", "affinity"}
}
